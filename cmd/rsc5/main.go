// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

// Command rsc5 inspects and edits RSC5 texture dictionaries.
package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

// app holds the state shared by every command: the loaded config file.
type app struct {
	cfg Config
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	a := &app{}

	var (
		logLevel   string
		logFormat  string
		configFile string
	)

	return &cli.Command{
		Name:  "rsc5",
		Usage: "Inspect and edit RSC5 texture dictionaries (.wtd)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level: trace, debug, info, warn, error",
				Value:       "info",
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "log format: text or json",
				Value:       "text",
				Destination: &logFormat,
			},
			&cli.StringFlag{
				Name:        "config",
				Usage:       "path to config.yaml",
				Value:       configPath(),
				Sources:     cli.EnvVars("RSC5_CONFIG"),
				Destination: &configFile,
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			a.cfg = LoadConfig(configFile)
			applyLogConfig(cmd, a.cfg, &logLevel, &logFormat)
			return ctx, setupLogging(logLevel, logFormat)
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			a.infoCmd(),
			a.insertCmd(),
			a.extractCmd(),
			a.unpackCmd(),
			a.packCmd(),
		},
	}
}
