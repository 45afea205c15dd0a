// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package main

import (
	"context"
	"image/png"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/woozymasta/rsc5"
)

type extractOptions struct {
	In    string
	Out   string
	Name  string
	Index int
	Level int
	Read  *rsc5.ReadOptions
}

func (a *app) extractCmd() *cli.Command {
	opts := extractOptions{}

	return &cli.Command{
		Name:  "extract",
		Usage: "Decode one texture to PNG",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "input .wtd", Required: true, Destination: &opts.In},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output .png", Required: true, Destination: &opts.Out},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "texture name (dictionary key)", Destination: &opts.Name},
			&cli.IntFlag{Name: "index", Usage: "entry index, used when --name is empty", Destination: &opts.Index},
			&cli.IntFlag{Name: "level", Usage: "mip level", Destination: &opts.Level},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts.Read = a.cfg.readOptions()
			return runExtract(opts)
		},
	}
}

func runExtract(opts extractOptions) error {
	dict, err := rsc5.ReadWithOptions(opts.In, opts.Read)
	if err != nil {
		return errors.Wrapf(err, "read %s", opts.In)
	}

	index := opts.Index
	if opts.Name != "" {
		if index, err = dict.Find(rsc5.HashString(opts.Name)); err != nil {
			return errors.Wrap(err, "find texture")
		}
		if index < 0 {
			return errors.Errorf("no texture named %q in %s", opts.Name, opts.In)
		}
	}

	tex, err := dict.Entry(index)
	if err != nil {
		return errors.Wrapf(err, "entry %d", index)
	}
	img, err := tex.Level(dict.Resource(), opts.Level, nil)
	if err != nil {
		return errors.Wrapf(err, "decode entry %d", index)
	}

	f, err := os.Create(opts.Out)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer func() { _ = f.Close() }()

	if err := png.Encode(f, img); err != nil {
		return errors.Wrapf(err, "encode %s", opts.Out)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", opts.Out)
	}

	logrus.WithFields(logrus.Fields{
		"entry":  index,
		"level":  opts.Level,
		"format": tex.PixelFormat.String(),
		"out":    opts.Out,
	}).Info("texture extracted")

	return nil
}
