// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package main

import (
	"bufio"
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/woozymasta/rsc5"
)

func (a *app) unpackCmd() *cli.Command {
	var in, out string

	return &cli.Command{
		Name:  "unpack",
		Usage: "Inflate a resource into an LZ4 snapshot of its segments",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "input resource", Required: true, Destination: &in},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output snapshot", Required: true, Destination: &out},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runUnpack(in, out, a.cfg.readOptions())
		},
	}
}

func (a *app) packCmd() *cli.Command {
	var in, out string

	return &cli.Command{
		Name:  "pack",
		Usage: "Compress a snapshot back into a resource, segments unchanged",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "input snapshot", Required: true, Destination: &in},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output resource", Required: true, Destination: &out},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runPack(in, out, a.cfg.readOptions())
		},
	}
}

func runUnpack(in, out string, opts *rsc5.ReadOptions) error {
	res, err := rsc5.ReadResource(in, opts)
	if err != nil {
		return errors.Wrapf(err, "read %s", in)
	}

	return createWith(out, func(w *bufio.Writer) error {
		if err := rsc5.WriteSnapshot(w, res); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"in":       in,
			"out":      out,
			"virtual":  len(res.Virtual()),
			"physical": len(res.Physical()),
		}).Info("resource unpacked")
		return nil
	})
}

func runPack(in, out string, opts *rsc5.ReadOptions) error {
	f, err := os.Open(in)
	if err != nil {
		return errors.Wrap(err, "open snapshot")
	}
	defer func() { _ = f.Close() }()

	res, err := rsc5.ReadSnapshot(bufio.NewReader(f), opts)
	if err != nil {
		return errors.Wrapf(err, "read %s", in)
	}

	return createWith(out, func(w *bufio.Writer) error {
		if err := rsc5.EncodeRaw(w, res); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"in": in, "out": out}).Info("resource packed")
		return nil
	})
}

// createWith creates path and hands fill a buffered writer over it.
func createWith(path string, fill func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "flush %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}

	return nil
}
