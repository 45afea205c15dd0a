// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package main

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/cespare/xxhash"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/woozymasta/rsc5"
)

type fileInfo struct {
	Path         string        `json:"path"`
	Type         string        `json:"type"`
	Flags        string        `json:"flags"`
	VirtualSize  uint32        `json:"virtual_size"`
	PhysicalSize uint32        `json:"physical_size"`
	VirtualHash  string        `json:"virtual_xxhash"`
	PhysicalHash string        `json:"physical_xxhash"`
	Textures     []textureInfo `json:"textures"`
}

type textureInfo struct {
	Hash     string `json:"hash"`
	Name     string `json:"name"`
	Format   string `json:"format"`
	Width    uint16 `json:"width"`
	Height   uint16 `json:"height"`
	Levels   uint8  `json:"levels"`
	DataSize int    `json:"data_size"`
}

func (a *app) infoCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "info",
		Usage:     "List the textures of one or more resource files",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return errors.New("no input files")
			}

			infos, err := collectInfos(ctx, paths, a.cfg.readOptions())
			if err != nil {
				return err
			}

			if asJSON {
				return printInfoJSON(cmd.Root().Writer, infos)
			}
			for _, info := range infos {
				printInfo(cmd.Root().Writer, info)
			}
			return nil
		},
	}
}

// collectInfos reads every file concurrently. Results keep the order of paths.
func collectInfos(ctx context.Context, paths []string, opts *rsc5.ReadOptions) ([]fileInfo, error) {
	infos := make([]fileInfo, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := collectInfo(path, opts)
			if err != nil {
				return err
			}
			infos[i] = info
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return infos, nil
}

func collectInfo(path string, opts *rsc5.ReadOptions) (fileInfo, error) {
	res, err := rsc5.ReadResource(path, opts)
	if err != nil {
		return fileInfo{}, errors.Wrapf(err, "read %s", path)
	}
	dict, err := rsc5.OpenTextureDictionary(res)
	if err != nil {
		return fileInfo{}, errors.Wrapf(err, "open dictionary in %s", path)
	}

	info := fileInfo{
		Path:         path,
		Type:         res.Header.Type.String(),
		Flags:        fmt.Sprintf("0x%08X", res.Header.Flags),
		VirtualSize:  res.Header.VirtualSize(),
		PhysicalSize: res.Header.PhysicalSize(),
		VirtualHash:  fmt.Sprintf("%016x", xxhash.Sum64(res.Virtual())),
		PhysicalHash: fmt.Sprintf("%016x", xxhash.Sum64(res.Physical())),
	}

	hashes, err := dict.HashKeys()
	if err != nil {
		return fileInfo{}, errors.Wrapf(err, "hashes in %s", path)
	}
	entries, err := dict.Entries()
	if err != nil {
		return fileInfo{}, errors.Wrapf(err, "entries in %s", path)
	}

	info.Textures = make([]textureInfo, len(entries))
	for i, tex := range entries {
		name, err := tex.Name(res)
		if err != nil {
			return fileInfo{}, errors.Wrapf(err, "entry %d in %s", i, path)
		}
		size, err := tex.DataSize()
		if err != nil {
			logrus.WithFields(logrus.Fields{"file": path, "entry": i}).Warn(err)
			size = -1
		}

		info.Textures[i] = textureInfo{
			Hash:     fmt.Sprintf("0x%08X", hashes[i]),
			Name:     name,
			Format:   tex.PixelFormat.String(),
			Width:    tex.Width,
			Height:   tex.Height,
			Levels:   tex.Levels,
			DataSize: size,
		}
	}

	logrus.WithFields(logrus.Fields{
		"file":     path,
		"textures": len(entries),
	}).Debug("read resource")

	return info, nil
}

func printInfo(w io.Writer, info fileInfo) {
	_, _ = fmt.Fprintf(w, "%s: %s, flags %s\n", info.Path, info.Type, info.Flags)
	_, _ = fmt.Fprintf(w, "  virtual  %-10s xxhash %s\n", humanize.IBytes(uint64(info.VirtualSize)), info.VirtualHash)
	_, _ = fmt.Fprintf(w, "  physical %-10s xxhash %s\n", humanize.IBytes(uint64(info.PhysicalSize)), info.PhysicalHash)
	for _, tex := range info.Textures {
		_, _ = fmt.Fprintf(w, "  %s %-32s %-8s %4dx%-4d %2d levels %s\n",
			tex.Hash, tex.Name, tex.Format, tex.Width, tex.Height, tex.Levels, humanize.IBytes(uint64(max(tex.DataSize, 0))))
	}
}

func printInfoJSON(w io.Writer, infos []fileInfo) error {
	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal info")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
