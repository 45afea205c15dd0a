// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package main

import (
	"context"
	"image"
	"image/png"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/woozymasta/rsc5"
)

const defaultPathPrefix = "pack:/"

// insertOptions describes one insert: a texture keyed by Name is added to
// (or replaced in) the dictionary read from In and the result written to Out.
type insertOptions struct {
	In         string
	Out        string
	Name       string
	Image      string
	PathPrefix string
	Format     string
	Policy     string
	MaxMipMaps int
	Replace    bool
	Read       *rsc5.ReadOptions
}

func (a *app) insertCmd() *cli.Command {
	opts := insertOptions{}

	return &cli.Command{
		Name:  "insert",
		Usage: "Add a texture to a dictionary, cloned from its first entry or encoded from a PNG",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: "input .wtd", Required: true, Destination: &opts.In},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output .wtd (default: overwrite input)", Destination: &opts.Out},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "texture name, hashed as the dictionary key", Required: true, Destination: &opts.Name},
			&cli.StringFlag{Name: "image", Usage: "PNG to encode instead of cloning the first entry's pixels", Destination: &opts.Image},
			&cli.StringFlag{Name: "path-prefix", Usage: "prefix of the stored name", Value: defaultPathPrefix, Destination: &opts.PathPrefix},
			&cli.StringFlag{Name: "format", Usage: "pixel format for --image: DXT1, DXT3, DXT5, A8R8G8B8", Destination: &opts.Format},
			&cli.StringFlag{Name: "policy", Usage: "block layout: packed or simple", Value: rsc5.PolicyPacked.String(), Destination: &opts.Policy},
			&cli.IntFlag{Name: "max-mipmaps", Usage: "limit the mip chain for --image (0 = full chain)", Destination: &opts.MaxMipMaps},
			&cli.BoolFlag{Name: "replace", Usage: "replace an entry with the same key instead of adding a second one", Destination: &opts.Replace},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyWriteConfig(cmd, a.cfg, &opts.Policy, &opts.Format, &opts.PathPrefix, &opts.MaxMipMaps)
			opts.Read = a.cfg.readOptions()

			_, err := runInsert(opts)
			return err
		},
	}
}

func runInsert(opts insertOptions) (rsc5.LayoutStats, error) {
	if opts.Out == "" {
		opts.Out = opts.In
	}
	policy, err := rsc5.ParsePolicy(opts.Policy)
	if err != nil {
		return rsc5.LayoutStats{}, err
	}

	dict, err := rsc5.ReadWithOptions(opts.In, opts.Read)
	if err != nil {
		return rsc5.LayoutStats{}, errors.Wrapf(err, "read %s", opts.In)
	}
	res := dict.Resource()

	tex, err := buildTexture(dict, opts)
	if err != nil {
		return rsc5.LayoutStats{}, err
	}
	tex.Next = 0
	tex.Prev = 0
	if err := tex.SetName(res, opts.PathPrefix+opts.Name+".dds"); err != nil {
		return rsc5.LayoutStats{}, errors.Wrap(err, "set name")
	}

	hash := rsc5.HashString(opts.Name)
	log := logrus.WithFields(logrus.Fields{
		"name": opts.Name,
		"hash": hash,
	})
	if opts.Replace {
		replaced, err := dict.Put(hash, tex)
		if err != nil {
			return rsc5.LayoutStats{}, errors.Wrap(err, "put texture")
		}
		log = log.WithField("replaced", replaced)
	} else {
		if _, _, err := dict.Insert(hash, tex); err != nil {
			return rsc5.LayoutStats{}, errors.Wrap(err, "insert texture")
		}
	}

	stats, err := rsc5.WriteWithOptions(opts.Out, dict, &rsc5.WriteOptions{Policy: policy})
	if err != nil {
		return rsc5.LayoutStats{}, errors.Wrapf(err, "write %s", opts.Out)
	}

	log.WithFields(logrus.Fields{
		"out":      opts.Out,
		"textures": dict.Len(),
		"virtual":  humanize.IBytes(uint64(stats.VirtualRounded)),
		"physical": humanize.IBytes(uint64(stats.PhysicalRounded)),
		"policy":   stats.Policy.String(),
	}).Info("texture inserted")

	return stats, nil
}

// buildTexture clones the first entry of dict, re-encoding its pixels from
// opts.Image when one is given.
func buildTexture(dict *rsc5.TextureDictionary, opts insertOptions) (*rsc5.Texture, error) {
	res := dict.Resource()

	var tex *rsc5.Texture
	if dict.Len() > 0 {
		template, err := dict.Entry(0)
		if err != nil {
			return nil, errors.Wrap(err, "read template entry")
		}
		tex = template.Clone()
	}

	if opts.Image == "" {
		if tex == nil {
			return nil, errors.Wrap(rsc5.ErrEmptyDictionary, "no entry to clone, pass --image")
		}
		return tex, nil
	}

	img, err := loadPNG(opts.Image)
	if err != nil {
		return nil, err
	}

	imgOpts := &rsc5.ImageOptions{MaxMipMaps: opts.MaxMipMaps}
	switch {
	case opts.Format != "":
		if imgOpts.Format, err = rsc5.ParsePixelFormat(opts.Format); err != nil {
			return nil, err
		}
	case tex != nil:
		imgOpts.Format = tex.PixelFormat
	}

	if tex == nil {
		tex, err = rsc5.NewTexture(res, "", img, imgOpts)
	} else {
		err = tex.SetImage(res, img, imgOpts)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", opts.Image)
	}

	return tex, nil
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return img, nil
}
