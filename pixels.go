// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"fmt"
	"image"

	"github.com/woozymasta/bcn"
)

// ImageOptions configures pixel encoding for texture entries.
type ImageOptions struct {
	// Format is the D3D format written. Zero means DXT5.
	Format PixelFormat
	// MaxMipMaps limits the mip chain. Zero means the full chain.
	MaxMipMaps int
	// EncodeOptions are passed to the BCn encoder (e.g. QualityLevel, Workers).
	EncodeOptions *bcn.EncodeOptions
}

// DecodeOptions configures pixel decoding of texture entries.
type DecodeOptions struct {
	// DecodeOptions are passed to the BCn decoder (e.g. Workers).
	DecodeOptions *bcn.DecodeOptions
}

// CompressImage encodes img into the pixel payload of a texture: every
// mip level from largest to smallest, concatenated. It returns the
// payload and the level count.
func CompressImage(img image.Image, format PixelFormat, maxMipMaps int, encOpts *bcn.EncodeOptions) ([]byte, int, error) {
	bf, err := bcnFormat(format)
	if err != nil {
		return nil, 0, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	mipMapCount, err := calculateMipMapCount(width, height)
	if err != nil {
		return nil, 0, err
	}
	if maxMipMaps > 0 && maxMipMaps < mipMapCount {
		mipMapCount = maxMipMaps
	}

	mips := bcn.GenerateMipmaps(img, false)
	if len(mips) > mipMapCount {
		mips = mips[:mipMapCount]
	}

	var payload []byte
	for i, mip := range mips {
		data, _, _, err := bcn.EncodeImageWithOptions(mip, bf, encOpts)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: mipmap %d: %v", ErrEncodeImage, i, err)
		}

		expected := expectedDataLength(bf, mipDimension(width, i), mipDimension(height, i))
		if len(data) != expected {
			return nil, 0, fmt.Errorf("%w: mipmap %d: expected %d, got %d", ErrPixelSizeMismatch, i, expected, len(data))
		}
		payload = append(payload, data...)
	}

	return payload, len(mips), nil
}

// DecompressImage decodes one mip level of a texture payload.
func DecompressImage(pixels []byte, format PixelFormat, width, height, levels, level int, opts *DecodeOptions) (image.Image, error) {
	bf, err := bcnFormat(format)
	if err != nil {
		return nil, err
	}
	if level < 0 || level >= max(levels, 1) {
		return nil, fmt.Errorf("%w: level %d of %d", ErrIndexOutOfRange, level, max(levels, 1))
	}

	offsets, err := mipOffsets(format, width, height, levels)
	if err != nil {
		return nil, err
	}

	mipW := mipDimension(width, level)
	mipH := mipDimension(height, level)
	start := offsets[level]
	end := start + expectedDataLength(bf, mipW, mipH)
	if end > len(pixels) {
		return nil, fmt.Errorf("%w: level %d needs %d bytes, have %d", ErrPixelSizeMismatch, level, end, len(pixels))
	}

	decOpts := (*bcn.DecodeOptions)(nil)
	if opts != nil {
		decOpts = opts.DecodeOptions
	}
	img, err := bcn.DecodeImageWithOptions(pixels[start:end], mipW, mipH, bf, decOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}

	return img, nil
}

// NewTexture builds a texture entry from img in res: the name and encoded
// pixels are attached to res.
func NewTexture(res *Resource, name string, img image.Image, opts *ImageOptions) (*Texture, error) {
	t := &Texture{
		Depth:      1,
		UsageCount: 1,
		Unk28:      [3]float32{1, 1, 1},
	}
	if err := t.SetImage(res, img, opts); err != nil {
		return nil, err
	}
	if err := t.SetName(res, name); err != nil {
		return nil, err
	}

	return t, nil
}

// SetImage encodes img and replaces the size, format, level count and
// pixels of the texture. Other fields are kept, so a texture cloned from
// an existing entry stays compatible with it.
func (t *Texture) SetImage(res *Resource, img image.Image, opts *ImageOptions) error {
	if opts == nil {
		opts = &ImageOptions{}
	}
	format := opts.Format
	if format == 0 {
		format = PixelFormatDXT5
	}

	payload, levels, err := CompressImage(img, format, opts.MaxMipMaps, opts.EncodeOptions)
	if err != nil {
		return err
	}

	bounds := img.Bounds()
	if err := t.setShape(format, bounds.Dx(), bounds.Dy(), levels); err != nil {
		return err
	}

	return t.SetPixels(res, payload)
}

// Image decodes mip level 0 of the texture.
func (t *Texture) Image(res *Resource, opts *DecodeOptions) (image.Image, error) {
	return t.Level(res, 0, opts)
}

// Level decodes one mip level of the texture.
func (t *Texture) Level(res *Resource, level int, opts *DecodeOptions) (image.Image, error) {
	pixels, err := t.Pixels(res)
	if err != nil {
		return nil, err
	}
	return DecompressImage(pixels, t.PixelFormat, int(t.Width), int(t.Height), int(t.Levels), level, opts)
}
