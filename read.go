// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"fmt"
	"io"
	"os"
)

// DefaultMaxImageSize bounds the decoded image a header may declare.
const DefaultMaxImageSize = 256 << 20

// ReadOptions configures resource reading.
type ReadOptions struct {
	// MaxImageSize bounds virtual+physical size. Zero uses DefaultMaxImageSize.
	MaxImageSize uint64
}

// ReadHeaderFile reads only the header of a resource file.
func ReadHeaderFile(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadHeader(f)
}

// Read reads a texture resource file and opens its dictionary.
func Read(path string) (*TextureDictionary, error) {
	return ReadWithOptions(path, nil)
}

// ReadWithOptions reads a texture resource file with the given options.
// Nil opts uses defaults.
func ReadWithOptions(path string, opts *ReadOptions) (*TextureDictionary, error) {
	res, err := ReadResource(path, opts)
	if err != nil {
		return nil, err
	}

	return OpenTextureDictionary(res)
}

// ReadResource reads and inflates a resource file without interpreting
// its content.
func ReadResource(path string, opts *ReadOptions) (*Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrOpenFile, path, err)
	}
	defer func() { _ = f.Close() }()

	return DecodeResource(f, opts)
}

// Decode reads a texture resource from r and opens its dictionary.
func Decode(r io.Reader) (*TextureDictionary, error) {
	res, err := DecodeResource(r, nil)
	if err != nil {
		return nil, err
	}

	return OpenTextureDictionary(res)
}

// DecodeResource reads the header and inflates the body of a resource.
// The header is validated before any decompression.
func DecodeResource(r io.Reader, opts *ReadOptions) (*Resource, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	limit := uint64(DefaultMaxImageSize)
	if opts != nil && opts.MaxImageSize > 0 {
		limit = opts.MaxImageSize
	}
	total := uint64(h.VirtualSize()) + uint64(h.PhysicalSize())
	if total > limit {
		return nil, fmt.Errorf("%w: header declares %d bytes, limit %d", ErrSizeOverflow, total, limit)
	}

	image := make([]byte, total)
	if err := decompressBody(r, image); err != nil {
		return nil, err
	}

	return newResourceFromImage(h, image)
}
