// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"fmt"
	"io"
	"os"
)

// Graph is an object graph that can lay itself out into a resource image.
type Graph interface {
	// Resource returns the resource the graph reads its data from.
	Resource() *Resource
	// DumpToMemory appends every block of the graph to l.
	DumpToMemory(l *Layout) error
}

// WriteOptions configures resource writing.
type WriteOptions struct {
	// Policy selects the block layout. The zero value is PolicyPacked.
	Policy Policy
}

// Write lays g out and writes it as a resource file.
func Write(path string, g Graph) error {
	_, err := WriteWithOptions(path, g, nil)
	return err
}

// WriteWithOptions writes g with the given options and returns the layout
// statistics. Nil opts uses defaults. A failed write leaves an incomplete
// file behind.
func WriteWithOptions(path string, g Graph, opts *WriteOptions) (LayoutStats, error) {
	f, err := os.Create(path)
	if err != nil {
		return LayoutStats{}, fmt.Errorf("%w: %q: %v", ErrCreateFile, path, err)
	}
	defer func() { _ = f.Close() }()

	stats, err := Encode(f, g, opts)
	if err != nil {
		return LayoutStats{}, err
	}

	if err := f.Close(); err != nil {
		return LayoutStats{}, fmt.Errorf("close %q: %w", path, err)
	}
	return stats, nil
}

// Encode lays g out into fresh segments and writes header and compressed
// body to w. The header keeps the type and high flag bits of the graph's
// resource.
func Encode(w io.Writer, g Graph, opts *WriteOptions) (LayoutStats, error) {
	policy := PolicyPacked
	if opts != nil {
		policy = opts.Policy
	}

	l := NewLayout(policy)
	if err := g.DumpToMemory(l); err != nil {
		return LayoutStats{}, err
	}

	h := g.Resource().Header
	h.Magic = Magic
	stats, err := l.Finalize(&h)
	if err != nil {
		return LayoutStats{}, err
	}

	if err := writeHeader(w, h); err != nil {
		return LayoutStats{}, err
	}
	if err := compressBody(w, l); err != nil {
		return LayoutStats{}, err
	}

	return stats, nil
}

// EncodeRaw writes res as it is: its header unchanged and its segments
// compressed without a new layout.
func EncodeRaw(w io.Writer, res *Resource) error {
	if err := res.Header.Validate(); err != nil {
		return err
	}
	if uint32(len(res.virtual)) != res.Header.VirtualSize() || uint32(len(res.physical)) != res.Header.PhysicalSize() {
		return fmt.Errorf("%w: segments %d+%d, header declares %d+%d", ErrSizeMismatch,
			len(res.virtual), len(res.physical), res.Header.VirtualSize(), res.Header.PhysicalSize())
	}

	if err := writeHeader(w, res.Header); err != nil {
		return err
	}
	return compressRaw(w, res.virtual, res.physical)
}
