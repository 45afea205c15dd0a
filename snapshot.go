// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// WriteSnapshot writes the header and the decoded segments of res as one
// LZ4 frame. Snapshots are a working format for inspecting or patching an
// image; EncodeRaw turns one back into a resource file.
func WriteSnapshot(w io.Writer, res *Resource) error {
	zw := lz4.NewWriter(w)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}

	hdr, _ := res.Header.MarshalBinary()
	for _, part := range [][]byte{hdr, res.virtual, res.physical} {
		if _, err := zw.Write(part); err != nil {
			return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotWrite, err)
	}
	return nil
}

// ReadSnapshot reads a snapshot written by WriteSnapshot. The image must
// match the sizes its header declares.
func ReadSnapshot(r io.Reader, opts *ReadOptions) (*Resource, error) {
	zr := lz4.NewReader(r)

	h, err := ReadHeader(zr)
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
	if n, err := io.ReadFull(zr, image); err != nil {
		return nil, fmt.Errorf("%w: image: got %d of %d bytes: %v", ErrSnapshotRead, n, total, err)
	}

	var probe [1]byte
	if n, err := zr.Read(probe[:]); n > 0 {
		return nil, fmt.Errorf("%w: data past the %d-byte image", ErrSizeMismatch, total)
	} else if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotRead, err)
	}

	return newResourceFromImage(h, image)
}
