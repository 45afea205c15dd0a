// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import "errors"

var (
	// ErrBadMagic indicates the header magic is not RSC\x05.
	ErrBadMagic = errors.New("bad resource magic")
	// ErrUnsupportedType indicates a resource type other than Texture.
	ErrUnsupportedType = errors.New("unsupported resource type")
	// ErrUnsupportedPixelFormat indicates a texture pixel format without a known layout.
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
	// ErrOutOfBounds indicates a pointer resolves past the end of its segment or table.
	ErrOutOfBounds = errors.New("pointer out of bounds")
	// ErrTypeMismatch indicates a pointer tag differs from the segment its field expects.
	ErrTypeMismatch = errors.New("pointer segment mismatch")
	// ErrTruncatedStream indicates the compressed body ended before the stream end.
	ErrTruncatedStream = errors.New("compressed stream truncated")
	// ErrShortWrite indicates a write accepted fewer bytes than requested.
	ErrShortWrite = errors.New("short write")
	// ErrShortRead indicates a read returned fewer bytes than requested.
	ErrShortRead = errors.New("short read")
	// ErrNotImplemented indicates a layout the packed size-class encoding cannot express.
	ErrNotImplemented = errors.New("not implemented")
	// ErrInvalidPolicy indicates an unknown layout policy.
	ErrInvalidPolicy = errors.New("invalid layout policy")
	// ErrLayoutNotFinalized indicates a layout written before Finalize.
	ErrLayoutNotFinalized = errors.New("layout not finalized")
	// ErrSizeMismatch indicates decoded data does not match the size declared by the header.
	ErrSizeMismatch = errors.New("size mismatch")
	// ErrSizeOverflow indicates a size or count exceeds what the format can store.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrIndexOutOfRange indicates an array index past the element count.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrPixelSizeMismatch indicates pixel data length differs from the texture's pitch.
	ErrPixelSizeMismatch = errors.New("pixel data size mismatch")
	// ErrEmptyDictionary indicates an operation that needs at least one entry.
	ErrEmptyDictionary = errors.New("empty dictionary")
	// ErrCorruptRecord indicates a fixed-size record with the wrong length.
	ErrCorruptRecord = errors.New("corrupt record")
	// ErrInflate indicates the zlib decoder failed for a reason other than truncation.
	ErrInflate = errors.New("inflate failed")
	// ErrDeflate indicates the zlib encoder failed.
	ErrDeflate = errors.New("deflate failed")
	// ErrMarshalBlock indicates a layout block failed to serialize.
	ErrMarshalBlock = errors.New("marshal block failed")
	// ErrOpenFile indicates resource file open failed.
	ErrOpenFile = errors.New("open file failed")
	// ErrCreateFile indicates resource file creation failed.
	ErrCreateFile = errors.New("create file failed")
	// ErrWriteHeader indicates header write failed.
	ErrWriteHeader = errors.New("writing header failed")
	// ErrEncodeImage indicates BCn encoding of a texture image failed.
	ErrEncodeImage = errors.New("encode image failed")
	// ErrDecodeImage indicates BCn decoding of texture pixels failed.
	ErrDecodeImage = errors.New("decode image failed")
	// ErrSnapshotRead indicates reading an LZ4 snapshot failed.
	ErrSnapshotRead = errors.New("reading snapshot failed")
	// ErrSnapshotWrite indicates writing an LZ4 snapshot failed.
	ErrSnapshotWrite = errors.New("writing snapshot failed")
)
