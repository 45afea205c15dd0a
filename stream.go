// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ChunkSize is the file I/O chunk size used on both sides of the zlib stream.
const ChunkSize = 64 * 1024

// chunkReader feeds the inflater from fixed-size chunks.
type chunkReader struct {
	r   io.Reader
	buf []byte
	pos int
	end int
	eof bool
}

func newChunkReader(r io.Reader) *chunkReader {
	return &chunkReader{r: r, buf: make([]byte, ChunkSize)}
}

func (cr *chunkReader) Read(p []byte) (int, error) {
	if cr.pos == cr.end {
		if cr.eof {
			return 0, io.EOF
		}
		n, err := io.ReadFull(cr.r, cr.buf)
		cr.pos, cr.end = 0, n
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			cr.eof = true
		} else if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
	}

	n := copy(p, cr.buf[cr.pos:cr.end])
	cr.pos += n
	return n, nil
}

// ReadByte lets the flate decoder consume exactly the stream bytes.
func (cr *chunkReader) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := cr.Read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// decompressBody inflates the zlib body into dst, which must be filled
// exactly: the stream has to end right after len(dst) bytes.
func decompressBody(r io.Reader, dst []byte) error {
	zr, err := zlib.NewReader(newChunkReader(r))
	if err != nil {
		return inflateError(err)
	}
	defer func() { _ = zr.Close() }()

	n := 0
	for n < len(dst) {
		m, err := zr.Read(dst[n:])
		n += m
		if errors.Is(err, io.EOF) {
			if n < len(dst) {
				return fmt.Errorf("%w: stream ended after %d of %d bytes", ErrSizeMismatch, n, len(dst))
			}
			return nil
		}
		if err != nil {
			return inflateError(err)
		}
	}

	// the stream must end here, checksum included
	var probe [1]byte
	for {
		m, err := zr.Read(probe[:])
		if m > 0 {
			return fmt.Errorf("%w: stream continues past %d bytes", ErrSizeMismatch, len(dst))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return inflateError(err)
		}
	}
}

// inflateError classifies a decoder failure. The decoder reports a source
// that ran dry mid-stream as io.ErrUnexpectedEOF.
func inflateError(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrTruncatedStream, err)
	}
	return fmt.Errorf("%w: %v", ErrInflate, err)
}

// chunkWriter buffers compressed output and hands it to the destination in
// ChunkSize writes, each of which must be accepted in full.
type chunkWriter struct {
	w   io.Writer
	buf []byte
	n   int64
}

func newChunkWriter(w io.Writer) *chunkWriter {
	return &chunkWriter{w: w, buf: make([]byte, 0, ChunkSize)}
}

func (cw *chunkWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		room := ChunkSize - len(cw.buf)
		take := min(room, len(p))
		cw.buf = append(cw.buf, p[:take]...)
		p = p[take:]
		written += take
		if len(cw.buf) == ChunkSize {
			if err := cw.Flush(); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Flush writes out the buffered chunk.
func (cw *chunkWriter) Flush() error {
	if len(cw.buf) == 0 {
		return nil
	}
	n, err := cw.w.Write(cw.buf)
	cw.n += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrShortWrite, err)
	}
	if n != len(cw.buf) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(cw.buf))
	}
	cw.buf = cw.buf[:0]
	return nil
}

// compressBody deflates the finalized layout image into w at the best
// compression level.
func compressBody(w io.Writer, l *Layout) error {
	return compressStream(w, func(zw io.Writer) error {
		_, err := l.WriteTo(zw)
		return err
	})
}

// compressRaw deflates already laid out segments.
func compressRaw(w io.Writer, segments ...[]byte) error {
	return compressStream(w, func(zw io.Writer) error {
		for _, seg := range segments {
			if _, err := zw.Write(seg); err != nil {
				return err
			}
		}
		return nil
	})
}

func compressStream(w io.Writer, fill func(io.Writer) error) error {
	cw := newChunkWriter(w)
	zw, err := zlib.NewWriterLevel(cw, zlib.BestCompression)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeflate, err)
	}

	if err := fill(zw); err != nil {
		_ = zw.Close()
		if errors.Is(err, ErrShortWrite) || errors.Is(err, ErrMarshalBlock) || errors.Is(err, ErrSizeMismatch) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDeflate, err)
	}
	if err := zw.Close(); err != nil {
		if errors.Is(err, ErrShortWrite) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDeflate, err)
	}

	return cw.Flush()
}
