// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"bytes"
	"fmt"
)

// Resource owns the storage of one open resource: the decoded virtual and
// physical segments plus the table of in-process payloads that Memory
// pointers index. A Resource is not safe for concurrent use; separate
// Resources are independent.
type Resource struct {
	Header Header

	virtual  []byte
	physical []byte
	table    [][]byte
}

// NewResource returns an empty texture resource. Objects are created in it
// through attached payloads (see NewTextureDictionary).
func NewResource() *Resource {
	return &Resource{Header: NewHeader()}
}

// newResourceFromImage splits a decoded image into its segments.
func newResourceFromImage(h Header, image []byte) (*Resource, error) {
	vSize := int(h.VirtualSize())
	pSize := int(h.PhysicalSize())
	if len(image) != vSize+pSize {
		return nil, fmt.Errorf("%w: image %d bytes, header declares %d+%d", ErrSizeMismatch, len(image), vSize, pSize)
	}

	return &Resource{
		Header:   h,
		virtual:  image[:vSize:vSize],
		physical: image[vSize:],
	}, nil
}

// Virtual returns the virtual segment.
func (r *Resource) Virtual() []byte { return r.virtual }

// Physical returns the physical segment.
func (r *Resource) Physical() []byte { return r.physical }

// TableLen returns the number of attached in-process payloads.
func (r *Resource) TableLen() int { return len(r.table) }

// Reset drops the segments and the pointer table. Every pointer into the
// resource becomes invalid.
func (r *Resource) Reset() {
	r.virtual = nil
	r.physical = nil
	r.table = nil
}

// Resolve returns size bytes at p. Persisted pointers must carry the
// expected segment tag; Memory pointers resolve through the table.
func (r *Resource) Resolve(p Ptr, expected Segment, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrOutOfBounds, size)
	}

	switch p.Segment {
	case SegmentVirtual, SegmentPhysical:
		if p.Segment != expected {
			return nil, fmt.Errorf("%w: %s, field expects %s", ErrTypeMismatch, p, expected)
		}
		seg := r.virtual
		if p.Segment == SegmentPhysical {
			seg = r.physical
		}
		end := uint64(p.Offset) + uint64(size)
		if end > uint64(len(seg)) {
			return nil, fmt.Errorf("%w: %s size %d, segment %d bytes", ErrOutOfBounds, p, size, len(seg))
		}
		return seg[p.Offset:end:end], nil
	case SegmentMemory:
		if uint64(p.Offset) >= uint64(len(r.table)) {
			return nil, fmt.Errorf("%w: %s, table has %d entries", ErrOutOfBounds, p, len(r.table))
		}
		data := r.table[p.Offset]
		if size > len(data) {
			return nil, fmt.Errorf("%w: %s size %d, payload %d bytes", ErrOutOfBounds, p, size, len(data))
		}
		return data[:size:size], nil
	default:
		return nil, fmt.Errorf("%w: %s, field expects %s", ErrTypeMismatch, p, expected)
	}
}

// ResolveString resolves a null-terminated string at p. The terminator is
// not part of the result.
func (r *Resource) ResolveString(p Ptr, expected Segment) (string, error) {
	if _, err := r.Resolve(p, expected, 1); err != nil {
		return "", err
	}

	var rest []byte
	switch p.Segment {
	case SegmentMemory:
		rest = r.table[p.Offset]
	case SegmentPhysical:
		rest = r.physical[p.Offset:]
	default:
		rest = r.virtual[p.Offset:]
	}

	n := bytes.IndexByte(rest, 0)
	if n < 0 {
		return "", fmt.Errorf("%w: %s string has no terminator", ErrOutOfBounds, p)
	}

	return string(rest[:n]), nil
}

// Attach makes p refer to data held in the pointer table. A pointer that
// is already Memory-tagged keeps its slot.
func (r *Resource) Attach(p *Ptr, data []byte) error {
	if p.Segment == SegmentMemory && uint64(p.Offset) < uint64(len(r.table)) {
		r.table[p.Offset] = data
		return nil
	}

	index := len(r.table)
	if index > maxPtrOffset {
		return fmt.Errorf("%w: pointer table full", ErrSizeOverflow)
	}
	r.table = append(r.table, data)

	// #nosec G115 -- bounds checked above.
	p.Finalize(uint32(index), SegmentMemory)
	return nil
}
