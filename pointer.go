// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"encoding/binary"
	"fmt"
)

// Segment is the 4-bit block type tag of a relocatable pointer.
type Segment uint8

const (
	// SegmentVirtual points into the virtual segment.
	SegmentVirtual Segment = 5
	// SegmentPhysical points into the physical segment.
	SegmentPhysical Segment = 6
	// SegmentMemory indexes the resource pointer table. Never persisted.
	SegmentMemory Segment = 0xF
)

// PtrSize is the on-disk pointer length.
const PtrSize = 4

const maxPtrOffset = 1<<28 - 1

// String returns the segment name.
func (s Segment) String() string {
	switch s {
	case SegmentVirtual:
		return "virtual"
	case SegmentPhysical:
		return "physical"
	case SegmentMemory:
		return "memory"
	default:
		return fmt.Sprintf("segment(%d)", uint8(s))
	}
}

// Ptr is a relocatable pointer: an offset into a segment, or an index into
// the pointer table of the Resource when Segment is SegmentMemory.
type Ptr struct {
	Offset  uint32
	Segment Segment
}

// UnpackPtr decodes the 28-bit offset + 4-bit tag wire form.
func UnpackPtr(v uint32) Ptr {
	return Ptr{Offset: v & maxPtrOffset, Segment: Segment(v >> 28)}
}

// Pack encodes the pointer into its wire form.
func (p Ptr) Pack() uint32 {
	return p.Offset&maxPtrOffset | uint32(p.Segment&0xF)<<28
}

// IsNull reports whether the pointer is all zero.
func (p Ptr) IsNull() bool {
	return p.Offset == 0 && p.Segment == 0
}

// IsMemory reports whether the pointer refers to an in-process payload.
func (p Ptr) IsMemory() bool {
	return p.Segment == SegmentMemory
}

// Finalize points p at its final on-disk location.
func (p *Ptr) Finalize(offset uint32, segment Segment) {
	p.Offset = offset
	p.Segment = segment
}

// String formats the pointer for diagnostics.
func (p Ptr) String() string {
	return fmt.Sprintf("%s+0x%X", p.Segment, p.Offset)
}

func getPtr(b []byte) Ptr {
	return UnpackPtr(binary.LittleEndian.Uint32(b))
}

func putPtr(b []byte, p Ptr) {
	binary.LittleEndian.PutUint32(b, p.Pack())
}
