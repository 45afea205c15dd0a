// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"encoding/binary"
	"fmt"
)

const (
	// BlockMapSize is the on-disk length of a block map record.
	BlockMapSize = 528

	blockMapEntries = 43
)

// BlockMap is the allocator block map every paged object carries. Its
// content is not interpreted by the codec and is written back as read.
type BlockMap [BlockMapSize]byte

// NewBlockMap returns an empty block map: zero counts, PadByte elsewhere.
func NewBlockMap() *BlockMap {
	var m BlockMap
	for i := 4; i < BlockMapSize; i++ {
		m[i] = PadByte
	}
	return &m
}

// VirtualCount returns the number of virtual blocks recorded.
func (m *BlockMap) VirtualCount() uint16 { return binary.LittleEndian.Uint16(m[0:]) }

// PhysicalCount returns the number of physical blocks recorded.
func (m *BlockMap) PhysicalCount() uint16 { return binary.LittleEndian.Uint16(m[2:]) }

// MarshalBinary returns a copy of the record.
func (m *BlockMap) MarshalBinary() ([]byte, error) {
	out := make([]byte, BlockMapSize)
	copy(out, m[:])
	return out, nil
}

// UnmarshalBinary copies a 528-byte record.
func (m *BlockMap) UnmarshalBinary(data []byte) error {
	if len(data) != BlockMapSize {
		return fmt.Errorf("%w: block map is %d bytes, want %d", ErrCorruptRecord, len(data), BlockMapSize)
	}
	copy(m[:], data)
	return nil
}

// readBlockMap resolves the block map at p, or a fresh one when p is null.
func readBlockMap(res *Resource, p Ptr) (*BlockMap, error) {
	if p.IsNull() {
		return NewBlockMap(), nil
	}

	raw, err := res.Resolve(p, SegmentVirtual, BlockMapSize)
	if err != nil {
		return nil, fmt.Errorf("block map: %w", err)
	}

	var m BlockMap
	if err := m.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return &m, nil
}
