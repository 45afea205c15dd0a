// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"encoding/binary"
	"fmt"
	"math"
)

// TextureSize is the on-disk length of a texture record.
const TextureSize = 80

// Texture is the PC texture record (grcTexturePC). Name and pixel data
// live out of line: the name in the virtual segment, pixels in the
// physical segment.
type Texture struct {
	VTable       uint32
	BlockMap     Ptr
	ObjectType   uint8
	Depth        uint8
	UsageCount   uint16
	Pad          uint32
	Pad2         uint32
	NamePtr      Ptr
	NativeHandle uint32
	Width        uint16
	Height       uint16
	PixelFormat  PixelFormat
	Stride       uint16
	TextureType  uint8
	Levels       uint8
	Unk28        [3]float32
	Unk34        [3]float32
	Next         uint32
	Prev         uint32
	PixelData    Ptr
	Tail         [4]byte
}

// RecordSize returns TextureSize.
func (t *Texture) RecordSize() int { return TextureSize }

// Clone returns a copy sharing the same name and pixel payloads.
func (t *Texture) Clone() *Texture {
	c := *t
	return &c
}

// MarshalBinary encodes the record at its fixed field offsets.
func (t *Texture) MarshalBinary() ([]byte, error) {
	b := make([]byte, TextureSize)
	le := binary.LittleEndian

	le.PutUint32(b[0:], t.VTable)
	putPtr(b[4:], t.BlockMap)
	b[8] = t.ObjectType
	b[9] = t.Depth
	le.PutUint16(b[10:], t.UsageCount)
	le.PutUint32(b[12:], t.Pad)
	le.PutUint32(b[16:], t.Pad2)
	putPtr(b[20:], t.NamePtr)
	le.PutUint32(b[24:], t.NativeHandle)
	le.PutUint16(b[28:], t.Width)
	le.PutUint16(b[30:], t.Height)
	le.PutUint32(b[32:], uint32(t.PixelFormat))
	le.PutUint16(b[36:], t.Stride)
	b[38] = t.TextureType
	b[39] = t.Levels
	for i := range 3 {
		le.PutUint32(b[40+4*i:], math.Float32bits(t.Unk28[i]))
		le.PutUint32(b[52+4*i:], math.Float32bits(t.Unk34[i]))
	}
	le.PutUint32(b[64:], t.Next)
	le.PutUint32(b[68:], t.Prev)
	putPtr(b[72:], t.PixelData)
	copy(b[76:], t.Tail[:])

	return b, nil
}

// UnmarshalBinary decodes an 80-byte record.
func (t *Texture) UnmarshalBinary(b []byte) error {
	if len(b) != TextureSize {
		return fmt.Errorf("%w: texture is %d bytes, want %d", ErrCorruptRecord, len(b), TextureSize)
	}
	le := binary.LittleEndian

	t.VTable = le.Uint32(b[0:])
	t.BlockMap = getPtr(b[4:])
	t.ObjectType = b[8]
	t.Depth = b[9]
	t.UsageCount = le.Uint16(b[10:])
	t.Pad = le.Uint32(b[12:])
	t.Pad2 = le.Uint32(b[16:])
	t.NamePtr = getPtr(b[20:])
	t.NativeHandle = le.Uint32(b[24:])
	t.Width = le.Uint16(b[28:])
	t.Height = le.Uint16(b[30:])
	t.PixelFormat = PixelFormat(le.Uint32(b[32:]))
	t.Stride = le.Uint16(b[36:])
	t.TextureType = b[38]
	t.Levels = b[39]
	for i := range 3 {
		t.Unk28[i] = math.Float32frombits(le.Uint32(b[40+4*i:]))
		t.Unk34[i] = math.Float32frombits(le.Uint32(b[52+4*i:]))
	}
	t.Next = le.Uint32(b[64:])
	t.Prev = le.Uint32(b[68:])
	t.PixelData = getPtr(b[72:])
	copy(t.Tail[:], b[76:])

	return nil
}

// DataSize returns the pixel payload length implied by format, size and
// level count.
func (t *Texture) DataSize() (int, error) {
	return DataSize(t.PixelFormat, int(t.Width), int(t.Height), int(t.Levels))
}

// Name resolves the texture name.
func (t *Texture) Name(res *Resource) (string, error) {
	if t.NamePtr.IsNull() {
		return "", nil
	}
	name, err := res.ResolveString(t.NamePtr, SegmentVirtual)
	if err != nil {
		return "", fmt.Errorf("texture name: %w", err)
	}
	return name, nil
}

// SetName attaches a new name to the texture.
func (t *Texture) SetName(res *Resource, name string) error {
	data := make([]byte, len(name)+1)
	copy(data, name)

	// the old slot may be shared with the texture this one was cloned from
	t.NamePtr = Ptr{}
	return res.Attach(&t.NamePtr, data)
}

// Pixels resolves the pixel payload, all levels included.
func (t *Texture) Pixels(res *Resource) ([]byte, error) {
	size, err := t.DataSize()
	if err != nil {
		return nil, err
	}
	data, err := res.Resolve(t.PixelData, SegmentPhysical, size)
	if err != nil {
		return nil, fmt.Errorf("texture pixels: %w", err)
	}
	return data, nil
}

// SetPixels attaches a new pixel payload. Its length must match DataSize.
func (t *Texture) SetPixels(res *Resource, data []byte) error {
	size, err := t.DataSize()
	if err != nil {
		return err
	}
	if len(data) != size {
		return fmt.Errorf("%w: %s %dx%d, %d levels: expected %d, got %d",
			ErrPixelSizeMismatch, t.PixelFormat, t.Width, t.Height, t.Levels, size, len(data))
	}

	t.PixelData = Ptr{}
	return res.Attach(&t.PixelData, data)
}

// DumpToMemory appends the block map (if any) and the name to the virtual
// segment and the pixels to the physical segment. The record itself is
// appended by its container.
func (t *Texture) DumpToMemory(res *Resource, l *Layout) error {
	if !t.BlockMap.IsNull() {
		bm, err := readBlockMap(res, t.BlockMap)
		if err != nil {
			return fmt.Errorf("texture: %w", err)
		}
		l.Append(SegmentVirtual, bm, BlockMapSize, &t.BlockMap)
	}

	if !t.NamePtr.IsNull() {
		name, err := t.Name(res)
		if err != nil {
			return err
		}
		data := make([]byte, len(name)+1)
		copy(data, name)
		if err := l.AppendBytes(SegmentVirtual, data, &t.NamePtr); err != nil {
			return fmt.Errorf("texture %q name: %w", name, err)
		}
	}

	pixels, err := t.Pixels(res)
	if err != nil {
		return err
	}
	if err := l.AppendBytes(SegmentPhysical, pixels, &t.PixelData); err != nil {
		return fmt.Errorf("texture pixels: %w", err)
	}

	return nil
}

// setShape sets size, format, level count and the matching stride.
func (t *Texture) setShape(format PixelFormat, width, height, levels int) error {
	bf, err := bcnFormat(format)
	if err != nil {
		return err
	}

	w, err := u16FromInt(width)
	if err != nil {
		return fmt.Errorf("%w: width %d", err, width)
	}
	h, err := u16FromInt(height)
	if err != nil {
		return fmt.Errorf("%w: height %d", err, height)
	}
	if levels < 1 || levels > maxMipLevels {
		return fmt.Errorf("%w: %d levels", ErrSizeOverflow, levels)
	}
	stride, err := u16FromInt(rowPitch(bf, width))
	if err != nil {
		return fmt.Errorf("%w: stride of %d pixels", err, width)
	}

	t.Width = w
	t.Height = h
	t.PixelFormat = format
	t.Stride = stride
	t.Levels = uint8(levels)
	return nil
}
