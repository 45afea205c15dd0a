// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// Magic is the RSC5 header magic ("RSC\x05").
	Magic uint32 = 0x05435352

	// HeaderSize is the on-disk header length.
	HeaderSize = 12

	// MinVirtualSize is the smallest virtual segment the engine accepts.
	MinVirtualSize = 4096

	// sizeClassMaxBase is the largest base kept before another shift is taken.
	sizeClassMaxBase = 0x3F
	// sizeClassMaxShift is the largest shift the 4-bit field can hold.
	sizeClassMaxShift = 0xF

	flagsPreserveMask = 0xC0000000
)

// ResourceType is the resource type tag stored in the header.
type ResourceType uint32

const (
	ResourceTextureXBOX ResourceType = 0x07 // xtd
	ResourceModelXBOX   ResourceType = 0x6D // xdr
	ResourceGeneric     ResourceType = 0x01 // xhm / xad
	ResourceBounds      ResourceType = 0x20 // xbd, wbd
	ResourceParticles   ResourceType = 0x24 // xpfl
	ResourceParticles2  ResourceType = 0x1B // xpfl
	ResourceTexture     ResourceType = 0x08 // wtd
	ResourceModel       ResourceType = 0x6E // wdr
	ResourceModelFrag   ResourceType = 0x70 // wft
)

// String returns the resource type name.
func (t ResourceType) String() string {
	switch t {
	case ResourceTextureXBOX:
		return "TextureXBOX"
	case ResourceModelXBOX:
		return "ModelXBOX"
	case ResourceGeneric:
		return "Generic"
	case ResourceBounds:
		return "Bounds"
	case ResourceParticles:
		return "Particles"
	case ResourceParticles2:
		return "Particles2"
	case ResourceTexture:
		return "Texture"
	case ResourceModel:
		return "Model"
	case ResourceModelFrag:
		return "ModelFrag"
	default:
		return fmt.Sprintf("ResourceType(0x%X)", uint32(t))
	}
}

// Header is the 12-byte RSC5 file header.
type Header struct {
	Magic uint32
	Type  ResourceType
	Flags uint32
}

// NewHeader returns a texture header with empty size flags.
func NewHeader() Header {
	return Header{Magic: Magic, Type: ResourceTexture}
}

// VirtualSize decodes the virtual segment size from the flags.
func (h Header) VirtualSize() uint32 {
	return (h.Flags & 0x7FF) << (((h.Flags >> 11) & 0xF) + 8)
}

// PhysicalSize decodes the physical segment size from the flags.
func (h Header) PhysicalSize() uint32 {
	return ((h.Flags >> 15) & 0x7FF) << (((h.Flags >> 26) & 0xF) + 8)
}

// SizeClass rounds size up to the nearest representable base<<(shift+8)
// and returns the packed base|shift<<11 field with the rounded byte count.
//
// The base is halved until it is at most 0x3F and only then padded to even,
// so the largest accepted size is 63<<23 bytes (rounded to 64<<23). Exactly
// 512 MiB is rejected although 64<<23 is encodable; DefaultMaxImageSize
// keeps decoded images well below either bound.
func SizeClass(size uint32) (field uint32, rounded uint32, err error) {
	base := (uint64(size) + 0xFF) >> 8
	shift := uint32(0)

	for base > sizeClassMaxBase {
		if base&1 != 0 {
			base++
		}
		base >>= 1
		shift++
	}

	// odd bases are padded to even
	if base&1 != 0 {
		base++
	}

	if shift > sizeClassMaxShift {
		return 0, 0, fmt.Errorf("%w: %d bytes needs shift %d", ErrSizeOverflow, size, shift)
	}

	total := base << (shift + 8)
	if total > maxUint32 {
		return 0, 0, fmt.Errorf("%w: %d bytes", ErrSizeOverflow, size)
	}

	return uint32(base) | shift<<11, uint32(total), nil
}

// SetFlagSizes encodes both segment sizes with independent rounding. The
// virtual size is raised to MinVirtualSize first. It returns the rounded
// sizes the writer must pad the segments to.
func (h *Header) SetFlagSizes(virtualSize, physicalSize uint32) (uint32, uint32, error) {
	vField, vRounded, err := SizeClass(max(virtualSize, MinVirtualSize))
	if err != nil {
		return 0, 0, fmt.Errorf("virtual: %w", err)
	}
	pField, pRounded, err := SizeClass(physicalSize)
	if err != nil {
		return 0, 0, fmt.Errorf("physical: %w", err)
	}

	h.Flags = (h.Flags & flagsPreserveMask) | vField | pField<<15
	return vRounded, pRounded, nil
}

// SetPackedSizes encodes sizes computed by a packed layout: a single
// top-level virtual block and pageCount physical pages of 256<<pageShift.
func (h *Header) SetPackedSizes(stats LayoutStats) (uint32, uint32, error) {
	vField, vRounded, err := SizeClass(stats.VirtualRounded)
	if err != nil {
		return 0, 0, fmt.Errorf("virtual: %w", err)
	}
	if stats.PageCount > 0x7FF || stats.PageShift > sizeClassMaxShift {
		return 0, 0, fmt.Errorf("%w: %d pages, shift %d", ErrSizeOverflow, stats.PageCount, stats.PageShift)
	}

	pField := stats.PageCount | stats.PageShift<<11
	h.Flags = (h.Flags & flagsPreserveMask) | vField | pField<<15
	return vRounded, h.PhysicalSize(), nil
}

// Validate checks magic and resource type.
func (h Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: 0x%08X", ErrBadMagic, h.Magic)
	}
	if h.Type != ResourceTexture {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, h.Type)
	}

	return nil
}

// MarshalBinary encodes the header in file order.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(h.Type))
	binary.LittleEndian.PutUint32(buf[8:], h.Flags)
	return buf, nil
}

// UnmarshalBinary decodes the header without validating it.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, have %d", ErrShortRead, HeaderSize, len(data))
	}

	h.Magic = binary.LittleEndian.Uint32(data[0:])
	h.Type = ResourceType(binary.LittleEndian.Uint32(data[4:]))
	h.Flags = binary.LittleEndian.Uint32(data[8:])
	return nil
}

// ReadHeader reads and validates the 12-byte header.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if n, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("%w: header: got %d of %d bytes: %v", ErrShortRead, n, HeaderSize, err)
	}

	var h Header
	if err := h.UnmarshalBinary(buf[:]); err != nil {
		return Header{}, err
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}

	return h, nil
}

// writeHeader writes the header, failing on a short write.
func writeHeader(w io.Writer, h Header) error {
	buf, _ := h.MarshalBinary()
	n, err := w.Write(buf)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteHeader, err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: header: wrote %d of %d bytes", ErrShortWrite, n, len(buf))
	}

	return nil
}
