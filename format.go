// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"fmt"

	"github.com/woozymasta/bcn"
)

// PixelFormat is the D3DFORMAT value stored in a texture record.
type PixelFormat uint32

// Pixel formats the texture codec knows a layout for. DXTn values are
// the little-endian FourCC codes.
const (
	PixelFormatA8R8G8B8 PixelFormat = 21
	PixelFormatDXT1     PixelFormat = 0x31545844 // "DXT1"
	PixelFormatDXT2     PixelFormat = 0x32545844 // "DXT2"
	PixelFormatDXT3     PixelFormat = 0x33545844 // "DXT3"
	PixelFormatDXT4     PixelFormat = 0x34545844 // "DXT4"
	PixelFormatDXT5     PixelFormat = 0x35545844 // "DXT5"
)

// String returns the FourCC for DXTn formats and the D3D name otherwise.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatA8R8G8B8:
		return "A8R8G8B8"
	case PixelFormatDXT1, PixelFormatDXT2, PixelFormatDXT3, PixelFormatDXT4, PixelFormatDXT5:
		return intToFourCC(uint32(f))
	default:
		return fmt.Sprintf("D3DFMT(%d)", uint32(f))
	}
}

// ParsePixelFormat parses a format name as printed by String, plus the
// bcn-style aliases bc1..bc3 and bgra8.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch s {
	case "DXT1", "dxt1", "bc1", "BC1":
		return PixelFormatDXT1, nil
	case "DXT2", "dxt2":
		return PixelFormatDXT2, nil
	case "DXT3", "dxt3", "bc2", "BC2":
		return PixelFormatDXT3, nil
	case "DXT4", "dxt4":
		return PixelFormatDXT4, nil
	case "DXT5", "dxt5", "bc3", "BC3":
		return PixelFormatDXT5, nil
	case "A8R8G8B8", "a8r8g8b8", "bgra8", "BGRA8":
		return PixelFormatA8R8G8B8, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedPixelFormat, s)
	}
}

// bcnFormat maps a D3D format to the BCn layout of its pixel payload.
func bcnFormat(f PixelFormat) (bcn.Format, error) {
	switch f {
	case PixelFormatDXT1:
		return bcn.FormatDXT1, nil
	case PixelFormatDXT2, PixelFormatDXT3:
		return bcn.FormatDXT3, nil
	case PixelFormatDXT4, PixelFormatDXT5:
		return bcn.FormatDXT5, nil
	case PixelFormatA8R8G8B8:
		return bcn.FormatBGRA8, nil
	default:
		return bcn.FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedPixelFormat, f)
	}
}

func intToFourCC(value uint32) string {
	return string([]byte{
		byte(value & 0xff),
		byte((value >> 8) & 0xff),
		byte((value >> 16) & 0xff),
		byte((value >> 24) & 0xff),
	})
}

// expectedDataLength returns the byte length of one width x height level.
func expectedDataLength(format bcn.Format, width, height int) int {
	blocksW := (width + 3) / 4
	blocksH := (height + 3) / 4
	switch format {
	case bcn.FormatDXT1:
		return blocksW * blocksH * 8
	case bcn.FormatDXT3, bcn.FormatDXT5:
		return blocksW * blocksH * 16
	case bcn.FormatBGRA8:
		return width * height * 4
	default:
		return -1
	}
}

// rowPitch returns the byte length of one row of blocks (or pixels).
func rowPitch(format bcn.Format, width int) int {
	switch format {
	case bcn.FormatDXT1:
		return (width + 3) / 4 * 8
	case bcn.FormatDXT3, bcn.FormatDXT5:
		return (width + 3) / 4 * 16
	case bcn.FormatBGRA8:
		return width * 4
	default:
		return -1
	}
}

// DataSize returns the pixel payload length of a texture: the sum of the
// level sizes over max(levels, 1) mips.
func DataSize(format PixelFormat, width, height, levels int) (int, error) {
	bf, err := bcnFormat(format)
	if err != nil {
		return 0, err
	}

	total := 0
	for level := range max(levels, 1) {
		total += expectedDataLength(bf, mipDimension(width, level), mipDimension(height, level))
	}

	return total, nil
}
