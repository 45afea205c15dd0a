// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

// maxMipLevels is the longest mip chain a texture record is written with.
const maxMipLevels = 13

// calculateMipMapCount calculates the number of mipmap levels for a given width and height.
func calculateMipMapCount(width, height int) (int, error) {
	count := 1
	w, err := u32FromInt(width)
	if err != nil {
		return 0, err
	}

	h, err := u32FromInt(height)
	if err != nil {
		return 0, err
	}

	for w > 1 || h > 1 {
		count++
		if w > 1 {
			w /= 2
		}
		if h > 1 {
			h /= 2
		}
	}

	if count > maxMipLevels {
		count = maxMipLevels
	}

	return count, nil
}

// mipDimension calculates the dimension of a mipmap level.
func mipDimension(base, level int) int {
	result := base >> level
	if result < 1 {
		return 1
	}

	return result
}

// mipOffsets returns the start of every level inside a pixel payload.
func mipOffsets(format PixelFormat, width, height, levels int) ([]int, error) {
	offsets := make([]int, 0, max(levels, 1))
	for level := range max(levels, 1) {
		start, err := DataSize(format, width, height, level)
		if err != nil {
			return nil, err
		}
		if level == 0 {
			start = 0
		}
		offsets = append(offsets, start)
	}

	return offsets, nil
}
