// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"cmp"
	"encoding"
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"
)

const (
	// BlockAlign is the alignment of every block inside a segment.
	BlockAlign = 16
	// PadByte fills alignment gaps and the tail of each segment.
	PadByte = 0xCD

	// minPageSize is the smallest physical page of a packed layout.
	minPageSize = 256
	// maxPageCount is the largest page count kept before the page doubles.
	maxPageCount = sizeClassMaxBase
)

// Policy selects how blocks are placed and how segment sizes are encoded.
type Policy int

const (
	// PolicyPacked sorts blocks largest-first, keeps the virtual segment
	// as one 4096-byte block and packs physical blocks into pages.
	PolicyPacked Policy = iota
	// PolicySimple places blocks in append order and rounds each segment
	// size independently.
	PolicySimple
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyPacked:
		return "packed"
	case PolicySimple:
		return "simple"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses a policy name as printed by String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "packed", "":
		return PolicyPacked, nil
	case "simple":
		return PolicySimple, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
	}
}

// LayoutStats describes a finalized layout.
type LayoutStats struct {
	Policy Policy

	VirtualBlocks  int
	PhysicalBlocks int

	// Payload sizes are the real bytes, without alignment padding.
	VirtualPayload  uint32
	PhysicalPayload uint32

	// End offsets of the last block in each segment.
	VirtualSize  uint32
	PhysicalSize uint32

	// Rounded sizes encoded in the header; segments are padded to these.
	VirtualRounded  uint32
	PhysicalRounded uint32

	// Packed layouts only.
	PageSize  uint32
	PageShift uint32
	PageCount uint32
	// Levels[k] counts physical blocks larger than PageSize>>(k+1) and at
	// most PageSize>>k.
	Levels [16]uint32
	// Spanning counts physical blocks larger than PageSize. Each starts on
	// a page boundary and covers ceil(size/PageSize) consecutive pages.
	Spanning uint32
}

type block struct {
	payload encoding.BinaryMarshaler
	size    uint32
	offset  uint32
	ref     *Ptr
}

// rawPayload is a block whose bytes are already final.
type rawPayload []byte

func (p rawPayload) MarshalBinary() ([]byte, error) { return p, nil }

// Layout collects the blocks of one serialization pass, assigns their
// offsets and writes the resulting segment image.
type Layout struct {
	policy   Policy
	virtual  []*block
	physical []*block
	stats    LayoutStats
	final    bool
}

// NewLayout returns an empty layout using policy.
func NewLayout(policy Policy) *Layout {
	return &Layout{policy: policy}
}

// Append records a block of size bytes in segment. The payload is
// marshalled only when the image is written. ref, if not nil, is
// finalized to the block's offset.
func (l *Layout) Append(segment Segment, payload encoding.BinaryMarshaler, size uint32, ref *Ptr) {
	b := &block{payload: payload, size: size, ref: ref}
	if segment == SegmentPhysical {
		l.physical = append(l.physical, b)
		return
	}
	l.virtual = append(l.virtual, b)
}

// AppendBytes records raw bytes.
func (l *Layout) AppendBytes(segment Segment, data []byte, ref *Ptr) error {
	size, err := u32FromInt(len(data))
	if err != nil {
		return err
	}
	l.Append(segment, rawPayload(data), size, ref)
	return nil
}

// Stats returns the statistics of a finalized layout.
func (l *Layout) Stats() LayoutStats { return l.stats }

// Finalize assigns every block its offset, finalizes the block pointers
// and encodes the segment sizes into h.
func (l *Layout) Finalize(h *Header) (LayoutStats, error) {
	if l.final {
		return l.stats, nil
	}

	l.stats = LayoutStats{
		Policy:          l.policy,
		VirtualBlocks:   len(l.virtual),
		PhysicalBlocks:  len(l.physical),
		VirtualPayload:  lo.SumBy(l.virtual, func(b *block) uint32 { return b.size }),
		PhysicalPayload: lo.SumBy(l.physical, func(b *block) uint32 { return b.size }),
	}

	var err error
	switch l.policy {
	case PolicySimple:
		err = l.finalizeSimple(h)
	case PolicyPacked:
		err = l.finalizePacked(h)
	default:
		err = fmt.Errorf("%w: %s", ErrInvalidPolicy, l.policy)
	}
	if err != nil {
		return LayoutStats{}, err
	}

	for _, b := range l.virtual {
		if b.ref != nil {
			b.ref.Finalize(b.offset, SegmentVirtual)
		}
	}
	for _, b := range l.physical {
		if b.ref != nil {
			b.ref.Finalize(b.offset, SegmentPhysical)
		}
	}

	l.final = true
	return l.stats, nil
}

func (l *Layout) finalizeSimple(h *Header) error {
	vEnd, err := placeSequential(l.virtual, 0)
	if err != nil {
		return fmt.Errorf("virtual: %w", err)
	}
	pEnd, err := placeSequential(l.physical, 0)
	if err != nil {
		return fmt.Errorf("physical: %w", err)
	}

	vRounded, pRounded, err := h.SetFlagSizes(vEnd, pEnd)
	if err != nil {
		return err
	}

	l.stats.VirtualSize = vEnd
	l.stats.PhysicalSize = pEnd
	l.stats.VirtualRounded = vRounded
	l.stats.PhysicalRounded = pRounded
	return nil
}

func (l *Layout) finalizePacked(h *Header) error {
	if len(l.virtual) > 1 {
		rest := l.virtual[1:]
		slices.SortStableFunc(rest, largestFirst)
	}
	vEnd, err := placeSequential(l.virtual, 0)
	if err != nil {
		return fmt.Errorf("virtual: %w", err)
	}
	if vEnd > MinVirtualSize {
		return fmt.Errorf("%w: virtual segment of %d bytes exceeds one %d-byte block", ErrNotImplemented, vEnd, MinVirtualSize)
	}

	slices.SortStableFunc(l.physical, largestFirst)
	if err := l.packPhysical(); err != nil {
		return fmt.Errorf("physical: %w", err)
	}

	l.stats.VirtualSize = vEnd
	l.stats.VirtualRounded = MinVirtualSize

	vRounded, pRounded, err := h.SetPackedSizes(l.stats)
	if err != nil {
		return err
	}
	if vRounded != l.stats.VirtualRounded || pRounded != l.stats.PhysicalRounded {
		return fmt.Errorf("%w: packed sizes %d/%d encode as %d/%d", ErrSizeMismatch,
			l.stats.VirtualRounded, l.stats.PhysicalRounded, vRounded, pRounded)
	}

	return nil
}

// packPhysical places the (sorted) physical blocks first-fit into pages.
// A block larger than the largest page takes consecutive pages of its own.
func (l *Layout) packPhysical() error {
	if len(l.physical) == 0 {
		return nil
	}

	largest := alignUp(l.physical[0].size, BlockAlign)
	shift := uint32(0)
	for shift < sizeClassMaxShift && minPageSize<<shift < largest {
		shift++
	}

	for ; shift <= sizeClassMaxShift; shift++ {
		pageSize := uint32(minPageSize) << shift
		used := make([]uint32, 0, maxPageCount)
		spanning := uint32(0)
		for _, b := range l.physical {
			size := alignUp(b.size, BlockAlign)
			if size > pageSize {
				b.offset = uint32(len(used)) * pageSize
				span := (size + pageSize - 1) / pageSize
				for range span - 1 {
					used = append(used, pageSize)
				}
				used = append(used, size-(span-1)*pageSize)
				spanning++
			} else {
				page := slices.IndexFunc(used, func(u uint32) bool { return u+size <= pageSize })
				if page < 0 {
					page = len(used)
					used = append(used, 0)
				}
				b.offset = uint32(page)*pageSize + used[page]
				used[page] += size
			}
			if len(used) > maxPageCount {
				break
			}
		}

		count := uint32(len(used))
		if count > maxPageCount {
			continue
		}
		// page counts are padded to even, like size-class bases
		if count&1 != 0 {
			count++
		}

		if end := uint64(count) * uint64(pageSize); end > maxPtrOffset {
			return fmt.Errorf("%w: %d pages of %d bytes", ErrSizeOverflow, count, pageSize)
		}

		l.stats.PageSize = pageSize
		l.stats.PageShift = shift
		l.stats.PageCount = count
		l.stats.Spanning = spanning
		l.stats.PhysicalRounded = count * pageSize
		l.stats.PhysicalSize = lo.Max(lo.Map(l.physical, func(b *block, _ int) uint32 {
			return b.offset + alignUp(b.size, BlockAlign)
		}))
		for _, b := range l.physical {
			if size := alignUp(b.size, BlockAlign); size <= pageSize {
				l.stats.Levels[pageLevel(size, pageSize)]++
			}
		}

		// emission walks blocks in offset order
		slices.SortStableFunc(l.physical, func(a, b *block) int { return cmp.Compare(a.offset, b.offset) })
		return nil
	}

	total := lo.SumBy(l.physical, func(b *block) uint64 { return uint64(alignUp(b.size, BlockAlign)) })
	return fmt.Errorf("%w: %d bytes of physical blocks exceed %d pages of %d bytes",
		ErrSizeOverflow, total, maxPageCount, uint32(minPageSize)<<sizeClassMaxShift)
}

func pageLevel(size, pageSize uint32) int {
	level := 0
	for level < 15 && size <= pageSize>>(level+1) {
		level++
	}
	return level
}

func largestFirst(a, b *block) int {
	return cmp.Compare(b.size, a.size)
}

// placeSequential assigns aligned offsets in slice order and returns the
// end of the last block.
func placeSequential(blocks []*block, start uint32) (uint32, error) {
	offset := start
	for _, b := range blocks {
		if uint64(offset)+uint64(b.size) > maxPtrOffset {
			return 0, fmt.Errorf("%w: block at 0x%X of %d bytes", ErrSizeOverflow, offset, b.size)
		}
		b.offset = offset
		offset += alignUp(b.size, BlockAlign)
	}
	return offset, nil
}

// WriteTo writes the virtual then physical segment image, each block at its
// offset and every gap filled with PadByte. Finalize must be called first.
func (l *Layout) WriteTo(w io.Writer) (int64, error) {
	if !l.final {
		return 0, ErrLayoutNotFinalized
	}

	pw := &padWriter{w: w}
	if err := pw.segment(l.virtual, l.stats.VirtualRounded); err != nil {
		return pw.n, fmt.Errorf("virtual: %w", err)
	}
	pw.base = pw.n
	if err := pw.segment(l.physical, l.stats.PhysicalRounded); err != nil {
		return pw.n, fmt.Errorf("physical: %w", err)
	}

	return pw.n, nil
}

type padWriter struct {
	w    io.Writer
	n    int64
	base int64
}

func (pw *padWriter) segment(blocks []*block, rounded uint32) error {
	for _, b := range blocks {
		if err := pw.pad(int64(b.offset)); err != nil {
			return err
		}
		data, err := b.payload.MarshalBinary()
		if err != nil {
			return fmt.Errorf("%w: at 0x%X: %v", ErrMarshalBlock, b.offset, err)
		}
		if len(data) != int(b.size) {
			return fmt.Errorf("%w: at 0x%X: marshalled %d bytes, reserved %d", ErrMarshalBlock, b.offset, len(data), b.size)
		}
		if err := pw.write(data); err != nil {
			return err
		}
	}

	return pw.pad(int64(rounded))
}

// pad fills with PadByte up to the segment-relative position to.
func (pw *padWriter) pad(to int64) error {
	var fill [MinVirtualSize]byte
	remaining := to - (pw.n - pw.base)
	if remaining < 0 {
		return fmt.Errorf("%w: block overlaps previous data by %d bytes", ErrSizeMismatch, -remaining)
	}
	if remaining > 0 {
		for i := range fill {
			fill[i] = PadByte
		}
	}
	for remaining > 0 {
		chunk := min(remaining, int64(len(fill)))
		if err := pw.write(fill[:chunk]); err != nil {
			return err
		}
		remaining -= chunk
	}

	return nil
}

func (pw *padWriter) write(p []byte) error {
	n, err := pw.w.Write(p)
	pw.n += int64(n)
	if err != nil {
		return err
	}
	if n != len(p) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(p))
	}

	return nil
}
