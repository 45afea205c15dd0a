// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"encoding/binary"
	"fmt"
	"slices"
)

// ArraySize is the on-disk length of an array header.
const ArraySize = 8

// ElementCodec reads and writes one fixed-size array element.
type ElementCodec[T any] interface {
	Size() int
	Get(b []byte) T
	Put(b []byte, v T)
}

// Uint32Codec encodes little-endian uint32 elements.
type Uint32Codec struct{}

func (Uint32Codec) Size() int { return 4 }
func (Uint32Codec) Get(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func (Uint32Codec) Put(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }

// PtrCodec encodes relocatable pointer elements.
type PtrCodec struct{}

func (PtrCodec) Size() int { return PtrSize }
func (PtrCodec) Get(b []byte) Ptr { return getPtr(b) }
func (PtrCodec) Put(b []byte, v Ptr) { putPtr(b, v) }

// Array is the pgArray header: a pointer to count contiguous elements in
// the virtual segment plus a capacity.
type Array[T any, C ElementCodec[T]] struct {
	Data     Ptr
	Count    uint16
	Capacity uint16
}

func (a *Array[T, C]) decode(b []byte) {
	a.Data = getPtr(b[0:])
	a.Count = binary.LittleEndian.Uint16(b[4:])
	a.Capacity = binary.LittleEndian.Uint16(b[6:])
}

func (a Array[T, C]) encode(b []byte) {
	putPtr(b[0:], a.Data)
	binary.LittleEndian.PutUint16(b[4:], a.Count)
	binary.LittleEndian.PutUint16(b[6:], a.Capacity)
}

// ByteSize returns the length of the element run.
func (a Array[T, C]) ByteSize() int {
	var c C
	return int(a.Count) * c.Size()
}

// Items decodes the elements into a fresh slice.
func (a Array[T, C]) Items(res *Resource) ([]T, error) {
	if a.Count == 0 {
		return nil, nil
	}

	raw, err := res.Resolve(a.Data, SegmentVirtual, a.ByteSize())
	if err != nil {
		return nil, err
	}

	var c C
	size := c.Size()
	items := make([]T, a.Count)
	for i := range items {
		items[i] = c.Get(raw[i*size:])
	}

	return items, nil
}

// InsertSorted inserts v at the leftmost position not less than v,
// assuming the elements are ascending under cmp. It returns the new backing
// container and the insertion index.
func (a *Array[T, C]) InsertSorted(res *Resource, v T, cmp func(T, T) int) ([]T, int, error) {
	items, err := a.Items(res)
	if err != nil {
		return nil, 0, err
	}

	pos, _ := slices.BinarySearchFunc(items, v, cmp)
	container, err := a.replace(res, slices.Insert(items, pos, v))
	if err != nil {
		return nil, 0, err
	}

	return container, pos, nil
}

// InsertAt inserts v at index pos and returns the new backing container.
func (a *Array[T, C]) InsertAt(res *Resource, pos int, v T) ([]T, error) {
	if pos < 0 || pos > int(a.Count) {
		return nil, fmt.Errorf("%w: insert at %d, count %d", ErrIndexOutOfRange, pos, a.Count)
	}

	items, err := a.Items(res)
	if err != nil {
		return nil, err
	}

	return a.replace(res, slices.Insert(items, pos, v))
}

// SetAt overwrites the element at index pos and returns the new backing
// container.
func (a *Array[T, C]) SetAt(res *Resource, pos int, v T) ([]T, error) {
	if pos < 0 || pos >= int(a.Count) {
		return nil, fmt.Errorf("%w: set at %d, count %d", ErrIndexOutOfRange, pos, a.Count)
	}

	items, err := a.Items(res)
	if err != nil {
		return nil, err
	}
	items[pos] = v

	return a.replace(res, items)
}

// replace re-points the array at an attached encoding of items.
func (a *Array[T, C]) replace(res *Resource, items []T) ([]T, error) {
	count, err := u16FromInt(len(items))
	if err != nil {
		return nil, fmt.Errorf("%w: array of %d elements", err, len(items))
	}

	if err := res.Attach(&a.Data, encodeItems[T, C](items)); err != nil {
		return nil, err
	}
	a.Count = count
	a.Capacity = count

	return items, nil
}

func encodeItems[T any, C ElementCodec[T]](items []T) []byte {
	var c C
	size := c.Size()
	buf := make([]byte, len(items)*size)
	for i, v := range items {
		c.Put(buf[i*size:], v)
	}
	return buf
}

// itemsPayload lays an element slice out lazily, so pointer elements
// finalized after the block was appended are still written correctly.
type itemsPayload[T any, C ElementCodec[T]] struct {
	items []T
}

func (p itemsPayload[T, C]) MarshalBinary() ([]byte, error) {
	return encodeItems[T, C](p.items), nil
}
