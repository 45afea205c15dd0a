// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package rsc5

import (
	"cmp"
	"encoding"
	"encoding/binary"
	"fmt"
	"slices"
)

// DictionarySize is the on-disk length of a dictionary record.
const DictionarySize = 32

// Entry is implemented by the pointer type of every object a Dictionary
// can hold.
type Entry[E any] interface {
	*E
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	// RecordSize returns the fixed on-disk length of the record.
	RecordSize() int
	// DumpToMemory appends the out-of-line data of the entry.
	DumpToMemory(res *Resource, l *Layout) error
}

// Dictionary is a hash-keyed object dictionary (pgDictionary). Hashes are
// kept ascending and Values[i] is the entry for Hashes[i].
type Dictionary[E any, P Entry[E]] struct {
	VTable     uint32
	BlockMap   Ptr
	Parent     Ptr
	UsageCount uint32
	Hashes     Array[uint32, Uint32Codec]
	Values     Array[Ptr, PtrCodec]

	res *Resource
}

// TextureDictionary is the dictionary stored in texture resources.
type TextureDictionary = Dictionary[Texture, *Texture]

// OpenDictionary reads the dictionary at the start of the virtual segment.
func OpenDictionary[E any, P Entry[E]](res *Resource) (*Dictionary[E, P], error) {
	raw, err := res.Resolve(Ptr{Segment: SegmentVirtual}, SegmentVirtual, DictionarySize)
	if err != nil {
		return nil, fmt.Errorf("dictionary: %w", err)
	}

	d := &Dictionary[E, P]{res: res}
	if err := d.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	if d.Hashes.Count != d.Values.Count {
		return nil, fmt.Errorf("%w: %d hashes, %d values", ErrCorruptRecord, d.Hashes.Count, d.Values.Count)
	}

	return d, nil
}

// OpenTextureDictionary reads the texture dictionary of res.
func OpenTextureDictionary(res *Resource) (*TextureDictionary, error) {
	return OpenDictionary[Texture](res)
}

// NewDictionary returns an empty dictionary whose block map is attached
// to res.
func NewDictionary[E any, P Entry[E]](res *Resource) (*Dictionary[E, P], error) {
	d := &Dictionary[E, P]{UsageCount: 1, res: res}
	bm, _ := NewBlockMap().MarshalBinary()
	if err := res.Attach(&d.BlockMap, bm); err != nil {
		return nil, err
	}
	return d, nil
}

// NewTextureDictionary returns an empty texture dictionary in res.
func NewTextureDictionary(res *Resource) (*TextureDictionary, error) {
	return NewDictionary[Texture](res)
}

// Resource returns the resource the dictionary lives in.
func (d *Dictionary[E, P]) Resource() *Resource { return d.res }

// Len returns the number of entries.
func (d *Dictionary[E, P]) Len() int { return int(d.Values.Count) }

// HashKeys returns the hash keys in ascending order.
func (d *Dictionary[E, P]) HashKeys() ([]uint32, error) {
	return d.Hashes.Items(d.res)
}

// Entry decodes entry i.
func (d *Dictionary[E, P]) Entry(i int) (P, error) {
	if i < 0 || i >= d.Len() {
		return nil, fmt.Errorf("%w: entry %d of %d", ErrIndexOutOfRange, i, d.Len())
	}

	ptrs, err := d.Values.Items(d.res)
	if err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}

	return d.decodeEntry(ptrs[i])
}

// Entries decodes every entry in key order.
func (d *Dictionary[E, P]) Entries() ([]P, error) {
	ptrs, err := d.Values.Items(d.res)
	if err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}

	entries := make([]P, len(ptrs))
	for i, p := range ptrs {
		if entries[i], err = d.decodeEntry(p); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	return entries, nil
}

func (d *Dictionary[E, P]) decodeEntry(p Ptr) (P, error) {
	entry := P(new(E))
	raw, err := d.res.Resolve(p, SegmentVirtual, entry.RecordSize())
	if err != nil {
		return nil, err
	}
	if err := entry.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return entry, nil
}

// Find returns the index of the first entry keyed by hash, or -1.
func (d *Dictionary[E, P]) Find(hash uint32) (int, error) {
	hashes, err := d.Hashes.Items(d.res)
	if err != nil {
		return -1, fmt.Errorf("hashes: %w", err)
	}

	i, found := slices.BinarySearch(hashes, hash)
	if !found {
		return -1, nil
	}
	return i, nil
}

// Insert adds entry under hash at its sorted position and returns the new
// hash and value containers. An existing entry with the same hash is kept;
// use Put to replace it instead.
func (d *Dictionary[E, P]) Insert(hash uint32, entry P) ([]uint32, []Ptr, error) {
	if d.Len() == maxUint16 {
		return nil, nil, fmt.Errorf("%w: dictionary holds %d entries", ErrSizeOverflow, d.Len())
	}

	var value Ptr
	if err := d.attachEntry(&value, entry); err != nil {
		return nil, nil, err
	}

	hashes, pos, err := d.Hashes.InsertSorted(d.res, hash, cmp.Compare[uint32])
	if err != nil {
		return nil, nil, fmt.Errorf("hashes: %w", err)
	}
	values, err := d.Values.InsertAt(d.res, pos, value)
	if err != nil {
		return nil, nil, fmt.Errorf("values: %w", err)
	}

	return hashes, values, nil
}

// Replace overwrites entry i in place. The key is unchanged.
func (d *Dictionary[E, P]) Replace(i int, entry P) error {
	if i < 0 || i >= d.Len() {
		return fmt.Errorf("%w: entry %d of %d", ErrIndexOutOfRange, i, d.Len())
	}

	var value Ptr
	if err := d.attachEntry(&value, entry); err != nil {
		return err
	}
	if _, err := d.Values.SetAt(d.res, i, value); err != nil {
		return fmt.Errorf("values: %w", err)
	}

	return nil
}

// Put replaces the entry keyed by hash, or inserts it when the hash is
// absent. It reports whether an entry was replaced.
func (d *Dictionary[E, P]) Put(hash uint32, entry P) (bool, error) {
	i, err := d.Find(hash)
	if err != nil {
		return false, err
	}
	if i >= 0 {
		return true, d.Replace(i, entry)
	}

	_, _, err = d.Insert(hash, entry)
	return false, err
}

func (d *Dictionary[E, P]) attachEntry(p *Ptr, entry P) error {
	data, err := entry.MarshalBinary()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMarshalBlock, err)
	}
	if len(data) != entry.RecordSize() {
		return fmt.Errorf("%w: entry is %d bytes, want %d", ErrCorruptRecord, len(data), entry.RecordSize())
	}
	return d.res.Attach(p, data)
}

// DumpToMemory appends the whole graph to l: the dictionary record, its
// block map, every entry record, the data of every entry, the hash array
// and the value array. The dictionary itself is left untouched; the
// appended copies have their pointers finalized by the layout.
func (d *Dictionary[E, P]) DumpToMemory(l *Layout) error {
	hashes, err := d.Hashes.Items(d.res)
	if err != nil {
		return fmt.Errorf("hashes: %w", err)
	}
	entries, err := d.Entries()
	if err != nil {
		return err
	}
	if len(hashes) != len(entries) {
		return fmt.Errorf("%w: %d hashes, %d values", ErrCorruptRecord, len(hashes), len(entries))
	}
	blockMap, err := readBlockMap(d.res, d.BlockMap)
	if err != nil {
		return err
	}

	out := &Dictionary[E, P]{
		VTable:     d.VTable,
		Parent:     d.Parent,
		UsageCount: d.UsageCount,
		Hashes:     Array[uint32, Uint32Codec]{Count: d.Hashes.Count, Capacity: d.Hashes.Count},
		Values:     Array[Ptr, PtrCodec]{Count: d.Values.Count, Capacity: d.Values.Count},
	}
	if out.Parent.IsMemory() {
		out.Parent = Ptr{}
	}

	l.Append(SegmentVirtual, out, DictionarySize, nil)
	l.Append(SegmentVirtual, blockMap, BlockMapSize, &out.BlockMap)

	values := make([]Ptr, len(entries))
	for i, entry := range entries {
		l.Append(SegmentVirtual, entry, uint32(entry.RecordSize()), &values[i])
	}
	for i, entry := range entries {
		if err := entry.DumpToMemory(d.res, l); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}

	l.Append(SegmentVirtual, itemsPayload[uint32, Uint32Codec]{items: hashes}, uint32(4*len(hashes)), &out.Hashes.Data)
	l.Append(SegmentVirtual, itemsPayload[Ptr, PtrCodec]{items: values}, uint32(PtrSize*len(values)), &out.Values.Data)

	return nil
}

// MarshalBinary encodes the 32-byte dictionary record.
func (d *Dictionary[E, P]) MarshalBinary() ([]byte, error) {
	b := make([]byte, DictionarySize)
	binary.LittleEndian.PutUint32(b[0:], d.VTable)
	putPtr(b[4:], d.BlockMap)
	putPtr(b[8:], d.Parent)
	binary.LittleEndian.PutUint32(b[12:], d.UsageCount)
	d.Hashes.encode(b[16:])
	d.Values.encode(b[24:])
	return b, nil
}

// UnmarshalBinary decodes a 32-byte dictionary record.
func (d *Dictionary[E, P]) UnmarshalBinary(b []byte) error {
	if len(b) != DictionarySize {
		return fmt.Errorf("%w: dictionary is %d bytes, want %d", ErrCorruptRecord, len(b), DictionarySize)
	}
	d.VTable = binary.LittleEndian.Uint32(b[0:])
	d.BlockMap = getPtr(b[4:])
	d.Parent = getPtr(b[8:])
	d.UsageCount = binary.LittleEndian.Uint32(b[12:])
	d.Hashes.decode(b[16:])
	d.Values.decode(b[24:])
	return nil
}
