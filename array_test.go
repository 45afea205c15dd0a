package rsc5

import (
	"cmp"
	"errors"
	"slices"
	"testing"
)

func TestInsertSortedLowerBound(t *testing.T) {
	t.Parallel()

	res := NewResource()
	var a Array[uint32, Uint32Codec]

	inputs := []uint32{50, 10, 30, 30, 70, 10, 0}
	wantPos := []int{0, 0, 1, 1, 4, 0, 0}
	for i, v := range inputs {
		container, pos, err := a.InsertSorted(res, v, cmp.Compare[uint32])
		if err != nil {
			t.Fatalf("InsertSorted(%d): %v", v, err)
		}
		if pos != wantPos[i] {
			t.Fatalf("InsertSorted(%d) at %d, want %d", v, pos, wantPos[i])
		}
		if len(container) != i+1 || int(a.Count) != i+1 || a.Capacity != a.Count {
			t.Fatalf("after %d inserts: container %d, count %d, capacity %d", i+1, len(container), a.Count, a.Capacity)
		}
	}

	items, err := a.Items(res)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if !slices.IsSorted(items) {
		t.Fatalf("items not sorted: %v", items)
	}
	if !slices.Equal(items, []uint32{0, 10, 10, 30, 30, 50, 70}) {
		t.Fatalf("items = %v", items)
	}
	if res.TableLen() != 1 {
		t.Fatalf("array used %d table slots, want 1", res.TableLen())
	}
}

func TestInsertAtAndSetAt(t *testing.T) {
	t.Parallel()

	res := NewResource()
	var a Array[Ptr, PtrCodec]

	p1 := Ptr{Offset: 1, Segment: SegmentVirtual}
	p2 := Ptr{Offset: 2, Segment: SegmentVirtual}
	p3 := Ptr{Offset: 3, Segment: SegmentVirtual}

	if _, err := a.InsertAt(res, 0, p2); err != nil {
		t.Fatalf("InsertAt: %v", err)
	}
	if _, err := a.InsertAt(res, 0, p1); err != nil {
		t.Fatalf("InsertAt: %v", err)
	}
	if _, err := a.InsertAt(res, 2, p3); err != nil {
		t.Fatalf("InsertAt: %v", err)
	}
	if _, err := a.InsertAt(res, 4, p3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	container, err := a.SetAt(res, 1, p3)
	if err != nil {
		t.Fatalf("SetAt: %v", err)
	}
	if !slices.Equal(container, []Ptr{p1, p3, p3}) {
		t.Fatalf("container = %v", container)
	}
	if _, err := a.SetAt(res, 3, p1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}

	items, err := a.Items(res)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if !slices.Equal(items, container) {
		t.Fatalf("Items = %v, want %v", items, container)
	}
}

func TestArrayOnDisk(t *testing.T) {
	t.Parallel()

	res := &Resource{virtual: []byte{
		0x10, 0x00, 0x00, 0x50, 0x02, 0x00, 0x02, 0x00,
		0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA,
		0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00,
	}}

	var a Array[uint32, Uint32Codec]
	a.decode(res.virtual)
	if a.Data != (Ptr{Offset: 16, Segment: SegmentVirtual}) || a.Count != 2 || a.Capacity != 2 {
		t.Fatalf("decoded header = %+v", a)
	}

	items, err := a.Items(res)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if !slices.Equal(items, []uint32{1, 2}) {
		t.Fatalf("Items = %v", items)
	}

	a.Count = 3
	if _, err := a.Items(res); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}
