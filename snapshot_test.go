package rsc5

import (
	"bytes"
	"errors"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	encoded := encodeBytes(t, testDictionary(t, "fontx", "fonts"), PolicyPacked)
	res, err := DecodeResource(bytes.NewReader(encoded), nil)
	if err != nil {
		t.Fatalf("DecodeResource: %v", err)
	}

	var snap bytes.Buffer
	if err := WriteSnapshot(&snap, res); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	back, err := ReadSnapshot(bytes.NewReader(snap.Bytes()), nil)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if back.Header != res.Header {
		t.Fatalf("header = %+v, want %+v", back.Header, res.Header)
	}
	if !bytes.Equal(back.Virtual(), res.Virtual()) || !bytes.Equal(back.Physical(), res.Physical()) {
		t.Fatalf("segments differ")
	}

	var raw bytes.Buffer
	if err := EncodeRaw(&raw, back); err != nil {
		t.Fatalf("EncodeRaw: %v", err)
	}
	dict, err := Decode(bytes.NewReader(raw.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dict.Len() != 2 {
		t.Fatalf("Len = %d, want 2", dict.Len())
	}
}

func TestSnapshotLimit(t *testing.T) {
	t.Parallel()

	res, err := DecodeResource(bytes.NewReader(encodeBytes(t, testDictionary(t, "fontx"), PolicySimple)), nil)
	if err != nil {
		t.Fatalf("DecodeResource: %v", err)
	}

	var snap bytes.Buffer
	if err := WriteSnapshot(&snap, res); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	_, err = ReadSnapshot(bytes.NewReader(snap.Bytes()), &ReadOptions{MaxImageSize: 1024})
	if !errors.Is(err, ErrSizeOverflow) {
		t.Fatalf("expected ErrSizeOverflow, got %v", err)
	}
}

func TestEncodeRawSizeMismatch(t *testing.T) {
	t.Parallel()

	res := NewResource()
	if _, _, err := res.Header.SetFlagSizes(MinVirtualSize, 0); err != nil {
		t.Fatalf("SetFlagSizes: %v", err)
	}
	res.virtual = make([]byte, 16)

	if err := EncodeRaw(&bytes.Buffer{}, res); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}
