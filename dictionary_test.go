package rsc5

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"testing"
)

// testTexture builds a 1-level DXT1 texture filled with fill.
func testTexture(tb testing.TB, res *Resource, name string, width, height int, fill byte) *Texture {
	tb.Helper()

	tex := &Texture{Depth: 1, UsageCount: 1}
	if err := tex.setShape(PixelFormatDXT1, width, height, 1); err != nil {
		tb.Fatalf("setShape: %v", err)
	}
	size, err := tex.DataSize()
	if err != nil {
		tb.Fatalf("DataSize: %v", err)
	}
	if err := tex.SetPixels(res, bytes.Repeat([]byte{fill}, size)); err != nil {
		tb.Fatalf("SetPixels: %v", err)
	}
	if err := tex.SetName(res, name); err != nil {
		tb.Fatalf("SetName: %v", err)
	}

	return tex
}

// testDictionary builds a dictionary with one texture per stem, keyed
// by the stem hash and named pack:/<stem>.dds.
func testDictionary(tb testing.TB, stems ...string) *TextureDictionary {
	tb.Helper()

	res := NewResource()
	dict, err := NewTextureDictionary(res)
	if err != nil {
		tb.Fatalf("NewTextureDictionary: %v", err)
	}
	for i, stem := range stems {
		tex := testTexture(tb, res, "pack:/"+stem+".dds", 4<<(i%3), 4, byte(i+1))
		if _, _, err := dict.Insert(HashString(stem), tex); err != nil {
			tb.Fatalf("Insert(%q): %v", stem, err)
		}
	}

	return dict
}

func encodeBytes(tb testing.TB, g Graph, policy Policy) []byte {
	tb.Helper()

	var buf bytes.Buffer
	if _, err := Encode(&buf, g, &WriteOptions{Policy: policy}); err != nil {
		tb.Fatalf("Encode: %v", err)
	}
	return buf.Bytes()
}

func reopen(tb testing.TB, g Graph, policy Policy) *TextureDictionary {
	tb.Helper()

	dict, err := Decode(bytes.NewReader(encodeBytes(tb, g, policy)))
	if err != nil {
		tb.Fatalf("Decode: %v", err)
	}
	return dict
}

type entrySnapshot struct {
	hash   uint32
	name   string
	pixels []byte
	record Texture
}

func snapshotEntries(tb testing.TB, dict *TextureDictionary) []entrySnapshot {
	tb.Helper()

	hashes, err := dict.HashKeys()
	if err != nil {
		tb.Fatalf("HashKeys: %v", err)
	}
	entries, err := dict.Entries()
	if err != nil {
		tb.Fatalf("Entries: %v", err)
	}
	if len(hashes) != len(entries) {
		tb.Fatalf("%d hashes, %d entries", len(hashes), len(entries))
	}

	out := make([]entrySnapshot, len(entries))
	for i, tex := range entries {
		name, err := tex.Name(dict.Resource())
		if err != nil {
			tb.Fatalf("entry %d Name: %v", i, err)
		}
		pixels, err := tex.Pixels(dict.Resource())
		if err != nil {
			tb.Fatalf("entry %d Pixels: %v", i, err)
		}

		record := *tex
		record.NamePtr = Ptr{}
		record.PixelData = Ptr{}
		out[i] = entrySnapshot{hash: hashes[i], name: name, pixels: slices.Clone(pixels), record: record}
	}

	return out
}

func compareSnapshots(t *testing.T, got, want []entrySnapshot) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("%d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].hash != want[i].hash || got[i].name != want[i].name {
			t.Fatalf("entry %d = 0x%08X %q, want 0x%08X %q", i, got[i].hash, got[i].name, want[i].hash, want[i].name)
		}
		if got[i].record != want[i].record {
			t.Fatalf("entry %d record = %+v, want %+v", i, got[i].record, want[i].record)
		}
		if !bytes.Equal(got[i].pixels, want[i].pixels) {
			t.Fatalf("entry %d pixels differ", i)
		}
	}
}

func TestRoundTripIdentity(t *testing.T) {
	t.Parallel()

	for _, policy := range []Policy{PolicyPacked, PolicySimple} {
		t.Run(policy.String(), func(t *testing.T) {
			t.Parallel()

			dict := testDictionary(t, "fontx", "fonts", "radar", "hud")
			want := snapshotEntries(t, dict)

			got := reopen(t, dict, policy)
			compareSnapshots(t, snapshotEntries(t, got), want)

			if got.UsageCount != dict.UsageCount || got.VTable != dict.VTable {
				t.Fatalf("dictionary header = %d/%d, want %d/%d", got.VTable, got.UsageCount, dict.VTable, dict.UsageCount)
			}
			if got.Hashes.Capacity != got.Hashes.Count || got.Values.Capacity != got.Values.Count {
				t.Fatalf("capacity differs from count on disk")
			}
		})
	}
}

func TestFontxScenario(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fonts.wtd")
	if err := Write(path, testDictionary(t, "fontx")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	dict, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if dict.Len() != 1 {
		t.Fatalf("Len = %d, want 1", dict.Len())
	}

	template, err := dict.Entry(0)
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	tex := template.Clone()
	tex.Next = 0
	tex.Prev = 0
	if err := tex.SetName(dict.Resource(), "pack:/font2.dds"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if _, _, err := dict.Insert(HashString("font2"), tex); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// the clone must not rename the template
	if name, _ := template.Name(dict.Resource()); name != "pack:/fontx.dds" {
		t.Fatalf("template renamed to %q", name)
	}

	if err := Write(path, dict); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	snap := snapshotEntries(t, got)
	if len(snap) != 2 {
		t.Fatalf("Len = %d, want 2", len(snap))
	}
	if snap[0].hash != 0xAD762457 || snap[1].hash != 0xF52E33D2 {
		t.Fatalf("hashes = 0x%08X, 0x%08X", snap[0].hash, snap[1].hash)
	}
	if snap[0].name != "pack:/font2.dds" || snap[1].name != "pack:/fontx.dds" {
		t.Fatalf("names = %q, %q", snap[0].name, snap[1].name)
	}
	if !bytes.Equal(snap[0].pixels, snap[1].pixels) {
		t.Fatalf("cloned entry pixels differ")
	}
}

func TestReplaceExisting(t *testing.T) {
	t.Parallel()

	dict := reopen(t, testDictionary(t, "fontx", "radar"), PolicyPacked)
	hash := HashString("fontx")

	replacement := testTexture(t, dict.Resource(), "pack:/fontx.dds", 8, 8, 0xEE)
	replaced, err := dict.Put(hash, replacement)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !replaced {
		t.Fatalf("Put inserted instead of replacing")
	}
	if dict.Len() != 2 {
		t.Fatalf("Len = %d, want 2", dict.Len())
	}

	got := reopen(t, dict, PolicyPacked)
	if got.Len() != 2 {
		t.Fatalf("reloaded Len = %d, want 2", got.Len())
	}

	i, err := got.Find(hash)
	if err != nil || i < 0 {
		t.Fatalf("Find = %d, %v", i, err)
	}
	hashes, _ := got.HashKeys()
	if i+1 < len(hashes) && hashes[i+1] == hash {
		t.Fatalf("duplicate entry for 0x%08X", hash)
	}

	tex, err := got.Entry(i)
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	pixels, err := tex.Pixels(got.Resource())
	if err != nil {
		t.Fatalf("Pixels: %v", err)
	}
	if tex.Width != 8 || !bytes.Equal(pixels, bytes.Repeat([]byte{0xEE}, len(pixels))) {
		t.Fatalf("entry still holds the old texture")
	}
}

func TestSortedInsertion(t *testing.T) {
	t.Parallel()

	stems := make([]string, 0, 40)
	for i := range 40 {
		stems = append(stems, fmt.Sprintf("glyph_%02d", (i*17)%40))
	}
	dict := testDictionary(t, stems...)

	hashes, err := dict.HashKeys()
	if err != nil {
		t.Fatalf("HashKeys: %v", err)
	}
	if !slices.IsSorted(hashes) {
		t.Fatalf("hashes not ascending: %v", hashes)
	}

	for i, h := range hashes {
		tex, err := dict.Entry(i)
		if err != nil {
			t.Fatalf("Entry(%d): %v", i, err)
		}
		name, err := tex.Name(dict.Resource())
		if err != nil {
			t.Fatalf("Name: %v", err)
		}
		stem := name[len("pack:/") : len(name)-len(".dds")]
		if HashString(stem) != h {
			t.Fatalf("entry %d %q does not match hash 0x%08X", i, name, h)
		}
	}
}

func TestInsertKeepsDuplicates(t *testing.T) {
	t.Parallel()

	dict := testDictionary(t, "fontx")
	dup := testTexture(t, dict.Resource(), "pack:/fontx.dds", 4, 4, 9)
	if _, _, err := dict.Insert(HashString("fontx"), dup); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if dict.Len() != 2 {
		t.Fatalf("Len = %d, want 2", dict.Len())
	}
}

func TestEncodeByteIdentical(t *testing.T) {
	t.Parallel()

	for _, policy := range []Policy{PolicyPacked, PolicySimple} {
		a := encodeBytes(t, testDictionary(t, "fontx", "fonts", "radar"), policy)
		b := encodeBytes(t, testDictionary(t, "fontx", "fonts", "radar"), policy)
		if !bytes.Equal(a, b) {
			t.Fatalf("%s: independent builds differ", policy)
		}

		dict, err := Decode(bytes.NewReader(a))
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if again := encodeBytes(t, dict, policy); !bytes.Equal(a, again) {
			t.Fatalf("%s: re-encoding a decoded file changed it", policy)
		}
		if twice := encodeBytes(t, dict, policy); !bytes.Equal(a, twice) {
			t.Fatalf("%s: encoding mutated the dictionary", policy)
		}
	}
}

func TestDumpTraversalOrder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := Encode(&buf, testDictionary(t, "fontx"), &WriteOptions{Policy: PolicySimple}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	res, err := DecodeResource(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		t.Fatalf("DecodeResource: %v", err)
	}

	v := res.Virtual()
	checks := []struct {
		name   string
		offset int
		want   Ptr
	}{
		{name: "block map", offset: 4, want: Ptr{Offset: 32, Segment: SegmentVirtual}},
		{name: "hashes", offset: 16, want: Ptr{Offset: 656, Segment: SegmentVirtual}},
		{name: "values", offset: 24, want: Ptr{Offset: 672, Segment: SegmentVirtual}},
		{name: "value 0", offset: 672, want: Ptr{Offset: 560, Segment: SegmentVirtual}},
		{name: "texture name", offset: 560 + 20, want: Ptr{Offset: 640, Segment: SegmentVirtual}},
		{name: "texture pixels", offset: 560 + 72, want: Ptr{Offset: 0, Segment: SegmentPhysical}},
	}
	for _, c := range checks {
		if got := getPtr(v[c.offset:]); got != c.want {
			t.Fatalf("%s = %v, want %v", c.name, got, c.want)
		}
	}

	if got := string(v[640:656]); got != "pack:/fontx.dds\x00" {
		t.Fatalf("name block = %q", got)
	}
	if v[4095] != PadByte || v[688] != PadByte {
		t.Fatalf("virtual padding not filled")
	}

	var bm BlockMap
	if err := bm.UnmarshalBinary(v[32:560]); err != nil {
		t.Fatalf("block map: %v", err)
	}
	if bm.VirtualCount() != 0 || bm.PhysicalCount() != 0 || bm[4] != PadByte {
		t.Fatalf("fresh block map not written")
	}
}

func TestEncodeUnsupportedPixelFormat(t *testing.T) {
	t.Parallel()

	dict := testDictionary(t)
	tex := testTexture(t, dict.Resource(), "pack:/l8.dds", 4, 4, 1)
	tex.PixelFormat = 50
	if _, _, err := dict.Insert(HashString("l8"), tex); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	_, err := Encode(&bytes.Buffer{}, dict, nil)
	if !errors.Is(err, ErrUnsupportedPixelFormat) {
		t.Fatalf("expected ErrUnsupportedPixelFormat, got %v", err)
	}
}

func TestEntryOutOfRange(t *testing.T) {
	t.Parallel()

	dict := testDictionary(t, "fontx")
	if _, err := dict.Entry(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := dict.Replace(-1, &Texture{}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestOpenDictionaryCorrupt(t *testing.T) {
	t.Parallel()

	res := &Resource{Header: NewHeader(), virtual: make([]byte, MinVirtualSize)}
	res.virtual[16+4] = 1 // one hash, no values
	if _, err := OpenTextureDictionary(res); !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("expected ErrCorruptRecord, got %v", err)
	}

	short := &Resource{Header: NewHeader(), virtual: make([]byte, 16)}
	if _, err := OpenTextureDictionary(short); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestTextureBlockMapRelocated(t *testing.T) {
	t.Parallel()

	dict := testDictionary(t)
	tex := testTexture(t, dict.Resource(), "pack:/mapped.dds", 4, 4, 3)
	bm := NewBlockMap()
	bm[0] = 2
	raw, _ := bm.MarshalBinary()
	if err := dict.Resource().Attach(&tex.BlockMap, raw); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if _, _, err := dict.Insert(HashString("mapped"), tex); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got := reopen(t, dict, PolicyPacked)
	entry, err := got.Entry(0)
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if entry.BlockMap.Segment != SegmentVirtual {
		t.Fatalf("block map pointer = %v", entry.BlockMap)
	}
	m, err := readBlockMap(got.Resource(), entry.BlockMap)
	if err != nil {
		t.Fatalf("readBlockMap: %v", err)
	}
	if m.VirtualCount() != 2 {
		t.Fatalf("VirtualCount = %d, want 2", m.VirtualCount())
	}
}

func TestWriteTextureLargerThanPage(t *testing.T) {
	t.Parallel()

	res := NewResource()
	dict, err := NewTextureDictionary(res)
	if err != nil {
		t.Fatalf("NewTextureDictionary: %v", err)
	}

	tex := &Texture{Depth: 1, UsageCount: 1}
	if err := tex.setShape(PixelFormatA8R8G8B8, 1600, 1600, 1); err != nil {
		t.Fatalf("setShape: %v", err)
	}
	pixels := make([]byte, 1600*1600*4)
	for i := range pixels {
		pixels[i] = byte(i % 251)
	}
	if err := tex.SetPixels(res, pixels); err != nil {
		t.Fatalf("SetPixels: %v", err)
	}
	if err := tex.SetName(res, "pack:/large.dds"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if _, _, err := dict.Insert(HashString("large"), tex); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	path := filepath.Join(t.TempDir(), "large.wtd")
	stats, err := WriteWithOptions(path, dict, nil)
	if err != nil {
		t.Fatalf("WriteWithOptions: %v", err)
	}
	if stats.Policy != PolicyPacked || stats.Spanning != 1 || stats.PhysicalRounded != 16<<20 {
		t.Fatalf("stats: policy %s spanning %d physical %d", stats.Policy, stats.Spanning, stats.PhysicalRounded)
	}

	h, err := ReadHeaderFile(path)
	if err != nil {
		t.Fatalf("ReadHeaderFile: %v", err)
	}
	if h.PhysicalSize() != stats.PhysicalRounded {
		t.Fatalf("header physical size %d, want %d", h.PhysicalSize(), stats.PhysicalRounded)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	entry, err := got.Entry(0)
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	data, err := entry.Pixels(got.Resource())
	if err != nil {
		t.Fatalf("Pixels: %v", err)
	}
	if !bytes.Equal(data, pixels) {
		t.Fatalf("pixels differ after round trip")
	}
}
