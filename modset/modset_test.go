package modset

import (
	"bytes"
	"testing"

	"github.com/modimizer/core/hash"
)

// TestModsetRoundTrip is spec.md §8 scenario 2.
func TestModsetRoundTrip(t *testing.T) {
	h := hash.New(3, 4, 1)
	m := New(h, MinTableBits)

	const H1, H2, H3 = 101, 202, 3003
	for _, v := range []uint64{H1, H2, H3} {
		if v%4 == 0 {
			t.Fatalf("test fixture invalid: %d is divisible by 4", v)
		}
	}
	id1 := m.FindOrAdd(H1, true)
	id2 := m.FindOrAdd(H2, true)
	id3 := m.FindOrAdd(H3, true)
	for i := uint16(0); i < 3; i++ {
		m.IncrDepth(id1)
	}
	for i := uint16(0); i < 5; i++ {
		m.IncrDepth(id2)
	}
	for i := 0; i < 3000; i++ {
		m.IncrDepth(id3)
	}

	var buf bytes.Buffer
	if err := m.WriteTo(&buf, CodecNone); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	m2 := ReadFrom(&buf)

	if got := m2.Find(H2); got != id2 {
		t.Fatalf("find(H2) = %d, want %d", got, id2)
	}
	if got := m2.Depth(id2); got != 5 {
		t.Fatalf("depth[id2] = %d, want 5", got)
	}
	if m2.Max() != 3 {
		t.Fatalf("max = %d, want 3", m2.Max())
	}
}

func TestModsetRoundTripCompressed(t *testing.T) {
	h := hash.New(3, 4, 1)
	m := New(h, MinTableBits)
	for _, v := range []uint64{101, 202, 3003} {
		id := m.FindOrAdd(v, true)
		m.IncrDepth(id)
	}
	for _, codec := range []Codec{CodecZstd, CodecSnappy} {
		var buf bytes.Buffer
		if err := m.WriteTo(&buf, codec); err != nil {
			t.Fatalf("codec %d: WriteTo: %v", codec, err)
		}
		m2 := ReadFrom(&buf)
		if m2.Max() != m.Max() {
			t.Fatalf("codec %d: max = %d, want %d", codec, m2.Max(), m.Max())
		}
		m.ForEach(func(id uint32, value uint64, depth uint16, info uint8) {
			if m2.Find(value) != id {
				t.Errorf("codec %d: find(%d) mismatch after round trip", codec, value)
			}
		})
	}
}

// TestPrune is spec.md §8 scenario 3.
func TestPrune(t *testing.T) {
	h := hash.New(3, 4, 1)
	m := New(h, MinTableBits)
	const H1, H2, H3 = 101, 202, 3003
	id1 := m.FindOrAdd(H1, true)
	id2 := m.FindOrAdd(H2, true)
	id3 := m.FindOrAdd(H3, true)
	for i := 0; i < 3; i++ {
		m.IncrDepth(id1)
	}
	for i := 0; i < 5; i++ {
		m.IncrDepth(id2)
	}
	for i := 0; i < 3000; i++ {
		m.IncrDepth(id3)
	}

	m.Prune(4, 100)

	if m.Max() != 1 {
		t.Fatalf("max after prune = %d, want 1", m.Max())
	}
	if got := m.Find(H2); got != 1 {
		t.Fatalf("find(H2) after prune = %d, want 1", got)
	}
	if got := m.Depth(1); got != 5 {
		t.Fatalf("depth[1] after prune = %d, want 5", got)
	}
	if m.Find(H1) != 0 {
		t.Fatalf("H1 should have been pruned")
	}
	if m.Find(H3) != 0 {
		t.Fatalf("H3 should have been pruned")
	}
}

// TestMerge is spec.md §8 scenario 4.
func TestMerge(t *testing.T) {
	h := hash.New(3, 4, 1)
	a := New(h, MinTableBits)
	b := New(h, MinTableBits)

	const H1, H2, H3 = 101, 202, 3003
	aID1 := a.FindOrAdd(H1, true)
	aID2 := a.FindOrAdd(H2, true)
	for i := 0; i < 10; i++ {
		a.IncrDepth(aID1)
	}
	for i := 0; i < 20; i++ {
		a.IncrDepth(aID2)
	}

	bID2 := b.FindOrAdd(H2, true)
	bID3 := b.FindOrAdd(H3, true)
	for i := 0; i < 30; i++ {
		b.IncrDepth(bID2)
	}
	for i := 0; i < 50; i++ {
		b.IncrDepth(bID3)
	}

	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if a.Max() != 3 {
		t.Fatalf("max after merge = %d, want 3", a.Max())
	}
	if got := a.Depth(a.Find(H1)); got != 10 {
		t.Errorf("depth[H1] = %d, want 10", got)
	}
	if got := a.Depth(a.Find(H2)); got != 50 {
		t.Errorf("depth[H2] = %d, want 50", got)
	}
	if got := a.Depth(a.Find(H3)); got != 50 {
		t.Errorf("depth[H3] = %d, want 50", got)
	}
}

func TestMergeIncompatibleHashers(t *testing.T) {
	a := New(hash.New(3, 4, 1), MinTableBits)
	b := New(hash.New(3, 4, 2), MinTableBits)
	a.FindOrAdd(101, true)
	b.FindOrAdd(101, true)

	if err := a.Merge(b); err == nil {
		t.Fatalf("expected Merge to fail on incompatible hashers")
	}
	if a.Max() != 1 {
		t.Fatalf("target must be unchanged on failed merge, got max=%d", a.Max())
	}
}

// TestFindInvariant is spec.md §8's universal invariant: find(value[i]) == i.
func TestFindInvariant(t *testing.T) {
	h := hash.New(5, 3, 42)
	m := New(h, MinTableBits)
	values := []uint64{7, 777, 77777, 123456789, 999999}
	for _, v := range values {
		m.FindOrAdd(v, true)
	}
	m.ForEach(func(id uint32, value uint64, depth uint16, info uint8) {
		if got := m.Find(value); got != id {
			t.Errorf("find(value[%d]) = %d, want %d", id, got, id)
		}
	})
}

func TestSaturatingDepth(t *testing.T) {
	h := hash.New(3, 4, 1)
	m := New(h, MinTableBits)
	id := m.FindOrAdd(101, true)
	for i := 0; i < MaxDepth+10; i++ {
		m.IncrDepth(id)
	}
	if got := m.Depth(id); got != MaxDepth {
		t.Fatalf("depth = %d, want saturated at %d", got, MaxDepth)
	}
}

func TestPackIdempotent(t *testing.T) {
	h := hash.New(3, 4, 1)
	m := New(h, MinTableBits)
	for _, v := range []uint64{1, 2, 3} {
		m.FindOrAdd(v, true)
	}
	m.Pack()
	max1, val1 := m.Max(), append([]uint64(nil), m.value...)
	m.Pack()
	if m.Max() != max1 {
		t.Fatalf("pack not idempotent: max changed from %d to %d", max1, m.Max())
	}
	for i := range val1 {
		if m.value[i] != val1[i] {
			t.Fatalf("pack not idempotent: value[%d] changed", i)
		}
	}
}

func TestFindOrAddNoDuplicateOnReinsert(t *testing.T) {
	h := hash.New(3, 4, 1)
	m := New(h, MinTableBits)
	id1 := m.FindOrAdd(555, true)
	id2 := m.FindOrAdd(555, true)
	if id1 != id2 {
		t.Fatalf("re-inserting the same hash must return the same id: %d vs %d", id1, id2)
	}
	if m.Max() != 1 {
		t.Fatalf("max = %d, want 1 (no duplicate entry)", m.Max())
	}
}

func TestCapacityExhaustionIsFatal(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on capacity exhaustion")
		}
	}()
	h := hash.New(3, 4, 1)
	m := New(h, MinTableBits) // table_size>>2 entries max
	maxAllowed := m.TableSize() >> 2
	for i := uint64(0); i < maxAllowed+1; i++ {
		m.FindOrAdd(i*2+1, true)
	}
}

func TestBadMagicIsFatal(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on bad magic")
		}
	}()
	ReadFrom(bytes.NewReader([]byte("not a modset file at all, just garbage bytes")))
}
