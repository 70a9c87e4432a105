package hash

import (
	"bytes"
	"testing"
)

// packKmer packs bases (each in {0,1,2,3}) into a k-mer integer,
// most-significant base first, matching the rolling-hash convention used by
// modimizer.Iterator.
func packKmer(bases []byte) uint64 {
	var x uint64
	for _, b := range bases {
		x = (x << 2) | uint64(b)
	}
	return x
}

func reverseComplement(bases []byte) []byte {
	out := make([]byte, len(bases))
	for i, b := range bases {
		out[len(bases)-1-i] = 3 - b
	}
	return out
}

func canonicalHash(h *Hasher, bases []byte) uint64 {
	fwd := h.Hash(packKmer(bases))
	rev := h.Hash(packKmer(reverseComplement(bases)))
	if fwd < rev {
		return fwd
	}
	return rev
}

// TestHasherReproducibility is spec.md §8 scenario 1: with k=3, w=2, seed=17,
// the canonical hash of ACG ([0,1,2]) equals the canonical hash of its
// reverse complement CGT ([1,2,3]), and rebuilding with the same seed
// reproduces factor1.
func TestHasherReproducibility(t *testing.T) {
	h1 := New(3, 2, 17)
	h2 := New(3, 2, 17)
	if h1.Factor1() != h2.Factor1() {
		t.Fatalf("factor1 not reproducible: %x vs %x", h1.Factor1(), h2.Factor1())
	}
	if h1.Factor1()&1 == 0 {
		t.Fatalf("factor1 must be odd, got %x", h1.Factor1())
	}

	acg := []byte{0, 1, 2}
	cgt := []byte{1, 2, 3}
	if got, want := canonicalHash(h1, cgt), canonicalHash(h1, acg); got != want {
		t.Fatalf("canonical hash of reverse complement mismatch: %d vs %d", got, want)
	}
}

// TestCanonicalHashStrandInvariant is the universal invariant from spec.md
// §8: hash(reverse_complement(x)) == hash(x) in the canonical sense, for a
// variety of k and seeds.
func TestCanonicalHashStrandInvariant(t *testing.T) {
	for _, k := range []int{1, 3, 7, 21, 31} {
		h := New(k, 4, 12345)
		bases := make([]byte, k)
		for i := range bases {
			bases[i] = byte((i * 3) % 4)
		}
		rc := reverseComplement(bases)
		if got, want := canonicalHash(h, rc), canonicalHash(h, bases); got != want {
			t.Errorf("k=%d: canonical hash not strand invariant: %d vs %d", k, got, want)
		}
	}
}

func TestDifferentSeedsDifferentFactor1(t *testing.T) {
	h1 := New(5, 4, 1)
	h2 := New(5, 4, 2)
	if h1.Factor1() == h2.Factor1() {
		t.Fatalf("expected different factor1 for different seeds")
	}
}

func TestHasherSerializationRoundTrip(t *testing.T) {
	h := New(11, 7, 9999)
	var buf bytes.Buffer
	if err := h.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	h2 := ReadFrom(&buf)
	if h.k != h2.k || h.w != h2.w || h.seed != h2.seed || h.mask != h2.mask ||
		h.shift1 != h2.shift1 || h.factor1 != h2.factor1 || h.backend != h2.backend ||
		h.patternRC != h2.patternRC {
		t.Fatalf("round trip mismatch: %+v vs %+v", h, h2)
	}
}

func TestHasherBadMagic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on bad magic")
		}
	}()
	ReadFrom(bytes.NewReader([]byte("garbage\x00 and then some more bytes")))
}

func TestCompatible(t *testing.T) {
	h1 := New(5, 4, 1)
	h2 := New(5, 4, 1)
	h3 := New(5, 4, 2)
	h4 := New(6, 4, 1)
	if !h1.Compatible(h2) {
		t.Fatalf("expected h1 compatible with h2")
	}
	if h1.Compatible(h3) {
		t.Fatalf("expected h1 incompatible with h3 (different seed/factor1)")
	}
	if h1.Compatible(h4) {
		t.Fatalf("expected h1 incompatible with h4 (different k)")
	}
}

func TestAlternateBackends(t *testing.T) {
	for _, b := range []Backend{Farm, Seahash} {
		h := NewWithBackend(7, 4, 42, b)
		bases := []byte{0, 1, 2, 3, 0, 1, 2}
		rc := reverseComplement(bases)
		if got, want := canonicalHash(h, rc), canonicalHash(h, bases); got != want {
			t.Errorf("backend %v: canonical hash not strand invariant: %d vs %d", b, got, want)
		}
	}
}

func TestParseBackend(t *testing.T) {
	cases := map[string]Backend{"": Builtin, "xxh": Builtin, "farm": Farm, "sea": Seahash, "seahash": Seahash}
	for name, want := range cases {
		if got := ParseBackend(name); got != want {
			t.Errorf("ParseBackend(%q) = %v, want %v", name, got, want)
		}
	}
}
