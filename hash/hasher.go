// Package hash implements the canonical k-mer hashing scheme that the
// modimizer iterator and modset both depend on.
//
// A Hasher is immutable after construction. It is parameterized by k (k-mer
// length, in bases), w (the modimizer modulus), and a seed. From these it
// derives everything a rolling scan needs: a multiplicative constant that
// makes hashing a bijection on the low 2*k bits, and a per-base table for
// maintaining the reverse-complement hash incrementally.
package hash

import (
	"encoding/binary"
	"io"
	"math/rand"

	"github.com/grailbio/base/log"
)

// magic is the fixed 8-byte header written before a serialized Hasher.
const magic = "SQHSHv2\x00"

// MaxK is the largest k-mer length supported; a k-mer must fit in 2*k <= 64
// bits with room for the canonical-hash multiply-shift to make sense.
const MaxK = 31

// Backend selects which 64-bit mixing function turns a packed k-mer integer
// into a hash value. The default, Builtin, is the scheme spec.md describes
// (odd multiplier derived from seed, high-bit shift). Farm and Seahash are
// alternate backends wired in for operators who want to compare against
// other k-mer tools in this space; none of them change any invariant that
// depends only on "canonical hash is strand-invariant and 0 mod w
// identifies modimizer hits".
type Backend uint8

const (
	// Builtin is the odd-multiplier / high-bit-shift scheme of spec.md §4.1.
	Builtin Backend = iota
	// Farm uses github.com/dgryski/go-farm, the hash the teacher's own
	// kmer_index shard table uses.
	Farm
	// Seahash uses github.com/blainsmith/seahash.
	Seahash
)

func (b Backend) String() string {
	switch b {
	case Builtin:
		return "builtin"
	case Farm:
		return "farm"
	case Seahash:
		return "sea"
	default:
		return "unknown"
	}
}

// LookupBackend maps a CLI-facing name to a Backend, reporting false instead
// of panicking when name isn't recognized. This is the form CLI flag parsing
// should use, since the flag value comes from an operator and a typo isn't a
// programmer error (spec.md §7 reserves "fatal" for parameter-domain,
// corruption, and capacity errors, not CLI input).
func LookupBackend(name string) (Backend, bool) {
	switch name {
	case "", "builtin", "xxh":
		return Builtin, true
	case "farm":
		return Farm, true
	case "sea", "seahash":
		return Seahash, true
	default:
		return Builtin, false
	}
}

// ParseBackend maps a CLI-facing name to a Backend. It panics on an unknown
// name; callers should prefer LookupBackend when name originates at a CLI
// boundary and an operator typo must produce an error, not a crash.
func ParseBackend(name string) Backend {
	b, ok := LookupBackend(name)
	if !ok {
		log.Panicf("hash: unknown backend %q", name)
	}
	return b
}

// Hasher computes the canonical hash of a k-mer and maintains the tables a
// rolling scan needs to update forward and reverse-complement hashes
// incrementally. See spec.md §3 and §4.1.
type Hasher struct {
	k       int
	w       int
	seed    int64
	backend Backend

	mask    uint64 // (1<<2k) - 1
	factor1 uint64 // odd 64-bit multiplier derived from seed
	shift1  uint   // 64 - 2k

	// patternRC[b] is ORed into the rolling reverse-complement hash when base
	// b is consumed: patternRC[b] = (3-b) << (2*(k-1)).
	patternRC [4]uint64
}

// New constructs a Hasher for the given k-mer length, modimizer modulus, and
// seed. It is fatal (panics) if k is outside [1, MaxK] or w < 1, matching
// spec.md §7's "Parameter domain error ... Fatal at construction."
func New(k, w int, seed int64) *Hasher {
	if k < 1 || k > MaxK {
		log.Panicf("hash: k=%d out of range [1,%d]", k, MaxK)
	}
	if w < 1 {
		log.Panicf("hash: w=%d must be >= 1", w)
	}
	return newWithBackend(k, w, seed, Builtin)
}

// NewWithBackend is like New but selects an alternate mixing backend
// (SPEC_FULL.md §4.10). The default backend, used by New, is Builtin.
func NewWithBackend(k, w int, seed int64, backend Backend) *Hasher {
	if k < 1 || k > MaxK {
		log.Panicf("hash: k=%d out of range [1,%d]", k, MaxK)
	}
	if w < 1 {
		log.Panicf("hash: w=%d must be >= 1", w)
	}
	return newWithBackend(k, w, seed, backend)
}

func newWithBackend(k, w int, seed int64, backend Backend) *Hasher {
	h := &Hasher{
		k:       k,
		w:       w,
		seed:    seed,
		backend: backend,
		mask:    uint64(1)<<(uint(k)*2) - 1,
		shift1:  uint(64 - 2*k),
	}
	h.factor1 = deriveFactor1(seed)
	for b := uint64(0); b < 4; b++ {
		h.patternRC[b] = (3 - b) << (uint(k-1) * 2)
	}
	return h
}

// deriveFactor1 pulls two 32-bit pseudo-random values from a generator
// seeded reproducibly with seed, combines them into a 64-bit word, and
// forces the low bit on so that multiplication by the result is a bijection
// on the low 2*k bits (spec.md §4.1).
func deriveFactor1(seed int64) uint64 {
	r := rand.New(rand.NewSource(seed))
	hi := uint64(r.Uint32())
	lo := uint64(r.Uint32())
	v := (hi << 32) | lo
	return v | 1
}

// K, W, Seed, and BackendOf expose the parameters a caller needs to check
// compatibility before a merge (spec.md §4.3 "Merge ... Fail if hashers
// differ in k, w, or factor1").
func (h *Hasher) K() int             { return h.k }
func (h *Hasher) W() int             { return h.w }
func (h *Hasher) Seed() int64        { return h.seed }
func (h *Hasher) Factor1() uint64    { return h.factor1 }
func (h *Hasher) BackendOf() Backend { return h.backend }

// Compatible reports whether two hashers may be merged: same k, w, and
// factor1 (and hence the same backend, since factor1 only makes sense
// within the Builtin scheme, and the two non-builtin backends bypass it
// entirely -- Compatible compares backend as well for those).
func (h *Hasher) Compatible(o *Hasher) bool {
	return h.k == o.k && h.w == o.w && h.factor1 == o.factor1 && h.backend == o.backend
}

// Mask returns (1<<2k)-1, the bitmask of a fully-packed k-mer.
func (h *Hasher) Mask() uint64 { return h.mask }

// RCPattern returns the table such that RCPattern()[b] is ORed into the
// rolling reverse-complement hash when base b (in {0,1,2,3}) is consumed.
func (h *Hasher) RCPattern() [4]uint64 { return h.patternRC }

// Hash computes the canonical 64-bit hash of a packed k-mer value x (the low
// 2*k bits of x hold the bases, most-significant base first). This is
// exactly spec.md §4.1's "(x . factor1) >> shift1", except when an
// alternate Backend was selected, in which case the corresponding mixing
// function is used directly on x instead.
func (h *Hasher) Hash(x uint64) uint64 {
	switch h.backend {
	case Farm:
		return farmHash64(x)
	case Seahash:
		return seaHash64(x)
	default:
		return (x * h.factor1) >> h.shift1
	}
}

// WriteTo serializes the Hasher in the format spec.md §4.1/§6 describes:
// an 8-byte magic, then seed, k, w, mask, shift1, factor1, backend and the
// patternRC table, in that order, each little-endian.
func (h *Hasher) WriteTo(w io.Writer) error {
	var buf [8]byte
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf[:], uint64(h.seed))
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	var b4 [4]byte
	binary.LittleEndian.PutUint32(b4[:], uint32(h.k))
	if _, err := w.Write(b4[:]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b4[:], uint32(h.w))
	if _, err := w.Write(b4[:]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf[:], h.mask)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b4[:], uint32(h.shift1))
	if _, err := w.Write(b4[:]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(buf[:], h.factor1)
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b4[:], uint32(h.backend))
	if _, err := w.Write(b4[:]); err != nil {
		return err
	}
	for _, p := range h.patternRC {
		binary.LittleEndian.PutUint64(buf[:], p)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrom deserializes a Hasher written by WriteTo. It is fatal (panics) on
// a magic mismatch or short read, matching spec.md §7's "Corrupt serialized
// form ... Fatal on load."
func ReadFrom(r io.Reader) *Hasher {
	var magicBuf [8]byte
	if _, err := io.ReadFull(r, magicBuf[:]); err != nil {
		log.Panicf("hash: reading magic: %v", err)
	}
	if string(magicBuf[:]) != magic {
		log.Panicf("hash: bad magic %q, want %q", magicBuf, magic)
	}
	var buf8 [8]byte
	var buf4 [4]byte
	readU64 := func() uint64 {
		if _, err := io.ReadFull(r, buf8[:]); err != nil {
			log.Panicf("hash: short read: %v", err)
		}
		return binary.LittleEndian.Uint64(buf8[:])
	}
	readU32 := func() uint32 {
		if _, err := io.ReadFull(r, buf4[:]); err != nil {
			log.Panicf("hash: short read: %v", err)
		}
		return binary.LittleEndian.Uint32(buf4[:])
	}
	h := &Hasher{}
	h.seed = int64(readU64())
	h.k = int(readU32())
	h.w = int(readU32())
	h.mask = readU64()
	h.shift1 = uint(readU32())
	h.factor1 = readU64()
	h.backend = Backend(readU32())
	for i := range h.patternRC {
		h.patternRC[i] = readU64()
	}
	return h
}
