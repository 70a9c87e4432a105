// Package modimizer implements the rolling canonical modimizer scan
// (spec.md §4.2): given a hasher and a 2-bit-encoded sequence, it streams
// k-mers whose canonical hash is 0 mod w, along with position and strand.
//
// The scan shape mirrors the teacher's kmerizer
// (github.com/grailbio/bio/fusion/kmer.go): prime a rolling forward and
// reverse-complement value over the first k bases, then slide one base at a
// time, recomputing the canonical hash at each position.
package modimizer

import "github.com/modimizer/core/hash"

// Hit is one modimizer hit: a k-mer whose canonical hash is 0 mod w.
type Hit struct {
	// Kmer is the packed k-mer value in canonical orientation (the one whose
	// hash was selected), most-significant base first.
	Kmer uint64
	// Hash is the canonical hash of Kmer, i.e. min(hash(fwd), hash(rc)).
	Hash uint64
	// Pos is the index of the first base of the canonical k-mer in the input
	// sequence (spec.md §9: "index of the first base ... in the input
	// sequence").
	Pos int
	// IsForward is true if the canonical orientation is the forward strand.
	IsForward bool
}

// Iterator performs the rolling canonical modimizer scan over a single
// sequence. It is lazy, finite, and non-restartable: construct a fresh
// Iterator per sequence via New.
//
// The sequence buffer must outlive the Iterator (spec.md §4.2, §5): the
// Iterator holds a non-owning reference.
type Iterator struct {
	h   *hash.Hasher
	seq []byte // 2-bit-encoded bases, one per byte, values in {0,1,2,3}
	k   int
	w   int

	mask uint64
	rc   [4]uint64

	fwd, rev uint64 // rolling raw k-mer patterns (not yet hashed)
	primed   bool
	pos      int // index of the next base to consume
	done     bool

	cur Hit
}

// New creates an Iterator over seq using h's parameters. If len(seq) < h.K(),
// the iterator is empty (spec.md §4.2 edge case).
func New(h *hash.Hasher, seq []byte) *Iterator {
	return &Iterator{
		h:    h,
		seq:  seq,
		k:    h.K(),
		w:    h.W(),
		mask: h.Mask(),
		rc:   h.RCPattern(),
	}
}

// Scan advances to the next modimizer hit and reports whether one was
// found. Call Get to retrieve it. Scan returns false once the sequence is
// exhausted; subsequent calls continue to return false.
func (it *Iterator) Scan() bool {
	if it.done {
		return false
	}
	if !it.primed {
		if len(it.seq) < it.k {
			it.done = true
			return false
		}
		for i := 0; i < it.k; i++ {
			it.consume(it.seq[i])
		}
		it.pos = it.k
		it.primed = true
		if it.emitIfHit(0) {
			return true
		}
	}
	for it.pos < len(it.seq) {
		base := it.seq[it.pos]
		it.consume(base)
		startPos := it.pos - it.k + 1
		it.pos++
		if it.emitIfHit(startPos) {
			return true
		}
	}
	it.done = true
	return false
}

// consume folds one more base into the rolling forward and reverse-
// complement k-mer patterns (spec.md §4.1).
func (it *Iterator) consume(base byte) {
	it.fwd = ((it.fwd << 2) & it.mask) | uint64(base)
	it.rev = (it.rev >> 2) | it.rc[base]
}

// emitIfHit computes the canonical hash of the current window and, if it is
// 0 mod w, populates it.cur and returns true.
func (it *Iterator) emitIfHit(startPos int) bool {
	hashFwd := it.h.Hash(it.fwd)
	hashRev := it.h.Hash(it.rev)
	isForward := hashFwd <= hashRev
	canonHash := hashFwd
	canonKmer := it.fwd
	if !isForward {
		canonHash = hashRev
		canonKmer = it.rev
	}
	if canonHash%uint64(it.w) != 0 {
		return false
	}
	it.cur = Hit{Kmer: canonKmer, Hash: canonHash, Pos: startPos, IsForward: isForward}
	return true
}

// Get returns the hit found by the most recent successful Scan call.
func (it *Iterator) Get() Hit { return it.cur }

// All drains the iterator into a slice. Convenience for tests and small
// inputs; production call sites should prefer Scan/Get to avoid the
// allocation.
func All(h *hash.Hasher, seq []byte) []Hit {
	it := New(h, seq)
	var hits []Hit
	for it.Scan() {
		hits = append(hits, it.Get())
	}
	return hits
}
