package modimizer

import "github.com/modimizer/core/hash"

// MinimizerIterator implements the minimizer variant of the k-mer scan
// (spec.md §4.2): over a sliding window of w consecutive k-mers, it emits
// the k-mer with the smallest canonical hash, recomputing the minimum at
// every window position, so it changes both when the window slides past the
// current minimum and when a smaller k-mer enters. Ties are broken toward
// the leftmost (earliest-position) occurrence.
//
// This is not the primary core path (the modset is built from Iterator's
// modimizer hits), but refmap's reference seeding uses it, as do other
// k-mer indexing tools in this space.
type MinimizerIterator struct {
	h   *hash.Hasher
	seq []byte
	k   int
	w   int // window width, in k-mers

	mask uint64
	rc   [4]uint64

	fwd, rev uint64
	pos      int // index of the next base to consume
	kmerIdx  int // index (0-based) of the next k-mer to compute

	window []Hit // canonical hashes for the last <=w k-mers, by kmer index

	done bool
	cur  Hit
}

// NewMinimizer creates a MinimizerIterator with window width w (in
// consecutive k-mers, independent of h.W() which is the modimizer
// iterator's modulus and is ignored here).
func NewMinimizer(h *hash.Hasher, seq []byte, w int) *MinimizerIterator {
	if w < 1 {
		w = 1
	}
	return &MinimizerIterator{
		h:      h,
		seq:    seq,
		k:      h.K(),
		w:      w,
		mask:   h.Mask(),
		rc:     h.RCPattern(),
		window: make([]Hit, 0, w),
	}
}

func (it *MinimizerIterator) consume(base byte) {
	it.fwd = ((it.fwd << 2) & it.mask) | uint64(base)
	it.rev = (it.rev >> 2) | it.rc[base]
}

func (it *MinimizerIterator) canonicalAt(startPos int) Hit {
	hashFwd := it.h.Hash(it.fwd)
	hashRev := it.h.Hash(it.rev)
	if hashFwd <= hashRev {
		return Hit{Kmer: it.fwd, Hash: hashFwd, Pos: startPos, IsForward: true}
	}
	return Hit{Kmer: it.rev, Hash: hashRev, Pos: startPos, IsForward: false}
}

// fillWindow advances the scan until the window holds min(w, available)
// k-mers, or the sequence is exhausted.
func (it *MinimizerIterator) fillWindow() {
	if len(it.seq) < it.k {
		it.done = true
		return
	}
	if it.kmerIdx == 0 {
		for i := 0; i < it.k; i++ {
			it.consume(it.seq[i])
		}
		it.pos = it.k
		it.window = append(it.window, it.canonicalAt(0))
		it.kmerIdx = 1
	}
	for len(it.window) < it.w && it.pos < len(it.seq) {
		it.consume(it.seq[it.pos])
		startPos := it.pos - it.k + 1
		it.pos++
		it.window = append(it.window, it.canonicalAt(startPos))
		it.kmerIdx++
	}
}

// slideOne drops the oldest k-mer from the window and appends the next one,
// if any remain in the sequence.
func (it *MinimizerIterator) slideOne() bool {
	if it.pos >= len(it.seq) {
		it.window = it.window[1:]
		return len(it.window) > 0
	}
	it.consume(it.seq[it.pos])
	startPos := it.pos - it.k + 1
	it.pos++
	it.window = append(it.window[1:], it.canonicalAt(startPos))
	it.kmerIdx++
	return true
}

func (it *MinimizerIterator) currentMin() int {
	best := 0
	for i := 1; i < len(it.window); i++ {
		if it.window[i].Hash < it.window[best].Hash {
			best = i
		}
	}
	return best
}

// Scan advances to the next minimizer and reports whether one was found.
// For any window of length >= w starting within the sequence, exactly one
// minimum is emitted per window position, with leftmost ties preferred.
func (it *MinimizerIterator) Scan() bool {
	if it.done {
		return false
	}
	if len(it.window) == 0 && it.kmerIdx == 0 {
		it.fillWindow()
		if it.done {
			return false
		}
	} else if !it.slideOne() {
		it.done = true
		return false
	}
	if len(it.window) == 0 {
		it.done = true
		return false
	}
	it.cur = it.window[it.currentMin()]
	return true
}

// Get returns the minimizer found by the most recent successful Scan call.
func (it *MinimizerIterator) Get() Hit { return it.cur }
