// Package refmap implements a minimal reference seed-chaining mapper
// (SPEC_FULL.md §4.11): seed a reference with the minimizer iterator
// variant, seed a query the same way, match seed hashes, and chain matches
// that fall on a consistent diagonal.
//
// The seed-array/sort/binary-search shape follows the teacher's
// fusion/kmer_index.go shard table; the diagonal-consistency check
// generalizes fusion/stitcher.go's tryStitch overlap-normalization logic
// from "one shared k-mer between two reads" to "many shared k-mers between
// a query and a reference".
package refmap

import (
	"sort"

	"github.com/grailbio/base/log"

	"github.com/modimizer/core/hash"
	"github.com/modimizer/core/modimizer"
)

// Seed is one reference minimizer: its canonical hash, position, and strand.
type Seed struct {
	Hash      uint64
	Pos       int
	IsForward bool
}

// Reference is a sorted seed array over one reference sequence, ready for
// binary-search lookups during query mapping.
type Reference struct {
	hasher *hash.Hasher
	w      int
	seeds  []Seed
}

// BuildReference seeds seq (2-bit encoded) with the minimizer iterator at
// window width w. It is fatal if the same hash appears at two different
// reference positions (spec.md §7, "duplicate mod at a reference position"
// extended here to "duplicate seed hash").
func BuildReference(h *hash.Hasher, seq []byte, w int) *Reference {
	it := modimizer.NewMinimizer(h, seq, w)
	seen := make(map[uint64]int)
	var seeds []Seed
	for it.Scan() {
		hit := it.Get()
		if prevPos, dup := seen[hit.Hash]; dup && prevPos != hit.Pos {
			log.Panicf("refmap: duplicate seed hash %x at reference positions %d and %d", hit.Hash, prevPos, hit.Pos)
		}
		seen[hit.Hash] = hit.Pos
		seeds = append(seeds, Seed{Hash: hit.Hash, Pos: hit.Pos, IsForward: hit.IsForward})
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i].Hash < seeds[j].Hash })
	return &Reference{hasher: h, w: w, seeds: seeds}
}

// find returns the seed with the given hash, if present (spec.md assumes no
// duplicate hashes within a single reference, enforced in BuildReference).
func (r *Reference) find(h uint64) (Seed, bool) {
	i := sort.Search(len(r.seeds), func(i int) bool { return r.seeds[i].Hash >= h })
	if i < len(r.seeds) && r.seeds[i].Hash == h {
		return r.seeds[i], true
	}
	return Seed{}, false
}

// Chain is a maximal run of seed matches along a single diagonal.
type Chain struct {
	RefStart, RefEnd     int
	QueryStart, QueryEnd int
	IsForward            bool
	SeedCount            int
}

type match struct {
	refPos, queryPos int
	isForward        bool
}

// diagonal returns the sign-adjusted diagonal of a match: for a
// forward-strand match, consistent alignment keeps refPos-queryPos
// constant; for a reverse-strand match, it keeps refPos+queryPos constant
// (the query runs backwards against the reference).
func diagonal(m match) int {
	if m.isForward {
		return m.refPos - m.queryPos
	}
	return m.refPos + m.queryPos
}

// Chains maps query against ref, grouping matching seeds into diagonal
// chains (SPEC_FULL.md §4.11 step 3): consecutive matches within maxGap
// positions of each other on the same diagonal extend a chain. Returned
// chains are sorted by seed count, descending.
func Chains(ref *Reference, query []byte, maxGap int) []Chain {
	it := modimizer.NewMinimizer(ref.hasher, query, ref.w)
	var matches []match
	for it.Scan() {
		hit := it.Get()
		seed, ok := ref.find(hit.Hash)
		if !ok {
			continue
		}
		matches = append(matches, match{refPos: seed.Pos, queryPos: hit.Pos, isForward: seed.IsForward == hit.IsForward})
	}
	if len(matches) == 0 {
		return nil
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].isForward != matches[j].isForward {
			return matches[i].isForward
		}
		di, dj := diagonal(matches[i]), diagonal(matches[j])
		if di != dj {
			return di < dj
		}
		return matches[i].refPos < matches[j].refPos
	})

	var chains []Chain
	var cur []match
	flush := func() {
		if len(cur) == 0 {
			return
		}
		chains = append(chains, buildChain(cur))
		cur = nil
	}
	haveLast := false
	var lastDiag int
	var lastForward bool
	for _, m := range matches {
		d := diagonal(m)
		if haveLast && m.isForward == lastForward && d == lastDiag && m.refPos-cur[len(cur)-1].refPos <= maxGap {
			cur = append(cur, m)
		} else {
			flush()
			cur = []match{m}
		}
		lastDiag, lastForward, haveLast = d, m.isForward, true
	}
	flush()

	sort.Slice(chains, func(i, j int) bool { return chains[i].SeedCount > chains[j].SeedCount })
	return chains
}

func buildChain(ms []match) Chain {
	refMin, refMax := ms[0].refPos, ms[0].refPos
	qMin, qMax := ms[0].queryPos, ms[0].queryPos
	for _, m := range ms[1:] {
		if m.refPos < refMin {
			refMin = m.refPos
		}
		if m.refPos > refMax {
			refMax = m.refPos
		}
		if m.queryPos < qMin {
			qMin = m.queryPos
		}
		if m.queryPos > qMax {
			qMax = m.queryPos
		}
	}
	return Chain{
		RefStart: refMin, RefEnd: refMax + 1,
		QueryStart: qMin, QueryEnd: qMax + 1,
		IsForward: ms[0].isForward, SeedCount: len(ms),
	}
}

// BestChain returns the highest seed-count chain, if any.
func BestChain(ref *Reference, query []byte, maxGap int) (Chain, bool) {
	chains := Chains(ref, query, maxGap)
	if len(chains) == 0 {
		return Chain{}, false
	}
	return chains[0], true
}
