// Package readset implements the read set (spec.md §3, §4.4): each read is
// stored only as its ordered list of modset hits (mod id + orientation,
// gap-encoded position) plus summary counts and bad-read flags, backed by
// an inverse index from mod id to containing reads.
//
// The array-of-structs-plus-dense-id shape follows the teacher's kmerIndex
// and kmer_index shard design (github.com/grailbio/bio/fusion/kmer_index.go):
// large owned slices, 32-bit indices as weak references, no pointer graphs.
package readset

import (
	"github.com/grailbio/base/log"

	"github.com/modimizer/core/modimizer"
	"github.com/modimizer/core/modset"
)

// Bad-read and annotation flag bits (spec.md §3).
const (
	BadRepeat uint16 = 1 << iota
	BadOrder10
	BadOrder1
	BadNoMatch
	BadLowHit
	BadLowCopy1
	IsRDNA
)

// orientationBit marks the top bit of a packed hit as forward orientation
// (spec.md §9: "Orientation as a top bit ... mod_id limited to 31 bits").
const orientationBit uint32 = 1 << 31
const modIDMask uint32 = orientationBit - 1

// PackHit combines a dense mod id (must fit in 31 bits) with an orientation
// flag into the wire representation used by Read.Hit.
func PackHit(modID uint32, isForward bool) uint32 {
	if modID&orientationBit != 0 {
		log.Panicf("readset: mod id %d does not fit in 31 bits", modID)
	}
	if isForward {
		return modID | orientationBit
	}
	return modID
}

// UnpackHit splits a packed hit back into its mod id and orientation.
func UnpackHit(h uint32) (modID uint32, isForward bool) {
	return h & modIDMask, h&orientationBit != 0
}

// FlipOrientation returns the packed hit with its orientation bit
// inverted, leaving the mod id unchanged. Layout traversal uses this to
// build the reversed-direction counterpart of a link (spec.md §9: "the
// overlap engine depends on a cheap XOR to reverse orientation" -- layout
// relies on the same packing for the same reason).
func FlipOrientation(h uint32) uint32 { return h ^ orientationBit }

// Read is one sequencing read reduced to its modset hit trace (spec.md §3).
type Read struct {
	Len       uint32
	NHit      uint32
	NMiss     uint32
	Contained uint32 // id of a read that contains this one, or 0
	NCopy     [4]uint32
	Flags     uint16

	// Hit[i] is a dense mod id packed with an orientation bit (spec.md §9).
	Hit []uint32
	// Dx[i] is the 16-bit gap from the previous hit (Dx[0] is the gap from
	// position 0). Invariant: sum(Dx) <= Len.
	Dx []uint16
}

func (r *Read) HasFlag(f uint16) bool { return r.Flags&f != 0 }
func (r *Read) SetFlag(f uint16)      { r.Flags |= f }
func (r *Read) ClearFlag(f uint16)    { r.Flags &^= f }

// Positions returns the absolute position of each hit, recovered by
// prefix-summing Dx.
func (r *Read) Positions() []uint32 {
	pos := make([]uint32, len(r.Dx))
	var acc uint32
	for i, d := range r.Dx {
		acc += uint32(d)
		pos[i] = acc
	}
	return pos
}

// ReadSet is the modset plus the ordered sequence of Reads and the inverse
// index (spec.md §3). Reads[0] is a burned sentinel; real reads start at
// id 1.
type ReadSet struct {
	Modset *modset.Modset
	Reads  []Read

	invOffset []uint32 // per mod id, start offset into inv (0 for id 0 / omitted)
	invCount  []uint32 // per mod id, live entry count (0 for saturated/omitted)
	inv       []uint32 // backing buffer of read ids

	TotalHit uint64
}

// New creates an empty ReadSet over an existing modset. The modset is
// referenced, not copied; Ingest never adds entries to it (find, not
// find-or-add) but does increment the depth of every mod it hits.
func New(ms *modset.Modset) *ReadSet {
	return &ReadSet{Modset: ms, Reads: make([]Read, 1)}
}

// Ingest runs the modimizer iterator over seq (2-bit encoded, length
// seqLen) against the read set's modset in find-only mode, appending a new
// Read and returning its id (spec.md §4.4).
//
// It is fatal if two consecutive hits are more than 65535 bases apart: the
// caller's read length contract has been violated (spec.md §4.4, "a single
// step greater than 65535 is a contract violation").
func (rs *ReadSet) Ingest(seq []byte, seqLen uint32) uint32 {
	r := Read{Len: seqLen}
	lastPos := 0
	it := modimizer.New(rs.Modset.Hasher(), seq)
	for it.Scan() {
		hit := it.Get()
		id := rs.Modset.Find(hit.Hash)
		if id == 0 {
			r.NMiss++
			continue
		}
		gap := hit.Pos - lastPos
		if gap < 0 {
			log.Panicf("readset: modimizer position went backwards (%d after %d)", hit.Pos, lastPos)
		}
		if gap > 0xFFFF {
			log.Panicf("readset: gap of %d bases exceeds 16 bits", gap)
		}
		lastPos = hit.Pos
		r.Hit = append(r.Hit, PackHit(id, hit.IsForward))
		r.Dx = append(r.Dx, uint16(gap))
		rs.Modset.IncrDepth(id)
		cls := modset.CopyClassOf(rs.Modset.Info(id))
		r.NCopy[cls]++
	}
	r.NHit = uint32(len(r.Hit))
	rs.Reads = append(rs.Reads, r)
	rs.TotalHit += uint64(len(r.Hit))
	return uint32(len(rs.Reads) - 1)
}

// InvBuild (re)builds the inverse index from the current reads and modset
// depths (spec.md §4.4). Must be called after all ingestion and before any
// query that relies on InvList. A mod id whose depth has saturated
// (== modset.MaxDepth) is omitted from the inverse index, matching the
// modset's saturation-as-sentinel convention (spec.md §9).
func (rs *ReadSet) InvBuild() {
	max := rs.Modset.Max()
	offset := make([]uint32, max+1)
	count := make([]uint32, max+1)

	var total uint32
	for id := uint32(1); id <= max; id++ {
		d := rs.Modset.Depth(id)
		if d == modset.MaxDepth {
			continue
		}
		offset[id] = total
		count[id] = uint32(d)
		total += uint32(d)
	}

	inv := make([]uint32, total)
	cursor := append([]uint32(nil), offset...)
	for readID := 1; readID < len(rs.Reads); readID++ {
		for _, packed := range rs.Reads[readID].Hit {
			modID, _ := UnpackHit(packed)
			if rs.Modset.Depth(modID) == modset.MaxDepth {
				continue
			}
			inv[cursor[modID]] = uint32(readID)
			cursor[modID]++
		}
	}

	rs.invOffset, rs.invCount, rs.inv = offset, count, inv
}

// InvList returns the (possibly empty) list of read ids containing mod id
// modID, or nil if modID is saturated or InvBuild has not been called.
func (rs *ReadSet) InvList(modID uint32) []uint32 {
	if rs.inv == nil || int(modID) >= len(rs.invOffset) {
		return nil
	}
	if rs.Modset.Depth(modID) == modset.MaxDepth {
		return nil
	}
	off, n := rs.invOffset[modID], rs.invCount[modID]
	return rs.inv[off : off+n]
}
