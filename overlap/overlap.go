// Package overlap implements the overlap engine (spec.md §4.5): given a
// query read and its read set's inverse index, find every other read
// sharing enough copy-1 modset hits, classify the relative orientation,
// order consistency, and containment, and flag reads with no usable
// candidate.
package overlap

import (
	"sort"

	"github.com/modimizer/core/modset"
	"github.com/modimizer/core/readset"
)

// minSharedHits is the threshold below which a candidate is not considered
// a real overlap (spec.md §4.5 step 3/4).
const minSharedHits = 3

// Overlap is a transient per-candidate classification record (spec.md §3).
type Overlap struct {
	ReadID         uint32
	SharedHitCount uint32
	IsPlus         bool
	IsContained    bool
	NBadOrder      uint32
	NBadFlip       uint32
}

// Engine holds scratch state reused across queries against one read set
// (spec.md §4.5, §9: "Several routines rely on scratch vectors sized once
// to the modset/read set dimensions ... attach them to a per-thread engine
// object owned by the caller; do not use module-level mutable state"). An
// Engine is not safe for concurrent use by multiple goroutines -- give each
// worker its own.
type Engine struct {
	rs *readset.ReadSet

	hmap    []int32  // mod id -> 1-based hit index in x; 0 = not seen at copy 1
	touched []uint32 // mod ids touched this query, for cheap reset

	omap map[uint32]int // read id -> index into olap
	olap []Overlap

	xpos []uint32
}

// NewEngine creates an Engine sized to rs's current modset dimensions. If
// the modset grows afterward (more find-or-adds), construct a new Engine.
func NewEngine(rs *readset.ReadSet) *Engine {
	return &Engine{
		rs:   rs,
		hmap: make([]int32, rs.Modset.Max()+1),
		omap: make(map[uint32]int),
	}
}

func (e *Engine) reset() {
	for _, m := range e.touched {
		e.hmap[m] = 0
	}
	e.touched = e.touched[:0]
	for k := range e.omap {
		delete(e.omap, k)
	}
	e.olap = e.olap[:0]
}

// Query classifies every read sharing copy-1 modset hits with read xID and
// returns the candidates with shared-hit count >= 3, sorted descending by
// that count (spec.md §4.5). As a side effect it sets xID's bad* flags
// (badRepeat, badNoMatch, badLowHit, badLowCopy1) as specified.
func (e *Engine) Query(xID uint32) []Overlap {
	e.reset()
	x := &e.rs.Reads[xID]

	if cap(e.xpos) < len(x.Hit)+1 {
		e.xpos = make([]uint32, len(x.Hit)+1)
	}
	xpos := e.xpos[:len(x.Hit)+1]
	xpos[0] = 0

	for j, packed := range x.Hit {
		modID, _ := readset.UnpackHit(packed)
		xpos[j+1] = xpos[j] + uint32(x.Dx[j])

		if modset.CopyClassOf(e.rs.Modset.Info(modID)) != modset.CopyUnique {
			continue
		}
		if e.hmap[modID] != 0 {
			x.SetFlag(readset.BadRepeat)
			continue
		}
		e.hmap[modID] = int32(j + 1)
		e.touched = append(e.touched, modID)

		for _, yID := range e.rs.InvList(modID) {
			if yID == xID {
				continue
			}
			idx, ok := e.omap[yID]
			if !ok {
				idx = len(e.olap)
				e.olap = append(e.olap, Overlap{ReadID: yID})
				e.omap[yID] = idx
			}
			e.olap[idx].SharedHitCount++
		}
	}

	sort.Slice(e.olap, func(i, j int) bool {
		return e.olap[i].SharedHitCount > e.olap[j].SharedHitCount
	})

	survivors := 0
	for i := range e.olap {
		o := &e.olap[i]
		if o.SharedHitCount < minSharedHits {
			break
		}
		y := &e.rs.Reads[o.ReadID]
		if !y.HasFlag(readset.BadOrder10 | readset.BadOrder1) {
			e.classify(o, x, y, xpos)
		}
		survivors++
	}
	result := e.olap[:survivors]

	if survivors == 0 {
		x.SetFlag(readset.BadNoMatch)
		if x.NHit < 10 {
			x.SetFlag(readset.BadLowHit)
		}
		if x.NCopy[modset.CopyUnique] < 10 {
			x.SetFlag(readset.BadLowCopy1)
		}
	}
	return result
}

// classify fills in orientation, order, and containment fields for a
// candidate overlap (spec.md §4.5 step 3).
func (e *Engine) classify(o *Overlap, x, y *readset.Read, xpos []uint32) {
	var nPlus, nMinus uint32
	for j, packed := range y.Hit {
		modID, yFwd := readset.UnpackHit(packed)
		ihx := e.hmap[modID]
		if ihx == 0 {
			continue
		}
		_, xFwd := readset.UnpackHit(x.Hit[ihx-1])
		if xFwd == yFwd {
			nPlus++
		} else {
			nMinus++
		}
		_ = j
	}
	isPlus := nPlus >= nMinus
	o.IsPlus = isPlus

	var yPos uint32
	var lastIhx int32 = -1
	var lastDiff int64
	isContained := false
	containedTriggered := false
	var nBadOrder uint32

	for j, packed := range y.Hit {
		modID, _ := readset.UnpackHit(packed)
		yPos += uint32(y.Dx[j])
		ihx := e.hmap[modID]
		if ihx == 0 {
			continue
		}

		var diff int64
		if isPlus {
			diff = int64(xpos[ihx]) - int64(yPos)
		} else {
			diff = int64(x.Len) - int64(xpos[ihx]) - int64(yPos)
		}
		if !containedTriggered && diff < 0 {
			isContained = true
			containedTriggered = true
		}
		lastDiff = diff

		if lastIhx >= 0 {
			if isPlus && int32(ihx) < lastIhx {
				nBadOrder++
				nPlus--
			} else if !isPlus && int32(ihx) > lastIhx {
				nBadOrder++
				nMinus--
			}
		}
		lastIhx = int32(ihx)
	}

	if isContained && int64(x.Len)-lastDiff > int64(y.Len) {
		isContained = false
	}

	o.IsContained = isContained
	o.NBadOrder = nBadOrder
	if isPlus {
		o.NBadFlip = nMinus
	} else {
		o.NBadFlip = nPlus
	}
}

// SharedHit is one shared copy-1 mod between two reads, for debug reporting.
type SharedHit struct {
	ModID            uint32
	PosX, PosY       uint32
	OrientX, OrientY bool
}

// Report walks both hit lists of reads xID and yID and emits each shared
// copy-1 mod's position and orientation in each read (spec.md §4.5,
// "Pairwise overlap report (debug)"). Diagnostics only; not used by Query.
func (e *Engine) Report(xID, yID uint32) []SharedHit {
	x := &e.rs.Reads[xID]
	y := &e.rs.Reads[yID]
	xpos := x.Positions()

	type entry struct {
		pos uint32
		fwd bool
	}
	xIndex := make(map[uint32]entry, len(x.Hit))
	for j, packed := range x.Hit {
		modID, fwd := readset.UnpackHit(packed)
		if modset.CopyClassOf(e.rs.Modset.Info(modID)) != modset.CopyUnique {
			continue
		}
		xIndex[modID] = entry{pos: xpos[j], fwd: fwd}
	}

	var out []SharedHit
	var yPos uint32
	for j, packed := range y.Hit {
		yPos += uint32(y.Dx[j])
		modID, yFwd := readset.UnpackHit(packed)
		if modset.CopyClassOf(e.rs.Modset.Info(modID)) != modset.CopyUnique {
			continue
		}
		if xe, ok := xIndex[modID]; ok {
			out = append(out, SharedHit{ModID: modID, PosX: xe.pos, OrientX: xe.fwd, PosY: yPos, OrientY: yFwd})
		}
	}
	return out
}
