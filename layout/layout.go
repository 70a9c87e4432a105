// Package layout implements the mod-driven layout/assembly traversal
// (spec.md §4.7): starting from a seed mod, gather linking triples across
// supporting reads and extend the layout one mod at a time by successive
// majority votes, producing a coordinate assignment per participating
// read.
package layout

import (
	"sort"

	"github.com/biogo/store/interval"

	"github.com/modimizer/core/modset"
	"github.com/modimizer/core/readset"
)

// Link is a transient linking triple between two successive hits within a
// read, oriented so that From always leads To (spec.md §3).
type Link struct {
	From   uint32 // orientation-bit packed mod id
	To     uint32 // orientation-bit packed mod id; 0 marks a read-end sentinel
	ReadID uint32
	Pos    uint32 // coordinate of To in a frame consistent with From's orientation
}

// Table is the sorted link table plus its per-mod-orientation starting
// offsets (spec.md §4.7 steps 2-3), built once and reused across traversals
// from different seeds.
type Table struct {
	rs    *readset.ReadSet
	links []Link
	start map[uint32]int
}

// Build constructs the link table over every read in rs (spec.md §4.7 step
// 2): successive non-copy-0 hits become a Link, each read contributes two
// read-boundary sentinel links, and every link has a reversed-orientation
// counterpart so traversal can walk a read in either direction.
func Build(rs *readset.ReadSet) *Table {
	var links []Link
	for id := uint32(1); id < uint32(len(rs.Reads)); id++ {
		r := &rs.Reads[id]
		pos := r.Positions()

		var idxs []int
		for j, packed := range r.Hit {
			modID, _ := readset.UnpackHit(packed)
			if modset.CopyClassOf(rs.Modset.Info(modID)) == modset.CopyError {
				continue
			}
			idxs = append(idxs, j)
		}
		if len(idxs) == 0 {
			continue
		}

		for k := 0; k+1 < len(idxs); k++ {
			j0, j1 := idxs[k], idxs[k+1]
			links = append(links, Link{From: r.Hit[j0], To: r.Hit[j1], ReadID: id, Pos: pos[j1]})
			links = append(links, Link{
				From: readset.FlipOrientation(r.Hit[j1]), To: readset.FlipOrientation(r.Hit[j0]),
				ReadID: id, Pos: r.Len - pos[j0],
			})
		}

		first, last := idxs[0], idxs[len(idxs)-1]
		links = append(links, Link{From: r.Hit[first], To: 0, ReadID: id, Pos: 0})
		links = append(links, Link{From: r.Hit[last], To: 0, ReadID: id, Pos: r.Len})
		links = append(links, Link{From: readset.FlipOrientation(r.Hit[first]), To: 0, ReadID: id, Pos: r.Len})
		links = append(links, Link{From: readset.FlipOrientation(r.Hit[last]), To: 0, ReadID: id, Pos: 0})
	}

	sort.Slice(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		if a.ReadID != b.ReadID {
			return a.ReadID < b.ReadID
		}
		return a.Pos < b.Pos
	})

	start := make(map[uint32]int)
	for i, l := range links {
		if _, ok := start[l.From]; !ok {
			start[l.From] = i
		}
	}
	return &Table{rs: rs, links: links, start: start}
}

// Layout is one read's coordinate placement in a traversal result (spec.md
// §4.7 step 5).
type Layout struct {
	ReadID   uint32
	Start    int64
	End      int64
	HitCount int
}

// maxWarnSpread is the +-10 window around the median step beyond which a
// read's own displacement is treated as an outlier worth a warning, but
// still advanced (spec.md §4.7 step 4).
const maxWarnSpread = 10

// placedRange adapts one finished Layout to biogo/store/interval's
// Interface, so the traversal's final placements can be range-queried
// instead of compared pairwise.
type placedRange struct {
	readID     uint32
	start, end int64
}

func (p placedRange) Overlap(b interval.IntRange) bool {
	return int(p.start) < b.End && b.Start < int(p.end)
}
func (p placedRange) ID() uintptr            { return uintptr(p.readID) }
func (p placedRange) Range() interval.IntRange { return interval.IntRange{Start: int(p.start), End: int(p.end)} }

// findContainmentConflicts builds an interval tree over a traversal's
// finished placements and reports every pair where one read's span fully
// contains another's (spec.md §4.6 computes containment from shared hit
// counts; this is the same relationship re-derived from the traversal's own
// coordinate frame, so a caller can cross-check the two).
func findContainmentConflicts(out []Layout) [][2]uint32 {
	var tree interval.IntTree
	for _, l := range out {
		if err := tree.Insert(placedRange{l.ReadID, l.Start, l.End}, true); err != nil {
			continue
		}
	}
	tree.AdjustRanges()

	var conflicts [][2]uint32
	for _, l := range out {
		for _, hit := range tree.Get(placedRange{l.ReadID, l.Start, l.End}) {
			other, ok := hit.(placedRange)
			if !ok || other.readID == l.ReadID {
				continue
			}
			if other.start <= l.Start && l.End <= other.end {
				conflicts = append(conflicts, [2]uint32{l.ReadID, other.readID})
			}
		}
	}
	return conflicts
}

type activeRead struct {
	pos int64
}

// Extend performs the traversal described in spec.md §4.7 step 4, starting
// from every read holding seedMod in forward orientation at anchorOffset
// (reads holding it only in reverse orientation are not seeded), and
// returns a Layout
// per participating read sorted by Start. warn, if non-nil, is called once
// per read whose per-step displacement falls outside the median's +-10
// window; it is informational only and does not affect placement. conflict,
// if non-nil, is called once per pair of finished placements where one
// read's span fully contains the other's (see findContainmentConflicts);
// it is also informational and does not affect the returned Layouts.
func (t *Table) Extend(seedMod uint32, anchorOffset int64, warn func(readID uint32, d, median int64), conflict func(readID, containedBy uint32)) []Layout {
	active := make(map[uint32]*activeRead)
	hitCount := make(map[uint32]int)

	for _, readID := range t.rs.InvList(seedMod) {
		r := &t.rs.Reads[readID]
		for _, packed := range r.Hit {
			modID, fwd := readset.UnpackHit(packed)
			if modID != seedMod || !fwd {
				continue
			}
			active[readID] = &activeRead{pos: anchorOffset}
			hitCount[readID] = 1
			break
		}
	}

	from := readset.PackHit(seedMod, true)
	for len(active) > 0 {
		type vote struct {
			ds []int64
		}
		votes := make(map[uint32]*vote)
		perReadD := make(map[uint32]int64)
		perReadTo := make(map[uint32]uint32)

		for readID, a := range active {
			start, ok := t.start[from]
			if !ok {
				continue
			}
			for i := start; i < len(t.links) && t.links[i].From == from; i++ {
				l := t.links[i]
				if l.ReadID != readID {
					continue
				}
				d := int64(l.Pos) - a.pos
				v, ok := votes[l.To]
				if !ok {
					v = &vote{}
					votes[l.To] = v
				}
				v.ds = append(v.ds, d)
				perReadD[readID] = d
				perReadTo[readID] = l.To
				break
			}
		}

		var bestTo uint32
		var bestDMin int64
		found := false
		for to, v := range votes {
			if len(v.ds)*2 <= len(active) {
				continue
			}
			dMin := v.ds[0]
			for _, d := range v.ds {
				if d < dMin {
					dMin = d
				}
			}
			if !found || dMin < bestDMin {
				found, bestTo, bestDMin = true, to, dMin
			}
		}
		if !found {
			break
		}

		ds := votes[bestTo].ds
		agree := true
		for _, d := range ds {
			if d != bestDMin {
				agree = false
				break
			}
		}
		var dBest int64
		if agree {
			dBest = bestDMin
		} else {
			sorted := append([]int64(nil), ds...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
			dBest = sorted[len(sorted)/2]
		}

		for readID, a := range active {
			to, ok := perReadTo[readID]
			if !ok || to != bestTo {
				continue
			}
			d := perReadD[readID]
			if !agree && (d < dBest-maxWarnSpread || d > dBest+maxWarnSpread) && warn != nil {
				warn(readID, d, dBest)
			}
			a.pos += d
			r := &t.rs.Reads[readID]
			if a.pos > int64(r.Len) {
				delete(active, readID)
				continue
			}
			hitCount[readID]++
		}

		if bestTo != 0 {
			modID, _ := readset.UnpackHit(bestTo)
			if modset.CopyClassOf(t.rs.Modset.Info(modID)) == modset.CopyUnique {
				t.admitNewReads(active, hitCount, bestTo, from)
			}
		}
		if bestTo == 0 {
			break
		}
		from = bestTo
	}

	var out []Layout
	for readID, a := range active {
		r := &t.rs.Reads[readID]
		out = append(out, Layout{ReadID: readID, Start: a.pos, End: a.pos + int64(r.Len), HitCount: hitCount[readID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })

	if conflict != nil {
		for _, c := range findContainmentConflicts(out) {
			conflict(c[0], c[1])
		}
	}
	return out
}

// admitNewReads brings reads not yet in active into the traversal when they
// carry a link leaving `from` into the just-chosen `to` (spec.md §4.7 step
// 4, "When the chosen to is copy-1, add any read newly reachable via a
// link (from, to, read, x) not yet in active").
func (t *Table) admitNewReads(active map[uint32]*activeRead, hitCount map[uint32]int, to, from uint32) {
	start, ok := t.start[from]
	if !ok {
		return
	}
	for i := start; i < len(t.links) && t.links[i].From == from; i++ {
		l := t.links[i]
		if l.To != to {
			continue
		}
		if _, ok := active[l.ReadID]; ok {
			continue
		}
		active[l.ReadID] = &activeRead{pos: int64(l.Pos)}
		hitCount[l.ReadID] = 1
	}
}
