// Package badness implements the multi-pass badness labeling and
// containment-selection passes that run over a read set's overlaps
// (spec.md §4.6).
package badness

import (
	"github.com/modimizer/core/overlap"
	"github.com/modimizer/core/readset"
)

// maxBadPartners bounds the per-read bad-partners list (spec.md §4.6).
const maxBadPartners = 10

// LabelBadness runs the three-pass badness labeling over every read in rs
// (spec.md §4.6): reads with many bad overlap partners are flagged
// badOrder10, reads with a couple of surviving bad partners are flagged
// badOrder1, and any still-surviving singleton bad partner also gets
// badOrder1 (spec.md §9 notes this symmetric behavior is preserved as-is).
func LabelBadness(rs *readset.ReadSet, eng *overlap.Engine) {
	n := uint32(len(rs.Reads) - 1)
	badPartners := make([][]uint32, n+1)

	for id := uint32(1); id <= n; id++ {
		for _, o := range eng.Query(id) {
			if o.NBadOrder > 0 || o.NBadFlip > 0 {
				if len(badPartners[id]) < maxBadPartners {
					badPartners[id] = append(badPartners[id], o.ReadID)
				}
			}
		}
	}

	// Pass 1: >=10 surviving bad partners.
	for id := uint32(1); id <= n; id++ {
		if len(badPartners[id]) >= maxBadPartners {
			rs.Reads[id].SetFlag(readset.BadOrder10)
			removeFromAllLists(badPartners, id)
		}
	}

	// Pass 2: >=2 surviving bad partners.
	for id := uint32(1); id <= n; id++ {
		if rs.Reads[id].HasFlag(readset.BadOrder10) {
			continue
		}
		if len(badPartners[id]) >= 2 {
			rs.Reads[id].SetFlag(readset.BadOrder1)
			removeFromAllLists(badPartners, id)
		}
	}

	// Pass 3: any remaining singleton bad partner.
	for id := uint32(1); id <= n; id++ {
		if rs.Reads[id].HasFlag(readset.BadOrder10 | readset.BadOrder1) {
			continue
		}
		if len(badPartners[id]) == 1 {
			rs.Reads[id].SetFlag(readset.BadOrder1)
		}
	}
}

func removeFromAllLists(lists [][]uint32, id uint32) {
	for i := range lists {
		lists[i] = removeID(lists[i], id)
	}
}

func removeID(list []uint32, id uint32) []uint32 {
	out := list[:0]
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// LabelContainment walks every non-bad read's overlaps and records the
// largest-shared-hit-count candidate flagged IsContained, or 0 if none
// (spec.md §4.6, "Containment"). Run after LabelBadness so bad reads are
// skipped.
func LabelContainment(rs *readset.ReadSet, eng *overlap.Engine) {
	n := uint32(len(rs.Reads) - 1)
	for id := uint32(1); id <= n; id++ {
		x := &rs.Reads[id]
		if x.HasFlag(readset.BadOrder10 | readset.BadOrder1) {
			continue
		}
		var best uint32
		var bestCount uint32
		for _, o := range eng.Query(id) {
			if !o.IsContained || o.ReadID == id {
				continue
			}
			if o.SharedHitCount > bestCount {
				bestCount = o.SharedHitCount
				best = o.ReadID
			}
		}
		x.Contained = best
	}
}
