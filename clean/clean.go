// Package clean implements the mod cleaner and LD tester (spec.md §4.8):
// per-mod annotation flags derived from how a mod is used across reads, and
// a co-occurrence test that demotes mods whose neighbor linkage looks
// inconsistent.
package clean

import (
	"github.com/modimizer/core/modset"
	"github.com/modimizer/core/readset"
)

// Clean runs the one-pass mod cleaner (spec.md §4.8): sets REPEAT,
// INTERNAL, and MINOR info flags per mod id, then rebuilds the inverse
// index (copy classes may have changed downstream, even though Clean
// itself only touches flag bits).
//
// w is the modimizer modulus used to decide INTERNAL (a mod whose gap to
// both its same-read neighbors is smaller than w looks like it sits inside
// a locally dense cluster rather than at a natural boundary).
func Clean(rs *readset.ReadSet, w int) {
	max := rs.Modset.Max()
	lastSeenRead := make([]uint32, max+1)

	for id := uint32(1); id < uint32(len(rs.Reads)); id++ {
		r := &rs.Reads[id]
		for j, packed := range r.Hit {
			modID, _ := readset.UnpackHit(packed)

			if lastSeenRead[modID] == id {
				setFlag(rs, modID, modset.FlagRepeat)
			}
			lastSeenRead[modID] = id

			if j > 0 && j+1 < len(r.Hit) && int(r.Dx[j]) < w && int(r.Dx[j+1]) < w {
				setFlag(rs, modID, modset.FlagInternal)
			}

			depth := rs.Modset.Depth(modID)
			if j > 0 {
				neighbor, _ := readset.UnpackHit(r.Hit[j-1])
				if isMinorPair(depth, rs.Modset.Depth(neighbor)) {
					setFlag(rs, modID, modset.FlagMinor)
				}
			}
			if j+1 < len(r.Hit) {
				neighbor, _ := readset.UnpackHit(r.Hit[j+1])
				if isMinorPair(depth, rs.Modset.Depth(neighbor)) {
					setFlag(rs, modID, modset.FlagMinor)
				}
			}
		}
	}
	rs.InvBuild()
}

func setFlag(rs *readset.ReadSet, modID uint32, flag uint8) {
	rs.Modset.SetInfo(modID, rs.Modset.Info(modID)|flag)
}

func isMinorPair(d, neighbor uint16) bool {
	return uint32(neighbor) > 2*uint32(d) || uint32(d) > 2*uint32(neighbor)
}

// maxSplitAnomalies bounds the split-link count tolerated before a mod is
// demoted regardless of its good/bad neighbor ratio (spec.md §4.8).
const maxSplitAnomalies = 10

// LDTest runs the linkage-disequilibrium test over every copy-1 mod whose
// depth falls in [dmin, dmax) (dmax == 0 means unbounded), demoting a mod
// to copy-class 0 when its neighbor co-occurrence looks inconsistent
// (spec.md §4.8). Rebuilds the inverse index once after the full batch.
func LDTest(rs *readset.ReadSet, dmin, dmax uint16) {
	type candidate struct {
		modID uint32
	}
	var candidates []candidate
	rs.Modset.ForEach(func(id uint32, value uint64, depth uint16, info uint8) {
		if !inBand(depth, dmin, dmax) {
			return
		}
		if modset.CopyClassOf(info) != modset.CopyUnique {
			return
		}
		candidates = append(candidates, candidate{modID: id})
	})

	for _, c := range candidates {
		m := c.modID
		depth := rs.Modset.Depth(m)
		neighborCounts := make(map[uint32]int)
		windowObs := 0

		for _, readID := range rs.InvList(m) {
			r := &rs.Reads[readID]
			for j, packed := range r.Hit {
				modID, _ := readset.UnpackHit(packed)
				if modID != m {
					continue
				}
				if j > 0 {
					tallyNeighbor(rs, r.Hit[j-1], dmin, dmax, neighborCounts, &windowObs)
				}
				if j+1 < len(r.Hit) {
					tallyNeighbor(rs, r.Hit[j+1], dmin, dmax, neighborCounts, &windowObs)
				}
			}
		}

		nGood, nMod2 := 0, 0
		for _, count := range neighborCounts {
			if uint16(count) == depth || (windowObs > 0 && float64(count) >= 0.8*float64(windowObs)) {
				nGood++
			} else {
				nMod2++
			}
		}
		nSplit := 0
		if len(neighborCounts) > 1 {
			nSplit = len(neighborCounts) - 1
		}

		if nGood < nMod2 || nSplit > maxSplitAnomalies {
			rs.Modset.SetInfo(m, modset.SetCopyClass(rs.Modset.Info(m), modset.CopyError))
		}
	}
	rs.InvBuild()
}

func tallyNeighbor(rs *readset.ReadSet, packedNeighbor uint32, dmin, dmax uint16, counts map[uint32]int, windowObs *int) {
	neighbor, _ := readset.UnpackHit(packedNeighbor)
	if modset.CopyClassOf(rs.Modset.Info(neighbor)) != modset.CopyUnique {
		return
	}
	d := rs.Modset.Depth(neighbor)
	if !inBand(d, dmin, dmax) {
		return
	}
	counts[neighbor]++
	*windowObs++
}

func inBand(d, dmin, dmax uint16) bool {
	if dmax == 0 {
		return d >= dmin
	}
	return d >= dmin && d < dmax
}
