package overlap

import (
	"testing"

	"github.com/modimizer/core/hash"
	"github.com/modimizer/core/modset"
	"github.com/modimizer/core/readset"
)

func makeCopy1Modset(t *testing.T, n int) (*modset.Modset, []uint32) {
	t.Helper()
	h := hash.New(3, 1000000, 1)
	ms := modset.New(h, modset.MinTableBits)
	ids := make([]uint32, n)
	for i := 0; i < n; i++ {
		id := ms.FindOrAdd(uint64(100+i*97), true)
		ms.SetInfo(id, modset.SetCopyClass(ms.Info(id), modset.CopyUnique))
		ids[i] = id
	}
	return ms, ids
}

func appendManualRead(rs *readset.ReadSet, hits []uint32, fwd []bool, dx []uint16) uint32 {
	r := readset.Read{}
	for i, id := range hits {
		r.Hit = append(r.Hit, readset.PackHit(id, fwd[i]))
		r.Dx = append(r.Dx, dx[i])
		rs.Modset.IncrDepth(id)
	}
	r.NHit = uint32(len(r.Hit))
	r.Len = 1000
	rs.Reads = append(rs.Reads, r)
	rs.TotalHit += uint64(len(r.Hit))
	return uint32(len(rs.Reads) - 1)
}

// TestOverlapClassification is spec.md §8 scenario 6.
func TestOverlapClassification(t *testing.T) {
	ms, ids := makeCopy1Modset(t, 4) // A, B, C, D
	A, B, C, D := ids[0], ids[1], ids[2], ids[3]

	rs := readset.New(ms)
	xID := appendManualRead(rs,
		[]uint32{A, B, C, D},
		[]bool{true, true, true, true},
		[]uint16{10, 10, 10, 10},
	)
	yID := appendManualRead(rs,
		[]uint32{A, B, C, D},
		[]bool{true, true, true, false}, // D flipped relative to x
		[]uint16{10, 10, 10, 10},
	)
	rs.InvBuild()

	eng := NewEngine(rs)
	overlaps := eng.Query(xID)
	if len(overlaps) != 1 {
		t.Fatalf("expected exactly one candidate overlap, got %d", len(overlaps))
	}
	o := overlaps[0]
	if o.ReadID != yID {
		t.Fatalf("overlap read id = %d, want %d", o.ReadID, yID)
	}
	if o.SharedHitCount != 4 {
		t.Errorf("shared_hit_count = %d, want 4", o.SharedHitCount)
	}
	if !o.IsPlus {
		t.Errorf("isPlus = false, want true")
	}
	if o.NBadOrder != 0 {
		t.Errorf("nBadOrder = %d, want 0", o.NBadOrder)
	}
	if o.NBadFlip != 1 {
		t.Errorf("nBadFlip = %d, want 1", o.NBadFlip)
	}
}

func TestQueryBadNoMatchFlags(t *testing.T) {
	ms, ids := makeCopy1Modset(t, 2)
	rs := readset.New(ms)
	xID := appendManualRead(rs, []uint32{ids[0], ids[1]}, []bool{true, true}, []uint16{10, 10})
	rs.InvBuild()

	eng := NewEngine(rs)
	overlaps := eng.Query(xID)
	if len(overlaps) != 0 {
		t.Fatalf("expected no overlaps with no other reads present, got %d", len(overlaps))
	}
	x := &rs.Reads[xID]
	if !x.HasFlag(readset.BadNoMatch) {
		t.Errorf("expected badNoMatch to be set")
	}
	if !x.HasFlag(readset.BadLowHit) {
		t.Errorf("expected badLowHit (n_hit=2 < 10)")
	}
	if !x.HasFlag(readset.BadLowCopy1) {
		t.Errorf("expected badLowCopy1 (n_copy[1]=0, never incremented by manual fixture) to be set")
	}
}

func TestQueryBelowThresholdTruncated(t *testing.T) {
	ms, ids := makeCopy1Modset(t, 2) // only 2 shared mods possible < minSharedHits
	rs := readset.New(ms)
	xID := appendManualRead(rs, []uint32{ids[0], ids[1]}, []bool{true, true}, []uint16{10, 10})
	appendManualRead(rs, []uint32{ids[0], ids[1]}, []bool{true, true}, []uint16{10, 10})
	rs.InvBuild()

	eng := NewEngine(rs)
	overlaps := eng.Query(xID)
	if len(overlaps) != 0 {
		t.Fatalf("expected candidates with <3 shared hits to be truncated away, got %d", len(overlaps))
	}
}

func TestEngineResetBetweenQueries(t *testing.T) {
	ms, ids := makeCopy1Modset(t, 4)
	rs := readset.New(ms)
	x1 := appendManualRead(rs, []uint32{ids[0], ids[1], ids[2]}, []bool{true, true, true}, []uint16{10, 10, 10})
	x2 := appendManualRead(rs, []uint32{ids[0], ids[1], ids[2]}, []bool{true, true, true}, []uint16{10, 10, 10})
	rs.InvBuild()

	eng := NewEngine(rs)
	first := eng.Query(x1)
	second := eng.Query(x2)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one overlap per query, got %d and %d", len(first), len(second))
	}
	if first[0].SharedHitCount != 3 || second[0].SharedHitCount != 3 {
		t.Fatalf("stale scratch state leaked between queries: %+v / %+v", first[0], second[0])
	}
}
