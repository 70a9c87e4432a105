package modimizer

import (
	"testing"

	"github.com/modimizer/core/hash"
)

// asciiToBase translates A/C/G/T to {0,1,2,3}, matching spec.md §6's
// 2-bit-encoding convention.
func asciiToBase(s string) []byte {
	out := make([]byte, len(s))
	for i, c := range []byte(s) {
		switch c {
		case 'A', 'a':
			out[i] = 0
		case 'C', 'c':
			out[i] = 1
		case 'G', 'g':
			out[i] = 2
		case 'T', 't':
			out[i] = 3
		default:
			out[i] = 0
		}
	}
	return out
}

func kmerAt(seq []byte, pos, k int, forward bool) uint64 {
	var x uint64
	if forward {
		for i := 0; i < k; i++ {
			x = (x << 2) | uint64(seq[pos+i])
		}
		return x
	}
	for i := k - 1; i >= 0; i-- {
		x = (x << 2) | uint64(3-seq[pos+i])
	}
	return x
}

// TestModimizerScenario is spec.md §8 scenario 5.
func TestModimizerScenario(t *testing.T) {
	seq := asciiToBase("AAAACGGTTTTT")
	k, w := 4, 3
	h := hash.New(k, w, 1)

	hits := All(h, seq)
	if len(hits) == 0 {
		t.Fatalf("expected at least one hit")
	}
	lastPos := -1
	for _, hit := range hits {
		if hit.Hash%uint64(w) != 0 {
			t.Errorf("hit at pos %d has hash %d not divisible by w=%d", hit.Pos, hit.Hash, w)
		}
		if hit.Pos <= lastPos {
			t.Errorf("hits must be strictly increasing in position, got %d after %d", hit.Pos, lastPos)
		}
		lastPos = hit.Pos
		want := kmerAt(seq, hit.Pos, k, hit.IsForward)
		if hit.Kmer != want {
			t.Errorf("pos %d: decoding the kmer at that position in orientation %v gave %d, want %d", hit.Pos, hit.IsForward, want, hit.Kmer)
		}
	}
}

func TestEmptySequence(t *testing.T) {
	h := hash.New(4, 3, 1)
	if hits := All(h, nil); len(hits) != 0 {
		t.Fatalf("expected no hits on empty sequence, got %v", hits)
	}
}

func TestSequenceShorterThanK(t *testing.T) {
	h := hash.New(10, 3, 1)
	seq := asciiToBase("ACGT")
	if hits := All(h, seq); len(hits) != 0 {
		t.Fatalf("expected no hits for sequence shorter than k, got %v", hits)
	}
}

func TestNoHashSatisfiesModCondition(t *testing.T) {
	// w so large that almost nothing divides; verify no infinite loop and
	// that All() terminates with a (possibly empty) result.
	h := hash.New(4, 1<<20, 1)
	seq := asciiToBase("ACGTACGTACGTACGTACGT")
	_ = All(h, seq) // must terminate
}

func TestAllIdenticalBasesNoInfiniteLoop(t *testing.T) {
	h := hash.New(5, 2, 7)
	seq := make([]byte, 40)
	for i := range seq {
		seq[i] = 0 // AAAA...A, self-reverse-complement only in the degenerate sense
	}
	hits := All(h, seq)
	for _, hit := range hits {
		if hit.Pos < 0 || hit.Pos > len(seq)-5 {
			t.Errorf("position out of range: %d", hit.Pos)
		}
	}
}

func TestMinimizerLeftmostTieBreak(t *testing.T) {
	h := hash.New(4, 1000000, 1) // huge w so the modimizer condition is irrelevant here
	seq := asciiToBase("AAAACGGTTTTTACGTACGTACGT")
	// Window width 1 emits every k-mer's canonical hit in position order.
	var all []Hit
	for one := NewMinimizer(h, seq, 1); one.Scan(); {
		all = append(all, one.Get())
	}
	mi := NewMinimizer(h, seq, 3)
	count := 0
	for mi.Scan() {
		count++
		if count > len(seq) {
			t.Fatalf("minimizer iterator did not terminate")
		}
		if count > len(all) {
			t.Fatalf("more minimizers (%d) than k-mers (%d)", count, len(all))
		}
		// Window count-1 covers k-mers count-1 .. count+1 (fewer at the end);
		// the expected pick is the first of those with the smallest hash.
		end := count + 2
		if end > len(all) {
			end = len(all)
		}
		want := all[count-1]
		for _, c := range all[count:end] {
			if c.Hash < want.Hash {
				want = c
			}
		}
		if got := mi.Get(); got != want {
			t.Errorf("window %d: got %+v, want leftmost minimum %+v", count-1, got, want)
		}
	}
	if count == 0 {
		t.Fatalf("expected at least one minimizer")
	}
}

func TestMinimizerEmptyOnShortSequence(t *testing.T) {
	h := hash.New(10, 1000, 1)
	mi := NewMinimizer(h, asciiToBase("ACGT"), 3)
	if mi.Scan() {
		t.Fatalf("expected no minimizers for sequence shorter than k")
	}
}
