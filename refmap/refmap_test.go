package refmap

import (
	"testing"

	"github.com/modimizer/core/hash"
)

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

func TestChainsFindsExactMatch(t *testing.T) {
	h := hash.New(8, 1, 1)
	ref := asciiToBase("ACGTTGCATGCCCGTAGGTCAATCGATAAGCGATCGATGGTACGATCGAAGCTAGCAAGCATCG")
	query := ref[10:30]

	r := BuildReference(h, ref, 4)
	chain, ok := BestChain(r, query, 50)
	if !ok {
		t.Fatalf("expected a chain for an exact substring query")
	}
	if !chain.IsForward {
		t.Errorf("expected forward-strand chain for a direct substring match")
	}
	if chain.SeedCount < 1 {
		t.Errorf("expected at least one seed in the best chain")
	}
	if chain.RefStart > 10 || chain.RefEnd < 30 {
		t.Errorf("chain %+v does not cover the expected reference span [10,30)", chain)
	}
}

func TestChainsNoMatchForUnrelatedQuery(t *testing.T) {
	h := hash.New(8, 1, 1)
	ref := asciiToBase("ACGTTGCATGCACGTAGGTCAATCGATTAGCG")
	query := asciiToBase("CCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC")

	r := BuildReference(h, ref, 4)
	if chains := Chains(r, query, 50); len(chains) != 0 {
		t.Errorf("expected no chains for a query with no shared k-mers, got %d", len(chains))
	}
}

func TestChainsSelfMapCoversReference(t *testing.T) {
	h := hash.New(6, 1, 1)
	ref := asciiToBase("ACGTGGCATGGACTGATCGAAGCATCGTAGCTCGCATCTATCGTCGCAAGCTAGGTAGCAACGATTCATGCTAGTTAGCACGCA")
	query := ref

	r := BuildReference(h, ref, 3)
	chains := Chains(r, query, 1000)
	if len(chains) == 0 {
		t.Fatalf("expected at least one chain mapping the reference to itself")
	}
	// Self-mapping: the best chain should cover nearly the whole reference.
	best := chains[0]
	if best.RefEnd-best.RefStart < len(ref)/2 {
		t.Errorf("best self-chain %+v covers too little of a %d-base reference", best, len(ref))
	}
}
