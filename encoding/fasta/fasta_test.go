package fasta_test

import (
	"strings"
	"testing"

	"github.com/modimizer/core/encoding/fasta"
)

const twoSeqs = `>chr7
ACGTAC
GAGGAC
GCG
>chr8 some description
ACGT
`

func TestNew(t *testing.T) {
	f, err := fasta.New(strings.NewReader(twoSeqs))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, want := f.SeqNames(), []string{"chr7", "chr8"}; !equal(got, want) {
		t.Fatalf("SeqNames() = %v, want %v", got, want)
	}
	n, err := f.Len("chr7")
	if err != nil {
		t.Fatalf("Len(chr7): %v", err)
	}
	if n != 15 {
		t.Fatalf("Len(chr7) = %d, want 15", n)
	}
	s, err := f.Get("chr7", 0, 6)
	if err != nil {
		t.Fatalf("Get(chr7, 0, 6): %v", err)
	}
	if s != "ACGTAC" {
		t.Fatalf("Get(chr7, 0, 6) = %q, want %q", s, "ACGTAC")
	}
	s, err = f.Get("chr8", 0, 4)
	if err != nil {
		t.Fatalf("Get(chr8, 0, 4): %v", err)
	}
	if s != "ACGT" {
		t.Fatalf("Get(chr8, 0, 4) = %q, want %q", s, "ACGT")
	}
}

func TestGetErrors(t *testing.T) {
	f, err := fasta.New(strings.NewReader(twoSeqs))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := f.Get("chr9", 0, 1); err == nil {
		t.Fatalf("Get(chr9, ...) = nil error, want error for unknown sequence")
	}
	if _, err := f.Get("chr7", 5, 2); err == nil {
		t.Fatalf("Get(chr7, 5, 2) = nil error, want error for end <= start")
	}
	if _, err := f.Get("chr7", 0, 1000); err == nil {
		t.Fatalf("Get(chr7, 0, 1000) = nil error, want error for out-of-range end")
	}
}

func TestOptClean(t *testing.T) {
	f, err := fasta.New(strings.NewReader(">chr1\nacgtN\n"), fasta.OptClean)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, err := f.Get("chr1", 0, 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s != "ACGTN" {
		t.Fatalf("Get(chr1, 0, 5) after OptClean = %q, want %q", s, "ACGTN")
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
