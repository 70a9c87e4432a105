package seqio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/modimizer/core/encoding/fasta"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	ascii := []byte("ACGTACGTAC")
	packed := Pack2Bit(ascii)
	unpacked := Unpack2Bit(packed, len(ascii))
	want := []byte{0, 1, 2, 3, 0, 1, 2, 3, 0, 1}
	if !bytes.Equal(unpacked, want) {
		t.Fatalf("Unpack2Bit(Pack2Bit(%q)) = %v, want %v", ascii, unpacked, want)
	}
	expanded := Expand2Bit(packed, len(ascii))
	if !bytes.Equal(expanded, ascii) {
		t.Fatalf("Expand2Bit(Pack2Bit(%q)) = %q, want %q", ascii, expanded, ascii)
	}
}

func TestPackAmbiguityCodeMapsToA(t *testing.T) {
	packed := Pack2Bit([]byte("ANGT"))
	if got := Expand2Bit(packed, 4); string(got) != "AAGT" {
		t.Fatalf("N should fold to code 0 (A): got %q", got)
	}
}

func TestFASTAFileYieldsRecordsInOrder(t *testing.T) {
	data := ">seq1\nACGT\n>seq2\nTTTTCCCC\n"
	fa, err := fasta.New(strings.NewReader(data))
	if err != nil {
		t.Fatalf("fasta.New: %v", err)
	}
	src := NewFASTAFile(fa)

	rec, ok, err := src.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v, %v", rec, ok, err)
	}
	if rec.ID != "seq1" || rec.Len != 4 {
		t.Fatalf("first record = %+v, want ID=seq1 Len=4", rec)
	}

	rec, ok, err = src.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v, %v", rec, ok, err)
	}
	if rec.ID != "seq2" || rec.Len != 8 {
		t.Fatalf("second record = %+v, want ID=seq2 Len=8", rec)
	}

	_, ok, err = src.Next()
	if err != nil || ok {
		t.Fatalf("expected end of records, got ok=%v err=%v", ok, err)
	}
}

func TestFASTQFileYieldsSeqAndQual(t *testing.T) {
	data := "@read1\nACGTACGT\n+\nIIIIIIII\n"
	src := NewFASTQFile(strings.NewReader(data))

	rec, ok, err := src.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v, %v", rec, ok, err)
	}
	if rec.ID != "@read1" || rec.Len != 8 || string(rec.Qual) != "IIIIIIII" {
		t.Fatalf("record = %+v", rec)
	}

	_, ok, err = src.Next()
	if err != nil || ok {
		t.Fatalf("expected end of records, got ok=%v err=%v", ok, err)
	}
}

func TestAsModimizerSeqUnpacksRecord(t *testing.T) {
	rec := Record{ID: "x", Seq2Bit: Pack2Bit([]byte("ACGT")), Len: 4}
	seq := AsModimizerSeq(rec)
	if !bytes.Equal(seq, []byte{0, 1, 2, 3}) {
		t.Fatalf("AsModimizerSeq = %v, want [0 1 2 3]", seq)
	}
}
