// Package seqio is the sequence adaptor: a narrow contract ("yields records
// with id, length, 2-bit-encoded bases") plus concrete readers for FASTA,
// FASTQ, and BAM input, so the hasher and modimizer iterator never see raw
// ASCII (spec.md §1's "out of scope ... only the contract ... is consumed";
// SPEC_FULL.md §4.9).
package seqio

import "github.com/grailbio/base/log"

// Record is one sequence read from a Source: an id, its bases packed 2 bits
// per base (4 bases/byte, low bits first within a byte), its length in
// bases, and an optional quality string (nil if the source has none).
type Record struct {
	ID      string
	Seq2Bit []byte
	Len     int
	Qual    []byte
}

// Source yields Records until exhausted. Next returns (rec, true, nil) for
// each record, (zero, false, nil) at clean end of input, and (zero, false,
// err) on a read error.
type Source interface {
	Next() (Record, bool, error)
}

// baseCode maps an ASCII byte to its 2-bit code, following the teacher's
// fusion/kmer.go asciiToKmerMap convention: A/a->0, C/c->1, G/g->2, T/t->3,
// anything else (including N) -> 0 (spec.md §6, "N maps to 0").
var baseCode [256]byte

func init() {
	baseCode['C'], baseCode['c'] = 1, 1
	baseCode['G'], baseCode['g'] = 2, 2
	baseCode['T'], baseCode['t'] = 3, 3
}

var baseChar = [4]byte{'A', 'C', 'G', 'T'}

// Pack2Bit packs ascii bases into the Record.Seq2Bit wire form: 4 bases per
// byte, base i occupying bits [2*(i%4), 2*(i%4)+2) of byte i/4.
func Pack2Bit(ascii []byte) []byte {
	dst := make([]byte, (len(ascii)+3)/4)
	for i, c := range ascii {
		dst[i/4] |= baseCode[c] << uint((i%4)*2)
	}
	return dst
}

// Unpack2Bit expands n bases of a Pack2Bit-packed sequence into the
// modimizer iterator's one-byte-per-base form (values in {0,1,2,3}).
func Unpack2Bit(packed []byte, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = (packed[i/4] >> uint((i%4)*2)) & 3
	}
	return out
}

// Expand2Bit renders a Pack2Bit-packed sequence back to ASCII, the inverse
// of Pack2Bit composed with the A/C/G/T alphabet (lossy for any input base
// that mapped to 0 via an ambiguity code).
func Expand2Bit(packed []byte, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = baseChar[(packed[i/4]>>uint((i%4)*2))&3]
	}
	return out
}

// AsModimizerSeq is the glue a caller feeding a Record into
// modimizer.New/readset.Ingest needs: it unpacks rec.Seq2Bit into the
// iterator's expected one-byte-per-base buffer. It is fatal if rec.Len does
// not match the number of bases the packed slice can hold, which would mean
// the Source violated its own contract.
func AsModimizerSeq(rec Record) []byte {
	if want := (rec.Len + 3) / 4; len(rec.Seq2Bit) < want {
		log.Panicf("seqio: record %q claims Len=%d but Seq2Bit has only %d bytes (want >= %d)", rec.ID, rec.Len, len(rec.Seq2Bit), want)
	}
	return Unpack2Bit(rec.Seq2Bit, rec.Len)
}
