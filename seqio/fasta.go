package seqio

import (
	"github.com/modimizer/core/encoding/fasta"
)

// FASTAFile is a Source over an already-loaded fasta.Fasta, yielding one
// Record per sequence in file order.
type FASTAFile struct {
	fa    fasta.Fasta
	names []string
	i     int
}

// NewFASTAFile wraps fa (as built by encoding/fasta.New) as a Source.
func NewFASTAFile(fa fasta.Fasta) *FASTAFile {
	return &FASTAFile{fa: fa, names: fa.SeqNames()}
}

// Next implements Source.
func (s *FASTAFile) Next() (Record, bool, error) {
	if s.i >= len(s.names) {
		return Record{}, false, nil
	}
	name := s.names[s.i]
	s.i++
	n, err := s.fa.Len(name)
	if err != nil {
		return Record{}, false, err
	}
	seq, err := s.fa.Get(name, 0, n)
	if err != nil {
		return Record{}, false, err
	}
	return Record{ID: name, Seq2Bit: Pack2Bit([]byte(seq)), Len: int(n)}, true, nil
}
