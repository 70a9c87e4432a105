package seqio

import (
	"io"

	"github.com/modimizer/core/encoding/fastq"
)

// FASTQFile is a Source over a FASTQ stream.
type FASTQFile struct {
	sc *fastq.Scanner
}

// NewFASTQFile wraps r as a Source, reading id, sequence, and quality
// fields.
func NewFASTQFile(r io.Reader) *FASTQFile {
	return &FASTQFile{sc: fastq.NewScanner(r, fastq.ID|fastq.Seq|fastq.Qual)}
}

// Next implements Source.
func (s *FASTQFile) Next() (Record, bool, error) {
	var r fastq.Read
	if !s.sc.Scan(&r) {
		if err := s.sc.Err(); err != nil {
			return Record{}, false, err
		}
		return Record{}, false, nil
	}
	seq := []byte(r.Seq)
	return Record{
		ID:      r.ID,
		Seq2Bit: Pack2Bit(seq),
		Len:     len(seq),
		Qual:    []byte(r.Qual),
	}, true, nil
}
