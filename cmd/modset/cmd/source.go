package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/modimizer/core/encoding/fasta"
	"github.com/modimizer/core/seqio"
)

// openSource guesses a sequence format from path's extension and returns a
// seqio.Source plus a closer, mirroring how cmd/bio-pamtool's convert
// command guesses BAM vs PAM from the pathname.
func openSource(path string) (seqio.Source, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".fa") || strings.HasSuffix(lower, ".fasta"):
		fa, err := fasta.New(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("parse fasta %s: %w", path, err)
		}
		return seqio.NewFASTAFile(fa), f.Close, nil
	case strings.HasSuffix(lower, ".fq") || strings.HasSuffix(lower, ".fastq"):
		return seqio.NewFASTQFile(f), f.Close, nil
	case strings.HasSuffix(lower, ".bam"):
		src, err := seqio.NewBAMFile(f, 0)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("open bam %s: %w", path, err)
		}
		return src, func() error { return src.Close() }, nil
	default:
		f.Close()
		return nil, nil, fmt.Errorf("cannot guess sequence format of %s (want .fa/.fasta, .fq/.fastq, or .bam)", path)
	}
}

// drainSource calls fn for every record a Source yields, until EOF.
func drainSource(src seqio.Source, fn func(seqio.Record) error) error {
	for {
		rec, ok, err := src.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
