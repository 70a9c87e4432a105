package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/modimizer/core/readset"
	"github.com/modimizer/core/seqio"
)

func newCmdAdd() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "add",
		Short:    "Ingest reads from a FASTA/FASTQ/BAM source into a read set",
		ArgsName: "source-path",
	}
	modPath := cmd.Flags.String("mod", "", "Existing .mod path (find-only; unknown k-mers are recorded as misses)")
	readsetPath := cmd.Flags.String("readset", "", "Read set path; loaded if it exists, else created fresh")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("add takes one source path, but got %v", argv)
		}
		if *modPath == "" || *readsetPath == "" {
			return fmt.Errorf("-mod and -readset are required")
		}
		ms, err := loadModset(*modPath)
		if err != nil {
			return err
		}
		rs, err := loadReadSet(*readsetPath, ms)
		if err != nil {
			rs = readset.New(ms)
		}
		src, closeSrc, err := openSource(argv[0])
		if err != nil {
			return err
		}
		defer closeSrc()
		var nRecords int
		if err := drainSource(src, func(rec seqio.Record) error {
			rs.Ingest(seqio.AsModimizerSeq(rec), uint32(rec.Len))
			nRecords++
			return nil
		}); err != nil {
			return fmt.Errorf("reading %s: %w", argv[0], err)
		}
		rs.InvBuild()
		if err := saveReadSet(*readsetPath, rs); err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "added %d reads to %s (%d total)\n", nRecords, *readsetPath, len(rs.Reads)-1)
		return nil
	})
	return cmd
}
