package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/modimizer/core/hash"
	"github.com/modimizer/core/refmap"
	"github.com/modimizer/core/seqio"
)

func newCmdRefmap() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "refmap",
		Short:    "Seed-chain map a FASTA/FASTQ query source against a FASTA reference",
		ArgsName: "reference-fasta query-path",
	}
	k := cmd.Flags.Int("k", 16, "k-mer length")
	w := cmd.Flags.Int("w", 11, "minimizer window width")
	seed := cmd.Flags.Int64("seed", 0, "hasher salt seed")
	backend := cmd.Flags.String("hash", "xxh", "hash backend: xxh, farm, or sea")
	maxGap := cmd.Flags.Int("max-gap", 1000, "maximum reference gap, in bases, within one chain")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("refmap takes reference-fasta and query-path, but got %v", argv)
		}
		refSrc, closeRef, err := openSource(argv[0])
		if err != nil {
			return err
		}
		defer closeRef()
		refRec, ok, err := refSrc.Next()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s contains no reference record", argv[0])
		}

		b, ok := hash.LookupBackend(*backend)
		if !ok {
			return fmt.Errorf("unknown -hash backend %q", *backend)
		}
		h := hash.NewWithBackend(*k, *w, *seed, b)
		ref := refmap.BuildReference(h, seqio.AsModimizerSeq(refRec), *w)

		querySrc, closeQuery, err := openSource(argv[1])
		if err != nil {
			return err
		}
		defer closeQuery()
		fmt.Fprintf(env.Stdout, "query_id\tref_start\tref_end\tquery_start\tquery_end\tis_forward\tseed_count\n")
		return drainSource(querySrc, func(rec seqio.Record) error {
			chain, ok := refmap.BestChain(ref, seqio.AsModimizerSeq(rec), *maxGap)
			if !ok {
				fmt.Fprintf(env.Stdout, "%s\tno-chain\n", rec.ID)
				return nil
			}
			fmt.Fprintf(env.Stdout, "%s\t%d\t%d\t%d\t%d\t%t\t%d\n",
				rec.ID, chain.RefStart, chain.RefEnd, chain.QueryStart, chain.QueryEnd, chain.IsForward, chain.SeedCount)
			return nil
		})
	})
	return cmd
}
