package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/modimizer/core/modimizer"
	"github.com/modimizer/core/seqio"
)

func newCmdCreate() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "create",
		Short:    "Build a new modset from a FASTA/FASTQ/BAM source",
		ArgsName: "source-path",
	}
	modPath := cmd.Flags.String("mod", "", "Output .mod path")
	k := cmd.Flags.Int("k", 16, "k-mer length")
	w := cmd.Flags.Int("w", 11, "modimizer modulus: keep k-mers whose hash is 0 mod w")
	tableBits := cmd.Flags.Int("table-bits", 24, "modset hash table size, in bits")
	seed := cmd.Flags.Int64("seed", 0, "hasher salt seed")
	backend := cmd.Flags.String("hash", "xxh", "hash backend: xxh, farm, or sea")
	codec := cmd.Flags.String("codec", "zstd", "output codec: none, zstd, or snappy")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("create takes one source path, but got %v", argv)
		}
		if *modPath == "" {
			return fmt.Errorf("-mod is required")
		}
		ms, err := newModset(*k, *w, *tableBits, *seed, *backend)
		if err != nil {
			return err
		}
		src, closeSrc, err := openSource(argv[0])
		if err != nil {
			return err
		}
		defer closeSrc()
		var nRecords int
		if err := drainSource(src, func(rec seqio.Record) error {
			seq := seqio.AsModimizerSeq(rec)
			for _, hit := range modimizer.All(ms.Hasher(), seq) {
				id := ms.FindOrAdd(hit.Hash, true)
				ms.IncrDepth(id)
			}
			nRecords++
			return nil
		}); err != nil {
			return fmt.Errorf("reading %s: %w", argv[0], err)
		}
		c, err := parseCodec(*codec)
		if err != nil {
			return err
		}
		if err := saveModset(*modPath, ms, c); err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "created %s: %d mods from %d records\n", *modPath, ms.Max(), nRecords)
		return nil
	})
	return cmd
}
