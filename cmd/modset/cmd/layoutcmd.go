package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/modimizer/core/layout"
)

func newCmdLayout() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "layout",
		Short: "Extend a layout from a seed mod and print each read's placement",
	}
	modPath := cmd.Flags.String("mod", "", "Input .mod path")
	readsetPath := cmd.Flags.String("readset", "", "Input .readset path")
	seedMod := cmd.Flags.Uint("seed-mod", 0, "seed mod id (without orientation bit) to anchor the traversal")
	anchor := cmd.Flags.Int64("anchor", 0, "coordinate offset assigned to the seed mod")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if *modPath == "" || *readsetPath == "" {
			return fmt.Errorf("-mod and -readset are required")
		}
		ms, err := loadModset(*modPath)
		if err != nil {
			return err
		}
		rs, err := loadReadSet(*readsetPath, ms)
		if err != nil {
			return err
		}
		table := layout.Build(rs)
		var nWarn, nConflict int
		layouts := table.Extend(uint32(*seedMod), *anchor,
			func(readID uint32, d, median int64) {
				nWarn++
				fmt.Fprintf(env.Stderr, "warn: read %d displacement %d far from median %d\n", readID, d, median)
			},
			func(readID, containedBy uint32) {
				nConflict++
				fmt.Fprintf(env.Stderr, "warn: read %d fully contained in read %d's span\n", readID, containedBy)
			})
		fmt.Fprintf(env.Stdout, "read_id\tstart\tend\thit_count\n")
		for _, l := range layouts {
			fmt.Fprintf(env.Stdout, "%d\t%d\t%d\t%d\n", l.ReadID, l.Start, l.End, l.HitCount)
		}
		fmt.Fprintf(env.Stderr, "%d reads placed, %d warnings, %d containment conflicts\n", len(layouts), nWarn, nConflict)
		return nil
	})
	return cmd
}
