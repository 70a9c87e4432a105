package cmd

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"
)

func newCmdHistogram() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "histogram",
		Short: "Print a tab-separated depth histogram for a modset",
	}
	modPath := cmd.Flags.String("mod", "", "Input .mod path")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if *modPath == "" {
			return fmt.Errorf("-mod is required")
		}
		ms, err := loadModset(*modPath)
		if err != nil {
			return err
		}
		counts := make(map[uint16]uint64)
		ms.ForEach(func(id uint32, value uint64, depth uint16, info uint8) {
			counts[depth]++
		})
		depths := make([]uint16, 0, len(counts))
		for d := range counts {
			depths = append(depths, d)
		}
		sort.Slice(depths, func(i, j int) bool { return depths[i] < depths[j] })
		fmt.Fprintf(env.Stdout, "depth\tcount\n")
		for _, d := range depths {
			fmt.Fprintf(env.Stdout, "%d\t%d\n", d, counts[d])
		}
		return nil
	})
	return cmd
}
