package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"
)

func newCmdReport() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "report",
		Short:    "Print a tab-separated mean/max depth report across one or more modsets",
		ArgsName: "mod-path ...",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) == 0 {
			return fmt.Errorf("report takes one or more .mod paths")
		}
		fmt.Fprintf(env.Stdout, "path\tmods\tmean_depth\tmax_depth\n")
		for _, path := range argv {
			ms, err := loadModset(path)
			if err != nil {
				return err
			}
			var total uint64
			var maxDepth uint16
			n := ms.Max()
			for id := uint32(1); id <= n; id++ {
				d := ms.Depth(id)
				total += uint64(d)
				if d > maxDepth {
					maxDepth = d
				}
			}
			mean := 0.0
			if n > 0 {
				mean = float64(total) / float64(n)
			}
			fmt.Fprintf(env.Stdout, "%s\t%d\t%.2f\t%d\n", path, n, mean, maxDepth)
		}
		return nil
	})
	return cmd
}
