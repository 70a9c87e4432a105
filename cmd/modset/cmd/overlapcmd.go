package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/modimizer/core/overlap"
)

func newCmdOverlap() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "overlap",
		Short:    "Print the overlap candidates for one read",
		ArgsName: "read-id",
	}
	modPath := cmd.Flags.String("mod", "", "Input .mod path")
	readsetPath := cmd.Flags.String("readset", "", "Input .readset path")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("overlap takes one read id, but got %v", argv)
		}
		if *modPath == "" || *readsetPath == "" {
			return fmt.Errorf("-mod and -readset are required")
		}
		var readID uint32
		if _, err := fmt.Sscanf(argv[0], "%d", &readID); err != nil {
			return fmt.Errorf("invalid read id %q: %w", argv[0], err)
		}
		ms, err := loadModset(*modPath)
		if err != nil {
			return err
		}
		rs, err := loadReadSet(*readsetPath, ms)
		if err != nil {
			return err
		}
		eng := overlap.NewEngine(rs)
		candidates := eng.Query(readID)
		fmt.Fprintf(env.Stdout, "read_id\tshared_hits\tis_plus\tis_contained\tn_bad_order\tn_bad_flip\n")
		for _, o := range candidates {
			fmt.Fprintf(env.Stdout, "%d\t%d\t%t\t%t\t%d\t%d\n",
				o.ReadID, o.SharedHitCount, o.IsPlus, o.IsContained, o.NBadOrder, o.NBadFlip)
		}
		return nil
	})
	return cmd
}
