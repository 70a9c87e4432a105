package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"
)

func newCmdMerge() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "merge",
		Short:    "Merge another modset into the target modset in place",
		ArgsName: "other-mod-path",
	}
	modPath := cmd.Flags.String("mod", "", "Target .mod path, overwritten with the merge result")
	codec := cmd.Flags.String("codec", "zstd", "output codec: none, zstd, or snappy")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("merge takes one other-mod path, but got %v", argv)
		}
		if *modPath == "" {
			return fmt.Errorf("-mod is required")
		}
		target, err := loadModset(*modPath)
		if err != nil {
			return err
		}
		other, err := loadModset(argv[0])
		if err != nil {
			return err
		}
		if err := target.Merge(other); err != nil {
			return fmt.Errorf("merge %s into %s: %w", argv[0], *modPath, err)
		}
		c, err := parseCodec(*codec)
		if err != nil {
			return err
		}
		if err := saveModset(*modPath, target, c); err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "merged %s into %s: %d mods\n", argv[0], *modPath, target.Max())
		return nil
	})
	return cmd
}
