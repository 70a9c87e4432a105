package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"
)

func newCmdPrune() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "prune",
		Short: "Rebuild a modset keeping only mods whose depth falls in [dmin, dmax)",
	}
	modPath := cmd.Flags.String("mod", "", "Target .mod path, overwritten with the pruned result")
	dmin := cmd.Flags.Int("dmin", 1, "minimum depth to keep (inclusive)")
	dmax := cmd.Flags.Int("dmax", 0xFFFF, "maximum depth to keep (exclusive)")
	codec := cmd.Flags.String("codec", "zstd", "output codec: none, zstd, or snappy")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("prune takes no positional arguments, but got %v", argv)
		}
		if *modPath == "" {
			return fmt.Errorf("-mod is required")
		}
		ms, err := loadModset(*modPath)
		if err != nil {
			return err
		}
		before := ms.Max()
		ms.Prune(uint16(*dmin), uint16(*dmax))
		c, err := parseCodec(*codec)
		if err != nil {
			return err
		}
		if err := saveModset(*modPath, ms, c); err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "pruned %s: %d -> %d mods\n", *modPath, before, ms.Max())
		return nil
	})
	return cmd
}
