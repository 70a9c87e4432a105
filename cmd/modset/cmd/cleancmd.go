package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/modimizer/core/clean"
)

func newCmdClean() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "clean",
		Short: "Flag repeat/internal/minor-variant mods in a read set (in place)",
	}
	modPath := cmd.Flags.String("mod", "", "Input/output .mod path")
	readsetPath := cmd.Flags.String("readset", "", "Input .readset path")
	w := cmd.Flags.Int("w", 200, "internal-flag gap threshold, in bases")
	codec := cmd.Flags.String("codec", "zstd", "output codec: none, zstd, or snappy")
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
		clean.Clean(rs, *w)
		c, err := parseCodec(*codec)
		if err != nil {
			return err
		}
		return saveModset(*modPath, ms, c)
	})
	return cmd
}

func newCmdLDTest() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "ldtest",
		Short: "Demote mods with inconsistent neighbor linkage to copy-error (in place)",
	}
	modPath := cmd.Flags.String("mod", "", "Input/output .mod path")
	readsetPath := cmd.Flags.String("readset", "", "Input .readset path")
	dmin := cmd.Flags.Int("dmin", 1, "lower bound of the depth band to test (inclusive)")
	dmax := cmd.Flags.Int("dmax", 0xFFFF, "upper bound of the depth band to test (exclusive)")
	codec := cmd.Flags.String("codec", "zstd", "output codec: none, zstd, or snappy")
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
		clean.LDTest(rs, uint16(*dmin), uint16(*dmax))
		c, err := parseCodec(*codec)
		if err != nil {
			return err
		}
		return saveModset(*modPath, ms, c)
	})
	return cmd
}
