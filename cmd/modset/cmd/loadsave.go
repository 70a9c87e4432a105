package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"
)

func newCmdLoad() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "load",
		Short: "Print summary statistics for a modset, verifying it parses",
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
		h := ms.Hasher()
		fmt.Fprintf(env.Stdout, "mods=%d table_bits=%d k=%d w=%d backend=%s\n",
			ms.Max(), ms.TableBits(), h.K(), h.W(), h.BackendOf())
		return nil
	})
	return cmd
}

func newCmdSave() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "save",
		Short: "Re-encode a modset under a different codec",
	}
	inPath := cmd.Flags.String("mod", "", "Input .mod path")
	outPath := cmd.Flags.String("out", "", "Output .mod path")
	codec := cmd.Flags.String("codec", "zstd", "output codec: none, zstd, or snappy")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if *inPath == "" || *outPath == "" {
			return fmt.Errorf("-mod and -out are required")
		}
		ms, err := loadModset(*inPath)
		if err != nil {
			return err
		}
		c, err := parseCodec(*codec)
		if err != nil {
			return err
		}
		return saveModset(*outPath, ms, c)
	})
	return cmd
}
