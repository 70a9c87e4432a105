package cmd

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/modimizer/core/badness"
	"github.com/modimizer/core/overlap"
)

// newCmdReassign runs the badness/containment labeling passes over a read
// set in place (spec.md §4.6): badness flags are set from a fresh overlap
// query (flags already present are not cleared), and each read not flagged
// bad has its Contained field recomputed, without touching the modset or the
// hit/dx arrays.
func newCmdReassign() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "reassign",
		Short: "Relabel badness and containment flags across a read set (in place)",
	}
	modPath := cmd.Flags.String("mod", "", "Input .mod path")
	readsetPath := cmd.Flags.String("readset", "", "Input/output .readset path")
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
		eng := overlap.NewEngine(rs)
		badness.LabelBadness(rs, eng)
		badness.LabelContainment(rs, eng)
		return saveReadSet(*readsetPath, rs)
	})
	return cmd
}
