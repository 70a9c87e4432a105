package cmd

import (
	"log"

	"v.io/x/lib/cmdline"
)

// Run is modset's entry point, following the teacher's cmd/bio-pamtool
// shape: a flat tree of subcommands under one root, each owning its own
// flags.
func Run() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(
		&cmdline.Command{
			Name:     "modset",
			Short:    "Build, inspect, and analyze modimizer modsets and read sets",
			LookPath: false,
			Children: []*cmdline.Command{
				newCmdCreate(),
				newCmdLoad(),
				newCmdSave(),
				newCmdAdd(),
				newCmdMerge(),
				newCmdPrune(),
				newCmdReassign(),
				newCmdHistogram(),
				newCmdReport(),
				newCmdChecksum(),
				newCmdClean(),
				newCmdLDTest(),
				newCmdOverlap(),
				newCmdLayout(),
				newCmdRefmap(),
			},
		})
}
