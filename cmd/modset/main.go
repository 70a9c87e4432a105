// Command modset builds, inspects, and analyzes modimizer modsets and read
// sets (SPEC_FULL.md, component C12). Each subcommand loads the current .mod/.readset
// pair named by its flags, mutates it in place, and writes it back out.
package main

import "github.com/modimizer/core/cmd/modset/cmd"

func main() {
	cmd.Run()
}
