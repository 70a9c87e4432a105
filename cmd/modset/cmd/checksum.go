package cmd

import (
	"encoding/binary"
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/minio/highwayhash"
	"v.io/x/lib/cmdline"
)

// zeroSeed is the all-zero highwayhash key, the same convention
// fusion/postprocess.go uses for its gene-pair checksum.
var zeroSeed = [highwayhash.Size]uint8{}

func newCmdChecksum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "checksum",
		Short:    "Print a highwayhash checksum of a modset's value/depth/info arrays",
		ArgsName: "mod-path",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("checksum takes one .mod path, but got %v", argv)
		}
		ms, err := loadModset(argv[0])
		if err != nil {
			return err
		}
		var buf []byte
		n := ms.Max()
		for id := uint32(1); id <= n; id++ {
			var tmp [11]byte
			binary.LittleEndian.PutUint64(tmp[0:8], ms.Value(id))
			binary.LittleEndian.PutUint16(tmp[8:10], ms.Depth(id))
			tmp[10] = ms.Info(id)
			buf = append(buf, tmp[:]...)
		}
		sum := highwayhash.Sum(buf, zeroSeed[:])
		fmt.Fprintf(env.Stdout, "%x\n", sum)
		return nil
	})
	return cmd
}
