package cmd

import (
	"fmt"

	"github.com/modimizer/core/modset"
)

func parseCodec(name string) (modset.Codec, error) {
	switch name {
	case "none":
		return modset.CodecNone, nil
	case "zstd":
		return modset.CodecZstd, nil
	case "snappy":
		return modset.CodecSnappy, nil
	default:
		return 0, fmt.Errorf("unknown codec %q (want none, zstd, or snappy)", name)
	}
}
