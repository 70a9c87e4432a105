// Package cmd assembles the modset command-line tool: a tree of subcommands
// that each load the current .mod/.readset pair, mutate it, and write it
// back out (SPEC_FULL.md, component C12). The file/context conventions follow the
// teacher's cmd/bio-fusion (grailbio/base/file + vcontext), and the
// cmdline/cmdutil command-tree shape follows cmd/bio-pamtool/cmd.
package cmd

import (
	"context"
	"fmt"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"

	"github.com/modimizer/core/hash"
	"github.com/modimizer/core/modset"
	"github.com/modimizer/core/readset"
)

// ctx returns the background context used by every subcommand's file I/O,
// mirroring bio-fusion/main.go's vcontext.Background() call.
func ctx() context.Context {
	return vcontext.Background()
}

// loadModset reads the modset stored at path.
func loadModset(path string) (*modset.Modset, error) {
	c := ctx()
	f, err := file.Open(c, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close(c)
	return modset.ReadFrom(f.Reader(c)), nil
}

// saveModset writes ms to path, creating or truncating it.
func saveModset(path string, ms *modset.Modset, codec modset.Codec) error {
	c := ctx()
	f, err := file.Create(c, path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := ms.WriteTo(f.Writer(c), codec); err != nil {
		f.Close(c)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close(c)
}

// loadReadSet reads the read set stored at path, paired against the
// already-loaded modset ms.
func loadReadSet(path string, ms *modset.Modset) (*readset.ReadSet, error) {
	c := ctx()
	f, err := file.Open(c, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close(c)
	return readset.ReadFrom(f.Reader(c), ms), nil
}

// saveReadSet writes rs to path, creating or truncating it.
func saveReadSet(path string, rs *readset.ReadSet) error {
	c := ctx()
	f, err := file.Create(c, path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := rs.WriteTo(f.Writer(c)); err != nil {
		f.Close(c)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close(c)
}

// newModset builds an empty modset over a freshly constructed hasher,
// honoring the operator's chosen backend (spec.md §4.1, [FULL] §4.10). It
// rejects an unrecognized backend name with an error rather than panicking,
// since the name comes straight from a CLI flag.
func newModset(k, w, tableBits int, seed int64, backend string) (*modset.Modset, error) {
	b, ok := hash.LookupBackend(backend)
	if !ok {
		return nil, fmt.Errorf("unknown -hash backend %q", backend)
	}
	h := hash.NewWithBackend(k, w, seed, b)
	return modset.New(h, tableBits), nil
}
