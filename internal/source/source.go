// Package source lists the ABI files of an input directory.
package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// File is one candidate ABI source.
type File struct {
	Name string // base name, e.g. "MyContract.json"
	Path string
}

// List returns the regular, non-hidden files directly inside dir in lexical order.
// Sub-directories, symlinks and other special entries are skipped; nothing is recursed.
func List(ctx context.Context, dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	out := make([]File, 0, len(entries))
	for _, e := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if IsHidden(e.Name()) || !e.Type().IsRegular() {
			continue
		}
		out = append(out, File{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	return out, nil
}

func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
