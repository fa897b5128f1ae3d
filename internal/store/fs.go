// Package store persists index files under an output root on the local file system.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/jshufro/abi-selector-index/lib"
)

// ErrPathInvalid is returned for names that are absolute or escape the root.
var ErrPathInvalid = errors.New("path invalid")

type Options struct {
	// Root is the output directory. Required.
	Root string
	// Atomic writes go to a temporary file in the target directory which is then
	// renamed over the target. Defaults to true when nil.
	Atomic *bool
	// Zero permissions fall back to 0o644 and 0o755.
	PermFile os.FileMode
	PermDir  os.FileMode
}

// FS is a lib.Store rooted at a directory.
type FS struct {
	root   string
	atomic bool
	permF  os.FileMode
	permD  os.FileMode
}

var _ lib.Store = (*FS)(nil)

func New(opts *Options) (*FS, error) {
	if opts == nil || strings.TrimSpace(opts.Root) == "" {
		return nil, os.ErrInvalid
	}

	out := &FS{root: opts.Root, atomic: true, permF: 0o644, permD: 0o755}
	if opts.Atomic != nil {
		out.atomic = *opts.Atomic
	}
	if opts.PermFile != 0 {
		out.permF = opts.PermFile
	}
	if opts.PermDir != 0 {
		out.permD = opts.PermDir
	}
	return out, nil
}

func (s *FS) Root() string {
	return s.root
}

// ReadFile returns an error matching fs.ErrNotExist when name does not exist.
func (s *FS) ReadFile(name string) ([]byte, error) {
	p, err := s.mapPath(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// WriteFile replaces the contents of name, creating parent directories as needed.
func (s *FS) WriteFile(name string, data []byte) error {
	p, err := s.mapPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), s.permD); err != nil {
		return err
	}

	if s.atomic {
		return s.writeAtomic(p, data)
	}
	return os.WriteFile(p, data, s.permF)
}

func (s *FS) EnsureDir(name string) error {
	p, err := s.mapPath(name)
	if err != nil {
		return err
	}
	return os.MkdirAll(p, s.permD)
}

func (s *FS) mapPath(name string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(name))
	if rel == "." || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", ErrPathInvalid
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathInvalid
	}
	return filepath.Join(s.root, rel), nil
}

func (s *FS) writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	// CreateTemp uses 0600
	if err := os.Chmod(tmpPath, s.permF); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	syncDir(dir)
	return nil
}

// best effort, fails harmlessly where directories cannot be synced
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}
