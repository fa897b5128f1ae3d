package lib

import (
	"path"
)

// Store is the byte-level persistence used by the aggregator and the manifest.
// Names are slash separated and relative to the store root.
// ReadFile must return an error matching fs.ErrNotExist when name is absent.
type Store interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
	EnsureDir(name string) error
}

// Layout names the output areas for function and event selector groups.
type Layout struct {
	FunctionDir string
	EventDir    string
}

// DefaultLayout matches the directory names of the published index.
var DefaultLayout = Layout{
	FunctionDir: "q",
	EventDir:    "c",
}

// GroupPath is the store name of the group file for sel.
func (l Layout) GroupPath(sel Selector) string {
	dir := l.FunctionDir
	if sel.Kind == KindEvent {
		dir = l.EventDir
	}
	return path.Join(dir, sel.Hex()+".json")
}
