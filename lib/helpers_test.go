package lib

import (
	"io/fs"
	"path"
	"sort"
)

// memStore is an in-memory Store
type memStore struct {
	files  map[string][]byte
	dirs   map[string]bool
	reads  int
	writes int
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte), dirs: make(map[string]bool)}
}

func (m *memStore) ReadFile(name string) ([]byte, error) {
	m.reads++
	b, ok := m.files[path.Clean(name)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), b...), nil
}

func (m *memStore) WriteFile(name string, data []byte) error {
	m.writes++
	m.files[path.Clean(name)] = append([]byte(nil), data...)
	return nil
}

func (m *memStore) EnsureDir(name string) error {
	m.dirs[path.Clean(name)] = true
	return nil
}

func (m *memStore) names() []string {
	out := make([]string, 0, len(m.files))
	for k := range m.files {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func mustEntry(t interface{ Fatalf(string, ...interface{}) }, kind, name string, inputs []Parameter) *Entry {
	e, err := NewEntry(kind, name, inputs)
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	return e
}
