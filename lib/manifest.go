package lib

import (
	"encoding/json"
)

// DefaultManifestPath is the store name of the contract manifest.
const DefaultManifestPath = "contracts.json"

// Manifest accumulates the names of the contracts processed in one run.
// Unlike selector groups it is replaced, not extended, when written.
type Manifest struct {
	store Store
	path  string
	names []string
}

func NewManifest(store Store, path string) *Manifest {
	return &Manifest{
		store: store,
		path:  path,
		names: make([]string, 0),
	}
}

// RecordProcessed appends name in processing order.
func (m *Manifest) RecordProcessed(name string) {
	m.names = append(m.names, name)
}

func (m *Manifest) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Write replaces the manifest with the names recorded so far.
func (m *Manifest) Write() error {
	data, err := json.Marshal(m.names)
	if err != nil {
		return err
	}
	return m.store.WriteFile(m.path, data)
}

// ReadManifest loads a previously written manifest.
func ReadManifest(store Store, path string) ([]string, error) {
	data, err := store.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}
