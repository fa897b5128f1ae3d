package lib

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
)

// Aggregator appends eligible entries to the selector group files held in a Store.
//
// A group file is read, extended and written back in full for every entry.
// Nothing serialises this across processes: running two aggregations against
// the same store at once can lose members, and callers must not do so.
type Aggregator struct {
	store  Store
	layout Layout
	hash   Hasher
}

func NewAggregator(store Store, layout Layout) *Aggregator {
	return &Aggregator{
		store:  store,
		layout: layout,
		hash:   Keccak256,
	}
}

// WithHasher replaces the Keccak256 hash, mostly useful in tests.
func (a *Aggregator) WithHasher(h Hasher) *Aggregator {
	a.hash = h
	return a
}

// Prepare creates both output areas.
func (a *Aggregator) Prepare() error {
	if err := a.store.EnsureDir(a.layout.FunctionDir); err != nil {
		return err
	}
	return a.store.EnsureDir(a.layout.EventDir)
}

// Aggregate records entry under its selector, tagged with contractName.
// Entries that are not eligible are skipped and reported with ok=false.
func (a *Aggregator) Aggregate(contractName string, entry *Entry) (sel Selector, ok bool, err error) {
	if !IsEligible(entry) {
		return Selector{}, false, nil
	}

	sel, err = a.Selector(entry)
	if err != nil {
		return Selector{}, false, fmt.Errorf("%s: %w", contractName, err)
	}

	groupPath := a.layout.GroupPath(sel)
	members, err := a.readGroup(groupPath)
	if err != nil {
		return sel, false, err
	}

	tagged, err := entry.Tagged(contractName)
	if err != nil {
		return sel, false, err
	}
	members = append(members, tagged)

	data, err := json.Marshal(members)
	if err != nil {
		return sel, false, err
	}
	if err := a.store.WriteFile(groupPath, data); err != nil {
		return sel, false, err
	}

	return sel, true, nil
}

// Selector computes the selector of entry with the aggregator's hash.
func (a *Aggregator) Selector(entry *Entry) (Selector, error) {
	return ComputeSelector(a.hash, entry)
}

// ReadGroup returns the raw members recorded for sel, or an empty slice if there are none.
func (a *Aggregator) ReadGroup(sel Selector) ([]json.RawMessage, error) {
	return a.readGroup(a.layout.GroupPath(sel))
}

func (a *Aggregator) readGroup(name string) ([]json.RawMessage, error) {
	data, err := a.store.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return make([]json.RawMessage, 0, 1), nil
	}
	if err != nil {
		return nil, err
	}

	return decodeGroup(name, data)
}

func decodeGroup(name string, data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: %s is not a JSON array", ErrCorruptIndex, name)
	}

	var members []json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptIndex, name, err)
	}
	return members, nil
}
