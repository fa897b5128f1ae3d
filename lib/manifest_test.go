package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestReplaces(t *testing.T) {
	st := newMemStore()
	st.files[DefaultManifestPath] = []byte(`["old","stale"]`)

	m := NewManifest(st, DefaultManifestPath)
	m.RecordProcessed("contract1")
	m.RecordProcessed("my.awesome.contract")
	require.NoError(t, m.Write())

	names, err := ReadManifest(st, DefaultManifestPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"contract1", "my.awesome.contract"}, names)
}

func TestManifestEmpty(t *testing.T) {
	st := newMemStore()
	m := NewManifest(st, "contracts.json")
	require.NoError(t, m.Write())
	assert.Equal(t, "[]", string(st.files["contracts.json"]))
}

func TestManifestNamesCopy(t *testing.T) {
	m := NewManifest(newMemStore(), "contracts.json")
	m.RecordProcessed("a")
	names := m.Names()
	names[0] = "changed"
	assert.Equal(t, []string{"a"}, m.Names())
}
