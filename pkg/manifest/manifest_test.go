package manifest_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/amdshake/pkg/manifest"
)

func TestParse_Valid(t *testing.T) {
	t.Parallel()

	m, err := manifest.Parse([]byte(`{"keep": ["app/main"], "remove": ["app/debug"], "compare": "vendor.js"}`))
	require.NoError(t, err)

	assert.Equal(t, manifest.Manifest{
		Keep:    []string{"app/main"},
		Remove:  []string{"app/debug"},
		Compare: "vendor.js",
	}, m)
}

func TestParse_EmptyObject(t *testing.T) {
	t.Parallel()

	m, err := manifest.Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, manifest.Manifest{}, m)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"keep": [`},
		{"unknown key", `{"keeps": ["a"]}`},
		{"keep not array", `{"keep": "a"}`},
		{"empty name", `{"keep": [""]}`},
		{"duplicate names", `{"remove": ["a", "a"]}`},
		{"compare not string", `{"compare": 3}`},
		{"top level array", `["a"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := manifest.Parse([]byte(tt.data))
			require.ErrorIs(t, err, manifest.ErrInvalidManifest)
		})
	}
}

func TestLoad_ResolvesCompareRelativeToManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "keep.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"keep": ["a"], "compare": "shipped.js"}`), 0o600))

	m, err := manifest.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, m.Keep)
	assert.Equal(t, filepath.Join(dir, "shipped.js"), m.Compare)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := manifest.Load(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"keep": 1}`), 0o600))

	_, err = manifest.Load(bad)
	require.ErrorIs(t, err, manifest.ErrInvalidManifest)
	assert.Contains(t, err.Error(), bad)
}

func TestManifest_Merge(t *testing.T) {
	t.Parallel()

	m := manifest.Manifest{Keep: []string{"a", "b"}, Remove: []string{"x"}}
	merged := m.Merge([]string{"b", "c"}, nil)

	assert.Equal(t, []string{"a", "b", "c"}, merged.Keep)
	assert.Equal(t, []string{"x"}, merged.Remove)
	assert.Equal(t, []string{"a", "b"}, m.Keep)
}

func TestSchema_IsJSON(t *testing.T) {
	t.Parallel()

	var doc map[string]any

	require.NoError(t, json.Unmarshal(manifest.Schema(), &doc))
	assert.Equal(t, "object", doc["type"])
}
