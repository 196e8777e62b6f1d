// Package manifest loads treeshake manifests: JSON files listing the modules
// to keep and remove and an optional compare bundle.
package manifest

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidManifest is returned when a manifest is not valid JSON or does
// not match the manifest schema.
var ErrInvalidManifest = errors.New("invalid manifest")

//go:embed schema.json
var schema []byte

// Manifest is the decoded form of a manifest file.
type Manifest struct {
	Keep    []string `json:"keep,omitempty"`
	Remove  []string `json:"remove,omitempty"`
	Compare string   `json:"compare,omitempty"`
}

// Schema returns the JSON schema manifests are validated against.
func Schema() []byte {
	return append([]byte(nil), schema...)
}

// Parse validates data against the manifest schema and decodes it.
func Parse(data []byte) (Manifest, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
		}

		return Manifest{}, fmt.Errorf("%w: %s", ErrInvalidManifest, strings.Join(problems, "; "))
	}

	var m Manifest

	err = json.Unmarshal(data, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	return m, nil
}

// Load reads and parses the manifest at path. A relative compare path is
// resolved against the manifest's directory.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	m, err := Parse(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}

	if m.Compare != "" && !filepath.IsAbs(m.Compare) {
		m.Compare = filepath.Join(filepath.Dir(path), m.Compare)
	}

	return m, nil
}

// Merge returns m with extra keep and remove names appended. Names already
// present are not repeated.
func (m Manifest) Merge(keep, remove []string) Manifest {
	m.Keep = appendUnique(m.Keep, keep)
	m.Remove = appendUnique(m.Remove, remove)

	return m
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst)+len(src))
	out := make([]string, 0, len(dst)+len(src))

	for _, list := range [][]string{dst, src} {
		for _, name := range list {
			if seen[name] {
				continue
			}

			seen[name] = true
			out = append(out, name)
		}
	}

	return out
}
