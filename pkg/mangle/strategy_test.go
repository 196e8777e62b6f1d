package mangle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
	"github.com/Sumatoshi-tech/amdshake/pkg/mangle"
)

func registryOf(names ...string) *amd.Registry {
	reg := amd.NewRegistry()

	for _, name := range names {
		reg.Add(&amd.Record{Name: name, Content: "function () { return '" + name + "'; });"})
	}

	return reg
}

func TestUID(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		0:   "a",
		1:   "b",
		25:  "z",
		26:  "ba",
		27:  "bb",
		51:  "bz",
		52:  "ca",
		675: "zz",
		676: "baa",
	}

	for n, want := range cases {
		assert.Equal(t, want, mangle.UID(n), "n=%d", n)
	}
}

func TestShorten(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		present []string
		current string
		want    string
	}{
		{"last segment", []string{"lib/a/foo"}, "lib/a/foo", "foo"},
		{"extends on collision", []string{"foo", "lib/b/foo"}, "lib/b/foo", "b/foo"},
		{"no separator", []string{"foo"}, "foo", "foo"},
		{"no unique suffix", []string{"foo", "a/foo"}, "a/foo", "a/foo"},
		{"empty segment", []string{"lib/"}, "lib/", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, mangle.Shorten(registryOf(tt.present...), tt.current))
		})
	}
}

func TestObfuscator_SkipsTakenNames(t *testing.T) {
	t.Parallel()

	reg := registryOf("a", "c", "x/y")
	next := mangle.NewObfuscator()

	assert.Equal(t, "b", next(reg, "x/y"))

	reg.Add(&amd.Record{Name: "b"})

	assert.Equal(t, "d", next(reg, "x/y"))
}

func TestObfuscator_CountersAreIndependent(t *testing.T) {
	t.Parallel()

	reg := registryOf("m")
	first := mangle.NewObfuscator()
	second := mangle.NewObfuscator()

	reg.Add(&amd.Record{Name: first(reg, "m")})

	assert.Equal(t, "b", first(reg, "m"))
	assert.Equal(t, "b", second(reg, "m"))

	fresh := mangle.NewObfuscator()
	assert.Equal(t, "a", fresh(registryOf("m"), "m"))
}

func TestStrategyByName(t *testing.T) {
	t.Parallel()

	for _, name := range mangle.StrategyNames() {
		strategy, err := mangle.StrategyByName(name)
		require.NoError(t, err)
		assert.NotNil(t, strategy)
	}

	_, err := mangle.StrategyByName("minify")
	require.ErrorIs(t, err, mangle.ErrUnknownStrategy)
	assert.Contains(t, err.Error(), `"minify"`)
}
