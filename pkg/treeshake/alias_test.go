package treeshake_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
	"github.com/Sumatoshi-tech/amdshake/pkg/treeshake"
)

func TestResolveAliases_RenamesAndRewrites(t *testing.T) {
	t.Parallel()

	reg := amd.NewRegistry()
	reg.Add(&amd.Record{Name: "a", Imports: []string{"b"}, Content: "1", Alias: "app/main"})
	reg.Add(&amd.Record{Name: "b", Content: "2", Alias: "app/util"})
	reg.Add(&amd.Record{Name: "c", Imports: []string{"a", "b"}, Content: "3"})

	resolver := treeshake.NewAliasResolver(nil)
	resolver.ResolveAliases(reg)

	require.Equal(t, []string{"app/main", "app/util", "c"}, reg.Names())

	c, _ := reg.Get("c")
	assert.Equal(t, []string{"app/main", "app/util"}, c.Imports)

	mainRec, _ := reg.Get("app/main")
	assert.Equal(t, []string{"app/util"}, mainRec.Imports)
	assert.Empty(t, mainRec.Alias)
	assert.Empty(t, mainRec.Provenance)

	assert.Equal(t, map[string]string{"a": "app/main", "b": "app/util"}, resolver.Table())
	assert.Empty(t, resolver.Removals())
}

func TestResolveAliases_DisplacesExisting(t *testing.T) {
	t.Parallel()

	reg := amd.NewRegistry()
	reg.Add(&amd.Record{Name: "lib", Content: "original"})
	reg.Add(&amd.Record{Name: "x", Content: "shrunk", Alias: "lib"})

	resolver := treeshake.NewAliasResolver(nil)
	resolver.ResolveAliases(reg)

	require.Equal(t, []string{"lib"}, reg.Names())

	lib, _ := reg.Get("lib")
	assert.Equal(t, "shrunk", lib.Content)
	assert.Equal(t, []treeshake.Removal{{Name: "lib", Reason: treeshake.ReasonAlias, ReplacedBy: "x"}}, resolver.Removals())
}

func TestMergeDuplicates_FirstSeenSurvives(t *testing.T) {
	t.Parallel()

	reg := amd.NewRegistry()
	reg.Add(&amd.Record{Name: "main", Imports: []string{"dup2", "dup3"}, Content: "main"})
	reg.Add(&amd.Record{Name: "dup1", Content: "same"})
	reg.Add(&amd.Record{Name: "dup2", Content: "same"})
	reg.Add(&amd.Record{Name: "dup3", Content: "same"})

	resolver := treeshake.NewAliasResolver(nil)
	resolver.MergeDuplicates(reg)

	require.Equal(t, []string{"main", "dup1"}, reg.Names())

	mainRec, _ := reg.Get("main")
	assert.Equal(t, []string{"dup1", "dup1"}, mainRec.Imports)
	assert.Len(t, resolver.Removals(), 2)
}

func TestResolve_ChainsAliasIntoDuplicate(t *testing.T) {
	t.Parallel()

	reg := amd.NewRegistry()
	reg.Add(&amd.Record{Name: "keep", Imports: []string{"a"}, Content: "k"})
	reg.Add(&amd.Record{Name: "real", Content: "body"})
	reg.Add(&amd.Record{Name: "a", Content: "body", Alias: "b"})

	resolver := treeshake.Resolve(reg, true, nil)

	require.Equal(t, []string{"keep", "real"}, reg.Names())

	keep, _ := reg.Get("keep")
	assert.Equal(t, []string{"real"}, keep.Imports)
	assert.Equal(t, "real", amd.ResolveName(resolver.Table(), "a"))
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	reg := amd.NewRegistry()
	reg.Add(&amd.Record{Name: "a", Imports: []string{"b", "c"}, Content: "x"})
	reg.Add(&amd.Record{Name: "b", Content: "same", Alias: "lib/b"})
	reg.Add(&amd.Record{Name: "c", Content: "same"})

	treeshake.Resolve(reg, true, nil)

	snapshot := amd.Serialize(reg, amd.SerializeOptions{IncludeProvenance: true})

	second := treeshake.Resolve(reg, true, nil)

	assert.Equal(t, snapshot, amd.Serialize(reg, amd.SerializeOptions{IncludeProvenance: true}))
	assert.Empty(t, second.Removals())
	assert.Empty(t, second.Renames())
}

func TestResolveAliases_NestedPathsBothSurvive(t *testing.T) {
	t.Parallel()

	reg := amd.NewRegistry()
	reg.Add(&amd.Record{Name: "util", Content: "function () { return 1; });", Alias: "lib/util"})
	reg.Add(&amd.Record{
		Name:    "lib/util",
		Imports: []string{"util"},
		Content: "function (u) { return u.x + 2; });",
		Alias:   "app/lib/util",
	})
	reg.Add(&amd.Record{Name: "main", Imports: []string{"util", "lib/util"}, Content: "function (a, b) {});"})

	resolver := treeshake.NewAliasResolver(nil)
	resolver.ResolveAliases(reg)

	require.Equal(t, []string{"lib/util", "app/lib/util", "main"}, reg.Names())
	assert.Empty(t, resolver.Removals())

	inner, _ := reg.Get("lib/util")
	assert.Equal(t, "function () { return 1; });", inner.Content)

	outer, _ := reg.Get("app/lib/util")
	assert.Equal(t, []string{"lib/util"}, outer.Imports)
	assert.Equal(t, "function (u) { return u.x + 2; });", outer.Content)

	mainRec, _ := reg.Get("main")
	assert.Equal(t, []string{"lib/util", "app/lib/util"}, mainRec.Imports)
}

func TestResolveAliases_Swap(t *testing.T) {
	t.Parallel()

	reg := amd.NewRegistry()
	reg.Add(&amd.Record{Name: "a", Imports: []string{"b"}, Content: "first", Alias: "b"})
	reg.Add(&amd.Record{Name: "b", Content: "second", Alias: "a"})

	resolver := treeshake.NewAliasResolver(nil)
	resolver.ResolveAliases(reg)

	require.Equal(t, []string{"b", "a"}, reg.Names())
	assert.Empty(t, resolver.Removals())

	b, _ := reg.Get("b")
	assert.Equal(t, "first", b.Content)
	assert.Equal(t, []string{"a"}, b.Imports)

	a, _ := reg.Get("a")
	assert.Equal(t, "second", a.Content)
}

func TestResolveAliases_LastClaimWins(t *testing.T) {
	t.Parallel()

	reg := amd.NewRegistry()
	reg.Add(&amd.Record{Name: "x", Content: "one", Alias: "lib"})
	reg.Add(&amd.Record{Name: "y", Content: "two", Alias: "lib"})

	resolver := treeshake.NewAliasResolver(nil)
	resolver.ResolveAliases(reg)

	require.Equal(t, []string{"lib"}, reg.Names())

	lib, _ := reg.Get("lib")
	assert.Equal(t, "two", lib.Content)
	assert.Equal(t, []treeshake.Removal{{Name: "x", Reason: treeshake.ReasonAlias, ReplacedBy: "y"}}, resolver.Removals())
}
