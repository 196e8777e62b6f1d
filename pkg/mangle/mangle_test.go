package mangle_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
	"github.com/Sumatoshi-tech/amdshake/pkg/mangle"
	"github.com/Sumatoshi-tech/amdshake/pkg/treeshake"
)

const appBundle = `define("app/main", ["app/views/list", "lib/a/foo", "require"], function (list, foo, require) { list.render(foo.x); });
define("app/views/list", ["lib/b/foo", "lib/a/foo"], function (b, a) { return b.y(a.z); });
define("lib/a/foo", [], function () { return { x: 1, z: 2 }; });
define("lib/b/foo", ["lib/a/foo"], function (a) { return { y: a.z }; });
`

func edgesOf(reg *amd.Registry) map[string][]string {
	edges := make(map[string][]string, reg.Len())

	for _, rec := range reg.Records() {
		edges[rec.Name] = rec.Imports
	}

	return edges
}

func assertGraphPreserved(t *testing.T, before, after *amd.Registry, renames []amd.Rename) {
	t.Helper()

	mapping := make(map[string]string, len(renames))
	for _, r := range renames {
		mapping[r.From] = r.To
	}

	rename := func(name string) string {
		if to, ok := mapping[name]; ok {
			return to
		}

		return name
	}

	require.Equal(t, before.Len(), after.Len())

	for name, imports := range edgesOf(before) {
		rec, ok := after.Get(rename(name))
		require.True(t, ok, name)

		want := make([]string, len(imports))
		for i, imp := range imports {
			want[i] = rename(imp)
		}

		assert.Equal(t, want, rec.Imports, name)
	}
}

func TestMangle_ShortenPreservesGraph(t *testing.T) {
	t.Parallel()

	before := amd.Extract(appBundle)
	after := before.Clone()

	renames := mangle.Mangle(after, mangle.Shorten, nil)

	assert.Equal(t, []string{"main", "list", "foo", "b/foo"}, after.Names())
	assertGraphPreserved(t, before, after, renames)

	mainRec, _ := after.Get("main")
	assert.Equal(t, "app/main=main", mainRec.Provenance)
	assert.Equal(t, "require", mainRec.Imports[2])
}

func TestMangle_ObfuscatePreservesGraph(t *testing.T) {
	t.Parallel()

	before := amd.Extract(appBundle)
	after := before.Clone()

	strategy, err := mangle.StrategyByName(mangle.StrategyObfuscate)
	require.NoError(t, err)

	renames := mangle.Mangle(after, strategy, nil)

	assert.Equal(t, []string{"a", "b", "c", "d"}, after.Names())
	assertGraphPreserved(t, before, after, renames)
}

func TestMangle_ObfuscateThirtyModules(t *testing.T) {
	t.Parallel()

	reg := amd.NewRegistry()
	for i := range 30 {
		reg.Add(&amd.Record{Name: fmt.Sprintf("mod/%02d", i), Content: fmt.Sprintf("%d", i)})
	}

	mangle.Mangle(reg, mangle.NewObfuscator(), nil)

	want := strings.Split("a b c d e f g h i j k l m n o p q r s t u v w x y z ba bb bc bd", " ")
	assert.Equal(t, want, reg.Names())
}

func TestMangle_NeverTakesExternalName(t *testing.T) {
	t.Parallel()

	reg := amd.NewRegistry()
	reg.Add(&amd.Record{Name: "app", Imports: []string{"require", "b"}, Content: "1"})
	reg.Add(&amd.Record{Name: "shim/require", Content: "2"})
	reg.Add(&amd.Record{Name: "x", Content: "3"})

	proposedExternal := false

	renames := mangle.Mangle(reg, func(_ *amd.Registry, current string) string {
		if current == "x" && !proposedExternal {
			proposedExternal = true

			return "b"
		}

		return mangle.Shorten(reg, current)
	}, nil)

	assert.True(t, proposedExternal)

	assert.Empty(t, renames)
	assert.Equal(t, []string{"app", "shim/require", "x"}, reg.Names())
}

func TestMangle_CustomStrategyRetriedUntilFree(t *testing.T) {
	t.Parallel()

	reg := registryOf("one", "two")
	proposals := []string{"two", "two", "uno", "dos"}
	calls := 0

	renames := mangle.Mangle(reg, func(_ *amd.Registry, _ string) string {
		next := proposals[calls]
		calls++

		return next
	}, nil)

	assert.Equal(t, 4, calls)
	assert.Equal(t, []amd.Rename{{From: "one", To: "uno"}, {From: "two", To: "dos"}}, renames)
	assert.Equal(t, []string{"uno", "dos"}, reg.Names())
}

func TestShrink_DefaultsToShorten(t *testing.T) {
	t.Parallel()

	result, err := mangle.Shrink(context.Background(), appBundle, mangle.ShrinkOptions{})
	require.NoError(t, err)

	assert.Equal(t, mangle.StrategyShorten, result.Strategy)
	assert.Equal(t, []string{"main", "list", "foo", "b/foo"}, amd.Names(result.Output))
	assert.NotContains(t, result.Output, amd.ProvenancePrefix)
	assert.Less(t, result.BytesAfter, result.BytesBefore)
	assert.Equal(t, 4, result.Modules)
}

func TestShrink_UnknownStrategy(t *testing.T) {
	t.Parallel()

	result, err := mangle.Shrink(context.Background(), appBundle, mangle.ShrinkOptions{StrategyName: "nope"})

	require.ErrorIs(t, err, mangle.ErrUnknownStrategy)
	assert.Empty(t, result.Output)
	assert.Nil(t, result.Registry)
}

func TestShrink_CounterResetsPerRun(t *testing.T) {
	t.Parallel()

	opts := mangle.ShrinkOptions{StrategyName: mangle.StrategyObfuscate}

	first, err := mangle.Shrink(context.Background(), appBundle, opts)
	require.NoError(t, err)

	second, err := mangle.Shrink(context.Background(), appBundle, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Output, second.Output)
}

func TestShrink_ProvenanceRestoredByTreeshake(t *testing.T) {
	t.Parallel()

	shrunk, err := mangle.Shrink(context.Background(), appBundle, mangle.ShrinkOptions{
		StrategyName:      mangle.StrategyObfuscate,
		IncludeProvenance: true,
	})
	require.NoError(t, err)
	require.Contains(t, shrunk.Output, amd.ProvenancePrefix+"app/main=a")

	restored := treeshake.Treeshake(context.Background(), shrunk.Output, treeshake.NewOptions("app/main"))

	assert.Equal(t, []string{"app/main", "app/views/list", "lib/a/foo", "lib/b/foo"}, amd.Names(restored.Output))
	assert.Contains(t, restored.Output, `define("app/views/list", ["lib/b/foo", "lib/a/foo"]`)
}

func TestShrink_NestedPathsRestoredByTreeshake(t *testing.T) {
	t.Parallel()

	text := `define("lib/util", [], function () { return { x: 1 }; });
define("app/lib/util", ["lib/util"], function (u) { return u.x + 2; });
`

	shrunk, err := mangle.Shrink(context.Background(), text, mangle.ShrinkOptions{IncludeProvenance: true})
	require.NoError(t, err)
	require.Equal(t, []amd.Rename{
		{From: "lib/util", To: "util"},
		{From: "app/lib/util", To: "lib/util"},
	}, shrunk.Renamed)

	restored := treeshake.Treeshake(context.Background(), shrunk.Output, treeshake.NewOptions("app/lib/util"))

	assert.Equal(t, []string{"lib/util", "app/lib/util"}, amd.Names(restored.Output))
	assert.Empty(t, restored.Removed)
	assert.Contains(t, restored.Output, "return { x: 1 };")
	assert.Contains(t, restored.Output, `define("app/lib/util", ["lib/util"], function (u) { return u.x + 2; });`)
}
