package levenshtein_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/amdshake/pkg/levenshtein"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "a", 1},
		{"a", "", 1},
		{"ab", "aa", 1},
		{"ab", "aaa", 2},
		{"kitten", "sitting", 3},
		{"sitting", "kitten", 3},
		{"Fön", "Föm", 1},
		{"app/main", "app/mian", 2},
		{"app/util", "lib/util", 3},
	}

	ctx := &levenshtein.Context{}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ctx.Distance(tt.a, tt.b), "%q -> %q", tt.a, tt.b)
	}
}

func TestClosest(t *testing.T) {
	t.Parallel()

	ctx := &levenshtein.Context{}
	candidates := []string{"app/main", "app/util", "lib/dom"}

	got, ok := ctx.Closest("app/mian", candidates, 2)
	assert.True(t, ok)
	assert.Equal(t, "app/main", got)

	got, ok = ctx.Closest("app/utl", candidates, 2)
	assert.True(t, ok)
	assert.Equal(t, "app/util", got)

	_, ok = ctx.Closest("vendor/jquery", candidates, 2)
	assert.False(t, ok)

	_, ok = ctx.Closest("x", nil, 5)
	assert.False(t, ok)
}

func TestClosest_TieGoesToFirst(t *testing.T) {
	t.Parallel()

	got, ok := (&levenshtein.Context{}).Closest("ab", []string{"aa", "bb"}, 1)
	assert.True(t, ok)
	assert.Equal(t, "aa", got)
}
