// Package levenshtein computes edit distances between module names and picks
// the closest match for a misspelled name.
package levenshtein

// Context reuses its distance column between calls. A Context is not safe
// for concurrent use.
type Context struct {
	column []int
}

func (ctx *Context) columnOf(length int) []int {
	if cap(ctx.column) < length {
		ctx.column = make([]int, length)
	}

	return ctx.column[:length]
}

// Distance returns the number of single-rune insertions, deletions and
// substitutions turning a into b.
func (ctx *Context) Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(rb) == 0 {
		return len(ra)
	}

	column := ctx.columnOf(len(ra) + 1)
	for i := range column {
		column[i] = i
	}

	for j, rbj := range rb {
		diag := column[0]
		column[0] = j + 1

		for i, rai := range ra {
			above := column[i+1]

			cost := 1
			if rai == rbj {
				cost = 0
			}

			column[i+1] = min(above+1, column[i]+1, diag+cost)
			diag = above
		}
	}

	return column[len(ra)]
}

// Closest returns the candidate nearest to name that is at most maxDistance
// edits away. Ties go to the earliest candidate. The boolean is false when
// no candidate qualifies.
func (ctx *Context) Closest(name string, candidates []string, maxDistance int) (string, bool) {
	best := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		d := ctx.Distance(name, candidate)
		if d < bestDistance {
			best, bestDistance = candidate, d
		}
	}

	return best, bestDistance <= maxDistance
}
