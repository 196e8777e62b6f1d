package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffStats counts the lines of a bundle diff.
type DiffStats struct {
	Inserted  int `json:"inserted"  yaml:"inserted"`
	Deleted   int `json:"deleted"   yaml:"deleted"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
}

// Diff computes a line diff between two bundle texts.
func Diff(before, after string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffMainRunes(src, dst, false)

	return dmp.DiffCharsToLines(diffs, lines)
}

// WriteDiff writes the line diff between before and after to w. Deleted
// lines start with "-", inserted lines with "+". Unchanged runs collapse to
// a single "@@ n unchanged @@" marker.
func WriteDiff(w io.Writer, before, after string, colored bool) (DiffStats, error) {
	del := color.New(color.FgRed)
	ins := color.New(color.FgGreen)
	eq := color.New(color.FgCyan)

	for _, c := range []*color.Color{del, ins, eq} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var (
		stats DiffStats
		b     strings.Builder
	)

	for _, d := range Diff(before, after) {
		lines := splitLines(d.Text)

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			stats.Deleted += len(lines)

			for _, line := range lines {
				del.Fprintf(&b, "-%s\n", line)
			}
		case diffmatchpatch.DiffInsert:
			stats.Inserted += len(lines)

			for _, line := range lines {
				ins.Fprintf(&b, "+%s\n", line)
			}
		case diffmatchpatch.DiffEqual:
			stats.Unchanged += len(lines)

			eq.Fprintf(&b, "@@ %d unchanged @@\n", len(lines))
		}
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return stats, fmt.Errorf("write diff: %w", err)
	}

	return stats, nil
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
