package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/amdshake/pkg/treeshake"
)

// Format selects how a Summary is rendered.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned for a format name outside Formats.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats lists the supported format names.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat maps a case-insensitive name to a Format. Empty means text.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
}

// Options tunes text rendering.
type Options struct {
	// Color enables ANSI colors in text output.
	Color bool
	// Verbose also lists the used modules.
	Verbose bool
}

// Write renders summary to w in the given format.
func Write(w io.Writer, summary Summary, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err := enc.Encode(summary)
		if err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(yamlIndent)

		err := enc.Encode(summary)
		if err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}

		err = enc.Close()
		if err != nil {
			return fmt.Errorf("close yaml report: %w", err)
		}

		return nil
	case FormatText, "":
		return writeText(w, summary, opts)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

const yamlIndent = 2

type palette struct {
	heading *color.Color
	good    *color.Color
	warn    *color.Color
	bad     *color.Color
	muted   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		heading: color.New(color.Bold),
		good:    color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		bad:     color.New(color.FgRed),
		muted:   color.New(color.FgHiBlack),
	}

	for _, c := range []*color.Color{p.heading, p.good, p.warn, p.bad, p.muted} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

func (p palette) reason(reason treeshake.Reason) *color.Color {
	switch reason {
	case treeshake.ReasonUnreachable:
		return p.bad
	case treeshake.ReasonCompare:
		return p.warn
	default:
		return p.muted
	}
}

func writeText(w io.Writer, s Summary, opts Options) error {
	p := newPalette(opts.Color)

	var b strings.Builder

	p.heading.Fprintf(&b, "%s\n", s.Operation)

	if s.Strategy != "" {
		fmt.Fprintf(&b, "strategy: %s\n", s.Strategy)
	}

	fmt.Fprintf(&b, "modules:  %d -> %d\n", s.ModulesBefore, s.ModulesAfter)
	fmt.Fprintf(&b, "size:     %s -> %s ", humanize.Bytes(uint64(s.BytesBefore)), humanize.Bytes(uint64(s.BytesAfter)))

	saved := s.SavedBytes()
	if saved >= 0 {
		p.good.Fprintf(&b, "(saved %s, %.1f%%)\n", humanize.Bytes(uint64(saved)), s.SavedPercent())
	} else {
		p.bad.Fprintf(&b, "(grew %s)\n", humanize.Bytes(uint64(-saved)))
	}

	for _, missing := range s.Missing {
		p.warn.Fprintf(&b, "warning: kept module %q is not in the bundle", missing.Name)

		if missing.Suggestion != "" {
			p.warn.Fprintf(&b, " (did you mean %q?)", missing.Suggestion)
		}

		b.WriteString("\n")
	}

	if len(s.Removed) > 0 {
		tbl := newTable()
		tbl.AppendHeader(table.Row{"Module", "Reason", "Replaced by"})

		for _, removal := range s.Removed {
			tbl.AppendRow(table.Row{removal.Name, p.reason(removal.Reason).Sprint(removal.Reason), removal.ReplacedBy})
		}

		tbl.AppendFooter(table.Row{fmt.Sprintf("Removed: %d", len(s.Removed))})
		fmt.Fprintf(&b, "\n%s\n", tbl.Render())
	}

	if len(s.Pruned) > 0 {
		tbl := newTable()
		tbl.AppendHeader(table.Row{"Module", "Import", "Param"})

		for _, pruned := range s.Pruned {
			tbl.AppendRow(table.Row{pruned.Module, pruned.Import, pruned.Param})
		}

		tbl.AppendFooter(table.Row{fmt.Sprintf("Pruned: %d", len(s.Pruned))})
		fmt.Fprintf(&b, "\n%s\n", tbl.Render())
	}

	if len(s.Renamed) > 0 {
		tbl := newTable()
		tbl.AppendHeader(table.Row{"From", "To"})

		for _, rename := range s.Renamed {
			tbl.AppendRow(table.Row{rename.From, rename.To})
		}

		tbl.AppendFooter(table.Row{fmt.Sprintf("Renamed: %d", len(s.Renamed))})
		fmt.Fprintf(&b, "\n%s\n", tbl.Render())
	}

	if opts.Verbose && len(s.Used) > 0 {
		fmt.Fprintf(&b, "\nused: %s\n", strings.Join(s.Used, ", "))
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	return nil
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)

	return tbl
}
