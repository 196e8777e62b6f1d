package amd

import (
	"strings"
)

// SerializeOptions controls how a registry is written back to source text.
type SerializeOptions struct {
	// IncludeProvenance emits a provenance comment line before every
	// definition. Untagged definitions get an empty line.
	IncludeProvenance bool
}

// Serialize writes one define(...) call per record, in registry order. The
// import list is omitted when it is empty.
func Serialize(reg *Registry, opts SerializeOptions) string {
	var sb strings.Builder

	for _, rec := range reg.Records() {
		if opts.IncludeProvenance {
			if rec.Provenance != "" {
				sb.WriteString(ProvenancePrefix)
				sb.WriteString(rec.Provenance)
			}

			sb.WriteByte('\n')
		}

		sb.WriteString(`define("`)
		sb.WriteString(rec.Name)
		sb.WriteByte('"')

		if len(rec.Imports) > 0 {
			sb.WriteString(`, ["`)
			sb.WriteString(strings.Join(rec.Imports, `", "`))
			sb.WriteString(`"]`)
		}

		sb.WriteString(", ")
		sb.WriteString(rec.Content)

		if !strings.HasSuffix(rec.Content, "\n") {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
