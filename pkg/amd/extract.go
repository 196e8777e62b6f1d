package amd

import (
	"regexp"
	"strings"
	"unicode"
)

// ProvenancePrefix starts the comment line that records a prior rename.
const ProvenancePrefix = "//# sourceTS:"

const (
	provenanceSeparator = "="
	defineToken         = "define("
)

var (
	provenanceRx = regexp.MustCompile(`//# sourceTS:(.*?)=(.*?)\s+`)
	nameRx       = regexp.MustCompile(`^(?:"([^"]*)"|'([^']*)')`)
	importsRx    = regexp.MustCompile(`^[,\s]+\[([^\]]*)\]`)
	separatorRx  = regexp.MustCompile(`^[,\s]+`)
	importJunkRx = regexp.MustCompile(`[\s"']`)
	whitespaceRx = regexp.MustCompile(`\s+`)
	useStrictRx  = regexp.MustCompile(`(?i)\s+(?:"use strict"|'use strict');`)
)

// Extract parses every define("name", [imports], factory) call in text into a
// registry. Calls without a literal name are dropped. Provenance comments
// ("//# sourceTS:old=new") preceding a definition turn into an Alias pointing
// back at the old name.
func Extract(text string) *Registry {
	aliases := make(map[string]string)

	text = provenanceRx.ReplaceAllStringFunc(text, func(match string) string {
		groups := provenanceRx.FindStringSubmatch(match)
		aliases[whitespaceRx.ReplaceAllString(groups[2], "")] = groups[1]

		return ""
	})

	reg := NewRegistry()

	for _, chunk := range splitDefinitions(text) {
		rec := parseDefinition(chunk)
		if rec == nil {
			continue
		}

		if old, ok := aliases[rec.Name]; ok {
			rec.Alias = old
		}

		reg.Add(rec)
	}

	return reg
}

// Names returns the module names defined in text, in definition order.
func Names(text string) []string {
	return Extract(text).Names()
}

// StripUseStrict removes "use strict"; directives along with the whitespace
// that precedes them.
func StripUseStrict(text string) string {
	return useStrictRx.ReplaceAllString(text, "")
}

// splitDefinitions cuts text at every top-level "define(" token. Member
// calls such as obj.define( and identifiers ending in define are not cut
// points. The first chunk holds whatever precedes the first definition.
func splitDefinitions(text string) []string {
	var chunks []string

	start := 0

	for offset := 0; ; {
		idx := strings.Index(text[offset:], defineToken)
		if idx < 0 {
			break
		}

		idx += offset
		offset = idx + len(defineToken)

		if idx > 0 && isIdentByte(text[idx-1]) {
			continue
		}

		chunks = append(chunks, strings.TrimRightFunc(text[start:idx], unicode.IsSpace))
		start = offset
	}

	return append(chunks, strings.TrimRightFunc(text[start:], unicode.IsSpace))
}

func isIdentByte(b byte) bool {
	return b == '.' || b == '$' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func parseDefinition(chunk string) *Record {
	loc := nameRx.FindStringSubmatchIndex(chunk)
	if loc == nil {
		return nil
	}

	var name string

	if loc[2] >= 0 {
		name = chunk[loc[2]:loc[3]]
	} else {
		name = chunk[loc[4]:loc[5]]
	}

	if name == "" {
		return nil
	}

	rest := chunk[loc[1]:]

	var imports []string

	if m := importsRx.FindStringSubmatchIndex(rest); m != nil {
		imports = splitImports(rest[m[2]:m[3]])
		rest = rest[m[1]:]
	}

	return &Record{
		Name:    name,
		Imports: imports,
		Content: separatorRx.ReplaceAllString(rest, ""),
	}
}

func splitImports(list string) []string {
	cleaned := importJunkRx.ReplaceAllString(list, "")
	if cleaned == "" {
		return nil
	}

	var out []string

	for _, imp := range strings.Split(cleaned, ",") {
		if imp != "" {
			out = append(out, imp)
		}
	}

	return out
}
