package treeshake

import (
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/amdshake/pkg/amd"
)

// identRx matches a plain JavaScript identifier.
var identRx = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

// PrunedImport is one import dropped because its parameter is never used.
type PrunedImport struct {
	Module string `json:"module"          yaml:"module"`
	Import string `json:"import"          yaml:"import"`
	Param  string `json:"param,omitempty" yaml:"param,omitempty"`
}

// Prune runs PruneRecord over every record of reg in registry order.
func Prune(reg *amd.Registry, logger *slog.Logger) []PrunedImport {
	logger = loggerOrDiscard(logger)

	var pruned []PrunedImport

	for _, rec := range reg.Records() {
		recordPruned := PruneRecord(rec)

		for _, p := range recordPruned {
			logger.Debug("pruning import", "module", p.Module, "import", p.Import, "param", p.Param)
		}

		pruned = append(pruned, recordPruned...)
	}

	return pruned
}

// PruneRecord drops every import whose matching factory parameter is missing
// or never appears as a call, index or member access in the body. The
// factory's parameter list is rewritten to match. Records without imports,
// whose body does not open with a function, or with an empty or
// non-identifier parameter list are untouched.
func PruneRecord(rec *amd.Record) []PrunedImport {
	if len(rec.Imports) == 0 {
		return nil
	}

	start, end, ok := factoryParams(rec.Content)
	if !ok {
		return nil
	}

	params, ok := splitParams(rec.Content[start:end])
	if !ok {
		return nil
	}

	var pruned []PrunedImport

	for i := 0; i < len(rec.Imports); {
		if i < len(params) && isReferenced(rec.Content, params[i]) {
			i++

			continue
		}

		entry := PrunedImport{Module: rec.Name, Import: rec.Imports[i]}

		if i < len(params) {
			entry.Param = params[i]
			params = slices.Delete(params, i, i+1)
		}

		rec.Imports = slices.Delete(rec.Imports, i, i+1)
		pruned = append(pruned, entry)
	}

	if len(pruned) > 0 {
		rec.Content = rec.Content[:start] + strings.Join(params, ", ") + rec.Content[end:]
	}

	return pruned
}

// splitParams splits a raw parameter list into trimmed names. ok is false
// when the list is empty or holds anything but plain identifiers.
func splitParams(raw string) (params []string, ok bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}

	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if !identRx.MatchString(name) {
			return nil, false
		}

		params = append(params, name)
	}

	return params, true
}

// isReferenced reports whether param is followed by "(", "[" or "." anywhere
// in body.
func isReferenced(body, param string) bool {
	rx := regexp.MustCompile(regexp.QuoteMeta(param) + `[(\[.]`)

	return rx.MatchString(body)
}
