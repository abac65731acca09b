package diag

import (
	"fmt"
	"sort"
	"strings"
)

// FormatGolden renders diagnostics one per line in a stable order, suitable
// for golden comparisons and CLI short output:
//
//	error DEC2003 path/to/solo.toml global[1].name duplicate declaration MOKIO_PL1
//
// Notes follow their diagnostic, rendered as severity "note". Empty input
// yields the empty string.
func FormatGolden(diags []Diagnostic, includeNotes bool) string {
	rendered := make([]Diagnostic, len(diags))
	copy(rendered, diags)
	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Key != dj.Key {
			return di.Key < dj.Key
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})

	var b strings.Builder
	for _, d := range rendered {
		writeLine(&b, d.Severity.label(), d.Code, d.Path, d.Key, d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			writeLine(&b, "note", d.Code, d.Path, n.Key, n.Msg)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func writeLine(b *strings.Builder, label string, code Code, path, key, msg string) {
	// Collapse message newlines so each entry stays on one line.
	msg = strings.Join(strings.Fields(msg), " ")
	if key == "" {
		fmt.Fprintf(b, "%s %s %s %s\n", label, code, path, msg)
		return
	}
	fmt.Fprintf(b, "%s %s %s %s %s\n", label, code, path, key, msg)
}
