package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"pyscript/internal/engine/scanner"
	"pyscript/internal/shared/version"
)

func Markdown(r scanner.Report) string {
	var b strings.Builder
	b.WriteString("# Import Report: " + filepath.Base(r.Source) + "\n\n")
	b.WriteString("Generated by pyscript " + version.Version + ".\n\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Set | Count |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Packages | %d |\n", len(r.Result.Packages))
	fmt.Fprintf(&b, "| Local paths | %d |\n", len(r.Result.Paths))
	fmt.Fprintf(&b, "| Unsupported packages | %d |\n", len(r.Result.UnsupportedPackages))
	fmt.Fprintf(&b, "| Unsupported paths | %d |\n\n", len(r.Result.UnsupportedPaths))

	if r.Result.HasWarnings() {
		b.WriteString("> **Warning:** some imports cannot be satisfied in the browser runtime.\n\n")
	}

	b.WriteString("## Imports\n\n")
	if len(r.Findings) == 0 {
		b.WriteString("_No imports found._\n")
		return b.String()
	}
	b.WriteString("| Line | Module | Classification | Provided by |\n|---:|---|---|---|\n")
	for _, f := range r.Findings {
		provided := f.Name
		if f.Path != "" {
			provided = f.Path
		}
		fmt.Fprintf(&b, "| %d | `%s` | %s | %s |\n", f.Line, escapeCell(f.Module), f.Classification, escapeCell(provided))
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
