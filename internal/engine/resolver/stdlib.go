package resolver

import (
	_ "embed"
	"strings"
)

// StdlibVersion is the CPython release the standard-library table was taken from.
const StdlibVersion = "3.11"

//go:embed tables/python.txt
var pythonStdlibData string

var pythonStdlib = map[string]bool{}

// Modules the browser runtime provides without any installation.
var runtimeProvided = map[string]bool{
	"js":         true,
	"pyodide":    true,
	"pyodide_js": true,
	"pyscript":   true,
	"micropip":   true,
}

func init() {
	for _, line := range strings.Split(pythonStdlibData, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pythonStdlib[line] = true
		// Add base name: e.g. urllib.request -> urllib
		root, _, _ := strings.Cut(line, ".")
		pythonStdlib[root] = true
	}
}

// IsStdlib reports whether root needs no browser-side installation.
func IsStdlib(root string) bool {
	return pythonStdlib[root] || runtimeProvided[root]
}
