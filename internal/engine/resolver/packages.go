package resolver

import (
	_ "embed"
	"regexp"
	"strings"
)

// RuntimeVersion is the Pyodide distribution the allow-list was taken from.
const RuntimeVersion = "0.26.2"

//go:embed tables/pyodide.txt
var pyodidePackagesData string

//go:embed tables/renames.txt
var packageRenamesData string

// normalized name -> distribution name as published
var runtimePackages = map[string]string{}

// import name -> distribution name
var packageRenames = map[string]string{}

var nameSeparators = regexp.MustCompile(`[-_.]+`)

func init() {
	for _, line := range tableLines(pyodidePackagesData) {
		runtimePackages[normalizePackageName(line)] = line
	}
	for _, line := range tableLines(packageRenamesData) {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		packageRenames[fields[0]] = fields[1]
	}
}

func tableLines(data string) []string {
	lines := strings.Split(data, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// normalizePackageName applies PEP 503 name normalization.
func normalizePackageName(name string) string {
	return strings.ToLower(nameSeparators.ReplaceAllString(name, "-"))
}

// PackageName maps an import root to the distribution name that provides it.
func PackageName(root string) string {
	if renamed, ok := packageRenames[root]; ok {
		return renamed
	}
	return root
}

// LookupRuntimePackage returns the published name of pkg when the browser
// runtime can install it.
func LookupRuntimePackage(pkg string) (string, bool) {
	name, ok := runtimePackages[normalizePackageName(pkg)]
	return name, ok
}
