package scanner

import (
	"fmt"
	"strings"

	"pyscript/internal/engine/resolver"
	"pyscript/internal/shared/util"
)

// FinderResult is the report of one scan. Every slice is sorted and free of
// duplicates; standard-library imports appear nowhere.
type FinderResult struct {
	Packages            []string `json:"packages"`             // installable in the browser runtime
	Paths               []string `json:"paths"`                // local files to ship next to the script
	UnsupportedPackages []string `json:"unsupported_packages"` // third-party imports the runtime cannot install
	UnsupportedPaths    []string `json:"unsupported_paths"`    // local imports that could not be located
}

// HasWarnings reports whether anything was found the browser runtime cannot satisfy.
func (r FinderResult) HasWarnings() bool {
	return len(r.UnsupportedPackages)+len(r.UnsupportedPaths) > 0
}

type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
)

func (r FinderResult) Severity() Severity {
	if r.HasWarnings() {
		return SeverityWarning
	}
	return SeverityOK
}

func (r FinderResult) Summary() string {
	return fmt.Sprintf("%d packages, %d local paths, %d unsupported packages, %d unsupported paths",
		len(r.Packages), len(r.Paths), len(r.UnsupportedPackages), len(r.UnsupportedPaths))
}

func (r FinderResult) String() string {
	var b strings.Builder
	b.WriteString(r.Summary())
	write := func(label string, values []string) {
		if len(values) > 0 {
			fmt.Fprintf(&b, "\n%s: %s", label, strings.Join(values, ", "))
		}
	}
	write("packages", r.Packages)
	write("paths", r.Paths)
	write("unsupported packages", r.UnsupportedPackages)
	write("unsupported paths", r.UnsupportedPaths)
	return b.String()
}

// aggregator folds per-import decisions into a FinderResult. The first
// decision seen for a module wins; the policy is deterministic, so any
// later decision for the same module agrees with it.
type aggregator struct {
	seen                map[string]resolver.Classification
	packages            map[string]bool
	paths               map[string]bool
	unsupportedPackages map[string]bool
	unsupportedPaths    map[string]bool
}

func newAggregator() *aggregator {
	return &aggregator{
		seen:                make(map[string]resolver.Classification),
		packages:            make(map[string]bool),
		paths:               make(map[string]bool),
		unsupportedPackages: make(map[string]bool),
		unsupportedPaths:    make(map[string]bool),
	}
}

// Add records d and reports whether its module had not been seen before.
func (a *aggregator) Add(d resolver.Decision) bool {
	if _, ok := a.seen[d.Module]; ok {
		return false
	}
	a.seen[d.Module] = d.Classification

	switch d.Classification {
	case resolver.ClassPackage:
		a.packages[d.Name] = true
	case resolver.ClassLocal:
		a.paths[d.Path] = true
	case resolver.ClassUnsupported:
		if d.Reason == resolver.ReasonLocal {
			a.unsupportedPaths[d.Name] = true
		} else {
			a.unsupportedPackages[d.Name] = true
		}
	}
	return true
}

func (a *aggregator) Result() FinderResult {
	return FinderResult{
		Packages:            util.SortedStringKeys(a.packages),
		Paths:               util.SortedStringKeys(a.paths),
		UnsupportedPackages: util.SortedStringKeys(a.unsupportedPackages),
		UnsupportedPaths:    util.SortedStringKeys(a.unsupportedPaths),
	}
}
