package resolver

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultExcludeDirs are directory names never treated as local modules.
var DefaultExcludeDirs = []string{".git", "__pycache__", ".venv", "venv", "node_modules"}

// EntryKind describes what a name resolves to next to the script.
type EntryKind int

const (
	EntryNone      EntryKind = iota
	EntryModule              // <name>.py
	EntryPackage             // <name>/__init__.py
	EntryNamespace           // <name>/ without __init__.py
)

// Namespace is the set of importable names found in the script's directory.
// It is built once per scan from a single directory listing.
type Namespace struct {
	Dir     string
	self    string
	entries map[string]EntryKind
	exclude []glob.Glob
}

// CompileExcludes compiles directory-name glob patterns.
func CompileExcludes(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// NewNamespace lists the directory containing sourcePath. A missing or
// unreadable directory yields an empty namespace.
func NewNamespace(sourcePath string, exclude []glob.Glob) *Namespace {
	dir := filepath.Dir(sourcePath)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	ns := &Namespace{
		Dir:     dir,
		self:    strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath)),
		entries: make(map[string]EntryKind),
		exclude: exclude,
	}

	items, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("local namespace unavailable", "dir", dir, "error", err)
		return ns
	}

	for _, item := range items {
		name := item.Name()
		if item.IsDir() {
			if ns.isExcluded(name) {
				continue
			}
			if fileExists(filepath.Join(dir, name, "__init__.py")) {
				ns.entries[name] = EntryPackage
			} else if ns.entries[name] == EntryNone {
				ns.entries[name] = EntryNamespace
			}
			continue
		}
		if !strings.HasSuffix(name, ".py") {
			continue
		}
		mod := strings.TrimSuffix(name, ".py")
		if mod == ns.self {
			continue
		}
		if kind := ns.entries[mod]; kind == EntryNone || kind == EntryNamespace {
			ns.entries[mod] = EntryModule
		}
	}

	slog.Debug("local namespace collected", "dir", dir, "entries", len(ns.entries))
	return ns
}

// Lookup reports what name resolves to in the script's own directory.
func (ns *Namespace) Lookup(name string) EntryKind {
	if ns == nil {
		return EntryNone
	}
	return ns.entries[name]
}

// Probe resolves name against the directory level-1 parents above the
// script's directory, as a relative import with the given level would.
func (ns *Namespace) Probe(name string, level int) (EntryKind, string) {
	if level <= 1 {
		kind := ns.Lookup(name)
		return kind, entryPath("", name, kind)
	}

	rel := strings.Repeat("../", level-1)
	dir := filepath.Join(ns.Dir, filepath.FromSlash(rel))
	var kind EntryKind
	switch {
	case fileExists(filepath.Join(dir, name, "__init__.py")):
		kind = EntryPackage
	case fileExists(filepath.Join(dir, name+".py")):
		kind = EntryModule
	case dirExists(filepath.Join(dir, name)) && !ns.isExcluded(name):
		kind = EntryNamespace
	}
	return kind, entryPath(rel, name, kind)
}

// ProbePath resolves a dotted module path, given as segments, below the
// directory a relative import with level would start from. Level 0 and 1
// both start at the script's directory. Every segment but the last must be a
// regular package.
func (ns *Namespace) ProbePath(level int, segments []string) (EntryKind, string) {
	if len(segments) == 0 || ns.isExcluded(segments[0]) {
		return EntryNone, ""
	}
	rel := ""
	if level > 1 {
		rel = strings.Repeat("../", level-1)
	}
	dir := filepath.Join(ns.Dir, filepath.FromSlash(rel))

	last := len(segments) - 1
	for _, seg := range segments[:last] {
		dir = filepath.Join(dir, seg)
		if !fileExists(filepath.Join(dir, "__init__.py")) {
			return EntryNone, ""
		}
	}

	name := segments[last]
	prefix := path.Join(append([]string{rel}, segments[:last]...)...)
	var kind EntryKind
	switch {
	case fileExists(filepath.Join(dir, name, "__init__.py")):
		kind = EntryPackage
	case fileExists(filepath.Join(dir, name+".py")):
		kind = EntryModule
	case dirExists(filepath.Join(dir, name)):
		kind = EntryNamespace
	}
	return kind, entryPath(prefix, name, kind)
}

func (ns *Namespace) isExcluded(name string) bool {
	for _, g := range ns.exclude {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// entryPath returns the slash-separated file to embed for a resolved entry.
func entryPath(prefix, name string, kind EntryKind) string {
	switch kind {
	case EntryModule:
		return path.Join(prefix, name+".py")
	case EntryPackage:
		return path.Join(prefix, name, "__init__.py")
	default:
		return ""
	}
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
