package resolver

import "strings"

// Classification is the outcome of classifying one root module.
type Classification string

const (
	ClassStdlib      Classification = "stdlib"
	ClassPackage     Classification = "package"
	ClassLocal       Classification = "local"
	ClassUnsupported Classification = "unsupported"
)

// Reason tells unsupported external packages apart from unresolved local imports.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonExternal Reason = "external"
	ReasonLocal    Reason = "local"
)

// Decision is the classification of one root module plus what to report.
type Decision struct {
	Classification Classification
	Module         string // root as referenced, with relative dots
	Name           string // name reported in packages or unsupported sets
	Path           string // slash path relative to the script, for local modules
	Reason         Reason
}

// Policy classifies root module names for one script. Aside from the
// filesystem probes behind its Namespace it is a pure function.
type Policy struct {
	ns *Namespace
}

func NewPolicy(ns *Namespace) *Policy {
	return &Policy{ns: ns}
}

// Classify decides where root (imported with level leading dots) comes from.
// Local resolution runs first so a sibling module or package shadows an
// installable or standard-library module of the same name, as it does at
// runtime.
func (p *Policy) Classify(root string, level int) Decision {
	module := strings.Repeat(".", level) + root

	if level > 0 {
		return p.classifyLocal(module, root, level)
	}
	switch p.ns.Lookup(root) {
	case EntryModule, EntryPackage:
		return p.classifyLocal(module, root, 1)
	case EntryNamespace:
		// A directory without __init__.py only matters when nothing
		// installed answers to the name.
		if !installed(root) {
			return p.classifyLocal(module, root, 1)
		}
	}

	if IsStdlib(root) {
		return Decision{Classification: ClassStdlib, Module: module, Name: root}
	}

	pkg := PackageName(root)
	if IsStdlib(pkg) {
		return Decision{Classification: ClassStdlib, Module: module, Name: pkg}
	}
	if name, ok := LookupRuntimePackage(pkg); ok {
		return Decision{Classification: ClassPackage, Module: module, Name: name}
	}
	return Decision{
		Classification: ClassUnsupported,
		Module:         module,
		Name:           pkg,
		Reason:         ReasonExternal,
	}
}

func installed(root string) bool {
	if IsStdlib(root) || IsStdlib(PackageName(root)) {
		return true
	}
	_, ok := LookupRuntimePackage(PackageName(root))
	return ok
}

func (p *Policy) classifyLocal(module, root string, level int) Decision {
	kind, rel := p.ns.Probe(root, level)
	if kind == EntryModule || kind == EntryPackage {
		return Decision{
			Classification: ClassLocal,
			Module:         module,
			Name:           module,
			Path:           rel,
		}
	}
	return Decision{
		Classification: ClassUnsupported,
		Module:         module,
		Name:           module,
		Reason:         ReasonLocal,
	}
}

// Submodules resolves the parts of a local package import beyond the
// package's own __init__.py. module is the dotted path without leading dots
// and names are the names bound by a from-import. Each dotted segment below
// the root must exist as a file; a segment that does not is an unresolved
// local import. A from-imported name becomes a path only when it is a
// submodule on disk, otherwise it is taken to be defined by the package.
// Non-local roots yield nothing.
func (p *Policy) Submodules(module string, level int, names []string) []Decision {
	if module == "" {
		return nil
	}
	segments := strings.Split(module, ".")
	if kind, _ := p.ns.ProbePath(level, segments[:1]); kind != EntryPackage {
		return nil
	}

	prefix := strings.Repeat(".", level)
	var out []Decision
	for i := 2; i <= len(segments); i++ {
		ref := prefix + strings.Join(segments[:i], ".")
		kind, rel := p.ns.ProbePath(level, segments[:i])
		switch kind {
		case EntryPackage:
			out = append(out, Decision{Classification: ClassLocal, Module: ref, Name: ref, Path: rel})
			continue
		case EntryModule:
			out = append(out, Decision{Classification: ClassLocal, Module: ref, Name: ref, Path: rel})
			if i < len(segments) {
				next := prefix + strings.Join(segments[:i+1], ".")
				out = append(out, Decision{Classification: ClassUnsupported, Module: next, Name: next, Reason: ReasonLocal})
			}
		default:
			out = append(out, Decision{Classification: ClassUnsupported, Module: ref, Name: ref, Reason: ReasonLocal})
		}
		return out
	}

	for _, name := range names {
		if name == "" || name == "*" {
			continue
		}
		sub := append(append([]string(nil), segments...), strings.Split(name, ".")...)
		kind, rel := p.ns.ProbePath(level, sub)
		if kind == EntryModule || kind == EntryPackage {
			ref := prefix + strings.Join(sub, ".")
			out = append(out, Decision{Classification: ClassLocal, Module: ref, Name: ref, Path: rel})
		}
	}
	return out
}
