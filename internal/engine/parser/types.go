package parser

import "strings"

// ImportKind distinguishes the syntactic form an import was written in.
type ImportKind int

const (
	KindImport  ImportKind = iota // import a.b [as c]
	KindFrom                      // from a.b import c
	KindDynamic                   // __import__("a") / importlib.import_module("a")
)

func (k ImportKind) String() string {
	switch k {
	case KindImport:
		return "import"
	case KindFrom:
		return "from"
	case KindDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// ImportStatement is one import discovered in a Python source.
type ImportStatement struct {
	Module     string   // Dotted module path without leading dots; empty for "from . import x"
	Names      []string // Names bound by "from X import ..."; empty for whole-module imports
	Alias      string   // "as" alias of a plain import
	Level      int      // Number of leading dots of a relative import
	IsRelative bool
	Kind       ImportKind
	Location   Location
}

type Location struct {
	File   string
	Line   int
	Column int
}

// Root returns the first dotted segment of the imported module.
func (s ImportStatement) Root() string {
	root, _, _ := strings.Cut(s.Module, ".")
	return root
}

// Targets returns the root module names this statement depends on.
// "from . import a, b" depends on the sibling modules a and b; every
// other form depends on the root of its module path.
func (s ImportStatement) Targets() []string {
	if s.Module != "" {
		return []string{s.Root()}
	}
	if !s.IsRelative {
		return nil
	}
	out := make([]string, 0, len(s.Names))
	for _, name := range s.Names {
		if name == "" || name == "*" {
			continue
		}
		root, _, _ := strings.Cut(name, ".")
		out = append(out, root)
	}
	return out
}

// Reference renders a target with the statement's relative prefix, e.g. "..pkg".
func (s ImportStatement) Reference(target string) string {
	return strings.Repeat(".", s.Level) + target
}
