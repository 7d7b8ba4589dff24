package parser

import (
	"strings"
	"unicode"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// PythonExtractor collects import statements from a tree-sitter-python tree.
type PythonExtractor struct{}

var dynamicImportCallees = map[string]bool{
	"__import__":              true,
	"importlib.import_module": true,
	"import_module":           true,
}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) []ImportStatement {
	ctx := &ExtractionContext{Source: source, Path: filePath}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":      e.extractImport,
		"import_from_statement": e.extractFromImport,
		// __future__ imports are compiler directives, never dependencies.
		"future_import_statement": func(*ExtractionContext, *sitter.Node) bool { return true },
		"call":                    e.extractDynamicImport,
	})
	engine.Walk(ctx, root)
	return ctx.Imports
}

func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		switch child.Kind() {
		case "dotted_name":
			ctx.Imports = append(ctx.Imports, ImportStatement{
				Module:   normalizeDotted(ctx.Text(child)),
				Kind:     KindImport,
				Location: ctx.Location(child),
			})
		case "aliased_import":
			ctx.Imports = append(ctx.Imports, ImportStatement{
				Module:   normalizeDotted(ctx.Text(child.ChildByFieldName("name"))),
				Alias:    ctx.Text(child.ChildByFieldName("alias")),
				Kind:     KindImport,
				Location: ctx.Location(child),
			})
		}
	}
	return true
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) bool {
	stmt := ImportStatement{
		Kind:     KindFrom,
		Location: ctx.Location(node),
	}

	seenImport := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)

		if !seenImport {
			switch child.Kind() {
			case "import":
				seenImport = true
			case "relative_import":
				stmt.IsRelative = true
				stmt.Level = strings.Count(ctx.ChildText(child, "import_prefix"), ".")
				stmt.Module = normalizeDotted(ctx.ChildText(child, "dotted_name"))
			case "dotted_name":
				stmt.Module = normalizeDotted(ctx.Text(child))
			}
			continue
		}

		switch child.Kind() {
		case "dotted_name":
			stmt.Names = append(stmt.Names, normalizeDotted(ctx.Text(child)))
		case "aliased_import":
			stmt.Names = append(stmt.Names, normalizeDotted(ctx.Text(child.ChildByFieldName("name"))))
		case "wildcard_import":
			stmt.Names = append(stmt.Names, "*")
		}
	}

	ctx.Imports = append(ctx.Imports, stmt)
	return true
}

// extractDynamicImport records calls such as importlib.import_module("pkg")
// whose first argument is a plain string literal. Anything computed is skipped.
func (e *PythonExtractor) extractDynamicImport(ctx *ExtractionContext, node *sitter.Node) bool {
	callee := normalizeDotted(ctx.Text(node.ChildByFieldName("function")))
	if !dynamicImportCallees[callee] {
		return false
	}

	arg := firstNamedChild(node.ChildByFieldName("arguments"))
	if arg == nil || arg.Kind() != "string" {
		return false
	}

	literal, ok := plainStringLiteral(ctx, arg)
	if !ok || !isDottedIdentifier(literal) {
		return false
	}

	ctx.Imports = append(ctx.Imports, ImportStatement{
		Module:   literal,
		Kind:     KindDynamic,
		Location: ctx.Location(node),
	})
	return false
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.IsNamed() && child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

// plainStringLiteral returns the content of a string node that has no
// interpolation, escapes or prefix other than r/u/b.
func plainStringLiteral(ctx *ExtractionContext, node *sitter.Node) (string, bool) {
	var content string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "string_start":
			if strings.ContainsAny(strings.ToLower(ctx.Text(child)), "f") {
				return "", false
			}
		case "string_content":
			if child.ChildCount() > 0 {
				return "", false
			}
			content = ctx.Text(child)
		case "string_end":
		default:
			return "", false
		}
	}
	return content, content != ""
}

func isDottedIdentifier(value string) bool {
	if value == "" {
		return false
	}
	for _, part := range strings.Split(value, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
				continue
			}
			return false
		}
	}
	return true
}

// normalizeDotted strips whitespace, comments and line continuations that
// the grammar allows between the segments of a dotted name.
func normalizeDotted(value string) string {
	if value == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(value, "\n") {
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		for _, r := range line {
			if unicode.IsSpace(r) || r == '\\' {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
