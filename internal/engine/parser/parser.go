package parser

import (
	"bytes"
	"fmt"
	"strings"

	"pyscript/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Python 2 statements kept by the grammar for legacy code; the browser
// runtime is Python 3, so they are reported as syntax errors.
var legacyStatements = map[string]string{
	"print_statement": "Missing parentheses in call to 'print'",
	"exec_statement":  "Missing parentheses in call to 'exec'",
}

// Parser turns Python source into import statements.
type Parser struct {
	pool      *ParserPool
	extractor *PythonExtractor
}

func NewParser() *Parser {
	return &Parser{
		pool:      NewParserPool(sitter.NewLanguage(tree_sitter_python.Language())),
		extractor: &PythonExtractor{},
	}
}

// ParseImports parses source and returns every statically discoverable
// import in source order. Invalid source yields a CodeSyntax error.
func (p *Parser) ParseImports(source []byte, filePath string) ([]ImportStatement, error) {
	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(source, nil)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxPath, filePath)
	}
	defer tree.Close()

	root := tree.RootNode()
	if err := checkSyntax(root, source, filePath); err != nil {
		return nil, err
	}
	return p.extractor.Extract(root, source, filePath), nil
}

func checkSyntax(root *sitter.Node, source []byte, filePath string) error {
	if root.HasError() {
		node := firstErrorNode(root)
		if node == nil {
			node = root
		}
		msg := "invalid syntax"
		if node.IsMissing() {
			msg = fmt.Sprintf("invalid syntax: missing %q", node.Kind())
		}
		return syntaxError(msg, filePath, node)
	}

	if node, msg := firstRejected(root, source); node != nil {
		return syntaxError(msg, filePath, node)
	}
	return nil
}

func syntaxError(msg, filePath string, node *sitter.Node) error {
	loc := nodeLocation(filePath, node)
	err := errors.New(errors.CodeSyntax, msg)
	err = errors.AddContext(err, errors.CtxPath, filePath)
	err = errors.AddContext(err, errors.CtxLine, loc.Line)
	return errors.AddContext(err, errors.CtxColumn, loc.Column)
}

// firstErrorNode returns the earliest ERROR or MISSING node in document order.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// firstRejected finds constructs the grammar accepts but CPython refuses:
// Python 2 statements, broken indentation, unparenthesized walrus at
// statement level and parameters without defaults after defaulted ones.
func firstRejected(node *sitter.Node, source []byte) (*sitter.Node, string) {
	if node == nil {
		return nil, ""
	}

	switch node.Kind() {
	case "print_statement", "exec_statement":
		if bad, msg := legacyStatement(node, source); bad != nil {
			return bad, msg
		}
	case "module":
		if bad, msg := misindented(node, source, 0); bad != nil {
			return bad, msg
		}
	case "block":
		if bad, msg := misindented(node, source, -1); bad != nil {
			return bad, msg
		}
	case "expression_statement":
		if first := node.NamedChild(0); first != nil && first.Kind() == "named_expression" {
			return first, "invalid syntax"
		}
	case "assignment":
		if right := node.ChildByFieldName("right"); right != nil && right.Kind() == "named_expression" {
			return right, "invalid syntax"
		}
	case "parameters", "lambda_parameters":
		if bad := defaultOrderViolation(node); bad != nil {
			return bad, "non-default argument follows default argument"
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if found, msg := firstRejected(node.Child(i), source); found != nil {
			return found, msg
		}
	}
	return nil, ""
}

// legacyStatement ignores "print (x)" forms, which are valid calls.
func legacyStatement(node *sitter.Node, source []byte) (*sitter.Node, string) {
	msg := legacyStatements[node.Kind()]
	text := string(source[node.StartByte():node.EndByte()])
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(text, "print"), "exec"))
	if strings.HasPrefix(rest, "(") {
		return nil, ""
	}
	return node, msg
}

// misindented checks that every statement of a module or block that begins
// its own line sits at the same indentation. A negative want takes the
// indentation of the first statement. The grammar recovers from a dedent to
// an unknown level by attaching the statement elsewhere, so this is where
// IndentationError surfaces.
func misindented(node *sitter.Node, source []byte, want int) (*sitter.Node, string) {
	var prev *sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.IsExtra() {
			continue
		}
		indent, ownLine := lineIndent(source, child.StartByte())
		if !ownLine {
			prev = child
			continue
		}
		switch {
		case want < 0:
			want = indent
		case indent > want:
			if prev != nil && opensBlock(prev) {
				return child, "unindent does not match any outer indentation level"
			}
			return child, "unexpected indent"
		case indent < want:
			return child, "unindent does not match any outer indentation level"
		}
		prev = child
	}
	return nil, ""
}

// lineIndent returns the width of the whitespace before offset on its line,
// and whether only whitespace precedes offset there.
func lineIndent(source []byte, offset uint) (int, bool) {
	lineStart := bytes.LastIndexByte(source[:offset], '\n') + 1
	prefix := source[lineStart:offset]
	if lineStart == 0 {
		prefix = bytes.TrimPrefix(prefix, []byte("\ufeff"))
	}
	for _, c := range prefix {
		if c != ' ' && c != '\t' && c != '\f' {
			return 0, false
		}
	}
	return len(prefix), true
}

func opensBlock(node *sitter.Node) bool {
	switch node.Kind() {
	case "if_statement", "for_statement", "while_statement", "try_statement", "with_statement",
		"function_definition", "class_definition", "decorated_definition", "match_statement":
		return true
	}
	return false
}

// defaultOrderViolation returns the first positional parameter without a
// default that follows one with a default. Parameters after "*" or "*args"
// are keyword-only and may omit defaults.
func defaultOrderViolation(params *sitter.Node) *sitter.Node {
	seenDefault := false
	for i := uint(0); i < params.NamedChildCount(); i++ {
		param := params.NamedChild(i)
		if param == nil || param.IsExtra() {
			continue
		}
		switch param.Kind() {
		case "default_parameter", "typed_default_parameter":
			seenDefault = true
		case "keyword_separator", "list_splat_pattern", "dictionary_splat_pattern":
			return nil
		case "typed_parameter":
			if inner := param.NamedChild(0); inner != nil &&
				(inner.Kind() == "list_splat_pattern" || inner.Kind() == "dictionary_splat_pattern") {
				return nil
			}
			if seenDefault {
				return param
			}
		case "identifier":
			if seenDefault {
				return param
			}
		}
	}
	return nil
}
