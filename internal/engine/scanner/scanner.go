// Package scanner finds the imports of a Python script and decides which
// of them the browser runtime can satisfy.
package scanner

import (
	"context"
	"log/slog"
	"time"

	"github.com/gobwas/glob"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"pyscript/internal/core/errors"
	"pyscript/internal/engine/parser"
	"pyscript/internal/engine/resolver"
	"pyscript/internal/shared/observability"
)

// Options configures a Scanner.
type Options struct {
	// ExcludeDirs are glob patterns for directory names that never count
	// as local packages. Nil means resolver.DefaultExcludeDirs.
	ExcludeDirs []string
}

// Scanner is safe for concurrent use; parsers come from a shared pool.
type Scanner struct {
	parser  *parser.Parser
	exclude []glob.Glob
}

func New(opts Options) (*Scanner, error) {
	patterns := opts.ExcludeDirs
	if patterns == nil {
		patterns = resolver.DefaultExcludeDirs
	}
	exclude, err := resolver.CompileExcludes(patterns)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid exclude pattern")
	}
	return &Scanner{parser: parser.NewParser(), exclude: exclude}, nil
}

// Finding is the first import of one module in a script and how it was classified.
type Finding struct {
	Module         string                  `json:"module"`
	Classification resolver.Classification `json:"classification"`
	Name           string                  `json:"name"`
	Path           string                  `json:"path,omitempty"`
	Reason         resolver.Reason         `json:"reason,omitempty"`
	Line           int                     `json:"line"`
	Column         int                     `json:"column"`
}

// Warning reports whether the finding ends up in an unsupported set.
func (f Finding) Warning() bool {
	return f.Classification == resolver.ClassUnsupported
}

// Report is a FinderResult together with the findings behind it, in source order.
type Report struct {
	Source   string       `json:"source"`
	Result   FinderResult `json:"result"`
	Findings []Finding    `json:"findings"`
}

// Scan parses source, which was read from sourcePath, and classifies every
// module it imports. Local modules are resolved relative to sourcePath's
// directory. A syntax error aborts the scan with a CodeSyntax error and no
// result.
func (s *Scanner) Scan(ctx context.Context, source []byte, sourcePath string) (FinderResult, error) {
	report, err := s.Inspect(ctx, source, sourcePath)
	if err != nil {
		return FinderResult{}, err
	}
	return report.Result, nil
}

// Inspect is Scan with per-module findings kept for reporting.
func (s *Scanner) Inspect(ctx context.Context, source []byte, sourcePath string) (Report, error) {
	ctx, span := observability.Tracer().Start(ctx, "scanner.Scan")
	defer span.End()
	span.SetAttributes(attribute.String("pyscript.source", sourcePath))

	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	start := time.Now()
	defer func() { observability.ScanDuration.Observe(time.Since(start).Seconds()) }()

	imports, err := s.parser.ParseImports(source, sourcePath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errors.Message(err))
		return Report{}, err
	}

	policy := resolver.NewPolicy(resolver.NewNamespace(sourcePath, s.exclude))
	agg := newAggregator()
	findings := make([]Finding, 0, len(imports))
	record := func(d resolver.Decision, imp parser.ImportStatement) {
		if !agg.Add(d) {
			return
		}
		observability.ImportsTotal.WithLabelValues(string(d.Classification)).Inc()
		findings = append(findings, Finding{
			Module:         d.Module,
			Classification: d.Classification,
			Name:           d.Name,
			Path:           d.Path,
			Reason:         d.Reason,
			Line:           imp.Location.Line,
			Column:         imp.Location.Column,
		})
		slog.Debug("import classified",
			"module", d.Module,
			"classification", d.Classification,
			"line", imp.Location.Line,
		)
	}
	for _, imp := range imports {
		for _, target := range imp.Targets() {
			record(policy.Classify(target, imp.Level), imp)
		}
		for _, d := range policy.Submodules(imp.Module, imp.Level, imp.Names) {
			record(d, imp)
		}
	}

	result := agg.Result()
	span.SetAttributes(
		attribute.Int("pyscript.imports", len(imports)),
		attribute.Bool("pyscript.warnings", result.HasWarnings()),
	)
	slog.Debug("scan complete", "source", sourcePath, "summary", result.Summary())
	return Report{Source: sourcePath, Result: result, Findings: findings}, nil
}
