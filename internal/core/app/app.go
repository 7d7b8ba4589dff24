package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pyscript/internal/core/config"
	"pyscript/internal/engine/scanner"
	"pyscript/internal/engine/source"
	"pyscript/internal/shared/observability"
	"pyscript/internal/ui/render"
)

// BuildRecord describes one wrap.
type BuildRecord struct {
	Input    string
	Output   string
	Outcome  string
	Err      string
	Duration time.Duration
	At       time.Time
}

// App wraps scripts into pages using the current configuration. It is safe
// for concurrent use; Reconfigure swaps the scanner and renderer together.
type App struct {
	mu       sync.RWMutex
	cfg      *config.Config
	scanner  *scanner.Scanner
	renderer *render.Renderer

	statsMu   sync.Mutex
	builds    int
	lastBuild *BuildRecord
}

func New(cfg *config.Config) (*App, error) {
	a := &App{}
	if err := a.Reconfigure(cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// Reconfigure rebuilds the scanner and renderer from cfg. On error the
// previous configuration stays in effect.
func (a *App) Reconfigure(cfg *config.Config) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s, err := scanner.New(scanner.Options{ExcludeDirs: cfg.Scan.ExcludeDirs})
	if err != nil {
		return err
	}
	r, err := render.New(render.Options{ReleaseURL: cfg.Runtime.ReleaseURL})
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.cfg, a.scanner, a.renderer = cfg, s, r
	a.mu.Unlock()
	return nil
}

func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *App) parts() (*scanner.Scanner, *render.Renderer) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.scanner, a.renderer
}

// Title returns explicit when set, otherwise the configured page title.
func (a *App) Title(explicit string) string {
	if t := strings.TrimSpace(explicit); t != "" {
		return t
	}
	return a.Config().Wrap.Title
}

// OutputPath derives the page path for a script: same name, .html suffix.
func OutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".html"
}

// WrapFile loads input, scans its imports and writes the page to output.
// Unsupported imports do not stop the page from being written; they are
// reported through the returned result. Load and syntax errors write nothing.
func (a *App) WrapFile(ctx context.Context, input, output, title string) (scanner.FinderResult, error) {
	start := time.Now()
	s, r := a.parts()

	result, err := func() (scanner.FinderResult, error) {
		code, err := source.Load(input)
		if err != nil {
			return scanner.FinderResult{}, err
		}
		result, err := s.Scan(ctx, []byte(code), input)
		if err != nil {
			return scanner.FinderResult{}, err
		}
		page := render.Page{
			Code:     code,
			Title:    a.Title(title),
			Packages: result.Packages,
			Paths:    result.Paths,
		}
		if err := r.RenderFile(output, page); err != nil {
			return scanner.FinderResult{}, err
		}
		return result, nil
	}()

	a.record(input, output, start, result, err)
	return result, err
}

// Inspect loads input and reports how each of its imports was classified,
// without writing a page.
func (a *App) Inspect(ctx context.Context, input string) (scanner.Report, error) {
	s, _ := a.parts()
	code, err := source.Load(input)
	if err != nil {
		return scanner.Report{}, err
	}
	return s.Inspect(ctx, []byte(code), input)
}

// WrapString writes code to output without scanning it.
func (a *App) WrapString(code, output, title string) error {
	start := time.Now()
	_, r := a.parts()
	err := r.RenderFile(output, render.Page{Code: code, Title: a.Title(title)})
	a.record("", output, start, scanner.FinderResult{}, err)
	return err
}

func (a *App) record(input, output string, start time.Time, result scanner.FinderResult, err error) {
	rec := BuildRecord{
		Input:    input,
		Output:   output,
		Outcome:  observability.OutcomeOK,
		Duration: time.Since(start),
		At:       time.Now().UTC(),
	}
	switch {
	case err != nil:
		rec.Outcome = observability.OutcomeError
		rec.Err = err.Error()
	case result.HasWarnings():
		rec.Outcome = observability.OutcomeWarning
	}
	observability.WrapTotal.WithLabelValues(rec.Outcome).Inc()

	a.statsMu.Lock()
	a.builds++
	a.lastBuild = &rec
	a.statsMu.Unlock()

	slog.Debug("wrap finished", "input", input, "output", output, "outcome", rec.Outcome, "duration", rec.Duration)
}

// LastBuild returns a copy of the most recent wrap and the number of wraps so far.
func (a *App) LastBuild() (*BuildRecord, int) {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	if a.lastBuild == nil {
		return nil, a.builds
	}
	rec := *a.lastBuild
	return &rec, a.builds
}
