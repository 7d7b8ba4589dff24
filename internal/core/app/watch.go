package app

import (
	"context"
	"log/slog"
	"path/filepath"

	"pyscript/internal/core/watcher"
	"pyscript/internal/engine/scanner"
	"pyscript/internal/shared/util"
)

// WatchRequest describes one script to keep wrapped.
type WatchRequest struct {
	Input  string
	Output string
	Title  string
	// OnBuild is called after every rebuild, including failed ones.
	OnBuild func(scanner.FinderResult, error)
}

// Watch rewraps req.Input whenever a Python file next to it changes, until
// ctx is done. Rebuilds are paced by the configured rate limit.
func (a *App) Watch(ctx context.Context, req WatchRequest) error {
	cfg := a.Config()
	limiter := util.NewLimiter(cfg.Watch.RebuildsPerSecond, cfg.Watch.Burst)

	rebuild := func(paths []string) {
		if err := limiter.Wait(ctx, 1); err != nil {
			return
		}
		slog.Info("change detected, rewrapping", "input", req.Input, "changed", len(paths))
		result, err := a.WrapFile(ctx, req.Input, req.Output, req.Title)
		if req.OnBuild != nil {
			req.OnBuild(result, err)
		}
	}

	w, err := watcher.NewWatcher(cfg.Watch.Debounce, cfg.Scan.ExcludeDirs, nil, rebuild)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch([]string{filepath.Dir(req.Input)}); err != nil {
		return err
	}
	slog.Info("watching for changes", "dir", filepath.Dir(req.Input))

	<-ctx.Done()
	return nil
}
