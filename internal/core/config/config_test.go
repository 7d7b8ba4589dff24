package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pyscript/internal/core/errors"
	"pyscript/internal/ui/render"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pyscript.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[wrap]
title = "  My Page "

[runtime]
release_url = "https://pyscript.net/releases/2024.5.2/"

[scan]
exclude_dirs = ["build_*", ".git"]

[watch]
debounce = "1s"
rebuilds_per_second = 0.5
burst = 3

[observability]
metrics_addr = "127.0.0.1:9090"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Wrap.Title != "My Page" {
		t.Errorf("expected trimmed title, got %q", cfg.Wrap.Title)
	}
	if cfg.Runtime.ReleaseURL != "https://pyscript.net/releases/2024.5.2" {
		t.Errorf("unexpected release url %q", cfg.Runtime.ReleaseURL)
	}
	if len(cfg.Scan.ExcludeDirs) != 2 || cfg.Scan.ExcludeDirs[0] != "build_*" {
		t.Errorf("unexpected exclude dirs %v", cfg.Scan.ExcludeDirs)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected 1s debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.RebuildsPerSecond != 0.5 || cfg.Watch.Burst != 3 {
		t.Errorf("unexpected watch limits %+v", cfg.Watch)
	}
	if cfg.Observability.MetricsAddr != "127.0.0.1:9090" {
		t.Errorf("unexpected metrics addr %q", cfg.Observability.MetricsAddr)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Wrap.Title != DefaultTitle {
		t.Errorf("expected default title, got %q", cfg.Wrap.Title)
	}
	if cfg.Runtime.ReleaseURL != render.DefaultReleaseURL {
		t.Errorf("unexpected release url %q", cfg.Runtime.ReleaseURL)
	}
	if cfg.Watch.Debounce != 300*time.Millisecond {
		t.Errorf("expected 300ms debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.RebuildsPerSecond != 2 || cfg.Watch.Burst != 1 {
		t.Errorf("unexpected watch limits %+v", cfg.Watch)
	}
	if len(cfg.Scan.ExcludeDirs) == 0 {
		t.Error("expected default exclude dirs")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadOrDefault_Missing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected defaults, got %v", err)
	}
	if cfg.Runtime.ReleaseURL != render.DefaultReleaseURL {
		t.Errorf("unexpected release url %q", cfg.Runtime.ReleaseURL)
	}

	_, err = Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"syntax":       "[wrap\ntitle = 1",
		"release_url":  "[runtime]\nrelease_url = \"ftp://example.com\"",
		"burst":        "[watch]\nburst = -1",
		"rate":         "[watch]\nrebuilds_per_second = -2.0",
		"debounce":     "[watch]\ndebounce = \"-1s\"",
		"metrics_addr": "[observability]\nmetrics_addr = \"nohostport\"",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			if !errors.IsCode(err, errors.CodeValidationError) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PYSCRIPT_WRAP_TITLE", "From Env")
	t.Setenv("PYSCRIPT_SCAN_EXCLUDE_DIRS", "dist, build ,")
	t.Setenv("PYSCRIPT_WATCH_DEBOUNCE", "2s")
	t.Setenv("PYSCRIPT_WATCH_BURST", "not-a-number")
	t.Setenv("PYSCRIPT_OBSERVABILITY_OTLP_INSECURE", "TRUE")

	cfg := DefaultConfig()
	ApplyEnvOverrides(cfg)

	if cfg.Wrap.Title != "From Env" {
		t.Errorf("unexpected title %q", cfg.Wrap.Title)
	}
	if strings.Join(cfg.Scan.ExcludeDirs, "|") != "dist|build" {
		t.Errorf("unexpected exclude dirs %v", cfg.Scan.ExcludeDirs)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("unexpected debounce %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.Burst != 1 {
		t.Errorf("invalid int override should be ignored, got %d", cfg.Watch.Burst)
	}
	if !cfg.Observability.OTLPInsecure {
		t.Error("expected otlp_insecure override")
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "[wrap]\ntitle = \"Before\"\n")

	reloaded := make(chan *Config, 4)
	w := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("[wrap]\ntitle = \"After\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Wrap.Title != "After" {
			t.Fatalf("expected reloaded title After, got %q", cfg.Wrap.Title)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}
