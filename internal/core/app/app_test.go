package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyscript/internal/core/config"
	"pyscript/internal/core/errors"
	"pyscript/internal/engine/scanner"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(config.DefaultConfig())
	require.NoError(t, err)
	return a
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "dir/app.html", OutputPath("dir/app.py"))
	assert.Equal(t, "notebook.html", OutputPath("notebook.ipynb"))
}

func TestWrapFile(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "main.py")
	write(t, filepath.Join(dir, "helper.py"), "")
	write(t, input, "import numpy\nimport helper\n")
	output := OutputPath(input)

	result, err := a.WrapFile(context.Background(), input, output, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"numpy"}, result.Packages)
	assert.Equal(t, []string{"helper.py"}, result.Paths)

	page, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>PyScript App</title>")
	assert.Contains(t, string(page), "numpy")
	assert.Contains(t, string(page), "helper.py")

	last, builds := a.LastBuild()
	require.NotNil(t, last)
	assert.Equal(t, 1, builds)
	assert.Equal(t, "ok", last.Outcome)
}

func TestWrapFile_WarningsStillWrite(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "main.py")
	write(t, input, "import totally_fake_package_xyz\n")
	output := filepath.Join(dir, "out", "page.html")

	result, err := a.WrapFile(context.Background(), input, output, "Custom")
	require.NoError(t, err)
	assert.True(t, result.HasWarnings())
	assert.FileExists(t, output)

	last, _ := a.LastBuild()
	assert.Equal(t, "warning", last.Outcome)
}

func TestWrapFile_SyntaxErrorWritesNothing(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "main.py")
	write(t, input, "def f(:\n")
	output := OutputPath(input)

	result, err := a.WrapFile(context.Background(), input, output, "")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeSyntax))
	assert.Equal(t, scanner.FinderResult{}, result)
	assert.NoFileExists(t, output)

	status := NewHealthService(a).Check(context.Background())
	assert.Equal(t, HealthDegraded, status.Status)
	assert.Equal(t, "1", status.Components["builds"])
}

func TestWrapFile_UnsupportedType(t *testing.T) {
	a := newTestApp(t)
	input := filepath.Join(t.TempDir(), "notes.txt")
	write(t, input, "import os\n")

	_, err := a.WrapFile(context.Background(), input, OutputPath(input), "")
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestWrapString(t *testing.T) {
	a := newTestApp(t)
	output := filepath.Join(t.TempDir(), "cmd.html")

	require.NoError(t, a.WrapString("print('hello')", output, "Hello"))
	page, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Hello</title>")
	assert.Contains(t, string(page), "print(&#39;hello&#39;)")
}

func TestReconfigure(t *testing.T) {
	a := newTestApp(t)

	cfg := config.DefaultConfig()
	cfg.Wrap.Title = "Reloaded"
	require.NoError(t, a.Reconfigure(cfg))
	assert.Equal(t, "Reloaded", a.Title(""))
	assert.Equal(t, "Explicit", a.Title(" Explicit "))
}

func TestHealth_NoBuilds(t *testing.T) {
	status := NewHealthService(newTestApp(t)).Check(context.Background())
	assert.Equal(t, HealthOK, status.Status)
	assert.Equal(t, "none", status.Components["last_build"])
	assert.Contains(t, status.Components, "heap_alloc_mb")
}

func TestWatch_RewrapsOnChange(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Watch.Debounce = 20 * time.Millisecond
	cfg.Watch.RebuildsPerSecond = 100
	a, err := New(cfg)
	require.NoError(t, err)

	dir := t.TempDir()
	input := filepath.Join(dir, "main.py")
	write(t, input, "import os\n")

	built := make(chan scanner.FinderResult, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, WatchRequest{
			Input:  input,
			Output: OutputPath(input),
			OnBuild: func(r scanner.FinderResult, err error) {
				if err != nil {
					return
				}
				select {
				case built <- r:
				default:
				}
			},
		})
	}()

	time.Sleep(100 * time.Millisecond)
	write(t, input, "import numpy\n")

	timeout := time.After(3 * time.Second)
	for seen := false; !seen; {
		select {
		case r := <-built:
			seen = len(r.Packages) == 1 && r.Packages[0] == "numpy"
		case <-timeout:
			t.Fatal("timed out waiting for rebuild")
		}
	}

	cancel()
	require.NoError(t, <-done)
}

func TestInspect(t *testing.T) {
	a := newTestApp(t)
	input := filepath.Join(t.TempDir(), "main.py")
	write(t, input, "import numpy\nimport zzz_unknown\n")

	report, err := a.Inspect(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, report.Findings, 2)
	assert.Equal(t, []string{"zzz_unknown"}, report.Result.UnsupportedPackages)
	assert.NoFileExists(t, OutputPath(input))
}
