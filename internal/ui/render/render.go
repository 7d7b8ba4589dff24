// Package render turns Python source into a standalone PyScript page.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"strings"

	"pyscript/internal/core/errors"
	"pyscript/internal/shared/util"
)

// DefaultReleaseURL is the PyScript release the page loads its runtime from.
const DefaultReleaseURL = "https://pyscript.net/releases/2024.1.1"

//go:embed templates/basic.html
var templateFS embed.FS

type Options struct {
	ReleaseURL string
}

// Page is everything one generated document needs.
type Page struct {
	Code     string
	Title    string
	Packages []string
	Paths    []string
}

type Renderer struct {
	tmpl       *template.Template
	releaseURL string
}

type pageData struct {
	Title      string
	ReleaseURL string
	Config     string
	Code       string
}

type pyConfig struct {
	Packages []string     `json:"packages"`
	Fetch    []fetchEntry `json:"fetch,omitempty"`
}

type fetchEntry struct {
	Files []string `json:"files"`
}

func New(opts Options) (*Renderer, error) {
	releaseURL := strings.TrimRight(strings.TrimSpace(opts.ReleaseURL), "/")
	if releaseURL == "" {
		releaseURL = DefaultReleaseURL
	}
	tmpl, err := template.ParseFS(templateFS, "templates/basic.html")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "parsing page template")
	}
	return &Renderer{tmpl: tmpl, releaseURL: releaseURL}, nil
}

// Render writes the page for p to w. Nil package or path lists render as
// empty lists.
func (r *Renderer) Render(w io.Writer, p Page) error {
	cfg := pyConfig{Packages: p.Packages}
	if cfg.Packages == nil {
		cfg.Packages = []string{}
	}
	if len(p.Paths) > 0 {
		cfg.Fetch = []fetchEntry{{Files: p.Paths}}
	}
	config, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encoding py-config")
	}

	data := pageData{
		Title:      p.Title,
		ReleaseURL: r.releaseURL,
		Config:     string(config),
		Code:       p.Code,
	}
	if err := r.tmpl.ExecuteTemplate(w, "basic.html", data); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "executing page template")
	}
	return nil
}

// RenderFile renders p into path, creating parent directories as needed.
func (r *Renderer) RenderFile(path string, p Page) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, p); err != nil {
		return errors.AddContext(err, errors.CtxPath, path)
	}
	if err := util.WriteFileWithDirs(path, buf.Bytes(), 0o644); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "writing page"), errors.CtxPath, path)
	}
	return nil
}
