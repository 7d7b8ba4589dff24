// Package source reads scripts and notebooks as Python source text.
package source

import (
	"os"
	"path/filepath"
	"strings"

	"pyscript/internal/core/errors"
)

const (
	ExtScript   = ".py"
	ExtNotebook = ".ipynb"
)

// Load returns the Python source for path. Notebooks are flattened into a
// single script.
func Load(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ExtScript && ext != ExtNotebook {
		return "", errors.AddContext(
			errors.New(errors.CodeNotSupported, filepath.Base(path)+" is neither a script (.py) nor a notebook (.ipynb)"),
			errors.CtxPath, path,
		)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.CodeInternal
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return "", errors.AddContext(errors.Wrap(err, code, "cannot read input"), errors.CtxPath, path)
	}

	if ext == ExtScript {
		return string(data), nil
	}
	script, err := ConvertNotebook(data)
	if err != nil {
		return "", errors.AddContext(err, errors.CtxPath, path)
	}
	return script, nil
}

// IsSupported reports whether path has an extension Load accepts.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ExtScript || ext == ExtNotebook
}
