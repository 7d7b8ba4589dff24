// Package report renders scan reports for people and for CI tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"pyscript/internal/core/errors"
	"pyscript/internal/engine/scanner"
)

type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatSARIF    Format = "sarif"
)

var Formats = []Format{FormatText, FormatJSON, FormatMarkdown, FormatSARIF}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.New(errors.CodeValidationError, fmt.Sprintf("unknown report format %q (want one of text, json, markdown, sarif)", s))
}

// Write renders r to w in the given format.
func Write(w io.Writer, format Format, r scanner.Report) error {
	switch format {
	case FormatText:
		_, err := io.WriteString(w, Text(r))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatSARIF:
		data, err := SARIF(r)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	default:
		return errors.New(errors.CodeValidationError, fmt.Sprintf("unknown report format %q", format))
	}
}

// Text is a short listing, one finding per line.
func Text(r scanner.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", r.Source, r.Result.Summary())
	for _, f := range r.Findings {
		detail := string(f.Classification)
		switch {
		case f.Path != "":
			detail += " " + f.Path
		case f.Name != f.Module:
			detail += " " + f.Name
		}
		fmt.Fprintf(&b, "  %d:%d\t%s\t%s\n", f.Line, f.Column, f.Module, detail)
	}
	return b.String()
}
