package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"pyscript/internal/core/errors"
)

type notebook struct {
	NBFormat int    `json:"nbformat"`
	Cells    []cell `json:"cells"`
}

type cell struct {
	CellType       string    `json:"cell_type"`
	ExecutionCount *int      `json:"execution_count"`
	Source         multiline `json:"source"`
}

// multiline accepts both forms nbformat allows for cell text: one string or
// a list of lines.
type multiline string

func (m *multiline) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = multiline(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*m = multiline(strings.Join(lines, ""))
	return nil
}

// ConvertNotebook renders an nbformat 4 notebook as a Python script. Code
// cells keep their execution order headers, markdown becomes comments, and
// IPython magics are rewritten into the get_ipython() calls they stand for.
func ConvertNotebook(data []byte) (string, error) {
	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return "", errors.Wrap(err, errors.CodeValidationError, "invalid notebook")
	}
	if nb.NBFormat != 0 && nb.NBFormat < 4 {
		return "", errors.New(errors.CodeNotSupported, fmt.Sprintf("notebook format %d is not supported", nb.NBFormat))
	}

	var b strings.Builder
	b.WriteString("#!/usr/bin/env python\n# coding: utf-8\n")
	for _, c := range nb.Cells {
		text := strings.TrimRight(string(c.Source), "\n")
		switch c.CellType {
		case "code":
			count := ""
			if c.ExecutionCount != nil {
				count = fmt.Sprint(*c.ExecutionCount)
			}
			fmt.Fprintf(&b, "\n# In[%s]:\n\n\n", count)
			b.WriteString(translateMagics(text))
			b.WriteString("\n\n")
		case "markdown":
			b.WriteString("\n")
			for _, line := range strings.Split(text, "\n") {
				if line == "" {
					b.WriteString("#\n")
					continue
				}
				b.WriteString("# " + line + "\n")
			}
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func translateMagics(code string) string {
	if strings.HasPrefix(code, "%%") {
		header, body, _ := strings.Cut(code, "\n")
		name, args, _ := strings.Cut(strings.TrimPrefix(header, "%%"), " ")
		return fmt.Sprintf("get_ipython().run_cell_magic(%s, %s, %s)",
			pyQuote(name), pyQuote(strings.TrimSpace(args)), pyQuote(body+"\n"))
	}

	lines := strings.Split(code, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		indent := line[:len(line)-len(trimmed)]
		switch {
		case strings.HasPrefix(trimmed, "%"):
			name, args, _ := strings.Cut(strings.TrimPrefix(trimmed, "%"), " ")
			lines[i] = fmt.Sprintf("%sget_ipython().run_line_magic(%s, %s)", indent, pyQuote(name), pyQuote(strings.TrimSpace(args)))
		case strings.HasPrefix(trimmed, "!"):
			lines[i] = fmt.Sprintf("%sget_ipython().system(%s)", indent, pyQuote(strings.TrimPrefix(trimmed, "!")))
		}
	}
	return strings.Join(lines, "\n")
}

// pyQuote renders s as a single-quoted Python string literal.
func pyQuote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
