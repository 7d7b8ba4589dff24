package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyscript/internal/core/errors"
	"pyscript/internal/engine/resolver"
	"pyscript/internal/engine/scanner"
)

func sampleReport() scanner.Report {
	return scanner.Report{
		Source: "/work/app/main.py",
		Result: scanner.FinderResult{
			Packages:            []string{"numpy"},
			Paths:               []string{"helper.py"},
			UnsupportedPackages: []string{"fakepkg"},
			UnsupportedPaths:    []string{".missing"},
		},
		Findings: []scanner.Finding{
			{Module: "numpy", Classification: resolver.ClassPackage, Name: "numpy", Line: 1, Column: 1},
			{Module: "helper", Classification: resolver.ClassLocal, Name: "helper", Path: "helper.py", Line: 2, Column: 1},
			{Module: "fakepkg", Classification: resolver.ClassUnsupported, Name: "fakepkg", Reason: resolver.ReasonExternal, Line: 3, Column: 1},
			{Module: ".missing", Classification: resolver.ClassUnsupported, Name: ".missing", Reason: resolver.ReasonLocal, Line: 4, Column: 1},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" SARIF ")
	require.NoError(t, err)
	assert.Equal(t, FormatSARIF, f)

	_, err = ParseFormat("xml")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestText(t *testing.T) {
	out := Text(sampleReport())
	assert.Contains(t, out, "1 packages, 1 local paths, 1 unsupported packages, 1 unsupported paths")
	assert.Contains(t, out, "2:1\thelper\tlocal helper.py")
	assert.Contains(t, out, "3:1\tfakepkg\tunsupported")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleReport()))

	var decoded struct {
		Result struct {
			UnsupportedPackages []string `json:"unsupported_packages"`
		} `json:"result"`
		Findings []map[string]any `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []string{"fakepkg"}, decoded.Result.UnsupportedPackages)
	assert.Len(t, decoded.Findings, 4)
}

func TestMarkdown(t *testing.T) {
	out := Markdown(sampleReport())
	assert.Contains(t, out, "# Import Report: main.py")
	assert.Contains(t, out, "| Unsupported packages | 1 |")
	assert.Contains(t, out, "> **Warning:**")
	assert.Contains(t, out, "| 2 | `helper` | local | helper.py |")

	empty := Markdown(scanner.Report{Source: "x.py"})
	assert.Contains(t, empty, "_No imports found._")
}

func TestSARIF(t *testing.T) {
	data, err := SARIF(sampleReport())
	require.NoError(t, err)

	var doc sarifReport
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, "pyscript", run.Tool.Driver.Name)
	require.Len(t, run.Results, 2)
	assert.Equal(t, ruleIDUnsupportedPackage, run.Results[0].RuleID)
	assert.Equal(t, ruleIDUnresolvedLocal, run.Results[1].RuleID)
	assert.Equal(t, "main.py", run.Results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 3, run.Results[0].Locations[0].PhysicalLocation.Region.StartLine)
	assert.Len(t, run.Tool.Driver.Rules, 2)
}

func TestSARIF_Clean(t *testing.T) {
	r := sampleReport()
	r.Findings = r.Findings[:2]
	data, err := SARIF(r)
	require.NoError(t, err)

	var doc sarifReport
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Empty(t, doc.Runs[0].Results)
	assert.Empty(t, doc.Runs[0].Tool.Driver.Rules)
}
