package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"pyscript/internal/engine/resolver"
	"pyscript/internal/engine/scanner"
	"pyscript/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDUnsupportedPackage = "PYS001"
	ruleIDUnresolvedLocal    = "PYS002"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// SARIF builds a SARIF v2.1.0 document with one result per unsupported
// import. File URIs are relative to the script's directory.
func SARIF(r scanner.Report) ([]byte, error) {
	uri := filepath.ToSlash(filepath.Base(r.Source))
	results := make([]sarifResult, 0)
	var sawPackage, sawLocal bool

	for _, f := range r.Findings {
		if !f.Warning() {
			continue
		}
		result := sarifResult{Level: "warning"}
		if f.Reason == resolver.ReasonLocal {
			sawLocal = true
			result.RuleID = ruleIDUnresolvedLocal
			result.Message = sarifMessage{Text: fmt.Sprintf("Local import %q could not be found next to the script.", f.Module)}
		} else {
			sawPackage = true
			result.RuleID = ruleIDUnsupportedPackage
			result.Message = sarifMessage{Text: fmt.Sprintf("Package %q is not available in the browser runtime.", f.Name)}
		}
		loc := sarifLocation{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: uri, URIBaseID: "%SRCROOT%"},
			},
		}
		if f.Line > 0 {
			loc.PhysicalLocation.Region = &sarifRegion{StartLine: f.Line, StartColumn: f.Column}
		}
		result.Locations = []sarifLocation{loc}
		results = append(results, result)
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "pyscript",
						Version: version.Version,
						Rules:   buildSARIFRules(sawPackage, sawLocal),
					},
				},
				Results: results,
			},
		},
	}
	return json.MarshalIndent(report, "", "  ")
}

// buildSARIFRules returns only the rules that have results.
func buildSARIFRules(unsupportedPackage, unresolvedLocal bool) []sarifRule {
	rules := make([]sarifRule, 0, 2)
	if unsupportedPackage {
		rules = append(rules, sarifRule{
			ID:               ruleIDUnsupportedPackage,
			Name:             "UnsupportedPackage",
			ShortDescription: sarifMessage{Text: "Third-party package the browser runtime cannot install."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		})
	}
	if unresolvedLocal {
		rules = append(rules, sarifRule{
			ID:               ruleIDUnresolvedLocal,
			Name:             "UnresolvedLocalImport",
			ShortDescription: sarifMessage{Text: "Local module that could not be located."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		})
	}
	return rules
}
