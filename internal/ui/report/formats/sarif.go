// # internal/ui/report/formats/sarif.go
package formats

import (
	"encoding/json"
	"path/filepath"

	"shadowmap/internal/engine/shadow"
	"shadowmap/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDMissingMapping = "SHDW001"
	ruleIDConflict       = "SHDW002"
	ruleIDInvalidTarget  = "SHDW003"
)

// sarifReport is the top-level SARIF document.
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool           `json:"tool"`
	Results    []sarifResult       `json:"results"`
	Properties *sarifRunProperties `json:"properties,omitempty"`
}

type sarifRunProperties struct {
	RunID string `json:"runId,omitempty"`
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

// GenerateSARIF builds a SARIF v2.1.0 document from pass diagnostics.
// All file URIs are made relative to projectRoot; absolute paths are never
// included so that reports are safe to share. The pass run ID is carried in
// the run-level property bag.
func GenerateSARIF(projectRoot, runID string, diagnostics []shadow.Diagnostic) ([]byte, error) {
	rules := buildSARIFRules(diagnostics)
	results := make([]sarifResult, 0, len(diagnostics))

	for _, d := range diagnostics {
		result := sarifResult{
			RuleID:  sarifRuleID(d.Kind),
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
		}
		if d.Location.File != "" {
			uri := relativeURI(projectRoot, d.Location.File)
			loc := sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{
						URI:       uri,
						URIBaseID: "%SRCROOT%",
					},
				},
			}
			if d.Location.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{
					StartLine:   d.Location.Line,
					StartColumn: d.Location.Column,
				}
			}
			result.Locations = []sarifLocation{loc}
		}
		results = append(results, result)
	}

	run := sarifRun{
		Tool: sarifTool{
			Driver: sarifDriver{
				Name:    "shadowmap",
				Version: version.Version,
				Rules:   rules,
			},
		},
		Results: results,
	}
	if runID != "" {
		run.Properties = &sarifRunProperties{RunID: runID}
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs:    []sarifRun{run},
	}

	return json.MarshalIndent(report, "", "  ")
}

func sarifRuleID(kind shadow.DiagnosticKind) string {
	switch kind {
	case shadow.KindMappingNotFound:
		return ruleIDMissingMapping
	case shadow.KindMappingConflict:
		return ruleIDConflict
	case shadow.KindInvalidTarget:
		return ruleIDInvalidTarget
	default:
		return "SHDW000"
	}
}

func sarifLevel(sev shadow.Severity) string {
	if sev == shadow.SeverityError {
		return "error"
	}
	return "warning"
}

// buildSARIFRules returns only the rules that are relevant for the given findings.
func buildSARIFRules(diagnostics []shadow.Diagnostic) []sarifRule {
	seen := make(map[shadow.DiagnosticKind]bool, 3)
	for _, d := range diagnostics {
		seen[d.Kind] = true
	}

	rules := make([]sarifRule, 0, 3)
	if seen[shadow.KindMappingNotFound] {
		rules = append(rules, sarifRule{
			ID:               ruleIDMissingMapping,
			Name:             "MissingObfuscationMapping",
			ShortDescription: sarifMessage{Text: "No obfuscation mapping was found for a shadow member in a target class."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		})
	}
	if seen[shadow.KindMappingConflict] {
		rules = append(rules, sarifRule{
			ID:               ruleIDConflict,
			Name:             "MappingConflict",
			ShortDescription: sarifMessage{Text: "Two targets resolve a shadow member to different obfuscated names in the same environment."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
		})
	}
	if seen[shadow.KindInvalidTarget] {
		rules = append(rules, sarifRule{
			ID:               ruleIDInvalidTarget,
			Name:             "InvalidShadowTarget",
			ShortDescription: sarifMessage{Text: "A shadow member does not exist on any declared target class."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
		})
	}
	return rules
}

func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" && filepath.IsAbs(filePath) {
		rel, err := filepath.Rel(projectRoot, filePath)
		if err == nil {
			filePath = rel
		}
	}
	// SARIF URIs use forward slashes.
	return filepath.ToSlash(filePath)
}
