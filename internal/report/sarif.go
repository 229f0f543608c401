// internal/report/sarif.go
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/codegate/codegate/internal/engine"
	"github.com/codegate/codegate/internal/types"
)

// RuleBlockedPath is the SARIF rule id used for path-blocked files.
const RuleBlockedPath = "blocked-path"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
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
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	RuleIndex int          `json:"ruleIndex"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt `json:"artifactLocation"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

func sevToLevel(s types.Severity) string {
	switch s {
	case types.SevCritical, types.SevHigh:
		return "error"
	case types.SevMed:
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes blocked verdicts as SARIF 2.1.0. Each finding is one
// result; a path block is a result under RuleBlockedPath. Error verdicts
// are only counted in the run properties.
func WriteSARIF(w io.Writer, results []engine.Result, version string) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "codegate", Version: version}},
		Results: []sarifResult{},
	}
	ruleIdx := map[string]int{}
	ruleFor := func(id, desc string) int {
		if i, ok := ruleIdx[id]; ok {
			return i
		}
		ruleIdx[id] = len(run.Tool.Driver.Rules)
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{ID: id, ShortDescription: sarifMessage{Text: desc}})
		return ruleIdx[id]
	}
	loc := func(p string) []sarifLoc {
		return []sarifLoc{{PhysicalLocation: sarifPhys{ArtifactLocation: sarifArt{URI: p}}}}
	}

	errs := 0
	for _, r := range results {
		v := r.Verdict
		switch {
		case v.IsError:
			errs++
		case v.Allowed:
		case len(v.Findings) == 0:
			run.Results = append(run.Results, sarifResult{
				RuleID:    RuleBlockedPath,
				RuleIndex: ruleFor(RuleBlockedPath, "File path matches a blocked pattern"),
				Level:     "error",
				Message:   sarifMessage{Text: v.Reason},
				Locations: loc(r.Path),
			})
		default:
			for _, f := range v.Findings {
				run.Results = append(run.Results, sarifResult{
					RuleID:    f.Pattern,
					RuleIndex: ruleFor(f.Pattern, f.Description),
					Level:     sevToLevel(f.Severity),
					Message:   sarifMessage{Text: fmt.Sprintf("%s: %d matches", f.Description, f.MatchCount)},
					Locations: loc(r.Path),
				})
			}
		}
	}
	if errs > 0 {
		run.Properties = map[string]any{"scanErrors": errs}
	}

	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
