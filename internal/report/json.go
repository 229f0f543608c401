package report

import (
	"encoding/json"
	"io"

	"github.com/codegate/codegate/internal/engine"
	"github.com/codegate/codegate/internal/policy"
	"github.com/codegate/codegate/internal/types"
)

type jsonResult struct {
	Path        string          `json:"path"`
	Status      string          `json:"status"`
	MaxSeverity types.Severity  `json:"max_severity,omitempty"`
	Allowed     bool            `json:"allowed"`
	Reason      string          `json:"reason"`
	Findings    []types.Finding `json:"findings"`
	FileSize    int64           `json:"file_size"`
	IsError     bool            `json:"is_error"`
}

type jsonReport struct {
	Policy  policy.Info    `json:"policy"`
	Summary engine.Summary `json:"summary"`
	Results []jsonResult   `json:"results"`
}

// WriteJSON writes the batch as one indented JSON document. File content is
// never included.
func WriteJSON(w io.Writer, info policy.Info, results []engine.Result) error {
	doc := jsonReport{
		Policy:  info,
		Summary: engine.Summarize(results),
		Results: make([]jsonResult, 0, len(results)),
	}
	for _, r := range results {
		v := r.Verdict
		findings := v.Findings
		if findings == nil {
			findings = []types.Finding{}
		}
		doc.Results = append(doc.Results, jsonResult{
			Path:        r.Path,
			Status:      v.Status(),
			MaxSeverity: MaxSeverity(v.Findings),
			Allowed:     v.Allowed,
			Reason:      v.Reason,
			Findings:    findings,
			FileSize:    v.FileSize,
			IsError:     v.IsError,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
