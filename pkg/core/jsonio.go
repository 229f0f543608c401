package core

import (
	"encoding/json"
	"io"
)

// MarshalResults pretty-prints scan results as JSON for humans or pipelines.
// File content is stripped; verdicts carry only the decision and findings.
func MarshalResults(w io.Writer, results []Result) error {
	out := make([]Result, len(results))
	for i, r := range results {
		r.Verdict.Content = nil
		out[i] = r
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// UnmarshalResults decodes results JSON, useful for ingestion tests.
func UnmarshalResults(r io.Reader) ([]Result, error) {
	var rs []Result
	if err := json.NewDecoder(r).Decode(&rs); err != nil {
		return nil, err
	}
	return rs, nil
}
