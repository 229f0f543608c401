package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/codegate/codegate/internal/engine"
	"github.com/codegate/codegate/internal/types"
)

// Baseline records blocked verdicts that were reviewed and accepted, keyed by
// path and the rule (or path block) that caused them.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return Baseline{Items: map[string]bool{}}, fmt.Errorf("decode baseline %s: %w", path, err)
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

func SaveBaseline(path string, results []engine.Result) error {
	b := Baseline{Items: map[string]bool{}}
	for _, r := range results {
		for _, k := range keys(r) {
			b.Items[k] = true
		}
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

// FilterNew drops blocked results whose every cause is already baselined.
// Allowed and error results pass through.
func FilterNew(results []engine.Result, base Baseline) []engine.Result {
	var out []engine.Result
	for _, r := range results {
		ks := keys(r)
		if len(ks) == 0 {
			out = append(out, r)
			continue
		}
		for _, k := range ks {
			if !base.Items[k] {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func keys(r engine.Result) []string {
	v := r.Verdict
	if v.Allowed || v.IsError {
		return nil
	}
	if len(v.Findings) == 0 {
		return []string{r.Path + "|" + RuleBlockedPath}
	}
	out := make([]string, 0, len(v.Findings))
	for _, f := range v.Findings {
		out = append(out, r.Path+"|"+f.Pattern)
	}
	return out
}

// ShouldFail reports whether any blocked result reaches the failOn severity.
// A path block counts as critical. Unknown thresholds default to medium and
// "none" never fails.
func ShouldFail(results []engine.Result, failOn string) bool {
	failOn = strings.ToLower(strings.TrimSpace(failOn))
	if failOn == "none" {
		return false
	}
	th := types.Severity(failOn).Rank()
	if th == 0 {
		th = types.SevMed.Rank()
	}
	for _, r := range results {
		v := r.Verdict
		if v.Allowed || v.IsError {
			continue
		}
		if len(v.Findings) == 0 {
			return true
		}
		for _, f := range v.Findings {
			if f.Severity.Rank() >= th {
				return true
			}
		}
	}
	return false
}

// MaxSeverity returns the highest severity among findings, or "" when none.
func MaxSeverity(findings []types.Finding) types.Severity {
	var best types.Severity
	for _, f := range findings {
		if best == "" || f.Severity.Rank() > best.Rank() {
			best = f.Severity
		}
	}
	return best
}
