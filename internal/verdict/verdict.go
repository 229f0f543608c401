// Package verdict turns path and content outcomes into a single ScanVerdict.
package verdict

import (
	"strings"

	"github.com/codegate/codegate/internal/types"
)

const (
	ReasonAllowed = "No policy violations detected"
	ReasonNotText = "File is not a valid text file"

	reasonSensitive = "Sensitive content detected - "
)

// PathResult is the outcome of checking a path against blocked globs.
type PathResult struct {
	Blocked bool
	Reason  string
}

// Failure is the verdict for a file that could not be examined. It is never
// allowed and carries no findings or content.
func Failure(reason string, size int64) types.ScanVerdict {
	if reason == "" {
		reason = "File could not be scanned"
	}
	return types.ScanVerdict{
		Allowed:  false,
		Reason:   reason,
		Findings: []types.Finding{},
		FileSize: size,
		IsError:  true,
	}
}

// Compose builds the verdict for a readable file. A blocked path wins over
// content: findings are discarded and content is not attached.
func Compose(path PathResult, findings []types.Finding, size int64, content string) types.ScanVerdict {
	if path.Blocked {
		return types.ScanVerdict{
			Allowed:  false,
			Reason:   path.Reason,
			Findings: []types.Finding{},
			FileSize: size,
		}
	}
	text := content
	if len(findings) > 0 {
		return types.ScanVerdict{
			Allowed:  false,
			Reason:   Reason(findings),
			Findings: findings,
			FileSize: size,
			Content:  &text,
		}
	}
	return types.ScanVerdict{
		Allowed:  true,
		Reason:   ReasonAllowed,
		Findings: []types.Finding{},
		FileSize: size,
		Content:  &text,
	}
}

// Reason groups finding rule names by severity, most severe first, e.g.
// "Sensitive content detected - Critical: credit_card; High: api_key".
func Reason(findings []types.Finding) string {
	var groups []string
	for _, sev := range types.Severities {
		var names []string
		for _, f := range findings {
			if f.Severity == sev {
				names = append(names, f.Pattern)
			}
		}
		if len(names) > 0 {
			groups = append(groups, label(sev)+": "+strings.Join(names, ", "))
		}
	}
	if len(groups) == 0 {
		return strings.TrimSuffix(reasonSensitive, " - ")
	}
	return reasonSensitive + strings.Join(groups, "; ")
}

func label(s types.Severity) string {
	switch s {
	case types.SevCritical:
		return "Critical"
	case types.SevHigh:
		return "High"
	case types.SevMed:
		return "Medium"
	default:
		return "Low"
	}
}
