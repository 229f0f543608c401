// Package content scans text against compiled sensitive-content rules.
package content

import (
	"github.com/codegate/codegate/internal/rules"
	"github.com/codegate/codegate/internal/types"
)

const (
	// MaxExamples caps the redacted examples kept per finding.
	MaxExamples = 3
	// RedactKeep is the number of leading characters an example keeps.
	RedactKeep = 10
	// RedactMarker replaces the truncated tail of a long example.
	RedactMarker = "..."
)

// Scan runs every rule in rs against text and returns one Finding per rule
// that matched, in rule declaration order. It never stops early.
func Scan(text string, rs *rules.RuleSet) []types.Finding {
	findings := []types.Finding{}
	for _, r := range rs.Rules() {
		matches := r.FindAll(text)
		if len(matches) == 0 {
			continue
		}
		n := len(matches)
		if n > MaxExamples {
			n = MaxExamples
		}
		examples := make([]string, 0, n)
		for _, m := range matches[:n] {
			examples = append(examples, Redact(m))
		}
		findings = append(findings, types.Finding{
			Pattern:     r.Name(),
			Description: r.Description(),
			Severity:    r.Severity(),
			MatchCount:  len(matches),
			Examples:    examples,
		})
	}
	return findings
}

// Redact keeps the first RedactKeep characters of s and appends RedactMarker.
// Strings of RedactKeep characters or fewer are returned unchanged.
func Redact(s string) string {
	runes := []rune(s)
	if len(runes) <= RedactKeep {
		return s
	}
	return string(runes[:RedactKeep]) + RedactMarker
}
