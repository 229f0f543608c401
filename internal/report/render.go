package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/codegate/codegate/internal/audit"
	"github.com/codegate/codegate/internal/engine"
	"github.com/codegate/codegate/internal/types"
	"github.com/olekukonko/tablewriter"
)

type PrintOptions struct {
	NoColor  bool
	Duration time.Duration
}

var (
	allowedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	blockedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	sevCriticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	sevHighStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sevMedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sevLowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// FormatVerdict renders one verdict as a human-readable block.
func FormatVerdict(path string, v types.ScanVerdict, noColor bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scan Results for: %s\n", path)
	b.WriteString(strings.Repeat("-", 60))
	b.WriteByte('\n')

	if v.IsError {
		fmt.Fprintf(&b, "%s: %s\n", paint(errorStyle, "ERROR", noColor), v.Reason)
		return b.String()
	}
	if v.Allowed {
		fmt.Fprintf(&b, "%s: %s\n", paint(allowedStyle, "ALLOWED", noColor), v.Reason)
	} else {
		fmt.Fprintf(&b, "%s: %s\n", paint(blockedStyle, "BLOCKED", noColor), v.Reason)
	}
	fmt.Fprintf(&b, "File size: %d bytes\n", v.FileSize)

	if len(v.Findings) > 0 {
		b.WriteString("\nSensitive patterns detected:\n")
		for _, f := range v.Findings {
			fmt.Fprintf(&b, "  - %s (%s): %s\n", f.Pattern, colorSeverity(f.Severity, noColor), f.Description)
			fmt.Fprintf(&b, "    Matches: %d, Examples: %s\n", f.MatchCount, strings.Join(f.Examples, ", "))
		}
	}
	return b.String()
}

// PrintText writes a block per result followed by a summary footer.
func PrintText(w io.Writer, results []engine.Result, opts PrintOptions) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No files to scan")
		return
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, FormatVerdict(r.Path, r.Verdict, opts.NoColor))
	}
	printFooter(w, results, opts)
}

// PrintTable writes one row per result.
func PrintTable(w io.Writer, results []engine.Result, opts PrintOptions) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No files to scan")
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("Status", "Path", "Size", "Findings", "Reason")
	for _, r := range results {
		v := r.Verdict
		_ = table.Append([]string{
			statusLabel(v.Status(), opts.NoColor),
			r.Path,
			strconv.FormatInt(v.FileSize, 10),
			findingsCell(v.Findings),
			v.Reason,
		})
	}
	_ = table.Render()
	printFooter(w, results, opts)
}

func printFooter(w io.Writer, results []engine.Result, opts PrintOptions) {
	s := engine.Summarize(results)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files: %d (allowed: %d, blocked: %d, errors: %d)\n", s.Total, s.Allowed, s.Blocked, s.Errors)
	if opts.Duration > 0 {
		fmt.Fprintln(w, paint(dimStyle, fmt.Sprintf("Scan duration: %.2fs", opts.Duration.Seconds()), opts.NoColor))
	}
}

// PrintAudit lists audit records, newest first.
func PrintAudit(w io.Writer, records []audit.Record, noColor bool) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No audit records")
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("Time", "Status", "Path", "Findings", "Reason")
	for _, r := range records {
		_ = table.Append([]string{
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			statusLabel(r.Status, noColor),
			r.Path,
			r.Findings,
			r.Reason,
		})
	}
	_ = table.Render()
}

// PrintAuditStats writes the audit log counters.
func PrintAuditStats(w io.Writer, st audit.Stats) {
	fmt.Fprintf(w, "Total requests: %d\n", st.Total)
	fmt.Fprintf(w, "Last 24h: %d\n", st.Recent24h)
	for _, status := range []string{"allowed", "blocked", "error"} {
		fmt.Fprintf(w, "  %-8s %d\n", status+":", st.StatusCounts[status])
	}
}

func findingsCell(findings []types.Finding) string {
	if len(findings) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		parts = append(parts, fmt.Sprintf("%s(%s) x%d", f.Pattern, f.Severity, f.MatchCount))
	}
	return strings.Join(parts, "\n")
}

func statusLabel(status string, noColor bool) string {
	label := strings.ToUpper(status)
	switch status {
	case "allowed":
		return paint(allowedStyle, label, noColor)
	case "blocked":
		return paint(blockedStyle, label, noColor)
	default:
		return paint(errorStyle, label, noColor)
	}
}

func colorSeverity(s types.Severity, noColor bool) string {
	switch s {
	case types.SevCritical:
		return paint(sevCriticalStyle, string(s), noColor)
	case types.SevHigh:
		return paint(sevHighStyle, string(s), noColor)
	case types.SevMed:
		return paint(sevMedStyle, string(s), noColor)
	default:
		return paint(sevLowStyle, string(s), noColor)
	}
}

func paint(st lipgloss.Style, s string, noColor bool) string {
	if noColor {
		return s
	}
	return st.Render(s)
}
