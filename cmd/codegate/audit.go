package codegate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/codegate/codegate/internal/audit"
	"github.com/codegate/codegate/internal/report"
	"github.com/spf13/cobra"
)

var (
	auditLimit  int
	auditStatus string
	auditStats  bool
	auditPath   string
)

func init() {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit log entries or statistics",
		RunE:  runAudit,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().IntVar(&auditLimit, "limit", 20, "number of records to show (0 = all)")
	cmd.Flags().StringVar(&auditStatus, "status", "", "only show records with this status: allowed|blocked|error")
	cmd.Flags().BoolVar(&auditStats, "stats", false, "show counts instead of records")
	cmd.Flags().StringVar(&auditPath, "log", "", "audit log file (default: resolved as for scan)")
}

func runAudit(cmd *cobra.Command, _ []string) error {
	switch auditStatus {
	case "", "allowed", "blocked", "error":
	default:
		return fmt.Errorf("unknown status %q (want allowed|blocked|error)", auditStatus)
	}
	cwd, _ := os.Getwd()
	logRoot := audit.DefaultRoot("", cwd)
	cfg, err := loadSettings(cwd, logRoot)
	if err != nil {
		return err
	}
	al := cfg.auditLog(logRoot, auditPath)
	out := cmd.OutOrStdout()

	if auditStats {
		st, err := al.Statistics()
		if err != nil {
			return err
		}
		if flagJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}
		report.PrintAuditStats(out, st)
		return nil
	}

	records, err := al.Recent(auditLimit, auditStatus)
	if err != nil {
		return err
	}
	if records == nil {
		records = []audit.Record{}
	}
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	report.PrintAudit(out, records, !colorEnabled(flagNoColor))
	return nil
}
