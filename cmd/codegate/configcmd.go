package codegate

import (
	"fmt"
	"os"
	"strings"

	"github.com/codegate/codegate/internal/config"
	"github.com/codegate/codegate/internal/discover"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgOutput          string
	cfgPolicy          string
	cfgLanguages       string
	cfgThreads         int
	cfgMaxBytes        int64
	cfgFailOn          string
	cfgNoColor         bool
	cfgDefaultExcludes bool
	cfgAudit           bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .codegate.yml with the selected options",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".codegate.yml", "output file path")
	initCmd.Flags().StringVar(&cfgPolicy, "policy", "", "policy file to use by default")
	initCmd.Flags().StringVar(&cfgLanguages, "languages", "", "comma-separated languages to scan")
	initCmd.Flags().IntVar(&cfgThreads, "threads", 0, "worker threads (0=GOMAXPROCS)")
	initCmd.Flags().Int64Var(&cfgMaxBytes, "max-bytes", 1<<20, "skip files larger than this")
	initCmd.Flags().StringVar(&cfgFailOn, "fail-on", "medium", "fail-on threshold")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
	initCmd.Flags().BoolVar(&cfgDefaultExcludes, "default-excludes", true, "enable default ignore patterns")
	initCmd.Flags().BoolVar(&cfgAudit, "audit", true, "append verdicts to the audit log")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	langs := strings.TrimSpace(cfgLanguages)
	if langs != "" {
		if _, err := discover.ExtensionsFor(strings.Split(langs, ",")); err != nil {
			return err
		}
	}

	fc := config.FileConfig{
		Policy:          optStrPtr(cfgPolicy),
		Languages:       optStrPtr(langs),
		MaxBytes:        int64Ptr(cfgMaxBytes),
		Threads:         intPtr(cfgThreads),
		FailOn:          strPtr(cfgFailOn),
		NoColor:         boolPtr(cfgNoColor),
		DefaultExcludes: boolPtr(cfgDefaultExcludes),
		Audit:           &config.AuditConfig{Enabled: boolPtr(cfgAudit)},
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

func strPtr(s string) *string { return &s }
func optStrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }
