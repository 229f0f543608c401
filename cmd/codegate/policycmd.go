package codegate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/codegate/codegate/internal/audit"
	"github.com/codegate/codegate/internal/engine"
	"github.com/codegate/codegate/internal/policy"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	policyOutput string
	policyForce  bool
)

func init() {
	policyCmd := &cobra.Command{Use: "policy", Short: "Inspect, validate and scaffold policies"}
	rootCmd.AddCommand(policyCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active policy and its rules",
		RunE:  runPolicyShow,
	}
	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a policy file and compile its rules",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPolicyValidate,
	}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in default-secure policy to a file for editing",
		RunE:  runPolicyInit,
	}
	policyCmd.AddCommand(showCmd, validateCmd, initCmd)

	initCmd.Flags().StringVar(&policyOutput, "output", "codegate-policy.yaml", "output file path")
	initCmd.Flags().BoolVar(&policyForce, "force", false, "overwrite an existing file")
}

func runPolicyShow(cmd *cobra.Command, _ []string) error {
	cwd, _ := os.Getwd()
	cfg, err := loadSettings(cwd, audit.DefaultRoot("", cwd))
	if err != nil {
		return err
	}
	spec, err := cfg.policy()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(spec.Info())
	}

	info := spec.Info()
	fmt.Fprintf(out, "Policy: %s v%s\n", info.Name, info.Version)
	if info.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", info.Description)
	}
	fmt.Fprintf(out, "\nBlocked path patterns (%d):\n", info.BlockedPatterns)
	for _, p := range spec.BlockedPathPatterns {
		fmt.Fprintf(out, "  - %s\n", p)
	}
	fmt.Fprintf(out, "\nSensitive patterns (%d):\n", info.SensitivePatterns)
	for _, r := range spec.SensitivePatterns {
		fmt.Fprintf(out, "  - %-20s %-8s %s\n", r.Name, r.Severity, r.Description)
	}
	fmt.Fprintf(out, "\nAudit logging: %t\n", spec.LoggingEnabled)
	return nil
}

func runPolicyValidate(cmd *cobra.Command, args []string) error {
	path := flagPolicy
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("policy validate: no file given (pass a path or --policy)")
	}
	spec, err := policy.LoadFile(path)
	if err != nil {
		return err
	}
	rs := engine.New(spec, engine.WithLogger(log.Logger)).Rules()
	out := cmd.OutOrStdout()
	for _, ce := range rs.Skipped() {
		fmt.Fprintf(out, "warning: %v\n", ce)
	}
	fmt.Fprintf(out, "%s: valid (%s v%s, %d blocked patterns, %d of %d rules compiled)\n",
		path, spec.Name, spec.Version, len(spec.BlockedPathPatterns), rs.Len(), len(spec.SensitivePatterns))
	return nil
}

func runPolicyInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(policyOutput); err == nil && !policyForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", policyOutput)
	}
	if err := os.WriteFile(policyOutput, policy.DefaultProfile(), 0644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", policyOutput)
	return nil
}
