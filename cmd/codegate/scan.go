package codegate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codegate/codegate/internal/audit"
	"github.com/codegate/codegate/internal/config"
	"github.com/codegate/codegate/internal/discover"
	"github.com/codegate/codegate/internal/engine"
	"github.com/codegate/codegate/internal/policy"
	"github.com/codegate/codegate/internal/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagRecursive       bool
	flagInclude         string
	flagExclude         string
	flagName            string
	flagLanguages       string
	flagMaxBytes        int64
	flagDefaultExcludes bool
	flagTable           bool
	flagBaseline        string
	flagUpdateBaseline  bool
	flagNoAudit         bool
	flagAuditLog        string
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [paths...]",
		Short: "Scan files and directories against the policy",
		Long: `Scan checks every discovered file's path against the policy's blocked globs
and its content against the sensitive regex rules. Exit status is 1 when a
blocked file reaches the --fail-on severity and 2 on errors.`,
		RunE: runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().BoolVarP(&flagRecursive, "recursive", "r", true, "descend into subdirectories")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().StringVar(&flagName, "name", "", "only scan files whose base name matches this glob")
	cmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated languages to scan (default: all supported)")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 1<<20, "skip files larger than this")
	cmd.Flags().BoolVar(&flagDefaultExcludes, "default-excludes", true, "apply built-in exclude list (node_modules, dist, lock files, etc.)")
	cmd.Flags().BoolVar(&flagTable, "table", false, "output one table row per file instead of detailed blocks")
	cmd.Flags().StringVar(&flagBaseline, "baseline", "", "suppress blocked files already recorded in this baseline file")
	cmd.Flags().BoolVar(&flagUpdateBaseline, "update-baseline", false, "write current blocked files to the --baseline file")
	cmd.Flags().BoolVar(&flagNoAudit, "no-audit", false, "do not append verdicts to the audit log")
	cmd.Flags().StringVar(&flagAuditLog, "audit-log", "", "audit log file (default: <repo>/.git/codegate-audit.jsonl, else ./.codegate-audit.jsonl)")
}

// settings is the merged view of local and global config files.
type settings struct {
	local, global config.FileConfig
}

// loadSettings reads the global config and the first local config found in
// dirs. Only a missing file is skipped; a file that fails to parse is an
// error.
func loadSettings(dirs ...string) (settings, error) {
	var s settings
	c, err := config.LoadGlobal()
	switch {
	case err == nil:
		s.global = c
	case !errors.Is(err, config.ErrNoConfig):
		return s, err
	}
	seen := map[string]bool{}
	for _, dir := range dirs {
		if dir == "" || seen[dir] {
			continue
		}
		seen[dir] = true
		c, err := config.LoadLocal(dir)
		if errors.Is(err, config.ErrNoConfig) {
			continue
		}
		if err != nil {
			return s, err
		}
		s.local = c
		break
	}
	return s, nil
}

func (s settings) policy() (policy.Spec, error) {
	return policy.Load(pickString(flagPolicy, s.local.Policy, s.global.Policy))
}

// auditLog resolves the log file: explicit path, then config, then the
// default file under logRoot (see audit.DefaultRoot).
func (s settings) auditLog(logRoot string, cli string) *audit.Log {
	p := cli
	if p == "" {
		p = s.local.GetAuditConfig().GetPath()
	}
	if p == "" {
		p = s.global.GetAuditConfig().GetPath()
	}
	if p != "" {
		return audit.New(p)
	}
	return audit.NewForRoot(logRoot)
}

func (s settings) auditEnabled(policyDefault bool) bool {
	return s.local.GetAuditConfig().IsEnabled(s.global.GetAuditConfig().IsEnabled(policyDefault))
}

// scanRoot is the directory local config is first looked up in: the first
// argument, or its parent when it is a file (or does not exist).
func scanRoot(paths []string) string {
	root := "."
	if len(paths) > 0 {
		root = paths[0]
	}
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		root = filepath.Dir(root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return root
	}
	return abs
}

func runScan(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	root := scanRoot(args)
	cwd, _ := os.Getwd()
	logRoot := audit.DefaultRoot(root, cwd)
	cfg, err := loadSettings(root, logRoot)
	if err != nil {
		return err
	}
	lcfg, gcfg := cfg.local, cfg.global

	spec, err := cfg.policy()
	if err != nil {
		return err
	}

	var exts map[string]bool
	if langs := pickString(flagLanguages, lcfg.Languages, gcfg.Languages); langs != "" {
		exts, err = discover.ExtensionsFor(strings.Split(langs, ","))
		if err != nil {
			return err
		}
	}

	logger := log.Logger
	files, err := discover.Discover(discover.Config{
		Recursive:       pickFlagBool(cmd, "recursive", flagRecursive, lcfg.Recursive, gcfg.Recursive),
		NamePattern:     pickString(flagName, lcfg.Name, gcfg.Name),
		Include:         pickString(flagInclude, lcfg.Include, gcfg.Include),
		Exclude:         pickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
		MaxBytes:        pickFlagInt64(cmd, "max-bytes", flagMaxBytes, lcfg.MaxBytes, gcfg.MaxBytes),
		DefaultExcludes: pickFlagBool(cmd, "default-excludes", flagDefaultExcludes, lcfg.DefaultExcludes, gcfg.DefaultExcludes),
		Extensions:      exts,
		Logger:          &logger,
	}, args)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	noColor := !colorEnabled(pickBool(flagNoColor, lcfg.NoColor, gcfg.NoColor))
	machine := flagJSON || flagSARIF
	if !machine {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Scanning %d files in %d directories with policy %s v%s...\n",
			len(files), len(discover.GroupByDir(files)), spec.Name, spec.Version)
	}

	eng := engine.New(spec,
		engine.WithLogger(log.Logger),
		engine.WithThreads(pickInt(flagThreads, lcfg.Threads, gcfg.Threads)),
	)
	batch, err := eng.ScanFiles(cmd.Context(), files)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	if cfg.auditEnabled(spec.LoggingEnabled) && !flagNoAudit {
		writeAudit(cfg.auditLog(logRoot, flagAuditLog), spec, batch.Results)
	}

	results := batch.Results
	if bl := pickString(flagBaseline, lcfg.Baseline, gcfg.Baseline); bl != "" {
		if flagUpdateBaseline {
			if err := report.SaveBaseline(bl, results); err != nil {
				return fmt.Errorf("write baseline: %w", err)
			}
			log.Info().Str("path", bl).Msg("Baseline updated")
		} else if base, err := report.LoadBaseline(bl); err == nil {
			results = report.FilterNew(results, base)
		} else {
			log.Warn().Str("path", bl).Err(err).Msg("Could not read baseline, reporting everything")
		}
	}

	out := cmd.OutOrStdout()
	opts := report.PrintOptions{NoColor: noColor, Duration: batch.Duration}
	switch {
	case flagSARIF:
		if err := report.WriteSARIF(out, results, version); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		if err := report.WriteJSON(out, spec.Info(), results); err != nil {
			return err
		}
	case flagTable:
		report.PrintTable(out, results, opts)
	default:
		report.PrintText(out, results, opts)
	}

	if report.ShouldFail(results, pickString(flagFailOn, lcfg.FailOn, gcfg.FailOn)) {
		return errThreshold
	}
	return nil
}

// writeAudit appends one record per verdict. Audit failures are logged and
// never fail the scan.
func writeAudit(al *audit.Log, spec policy.Spec, results []engine.Result) {
	for _, r := range results {
		rec := audit.NewRecord(r.Path, "scan", r.Verdict)
		rec.PolicyName, rec.PolicyVer = spec.Name, spec.Version
		if err := al.Append(rec); err != nil {
			log.Warn().Str("log", al.Path()).Err(err).Msg("Audit write failed")
			return
		}
	}
	log.Debug().Str("log", al.Path()).Int("records", len(results)).Msg("Audit log updated")
}
