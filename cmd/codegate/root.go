package codegate

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON     bool
	flagSARIF    bool
	flagThreads  int
	flagFailOn   string
	flagNoColor  bool
	flagPolicy   string
	flagLogLevel string
	flagJSONLog  bool
	flagVerbose  bool

	version = "0.1.0"
)

// errThreshold signals that the scan completed but blocked files reached
// the --fail-on severity.
var errThreshold = errors.New("fail-on threshold reached")

// rootCmd is the base Cobra command for the codegate CLI.
var rootCmd = &cobra.Command{
	Use:           "codegate",
	Short:         "Gate source files against a security policy",
	Long:          "codegate checks file paths and contents against a policy of blocked globs and sensitive regex rules before code leaves the repository.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		initLogger(cmd)
	},
}

// Execute runs the codegate CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errThreshold) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().StringVar(&flagFailOn, "fail-on", "", "exit 1 when a blocked file reaches low|medium|high|critical (none disables; default medium)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringVar(&flagPolicy, "policy", "", "policy file (YAML or JSON); empty uses the built-in default-secure profile")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level: trace|debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLog, "json-log", false, "write logs to stderr as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "shorthand for --log-level debug")
}
