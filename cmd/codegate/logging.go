package codegate

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// initLogger configures the global zerolog logger. Logs go to stderr so
// stdout stays clean for JSON and SARIF reports.
func initLogger(cmd *cobra.Command) {
	level := strings.ToLower(flagLogLevel)
	if flagVerbose && !cmd.Flags().Changed("log-level") {
		level = "debug"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if flagJSONLog {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    flagNoColor || !term.IsTerminal(int(os.Stderr.Fd())),
		}).With().Timestamp().Logger()
	}
	if err != nil {
		log.Warn().Str("level", flagLogLevel).Msg("Unknown log level, using warn")
	}
}

// colorEnabled reports whether stdout output should carry ANSI styling.
func colorEnabled(noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
