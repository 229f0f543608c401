package codegate

import (
	"github.com/spf13/cobra"
)

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

// pickFlagInt64 resolves an int64 flag with a non-zero default the same way
// pickFlagBool does.
func pickFlagInt64(cmd *cobra.Command, name string, cli int64, local, global *int64) int64 {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// pickFlagBool resolves a bool flag whose default may be true: an explicit
// flag wins, then local and global config, then the flag's default.
func pickFlagBool(cmd *cobra.Command, name string, cli bool, local, global *bool) bool {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}
