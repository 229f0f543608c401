// Package codegate provides the command-line interface for the codegate tool.
// It configures subcommands (scan, policy, audit, config), parses flags, and
// executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/codegate/codegate/cmd/codegate"
//	func main() { codegate.Execute() }
package codegate
