// Package engine binds a compiled policy to file scanning. It checks paths,
// reads files, runs content rules and composes verdicts. The engine holds
// only immutable state after New returns, so one Engine may serve many
// concurrent scans. External consumers should use the facade in pkg/core.
package engine
