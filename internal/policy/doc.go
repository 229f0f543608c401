// Package policy holds the validated, in-memory security policy that drives
// scanning. Documents may be YAML or JSON on disk, or generic maps built in
// code; all of them go through the same validation. A Spec is a plain value
// and is never mutated by the scanning packages.
package policy
