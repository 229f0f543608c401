// Package core provides a small, stable facade over codegate's internal
// policy engine for external integrations, such as a tool that must decide
// whether a file may be forwarded to a code-transformation service.
//
// Example:
//
//	p, err := core.LoadPolicy("") // built-in default profile
//	if err != nil { /* handle */ }
//	v := core.ScanFile(p, "src/app.py")
//	if !v.Allowed { fmt.Println(v.Reason) }
package core
