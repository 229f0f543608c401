// Package config loads codegate configuration from local and global YAML files
// with precedence rules. It is internal; CLI code maps flags and files into
// discovery, engine and audit settings.
package config
