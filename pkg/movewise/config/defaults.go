// Package config provides configuration management for movewise.
package config

// Default configuration values.
const (
	// DefaultLogLevel is the logging level used when none is configured.
	DefaultLogLevel = "info"

	// DefaultMaxAppEntries caps per-directory enumeration in the
	// application scanner. Zero defers to the computed limits.
	DefaultMaxAppEntries = 0

	// DefaultMaxDepth overrides the recursion bound. Zero defers to the
	// computed limits.
	DefaultMaxDepth = 0
)

// DefaultExclusions are path prefixes excluded from every run in addition
// to the built-in structural patterns.
var DefaultExclusions = []string{
	"/proc",
	"/sys",
	"/dev",
}
