// Package config holds the small set of constants and load-time settings
// the analyzer pipeline is parameterized by, in the same flat,
// package-level-constant style as funvibe/funxy's internal/config.
package config

// MaxFixedPointIterations bounds the monotone union fixed point used by
// internal/effects.ComputeFunctionEffects (spec.md §4.2's "bounded to a
// fixed number of rounds").
const MaxFixedPointIterations = 50

// Version is the analyzer's own release version, reported by --version.
const Version = "0.1.0"

// SourceFileExt is the canonical extension for analyzer source files.
const SourceFileExt = ".cr"

// SourceFileExtensions lists every extension the CLI driver will pick up
// when scanning a directory argument.
var SourceFileExtensions = []string{SourceFileExt}

// HasSourceExt reports whether name ends in a recognized source extension.
func HasSourceExt(name string) bool {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// TrimSourceExt strips a recognized source extension from name, if present.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
