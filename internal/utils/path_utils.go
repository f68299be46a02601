// Package utils holds small path-handling helpers shared by the CLI and
// config layers, adapted from funvibe/funxy's internal/utils.
package utils

import (
	"path/filepath"

	"github.com/funvibe/funxy-race/internal/config"
)

// ExtractModuleName derives a short, extension-free name for a source
// file, used for suppression-rule matching (internal/config.RaceConfig).
func ExtractModuleName(path string) string {
	name := filepath.Base(path)
	return config.TrimSourceExt(name)
}
