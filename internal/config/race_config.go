package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Suppress names a single race warning to drop from a run's output,
// matched by the name passed to Suppresses as fn (cmd/racecheck passes the
// source file's base name without its extension), the variable, and the
// line at which the warning would be reported (RaceWarning.LineA in
// internal/conflicts). Mirrors the
// narrow, explicit-allowlist shape of funvibe/funxy's funxy.yaml
// suppression blocks rather than a broad glob/regex rule language.
type Suppress struct {
	Function string `yaml:"function"`
	Variable string `yaml:"variable"`
	Line     int    `yaml:"line"`
	Reason   string `yaml:"reason"`
}

// RaceConfig is the analyzer's on-disk configuration: suppression rules
// and overrides of the default fixed-point iteration bound, loaded from a
// YAML file the way funvibe/funxy's internal/ext/config.go loads
// funxy.yaml via yaml.v3. MaxFixedPointIterations is read from the file
// but is not passed to internal/effects, whose fixed point always runs
// with the package constant MaxFixedPointIterations.
type RaceConfig struct {
	MaxFixedPointIterations int        `yaml:"max_fixed_point_iterations"`
	Suppressions            []Suppress `yaml:"suppressions"`
}

// DefaultRaceConfig is the configuration used when no file is supplied.
func DefaultRaceConfig() *RaceConfig {
	return &RaceConfig{MaxFixedPointIterations: MaxFixedPointIterations}
}

// LoadRaceConfig reads and parses a RaceConfig from path.
func LoadRaceConfig(path string) (*RaceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := DefaultRaceConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.MaxFixedPointIterations <= 0 {
		cfg.MaxFixedPointIterations = MaxFixedPointIterations
	}
	return cfg, nil
}

// Suppresses reports whether rule set cfg drops a warning for fn/variable/line.
func (c *RaceConfig) Suppresses(fn, variable string, line int) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Suppressions {
		if s.Function == fn && s.Variable == variable && s.Line == line {
			return true
		}
	}
	return false
}
