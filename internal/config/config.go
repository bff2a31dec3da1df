// Package config aggregates every tunable in the pipeline into one document
// with calibrated defaults and optional YAML overrides. The heuristics'
// numeric constants are deliberately configuration, not code: they are
// tuned, not physically derived.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/handslab/signcoach/internal/curl"
	"github.com/handslab/signcoach/internal/dynamic"
	"github.com/handslab/signcoach/internal/evaluate"
	"github.com/handslab/signcoach/internal/feedback"
	"github.com/handslab/signcoach/internal/stabilize"
)

// #region tunables

// Tunables bundles the per-stage configs.
type Tunables struct {
	Curl         curl.Config      `yaml:"curl" json:"curl"`
	Evaluator    evaluate.Config  `yaml:"evaluator" json:"evaluator"`
	Stabilizer   stabilize.Config `yaml:"stabilizer" json:"stabilizer"`
	Dynamic      dynamic.Config   `yaml:"dynamic" json:"dynamic"`
	Orchestrator feedback.Config  `yaml:"orchestrator" json:"orchestrator"`
}

// DefaultTunables returns every stage's calibrated defaults.
func DefaultTunables() Tunables {
	return Tunables{
		Curl:         curl.DefaultConfig(),
		Evaluator:    evaluate.DefaultConfig(),
		Stabilizer:   stabilize.DefaultConfig(),
		Dynamic:      dynamic.DefaultConfig(),
		Orchestrator: feedback.DefaultConfig(),
	}
}

// #endregion tunables

// #region loading

// LoadTunables reads a YAML override file on top of the defaults. Absent
// keys keep their default values.
func LoadTunables(path string) (Tunables, error) {
	t := DefaultTunables()
	data, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, fmt.Errorf("read tunables %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tunables{}, fmt.Errorf("parse tunables %s: %w", path, err)
	}
	return t, nil
}

// #endregion loading
