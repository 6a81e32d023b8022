// Package config loads and saves run configuration files.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultScenario       = "figure-eight"
	DefaultDt             = 0.002
	DefaultDuration       = 20.0
	DefaultSampleInterval = 0.25
)

// Config is the YAML-backed run configuration the CLI consumes. Zero G,
// Softening or SampleInterval means "use the scenario's own value".
type Config struct {
	Scenario       string  `yaml:"scenario"`
	Dt             float64 `yaml:"dt"`
	Duration       float64 `yaml:"duration"`
	Seed           int64   `yaml:"seed"`
	G              float64 `yaml:"g"`
	Softening      float64 `yaml:"softening"`
	SampleInterval float64 `yaml:"sample_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:       DefaultScenario,
		Dt:             DefaultDt,
		Duration:       DefaultDuration,
		SampleInterval: DefaultSampleInterval,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
