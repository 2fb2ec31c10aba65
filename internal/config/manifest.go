package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the optional deployment manifest a custom packaging ships to
// override the default filesystem layout contract. Empty fields keep their
// defaults.
type Manifest struct {
	Interpreter string `yaml:"interpreter"`
	Fallback    string `yaml:"fallback"`
	Script      string `yaml:"script"`
	Sidecar     string `yaml:"sidecar"`
}

// LoadManifest reads and parses a deployment manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// apply copies the manifest's non-empty fields onto the config.
func (m *Manifest) apply(cfg *Config) {
	if m.Interpreter != "" {
		cfg.Interpreter = m.Interpreter
	}
	if m.Fallback != "" {
		cfg.Fallback = m.Fallback
	}
	if m.Script != "" {
		cfg.Script = m.Script
	}
	if m.Sidecar != "" {
		cfg.Sidecar = m.Sidecar
	}
}
