package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/drgolem/lfbb"
)

// loadConfig loads a DemoConfig from a YAML file at path, starting from
// lfbb.DefaultDemoConfig and overlaying whatever fields the file sets. An
// empty path returns the default configuration unchanged.
func loadConfig(path string) (*lfbb.DemoConfig, error) {
	cfg := lfbb.DefaultDemoConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	return cfg, nil
}
