package dut

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config sizes the datapath.
type Config struct {
	InputBufferDepth int `yaml:"input_buffer_depth"`
	OutputQueueDepth int `yaml:"output_queue_depth"`
	LookupLatency    int `yaml:"lookup_latency"`
}

// DefaultConfig returns the sizes used when no model file is given.
func DefaultConfig() Config {
	return Config{
		InputBufferDepth: 16,
		OutputQueueDepth: 64,
		LookupLatency:    2,
	}
}

// Validate checks that every size is usable.
func (c Config) Validate() error {
	switch {
	case c.InputBufferDepth < 1:
		return fmt.Errorf("input_buffer_depth must be positive, got %d",
			c.InputBufferDepth)
	case c.OutputQueueDepth < 1:
		return fmt.Errorf("output_queue_depth must be positive, got %d",
			c.OutputQueueDepth)
	case c.LookupLatency < 0:
		return fmt.Errorf("lookup_latency must not be negative, got %d",
			c.LookupLatency)
	}

	return nil
}

// LoadConfig reads a model file. Keys that are absent keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing model config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}
