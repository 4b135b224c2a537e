package metrics

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config carries optional overrides for the evaluator's constant tables.
// An empty field keeps the package default. Overrides are applied once at
// Evaluator construction; there is no reload.
type Config struct {
	ApologeticPhrases []string `yaml:"apologetic_phrases,omitempty"`
	TrackedAPIs       []string `yaml:"tracked_apis,omitempty"`
}

// ParseConfig unmarshals a YAML evaluator configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing evaluator config: %w", err)
	}
	return &cfg, nil
}

// Evaluator builds an Evaluator from the config, falling back to the
// package defaults for any table left empty.
func (c *Config) Evaluator() *Evaluator {
	var phrases, apis []string
	if len(c.ApologeticPhrases) > 0 {
		phrases = c.ApologeticPhrases
	}
	if len(c.TrackedAPIs) > 0 {
		apis = c.TrackedAPIs
	}
	return New(phrases, apis)
}
