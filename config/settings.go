package config

import (
	"fmt"

	"github.com/skillsenselab/refinekit/logger"
)

// Settings contains the base fields an application embedding refinekit
// needs. Projects extend it by embedding it in their own config structs.
//
// Example:
//
//	type AppConfig struct {
//	    config.Settings `yaml:",inline" mapstructure:",squash"`
//	    Refine refine.Config `yaml:"refine" mapstructure:"refine"`
//	}
type Settings struct {
	Name        string        `yaml:"name" json:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" json:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" json:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" json:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" json:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to the base configuration.
// Embedding structs should call this before their own defaults.
func (c *Settings) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
// Embedding structs should call this before their own validation.
func (c *Settings) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
