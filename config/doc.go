// Package config provides configuration loading for applications embedding
// refinekit.
//
// It uses Viper to load configuration from YAML files and environment
// variables, with optional .env loading via godotenv. Environment variables
// override file values using underscore-separated paths (e.g.,
// REFINE_MAX_CHUNK_SEGMENTS overrides refine.max_chunk_segments).
//
// # Usage
//
//	type AppConfig struct {
//	    config.Settings `yaml:",inline" mapstructure:",squash"`
//	    Refine  refine.Config `yaml:"refine" mapstructure:"refine"`
//	    Backend ollama.Config `yaml:"backend" mapstructure:"backend"`
//	}
//
//	var cfg AppConfig
//	err := config.LoadConfig("refinekit", &cfg)
package config
