package logger

import (
	"fmt"
	"strings"
)

// Config controls how loggers built by this package behave.
type Config struct {
	// Level is the minimum level emitted: trace, debug, info, warn,
	// error, or fatal.
	Level string `yaml:"level" json:"level" mapstructure:"level"`
	// Format selects json or console output.
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	// Output selects stdout or stderr.
	Output string `yaml:"output" json:"output" mapstructure:"output"`
	// NoColor disables ANSI colors in console output.
	NoColor bool `yaml:"no_color" json:"no_color" mapstructure:"no_color"`
	// Timestamp attaches a timestamp to every line.
	Timestamp bool `yaml:"timestamp" json:"timestamp" mapstructure:"timestamp"`
	// Caller attaches the calling file and line.
	Caller bool `yaml:"caller" json:"caller" mapstructure:"caller"`
}

// ApplyDefaults fills empty fields with the development defaults: info
// level, console format on stdout, timestamps on.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	c.Timestamp = true
}

var (
	validLevels  = []string{"trace", "debug", "info", "warn", "error", "fatal"}
	validFormats = []string{"json", "console"}
)

// Validate rejects level and format names the logger cannot honor.
func (c *Config) Validate() error {
	if !oneOf(c.Level, validLevels) {
		return fmt.Errorf("logging.level must be one of %s (got: %s)", strings.Join(validLevels, ", "), c.Level)
	}
	if !oneOf(c.Format, validFormats) {
		return fmt.Errorf("logging.format must be one of %s (got: %s)", strings.Join(validFormats, ", "), c.Format)
	}
	return nil
}

func oneOf(val string, allowed []string) bool {
	for _, a := range allowed {
		if val == a {
			return true
		}
	}
	return false
}
