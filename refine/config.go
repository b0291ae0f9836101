package refine

import (
	"fmt"

	"github.com/skillsenselab/refinekit/validation"
)

// Config holds the engine's policy constants. Zero fields are filled from
// defaults; callers load it from files or env through the config package.
type Config struct {
	// MaxChunkSegments caps how many segments one correction request carries.
	MaxChunkSegments int `yaml:"max_chunk_segments" json:"max_chunk_segments" mapstructure:"max_chunk_segments" validate:"gte=0"`
	// OverlapSegments is the trailing window shared with the next chunk so
	// sentences spanning a boundary are seen whole by at least one chunk.
	OverlapSegments int `yaml:"overlap_segments" json:"overlap_segments" mapstructure:"overlap_segments" validate:"gte=0"`
	// Concurrency is the number of in-flight correction calls per batch.
	Concurrency int `yaml:"concurrency" json:"concurrency" mapstructure:"concurrency" validate:"gte=0"`
	// MaxLineRunes is the display width threshold for subtitle line wrapping.
	MaxLineRunes int `yaml:"max_line_runes" json:"max_line_runes" mapstructure:"max_line_runes" validate:"gte=0"`
	// Temperature is the sampling temperature passed to the corrector.
	Temperature float64 `yaml:"temperature" json:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkSegments: 50,
		OverlapSegments:  2,
		Concurrency:      3,
		MaxLineRunes:     42,
		Temperature:      0.1,
	}
}

// ApplyDefaults fills zero fields with defaults.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.MaxChunkSegments == 0 {
		c.MaxChunkSegments = def.MaxChunkSegments
	}
	if c.OverlapSegments == 0 {
		c.OverlapSegments = def.OverlapSegments
	}
	if c.Concurrency == 0 {
		c.Concurrency = def.Concurrency
	}
	if c.MaxLineRunes == 0 {
		c.MaxLineRunes = def.MaxLineRunes
	}
	if c.Temperature == 0 {
		c.Temperature = def.Temperature
	}
}

// Validate checks field ranges and the planning invariant that the overlap
// must be strictly smaller than the chunk size (otherwise chunk starts
// cannot advance). All violations are planning-class errors.
func (c Config) Validate() error {
	if err := validation.Validate(&c); err != nil {
		return &Error{Code: ErrCodePlanning, Chunk: -1, Message: err.Error(), Err: err}
	}
	if c.MaxChunkSegments <= 0 {
		return NewPlanningError("max_chunk_segments must be positive")
	}
	if c.OverlapSegments >= c.MaxChunkSegments {
		return NewPlanningError(fmt.Sprintf(
			"overlap_segments (%d) must be smaller than max_chunk_segments (%d)",
			c.OverlapSegments, c.MaxChunkSegments))
	}
	return nil
}
