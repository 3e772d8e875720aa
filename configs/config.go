package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/ina-foss/horloge/pkg/audio"
	"github.com/ina-foss/horloge/pkg/clock"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`

	// External decoder settings
	Decoder audio.DecoderConfig `mapstructure:"decoder"`

	// Core analysis parameters
	Analysis clock.AnalysisConfig `mapstructure:"analysis"`

	// Phase inversion check settings
	Phase PhaseConfig `mapstructure:"phase"`

	// Detection run settings
	Detect DetectConfig `mapstructure:"detect"`

	// Batch execution settings
	Batch BatchConfig `mapstructure:"batch"`
}

// PhaseConfig contains settings for the phase inversion check
type PhaseConfig struct {
	// StartSec and EndSec trim the decoded clip; the default checks the
	// first ten seconds
	StartSec float64 `mapstructure:"start_sec"`
	EndSec   float64 `mapstructure:"end_sec"`
	// SampleRate is the decode rate for the phase clip; 0 keeps the
	// source rate
	SampleRate int `mapstructure:"sample_rate"`
}

// DetectConfig contains settings for a detection run
type DetectConfig struct {
	// EndSec bounds the decoded duration; 0 decodes the whole media
	EndSec float64 `mapstructure:"end_sec"`
}

// BatchConfig contains batch execution settings
type BatchConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	FileTimeout time.Duration `mapstructure:"file_timeout"`
}

// LoadConfig loads the configuration from viper (flags, env, config file)
func LoadConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if c.Decoder.FFmpegPath == "" {
		return fmt.Errorf("decoder: ffmpeg path must not be empty")
	}
	if c.Phase.EndSec > 0 && c.Phase.StartSec >= c.Phase.EndSec {
		return fmt.Errorf("phase: start %gs must precede end %gs", c.Phase.StartSec, c.Phase.EndSec)
	}
	if c.Detect.EndSec < 0 {
		return fmt.Errorf("detect: end_sec must not be negative")
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch: concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	switch c.OutputFormat {
	case "", "json", "yaml", "csv", "table":
	default:
		return fmt.Errorf("unknown output format %q", c.OutputFormat)
	}
	return nil
}
