package clock

import (
	"fmt"
)

// AnalysisConfig contains all tunable parameters of the detection pipeline.
// Components receive the configuration explicitly so that they stay pure and
// testable in isolation; nothing in this package reads global state.
type AnalysisConfig struct {
	// SampleRate is the analysis rate in Hz. The window, step and frequency
	// bin constants below are only meaningful at 4000 Hz; audio at any other
	// rate must be resampled before detection.
	SampleRate int `mapstructure:"sample_rate" json:"sample_rate"`

	// WindowSec is the spectrogram analysis window length in seconds
	WindowSec float64 `mapstructure:"window_sec" json:"window_sec"`

	// StepSec is the hop between consecutive analysis windows in seconds
	StepSec float64 `mapstructure:"step_sec" json:"step_sec"`

	// PreEmphasis is the first-order high-pass coefficient applied before framing
	PreEmphasis float64 `mapstructure:"pre_emphasis" json:"pre_emphasis"`

	// TargetFreq is the bip carrier frequency in Hz
	TargetFreq float64 `mapstructure:"target_freq" json:"target_freq"`

	// RatioThreshold is the minimum fraction of a frame's spectral energy
	// that must sit in the three bins nearest TargetFreq for the frame to be
	// part of a bip candidate
	RatioThreshold float64 `mapstructure:"ratio_threshold" json:"ratio_threshold"`

	// MinBipSec and MaxBipSec bound the accepted bip duration, both exclusive
	MinBipSec float64 `mapstructure:"min_bip_sec" json:"min_bip_sec"`
	MaxBipSec float64 `mapstructure:"max_bip_sec" json:"max_bip_sec"`

	// EnergyFraction discards candidates whose mean frame energy is at or
	// below this fraction of the strongest surviving candidate
	EnergyFraction float64 `mapstructure:"energy_fraction" json:"energy_fraction"`

	// BipsPerMinute is the expected bip count per minute of speaking clock
	BipsPerMinute float64 `mapstructure:"bips_per_minute" json:"bips_per_minute"`

	// ShortClipSec is the duration below which the classifier applies the
	// relaxed short-clip bounds
	ShortClipSec float64 `mapstructure:"short_clip_sec" json:"short_clip_sec"`
}

// DefaultAnalysisConfig returns the reference configuration: 4 kHz analysis
// rate, 32 ms windows with 8 ms steps, bips of 80-160 ms around 1 kHz.
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		SampleRate:     4000,
		WindowSec:      0.032,
		StepSec:        0.008,
		PreEmphasis:    0.97,
		TargetFreq:     1000,
		RatioThreshold: 0.5,
		MinBipSec:      0.08,
		MaxBipSec:      0.16,
		EnergyFraction: 0.2,
		BipsPerMinute:  8,
		ShortClipSec:   60,
	}
}

// WindowLength returns the analysis window length in samples
func (c *AnalysisConfig) WindowLength() int {
	return int(c.WindowSec * float64(c.SampleRate))
}

// StepLength returns the hop size in samples
func (c *AnalysisConfig) StepLength() int {
	return int(c.StepSec * float64(c.SampleRate))
}

// FFTSize returns the transform size, equal to the window length
func (c *AnalysisConfig) FFTSize() int {
	return c.WindowLength()
}

// targetBins returns the indices of the three frequency bins surrounding
// TargetFreq: truncation of (bin-1, bin, bin+1) where bin = f*W/rate.
func (c *AnalysisConfig) targetBins() [3]int {
	bin := c.TargetFreq * float64(c.WindowLength()) / float64(c.SampleRate)
	return [3]int{int(bin - 1), int(bin), int(bin + 1)}
}

// Validate checks that the configuration is internally consistent
func (c *AnalysisConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.WindowSec <= 0 || c.StepSec <= 0 {
		return fmt.Errorf("window and step must be positive, got window=%gs step=%gs", c.WindowSec, c.StepSec)
	}
	if c.StepLength() > c.WindowLength() {
		return fmt.Errorf("step (%d samples) cannot exceed window (%d samples)", c.StepLength(), c.WindowLength())
	}
	if c.WindowLength() < 2 {
		return fmt.Errorf("window of %d samples is too short to frame", c.WindowLength())
	}
	if c.TargetFreq <= 0 || c.TargetFreq >= float64(c.SampleRate)/2 {
		return fmt.Errorf("target frequency %g Hz outside (0, Nyquist) for rate %d", c.TargetFreq, c.SampleRate)
	}
	bins := c.targetBins()
	if bins[0] < 0 || bins[2] >= c.FFTSize()/2 {
		return fmt.Errorf("target bins %v outside retained spectrum [0, %d)", bins, c.FFTSize()/2)
	}
	if c.MinBipSec >= c.MaxBipSec {
		return fmt.Errorf("bip duration bounds inverted: min=%gs max=%gs", c.MinBipSec, c.MaxBipSec)
	}
	if c.RatioThreshold <= 0 || c.RatioThreshold >= 1 {
		return fmt.Errorf("ratio threshold must be in (0, 1), got %g", c.RatioThreshold)
	}
	if c.EnergyFraction < 0 || c.EnergyFraction >= 1 {
		return fmt.Errorf("energy fraction must be in [0, 1), got %g", c.EnergyFraction)
	}
	if c.BipsPerMinute <= 0 {
		return fmt.Errorf("bips per minute must be positive, got %g", c.BipsPerMinute)
	}
	return nil
}
