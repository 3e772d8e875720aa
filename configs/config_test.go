package configs

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) *Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	config, err := LoadConfig()
	require.NoError(t, err)
	return config
}

func TestLoadConfigDefaults(t *testing.T) {
	config := loadDefaults(t)

	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "table", config.OutputFormat)

	assert.Equal(t, "ffmpeg", config.Decoder.FFmpegPath)
	assert.NotEmpty(t, config.Decoder.TempDir)
	assert.False(t, config.Decoder.PassThrough)

	assert.Equal(t, 4000, config.Analysis.SampleRate)
	assert.InDelta(t, 0.032, config.Analysis.WindowSec, 1e-12)
	assert.InDelta(t, 0.008, config.Analysis.StepSec, 1e-12)
	assert.InDelta(t, 1000.0, config.Analysis.TargetFreq, 1e-12)
	require.NoError(t, config.Analysis.Validate())

	assert.InDelta(t, 10.0, config.Phase.EndSec, 1e-12)
	assert.Zero(t, config.Phase.SampleRate)
	assert.Zero(t, config.Detect.EndSec)
	assert.GreaterOrEqual(t, config.Batch.Concurrency, 1)
}

func TestLoadConfigOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("analysis.sample_rate", 8000)
	viper.Set("output_format", "json")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8000, config.Analysis.SampleRate)
	assert.Equal(t, "json", config.OutputFormat)
	// derived lengths follow the rate
	assert.Equal(t, 256, config.Analysis.WindowLength())
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"bad output format", "output_format", "xml"},
		{"zero sample rate", "analysis.sample_rate", 0},
		{"empty ffmpeg path", "decoder.ffmpeg_path", ""},
		{"phase start after end", "phase.start_sec", 20.0},
		{"negative detect end", "detect.end_sec", -1.0},
		{"zero concurrency", "batch.concurrency", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			SetDefaults()
			viper.Set(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
