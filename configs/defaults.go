package configs

import (
	"os"
	"runtime"

	"github.com/spf13/viper"
)

// SetDefaults registers default configuration values with viper. Defaults
// mirror the reference detector: 4 kHz analysis rate, 32 ms windows with
// 8 ms steps, 80-160 ms bips around 1 kHz, 8 bips per minute.
func SetDefaults() {
	// Application defaults
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("output_format", "table")

	// Decoder defaults
	viper.SetDefault("decoder.ffmpeg_path", "ffmpeg")
	viper.SetDefault("decoder.temp_dir", defaultTempDir())
	viper.SetDefault("decoder.pass_through", false)
	viper.SetDefault("decoder.timeout", "0s")

	// Analysis defaults
	viper.SetDefault("analysis.sample_rate", 4000)
	viper.SetDefault("analysis.window_sec", 0.032)
	viper.SetDefault("analysis.step_sec", 0.008)
	viper.SetDefault("analysis.pre_emphasis", 0.97)
	viper.SetDefault("analysis.target_freq", 1000.0)
	viper.SetDefault("analysis.ratio_threshold", 0.5)
	viper.SetDefault("analysis.min_bip_sec", 0.08)
	viper.SetDefault("analysis.max_bip_sec", 0.16)
	viper.SetDefault("analysis.energy_fraction", 0.2)
	viper.SetDefault("analysis.bips_per_minute", 8.0)
	viper.SetDefault("analysis.short_clip_sec", 60.0)

	// Phase check defaults: first ten seconds at the source rate
	viper.SetDefault("phase.start_sec", 0.0)
	viper.SetDefault("phase.end_sec", 10.0)
	viper.SetDefault("phase.sample_rate", 0)

	// Detection defaults
	viper.SetDefault("detect.end_sec", 0.0)

	// Batch defaults
	viper.SetDefault("batch.concurrency", runtime.NumCPU())
	viper.SetDefault("batch.file_timeout", "0s")
}

// defaultTempDir prefers the linux ram disk when present, since decoded
// WAV intermediates for long media are large and short-lived
func defaultTempDir() string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}
