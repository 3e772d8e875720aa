package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ina-foss/horloge/configs"
	"github.com/ina-foss/horloge/internal/detect"
	"github.com/ina-foss/horloge/pkg/audio"
)

var (
	detectMedia       string
	detectFFmpeg      string
	detectTmpDir      string
	detectPassThrough bool
	detectEndSec      float64
	detectOutputFile  string
	detectJSON        bool
)

var detectCmd = &cobra.Command{
	Use:   "detect [media]",
	Short: "Detect which channel of a media file carries a speaking clock",
	Long: `Decodes the media to 4 kHz PCM with ffmpeg and analyzes every audio
channel for the speaking clock bip pattern.

Prints the channel number preceded by SPEAKING_CLOCK_TRACK when the clock is
found on exactly one channel, SPEAKING_CLOCK_NONE when no channel matches,
and SPEAKING_CLOCK_MULTIPLE when several channels match (which is likely an
error in the source media).

Examples:
  # Analyze a whole file
  horloge detect -m /archive/CAB8302090001_pivot.mp4

  # Bound analysis to the first ten minutes, decode through a pipe
  horloge detect --end-sec 600 --passthrough /archive/broadcast.ts

  # Use a specific ffmpeg build and a ram disk for intermediates
  horloge detect -m broadcast.mp2 --ffmpeg /opt/ffmpeg/bin/ffmpeg -t /dev/shm`,
	Args: func(cmd *cobra.Command, args []string) error {
		if detectMedia == "" && len(args) != 1 {
			return fmt.Errorf("requires a media path (positional or via --media)")
		}
		if detectMedia != "" && len(args) > 0 {
			return fmt.Errorf("media given both positionally and via --media")
		}
		return nil
	},
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVarP(&detectMedia, "media", "m", "",
		"full path to the media to analyze")
	detectCmd.Flags().StringVarP(&detectFFmpeg, "ffmpeg", "f", "",
		"full path to the ffmpeg binary (default: ffmpeg on PATH)")
	detectCmd.Flags().StringVarP(&detectTmpDir, "tmpdir", "t", "",
		"temporary directory for decoded intermediates (default: ram disk when available)")
	detectCmd.Flags().BoolVar(&detectPassThrough, "passthrough", false,
		"stream decoded audio over a pipe instead of a temporary file")
	detectCmd.Flags().Float64Var(&detectEndSec, "end-sec", 0,
		"only analyze the first N seconds (0 = whole media)")
	detectCmd.Flags().StringVarP(&detectOutputFile, "output-file", "o", "",
		"write the result to a file instead of stdout")
	detectCmd.Flags().BoolVar(&detectJSON, "json", false,
		"emit the full detection report as JSON instead of the token line")
}

func runDetect(cmd *cobra.Command, args []string) error {
	input := detectMedia
	if input == "" {
		input = args[0]
	}

	logger := newLogger()

	config, err := configs.LoadConfig()
	if err != nil {
		return err
	}
	applyDecoderFlags(&config.Decoder)
	if cmd.Flags().Changed("end-sec") {
		config.Detect.EndSec = detectEndSec
	}

	decoder := audio.NewDecoder(&config.Decoder, logger)
	if err := decoder.ValidateConfig(); err != nil {
		return err
	}

	engine := detect.NewEngine(&detect.EngineConfig{
		Decoder:  decoder,
		Analysis: &config.Analysis,
		Phase:    config.Phase,
		EndSec:   config.Detect.EndSec,
		Logger:   logger,
	})

	report, err := engine.DetectClock(context.Background(), input)
	if err != nil {
		return err
	}

	if detectJSON {
		return writeReportJSON(detectOutputFile, report)
	}
	return writeResult(detectOutputFile, report.Token())
}

// applyDecoderFlags overrides decoder configuration from command flags
func applyDecoderFlags(cfg *audio.DecoderConfig) {
	if detectFFmpeg != "" {
		cfg.FFmpegPath = detectFFmpeg
	}
	if detectTmpDir != "" {
		cfg.TempDir = detectTmpDir
	}
	if detectPassThrough {
		cfg.PassThrough = true
	}
}
