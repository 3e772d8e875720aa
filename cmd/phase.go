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
	phaseMedia      string
	phaseFFmpeg     string
	phaseStartSec   float64
	phaseEndSec     float64
	phaseOutputFile string
	phaseJSON       bool
)

var phaseCmd = &cobra.Command{
	Use:   "phase [media]",
	Short: "Check a stereo media file for phase inversion",
	Long: `Decodes a short clip (the first ten seconds by default) and checks
whether one stereo channel is the polarity-flipped waveform of the other,
using the sign of the cross-correlation between the two channels.

Prints PHASE_INVERTED or PHASE_NORMAL. Mono media is trivially normal;
media with more than two channels yields PHASE_UNSUPPORTED.

Examples:
  horloge phase -m /archive/MGCPB0042023.01.ts
  horloge phase --start-sec 30 --end-sec 40 /archive/broadcast.mp4`,
	Args: func(cmd *cobra.Command, args []string) error {
		if phaseMedia == "" && len(args) != 1 {
			return fmt.Errorf("requires a media path (positional or via --media)")
		}
		if phaseMedia != "" && len(args) > 0 {
			return fmt.Errorf("media given both positionally and via --media")
		}
		return nil
	},
	RunE: runPhase,
}

func init() {
	rootCmd.AddCommand(phaseCmd)

	phaseCmd.Flags().StringVarP(&phaseMedia, "media", "m", "",
		"full path to the media to analyze")
	phaseCmd.Flags().StringVarP(&phaseFFmpeg, "ffmpeg", "f", "",
		"full path to the ffmpeg binary (default: ffmpeg on PATH)")
	phaseCmd.Flags().Float64Var(&phaseStartSec, "start-sec", 0,
		"start of the analyzed clip in seconds")
	phaseCmd.Flags().Float64Var(&phaseEndSec, "end-sec", 0,
		"end of the analyzed clip in seconds (default: 10)")
	phaseCmd.Flags().StringVarP(&phaseOutputFile, "output-file", "o", "",
		"write the result to a file instead of stdout")
	phaseCmd.Flags().BoolVar(&phaseJSON, "json", false,
		"emit the full phase report as JSON instead of the token line")
}

func runPhase(cmd *cobra.Command, args []string) error {
	input := phaseMedia
	if input == "" {
		input = args[0]
	}

	logger := newLogger()

	config, err := configs.LoadConfig()
	if err != nil {
		return err
	}
	if phaseFFmpeg != "" {
		config.Decoder.FFmpegPath = phaseFFmpeg
	}
	if cmd.Flags().Changed("start-sec") {
		config.Phase.StartSec = phaseStartSec
	}
	if cmd.Flags().Changed("end-sec") {
		config.Phase.EndSec = phaseEndSec
	}
	if config.Phase.EndSec > 0 && config.Phase.StartSec >= config.Phase.EndSec {
		return fmt.Errorf("start %gs must precede end %gs", config.Phase.StartSec, config.Phase.EndSec)
	}

	decoder := audio.NewDecoder(&config.Decoder, logger)
	if err := decoder.ValidateConfig(); err != nil {
		return err
	}

	engine := detect.NewEngine(&detect.EngineConfig{
		Decoder:  decoder,
		Analysis: &config.Analysis,
		Phase:    config.Phase,
		Logger:   logger,
	})

	report, err := engine.DetectPhaseInversion(context.Background(), input)
	if err != nil {
		return err
	}

	if phaseJSON {
		return writeReportJSON(phaseOutputFile, report)
	}
	return writeResult(phaseOutputFile, report.Token())
}
