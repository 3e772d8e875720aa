// Package detect ties the external decode step to the core detection
// pipeline and produces reports for the CLI and batch harness.
package detect

import (
	"context"
	"time"

	"github.com/ina-foss/horloge/configs"
	"github.com/ina-foss/horloge/logging"
	"github.com/ina-foss/horloge/pkg/audio"
	"github.com/ina-foss/horloge/pkg/clock"
)

// MediaDecoder is the decode collaborator contract consumed by the engine.
// Implementations return a complete in-memory buffer or fail with captured
// decoder diagnostics; the engine never retries.
type MediaDecoder interface {
	Decode(ctx context.Context, req *audio.DecodeRequest) (*audio.AudioData, error)
}

// EngineConfig contains configuration for the detection engine
type EngineConfig struct {
	Decoder  MediaDecoder
	Analysis *clock.AnalysisConfig
	Phase    configs.PhaseConfig
	// EndSec bounds the decoded duration for clock detection; 0 decodes
	// the whole media
	EndSec float64
	Logger logging.Logger
}

// Engine runs speaking clock detection and phase inversion checks over
// media files
type Engine struct {
	decoder  MediaDecoder
	analysis *clock.AnalysisConfig
	selector *clock.ChannelSelector
	phase    *clock.PhaseInversionDetector
	phaseCfg configs.PhaseConfig
	endSec   float64
	logger   logging.Logger
}

// NewEngine creates a detection engine
func NewEngine(cfg *EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	analysis := cfg.Analysis
	if analysis == nil {
		analysis = clock.DefaultAnalysisConfig()
	}

	return &Engine{
		decoder:  cfg.Decoder,
		analysis: analysis,
		selector: clock.NewChannelSelector(analysis, logger),
		phase:    clock.NewPhaseInversionDetector(logger),
		phaseCfg: cfg.Phase,
		endSec:   cfg.EndSec,
		logger:   logger,
	}
}

// DetectClock decodes the media at the analysis rate and reports which
// channel, if any, carries a speaking clock. Decode failures propagate
// unmodified and produce no report.
func (e *Engine) DetectClock(ctx context.Context, input string) (*Report, error) {
	e.logger.Debug("starting speaking clock detection", logging.Fields{
		"input":   input,
		"end_sec": e.endSec,
	})

	decodeStart := time.Now()
	data, err := e.decoder.Decode(ctx, &audio.DecodeRequest{
		Input:      input,
		SampleRate: e.analysis.SampleRate,
		EndSec:     e.endSec,
	})
	if err != nil {
		return nil, err
	}
	decodeTime := time.Since(decodeStart)

	analyzeStart := time.Now()
	result, err := e.selector.Select(ctx, data.ChannelData())
	if err != nil {
		return nil, err
	}

	report := &Report{
		Input:       input,
		Result:      result,
		SampleRate:  data.SampleRate,
		Channels:    data.Channels,
		DecodeTime:  decodeTime,
		AnalyzeTime: time.Since(analyzeStart),
		Timestamp:   time.Now(),
	}

	e.logger.Info("speaking clock detection completed", logging.Fields{
		"input":          input,
		"verdict":        result.Verdict.String(),
		"channel":        result.Channel,
		"bip_counts":     result.BipCounts,
		"duration_sec":   result.DurationSec,
		"decode_time_s":  decodeTime.Seconds(),
		"analyze_time_s": report.AnalyzeTime.Seconds(),
	})

	return report, nil
}

// DetectPhaseInversion decodes a short clip and reports the stereo phase
// polarity verdict.
func (e *Engine) DetectPhaseInversion(ctx context.Context, input string) (*PhaseReport, error) {
	e.logger.Debug("starting phase inversion check", logging.Fields{
		"input":     input,
		"start_sec": e.phaseCfg.StartSec,
		"end_sec":   e.phaseCfg.EndSec,
	})

	decodeStart := time.Now()
	data, err := e.decoder.Decode(ctx, &audio.DecodeRequest{
		Input:      input,
		SampleRate: e.phaseCfg.SampleRate,
		StartSec:   e.phaseCfg.StartSec,
		EndSec:     e.phaseCfg.EndSec,
	})
	if err != nil {
		return nil, err
	}

	verdict := e.phase.Detect(data.ChannelData())

	report := &PhaseReport{
		Input:      input,
		Verdict:    verdict,
		Channels:   data.Channels,
		SampleRate: data.SampleRate,
		ClipSec:    data.Duration.Seconds(),
		DecodeTime: time.Since(decodeStart),
		Timestamp:  time.Now(),
	}

	e.logger.Info("phase inversion check completed", logging.Fields{
		"input":    input,
		"verdict":  verdict.String(),
		"channels": data.Channels,
		"clip_sec": report.ClipSec,
	})

	return report, nil
}
