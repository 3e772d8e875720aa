package clock

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ina-foss/horloge/logging"
)

// Verdict is the outcome of running detection over all channels of a clip
type Verdict int

const (
	// VerdictNoClock means no channel matched the speaking clock pattern
	VerdictNoClock Verdict = iota
	// VerdictClockOnChannel means exactly one channel matched
	VerdictClockOnChannel
	// VerdictAmbiguousMultiple means more than one channel matched, which
	// is most likely an analysis error upstream
	VerdictAmbiguousMultiple
)

func (v Verdict) String() string {
	switch v {
	case VerdictClockOnChannel:
		return "clock"
	case VerdictAmbiguousMultiple:
		return "multiple"
	default:
		return "none"
	}
}

// Result aggregates the per-channel outcomes of one detection run
type Result struct {
	Verdict Verdict `json:"verdict"`
	// Channel is the matching channel index when Verdict is
	// VerdictClockOnChannel, -1 otherwise
	Channel int `json:"channel"`
	// Matches lists every channel index that satisfied the pattern
	Matches []int `json:"matches"`
	// BipCounts holds the number of validated bips found per channel
	BipCounts []int `json:"bip_counts"`
	// DurationSec is the analyzed clip duration in seconds
	DurationSec float64 `json:"duration_sec"`
}

// ChannelSelector runs the full per-channel pipeline (spectrogram, bip
// detection, pattern classification) and reduces the channel verdicts to a
// single result. Channels have no data dependency on each other and are
// analyzed on parallel workers; the reduction is by channel index and
// therefore deterministic regardless of completion order.
type ChannelSelector struct {
	cfg        *AnalysisConfig
	engine     *SpectrogramEngine
	detector   *BipDetector
	classifier *PatternClassifier
	logger     logging.Logger
}

// NewChannelSelector creates a selector for the given configuration
func NewChannelSelector(cfg *AnalysisConfig, logger logging.Logger) *ChannelSelector {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ChannelSelector{
		cfg:        cfg,
		engine:     NewSpectrogramEngine(cfg, logger),
		detector:   NewBipDetector(cfg, logger),
		classifier: NewPatternClassifier(cfg, logger),
		logger: logger.WithFields(logging.Fields{
			"component": "channel_selector",
		}),
	}
}

// Select analyzes every channel of a decoded clip sampled at the configured
// analysis rate and returns the aggregate verdict.
func (s *ChannelSelector) Select(ctx context.Context, channels [][]float64) (*Result, error) {
	result := &Result{
		Verdict:   VerdictNoClock,
		Channel:   -1,
		BipCounts: make([]int, len(channels)),
	}
	if len(channels) == 0 {
		return result, nil
	}

	result.DurationSec = float64(len(channels[0])) / float64(s.cfg.SampleRate)

	matched := make([]bool, len(channels))
	bipCounts := make([]int, len(channels))

	g, _ := errgroup.WithContext(ctx)
	for i, samples := range channels {
		i, samples := i, samples
		g.Go(func() error {
			spec := s.engine.Compute(samples)
			bips := s.detector.Detect(spec)
			bipCounts[i] = len(bips)
			matched[i] = s.classifier.Matches(bips, result.DurationSec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, ok := range matched {
		if ok {
			result.Matches = append(result.Matches, i)
		}
	}
	result.BipCounts = bipCounts

	switch len(result.Matches) {
	case 0:
		result.Verdict = VerdictNoClock
	case 1:
		result.Verdict = VerdictClockOnChannel
		result.Channel = result.Matches[0]
	default:
		result.Verdict = VerdictAmbiguousMultiple
	}

	s.logger.Debug("channel selection completed", logging.Fields{
		"channels":     len(channels),
		"matches":      len(result.Matches),
		"verdict":      result.Verdict.String(),
		"duration_sec": result.DurationSec,
	})

	return result, nil
}
