package clock

import (
	"math"

	"github.com/ina-foss/horloge/logging"
)

// PatternClassifier decides whether a bip sequence follows the speaking
// clock pattern: bips at second offsets 0, 10, 20, 30, 40, 57, 58, 59 of
// each minute, which makes every inter-bip gap 1, 10 or 17 seconds.
type PatternClassifier struct {
	cfg    *AnalysisConfig
	logger logging.Logger
}

// NewPatternClassifier creates a classifier for the given configuration
func NewPatternClassifier(cfg *AnalysisConfig, logger logging.Logger) *PatternClassifier {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PatternClassifier{
		cfg: cfg,
		logger: logger.WithFields(logging.Fields{
			"component": "pattern_classifier",
		}),
	}
}

// Matches reports whether the bip onsets look like a speaking clock over a
// clip of the given duration in seconds.
//
// Clips under the short-clip threshold get relaxed, inclusive count bounds
// since a partial pattern is expected; longer clips are held to strict,
// exclusive bounds around the ideal count of 8 bips per minute.
func (c *PatternClassifier) Matches(bips []float64, durationSec float64) bool {
	if len(bips) == 0 {
		return false
	}

	var nbValid, nbOther int
	for i := 1; i < len(bips); i++ {
		gap := int(math.Round(bips[i] - bips[i-1]))
		switch gap {
		case 1, 10, 17:
			nbValid++
		default:
			nbOther++
		}
	}
	numDiffs := len(bips) - 1

	estBips := durationSec / 60 * c.cfg.BipsPerMinute

	match := false
	if durationSec < c.cfg.ShortClipSec {
		match = nbValid > 4*nbOther &&
			float64(numDiffs) >= 0.3*estBips &&
			float64(numDiffs) <= 1.5*estBips
	} else {
		match = nbValid > 4*nbOther &&
			float64(numDiffs) > 0.8*estBips &&
			float64(numDiffs) < 1.2*estBips
	}

	c.logger.Debug("pattern classification completed", logging.Fields{
		"bips":      len(bips),
		"valid_gap": nbValid,
		"other_gap": nbOther,
		"est_bips":  estBips,
		"duration":  durationSec,
		"match":     match,
	})

	return match
}
