package clock

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ina-foss/horloge/logging"
)

// PhaseVerdict is the polarity outcome of a stereo phase check
type PhaseVerdict int

const (
	// PhaseNormal means the channels are in phase (or there is only one)
	PhaseNormal PhaseVerdict = iota
	// PhaseInverted means one channel is the polarity-flipped waveform of
	// the other
	PhaseInverted
	// PhaseUnsupported is returned for clips with more than two channels.
	// It is a defined "no opinion" outcome, deliberately distinct from both
	// polarity verdicts, not an error.
	PhaseUnsupported
)

func (v PhaseVerdict) String() string {
	switch v {
	case PhaseInverted:
		return "inverted"
	case PhaseUnsupported:
		return "unsupported"
	default:
		return "normal"
	}
}

// PhaseInversionDetector checks a short stereo clip for phase inversion via
// the sign of the cross-correlation between its two channels.
type PhaseInversionDetector struct {
	logger logging.Logger
}

// NewPhaseInversionDetector creates a phase inversion detector
func NewPhaseInversionDetector(logger logging.Logger) *PhaseInversionDetector {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PhaseInversionDetector{
		logger: logger.WithFields(logging.Fields{
			"component": "phase_inversion_detector",
		}),
	}
}

// Detect returns the phase verdict for a decoded clip. Mono clips are
// trivially normal; clips with more than two channels are unsupported.
func (d *PhaseInversionDetector) Detect(channels [][]float64) PhaseVerdict {
	switch {
	case len(channels) <= 1:
		return PhaseNormal
	case len(channels) > 2:
		d.logger.Debug("phase check skipped", logging.Fields{
			"channels": len(channels),
		})
		return PhaseUnsupported
	}

	correlation := floats.Dot(channels[0], channels[1])

	d.logger.Debug("phase correlation computed", logging.Fields{
		"samples":     len(channels[0]),
		"correlation": correlation,
	})

	if correlation < 0 {
		return PhaseInverted
	}
	return PhaseNormal
}
