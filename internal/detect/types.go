package detect

import (
	"fmt"
	"time"

	"github.com/ina-foss/horloge/pkg/clock"
)

// Output tokens, kept identical to the reference tool so that downstream
// harnesses can parse either implementation
const (
	TokenTrack    = "SPEAKING_CLOCK_TRACK"
	TokenNone     = "SPEAKING_CLOCK_NONE"
	TokenMultiple = "SPEAKING_CLOCK_MULTIPLE"

	TokenPhaseNormal      = "PHASE_NORMAL"
	TokenPhaseInverted    = "PHASE_INVERTED"
	TokenPhaseUnsupported = "PHASE_UNSUPPORTED"
)

// Report holds the outcome of one speaking clock detection run
type Report struct {
	Input       string        `json:"input"`
	Result      *clock.Result `json:"result"`
	SampleRate  int           `json:"sample_rate"`
	Channels    int           `json:"channels"`
	DecodeTime  time.Duration `json:"decode_time"`
	AnalyzeTime time.Duration `json:"analyze_time"`
	Timestamp   time.Time     `json:"timestamp"`
}

// Token renders the verdict in the reference output format
func (r *Report) Token() string {
	switch r.Result.Verdict {
	case clock.VerdictClockOnChannel:
		return fmt.Sprintf("%s %d", TokenTrack, r.Result.Channel)
	case clock.VerdictAmbiguousMultiple:
		return TokenMultiple
	default:
		return TokenNone
	}
}

// Code renders the verdict as the reference channel code: the matching
// channel index, -1 for no clock, -2 for multiple matches
func (r *Report) Code() int {
	switch r.Result.Verdict {
	case clock.VerdictClockOnChannel:
		return r.Result.Channel
	case clock.VerdictAmbiguousMultiple:
		return -2
	default:
		return -1
	}
}

// PhaseReport holds the outcome of one phase inversion check
type PhaseReport struct {
	Input      string             `json:"input"`
	Verdict    clock.PhaseVerdict `json:"verdict"`
	Channels   int                `json:"channels"`
	SampleRate int                `json:"sample_rate"`
	ClipSec    float64            `json:"clip_sec"`
	DecodeTime time.Duration      `json:"decode_time"`
	Timestamp  time.Time          `json:"timestamp"`
}

// Token renders the phase verdict as an output token
func (r *PhaseReport) Token() string {
	switch r.Verdict {
	case clock.PhaseInverted:
		return TokenPhaseInverted
	case clock.PhaseUnsupported:
		return TokenPhaseUnsupported
	default:
		return TokenPhaseNormal
	}
}
