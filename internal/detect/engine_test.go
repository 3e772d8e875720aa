package detect

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ina-foss/horloge/configs"
	"github.com/ina-foss/horloge/logging"
	"github.com/ina-foss/horloge/pkg/audio"
	"github.com/ina-foss/horloge/pkg/clock"
)

// stubDecoder serves canned audio per input, or a canned error
type stubDecoder struct {
	data map[string]*audio.AudioData
	err  error
	// lastReq records the request for argument assertions
	lastReq *audio.DecodeRequest
}

func (s *stubDecoder) Decode(_ context.Context, req *audio.DecodeRequest) (*audio.AudioData, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	data, ok := s.data[req.Input]
	if !ok {
		return nil, audio.NewDecodeError(req.Input, audio.ErrCodeDecoding, "no such media", nil)
	}
	return data, nil
}

// interleave packs per-channel sequences into an AudioData buffer
func interleave(sampleRate int, channels ...[]float64) *audio.AudioData {
	frames := len(channels[0])
	pcm := make([]float64, 0, frames*len(channels))
	for f := 0; f < frames; f++ {
		for _, ch := range channels {
			pcm = append(pcm, ch[f])
		}
	}
	return &audio.AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   len(channels),
		Duration:   time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second)),
	}
}

// speakingClockChannel synthesizes the bip pattern: 100ms bursts of 1 kHz
// tone at second offsets 0, 10, 20, 30, 40, 57, 58, 59 of each minute
func speakingClockChannel(sampleRate int, durationSec float64) []float64 {
	samples := make([]float64, int(durationSec*float64(sampleRate)))
	for minute := 0.0; minute <= durationSec; minute += 60 {
		for _, offset := range []float64{0, 10, 20, 30, 40, 57, 58, 59} {
			start := int((minute + offset) * float64(sampleRate))
			for i := 0; i < sampleRate/10 && start+i < len(samples); i++ {
				samples[start+i] = 0.8 * math.Sin(2*math.Pi*1000*float64(i)/float64(sampleRate))
			}
		}
	}
	return samples
}

func newTestEngine(decoder MediaDecoder) *Engine {
	return NewEngine(&EngineConfig{
		Decoder:  decoder,
		Analysis: clock.DefaultAnalysisConfig(),
		Phase: configs.PhaseConfig{
			StartSec:   0,
			EndSec:     10,
			SampleRate: 4000,
		},
		Logger: logging.NewNopLogger(),
	})
}

func TestDetectClockTrack(t *testing.T) {
	rate := 4000
	decoder := &stubDecoder{data: map[string]*audio.AudioData{
		"clock.mp3": interleave(rate,
			make([]float64, 150*rate),
			speakingClockChannel(rate, 150)),
	}}
	engine := newTestEngine(decoder)

	report, err := engine.DetectClock(context.Background(), "clock.mp3")
	require.NoError(t, err)

	assert.Equal(t, clock.VerdictClockOnChannel, report.Result.Verdict)
	assert.Equal(t, 1, report.Result.Channel)
	assert.Equal(t, "SPEAKING_CLOCK_TRACK 1", report.Token())
	assert.Equal(t, 1, report.Code())
	assert.Equal(t, 2, report.Channels)
	assert.Equal(t, rate, report.SampleRate)

	// the decode must request the analysis rate
	require.NotNil(t, decoder.lastReq)
	assert.Equal(t, rate, decoder.lastReq.SampleRate)
}

func TestDetectClockNone(t *testing.T) {
	rate := 4000
	decoder := &stubDecoder{data: map[string]*audio.AudioData{
		"talk.mp3": interleave(rate, make([]float64, 150*rate), make([]float64, 150*rate)),
	}}
	engine := newTestEngine(decoder)

	report, err := engine.DetectClock(context.Background(), "talk.mp3")
	require.NoError(t, err)

	assert.Equal(t, "SPEAKING_CLOCK_NONE", report.Token())
	assert.Equal(t, -1, report.Code())
}

func TestDetectClockMultiple(t *testing.T) {
	rate := 4000
	ch := speakingClockChannel(rate, 150)
	decoder := &stubDecoder{data: map[string]*audio.AudioData{
		"dup.mp3": interleave(rate, ch, ch),
	}}
	engine := newTestEngine(decoder)

	report, err := engine.DetectClock(context.Background(), "dup.mp3")
	require.NoError(t, err)

	assert.Equal(t, "SPEAKING_CLOCK_MULTIPLE", report.Token())
	assert.Equal(t, -2, report.Code())
}

func TestDetectClockDecodeErrorPropagates(t *testing.T) {
	wantErr := audio.NewDecodeError("bad.mp3", audio.ErrCodeDecoding, "ffmpeg decode failed", nil)
	engine := newTestEngine(&stubDecoder{err: wantErr})

	report, err := engine.DetectClock(context.Background(), "bad.mp3")
	assert.Nil(t, report)

	var decodeErr *audio.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Same(t, wantErr, decodeErr)
}

func TestDetectPhaseInversion(t *testing.T) {
	rate := 4000
	left := make([]float64, 10*rate)
	right := make([]float64, 10*rate)
	for i := range left {
		left[i] = math.Sin(2 * math.Pi * 440 * float64(i) / float64(rate))
		right[i] = -left[i]
	}

	decoder := &stubDecoder{data: map[string]*audio.AudioData{
		"inv.mp3": interleave(rate, left, right),
	}}
	engine := newTestEngine(decoder)

	report, err := engine.DetectPhaseInversion(context.Background(), "inv.mp3")
	require.NoError(t, err)

	assert.Equal(t, clock.PhaseInverted, report.Verdict)
	assert.Equal(t, "PHASE_INVERTED", report.Token())
	assert.Equal(t, 2, report.Channels)
	assert.InDelta(t, 10.0, report.ClipSec, 1e-6)

	// the phase check decodes only the configured clip
	require.NotNil(t, decoder.lastReq)
	assert.Equal(t, 10.0, decoder.lastReq.EndSec)
}

func TestDetectPhaseNormalAndUnsupported(t *testing.T) {
	rate := 4000
	ch := make([]float64, rate)
	for i := range ch {
		ch[i] = math.Sin(2 * math.Pi * 440 * float64(i) / float64(rate))
	}

	decoder := &stubDecoder{data: map[string]*audio.AudioData{
		"normal.mp3": interleave(rate, ch, ch),
		"multi.mp3":  interleave(rate, ch, ch, ch),
	}}
	engine := newTestEngine(decoder)

	report, err := engine.DetectPhaseInversion(context.Background(), "normal.mp3")
	require.NoError(t, err)
	assert.Equal(t, "PHASE_NORMAL", report.Token())

	report, err = engine.DetectPhaseInversion(context.Background(), "multi.mp3")
	require.NoError(t, err)
	assert.Equal(t, "PHASE_UNSUPPORTED", report.Token())
}
