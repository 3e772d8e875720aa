// Package audio decodes media files into in-memory PCM buffers through an
// external ffmpeg process.
package audio

import (
	"time"
)

// AudioData holds decoded PCM audio
type AudioData struct {
	// PCM is interleaved sample data in [-1, 1], frames x channels
	PCM        []float64     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
}

// Frames returns the number of sample frames (samples per channel)
func (a *AudioData) Frames() int {
	if a.Channels == 0 {
		return 0
	}
	return len(a.PCM) / a.Channels
}

// Channel de-interleaves and returns the samples of channel i
func (a *AudioData) Channel(i int) []float64 {
	frames := a.Frames()
	out := make([]float64, frames)
	for f := 0; f < frames; f++ {
		out[f] = a.PCM[f*a.Channels+i]
	}
	return out
}

// ChannelData de-interleaves the buffer into per-channel sample sequences
func (a *AudioData) ChannelData() [][]float64 {
	out := make([][]float64, a.Channels)
	for i := range out {
		out[i] = a.Channel(i)
	}
	return out
}
