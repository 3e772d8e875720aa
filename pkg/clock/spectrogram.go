package clock

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/ina-foss/horloge/logging"
)

// Spectrogram holds the result of short-time spectral analysis of one channel
type Spectrogram struct {
	Magnitude  [][]float64 `json:"magnitude"`   // Time x Frequency magnitude matrix
	TimeFrames int         `json:"time_frames"` // Number of time frames
	FreqBins   int         `json:"freq_bins"`   // Retained frequency bins (first half of the transform)
	SampleRate int         `json:"sample_rate"` // Analysis sample rate
	WindowSize int         `json:"window_size"` // Window length in samples
	HopSize    int         `json:"hop_size"`    // Hop between frames in samples
}

// StepSeconds returns the time between consecutive frames
func (s *Spectrogram) StepSeconds() float64 {
	return float64(s.HopSize) / float64(s.SampleRate)
}

// WindowSeconds returns the duration covered by one frame
func (s *Spectrogram) WindowSeconds() float64 {
	return float64(s.WindowSize) / float64(s.SampleRate)
}

// SpectrogramEngine turns a channel of samples into a magnitude spectrogram.
// Framing uses the cut policy: trailing samples that do not fill a complete
// window are discarded, never padded or wrapped.
type SpectrogramEngine struct {
	preEmphasis float64
	window      []float64
	windowSize  int
	hopSize     int
	fftSize     int
	sampleRate  int
	logger      logging.Logger
}

// NewSpectrogramEngine creates an engine for the given analysis configuration
func NewSpectrogramEngine(cfg *AnalysisConfig, logger logging.Logger) *SpectrogramEngine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	windowSize := cfg.WindowLength()
	return &SpectrogramEngine{
		preEmphasis: cfg.PreEmphasis,
		window:      periodicHamming(windowSize),
		windowSize:  windowSize,
		hopSize:     cfg.StepLength(),
		fftSize:     cfg.FFTSize(),
		sampleRate:  cfg.SampleRate,
		logger: logger.WithFields(logging.Fields{
			"component": "spectrogram_engine",
		}),
	}
}

// Compute produces the magnitude spectrogram of a single channel.
//
// An input shorter than one window yields a spectrogram with zero frames
// rather than an error; downstream detection then finds no candidates, which
// is the defined outcome for channels too short to analyze.
func (e *SpectrogramEngine) Compute(samples []float64) *Spectrogram {
	freqBins := e.fftSize / 2
	spec := &Spectrogram{
		FreqBins:   freqBins,
		SampleRate: e.sampleRate,
		WindowSize: e.windowSize,
		HopSize:    e.hopSize,
	}

	if len(samples) < e.windowSize {
		e.logger.Debug("channel shorter than one analysis window", logging.Fields{
			"samples":     len(samples),
			"window_size": e.windowSize,
		})
		spec.Magnitude = [][]float64{}
		return spec
	}

	filtered := preEmphasize(samples, e.preEmphasis)

	numFrames := 1 + (len(filtered)-e.windowSize)/e.hopSize
	magnitude := make([][]float64, numFrames)

	windowed := make([]float64, e.fftSize)
	for t := 0; t < numFrames; t++ {
		frame := filtered[t*e.hopSize : t*e.hopSize+e.windowSize]
		for i, s := range frame {
			windowed[i] = s * e.window[i]
		}
		for i := e.windowSize; i < e.fftSize; i++ {
			windowed[i] = 0
		}

		spectrum := fft.FFTReal(windowed)
		magnitude[t] = make([]float64, freqBins)
		for f := 0; f < freqBins; f++ {
			magnitude[t][f] = cmplx.Abs(spectrum[f])
		}
	}

	spec.Magnitude = magnitude
	spec.TimeFrames = numFrames
	return spec
}

// preEmphasize applies the first-order high-pass y[n] = x[n] - p*x[n-1]
// with x[-1] = 0, over a copy of the input.
func preEmphasize(samples []float64, p float64) []float64 {
	out := make([]float64, len(samples))
	prev := 0.0
	for i, s := range samples {
		out[i] = s - p*prev
		prev = s
	}
	return out
}

// periodicHamming returns a periodic (DFT-even) Hamming window of length n
func periodicHamming(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}
