package clock

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ina-foss/horloge/logging"
)

// bipCandidate is a contiguous run of high-ratio frames under evaluation
type bipCandidate struct {
	startFrame int
	frames     int
	meanEnergy float64
}

// region is a maximal run of true values in a boolean frame sequence
type region struct {
	start  int
	length int
}

// BipDetector extracts bip onset times from a spectrogram.
//
// A bip is a short burst whose spectral energy is concentrated in the three
// frequency bins nearest the target frequency. Detection is a pure function
// of the spectrogram: same input, same output, no retries.
type BipDetector struct {
	cfg    *AnalysisConfig
	logger logging.Logger
}

// NewBipDetector creates a detector for the given analysis configuration
func NewBipDetector(cfg *AnalysisConfig, logger logging.Logger) *BipDetector {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &BipDetector{
		cfg: cfg,
		logger: logger.WithFields(logging.Fields{
			"component": "bip_detector",
		}),
	}
}

// Detect returns the onset times in seconds of every validated bip, in
// increasing order. The sequence is empty when nothing qualifies.
func (d *BipDetector) Detect(spec *Spectrogram) []float64 {
	if spec.TimeFrames == 0 {
		return []float64{}
	}

	bins := d.cfg.targetBins()

	// Per-frame energy around the target frequency vs. total retained energy.
	// Zero-energy frames get ratio 0 by definition; the guard is a rule of
	// the algorithm, not an incidental float artifact.
	energyAll := make([]float64, spec.TimeFrames)
	above := make([]bool, spec.TimeFrames)
	for t, frame := range spec.Magnitude {
		total := floats.Sum(frame)
		energyAll[t] = total

		ratio := 0.0
		if total != 0 {
			target := frame[bins[0]] + frame[bins[1]] + frame[bins[2]]
			ratio = target / total
		}
		above[t] = ratio > d.cfg.RatioThreshold
	}

	// Candidate bips are maximal runs of high-ratio frames with a duration
	// inside the accepted bip length, both bounds exclusive
	var candidates []bipCandidate
	for _, r := range contiguousRegions(above) {
		durSec := float64(r.length-1)*d.cfg.StepSec + d.cfg.WindowSec
		if durSec > d.cfg.MinBipSec && durSec < d.cfg.MaxBipSec {
			candidates = append(candidates, bipCandidate{
				startFrame: r.start,
				frames:     r.length,
				meanEnergy: floats.Sum(energyAll[r.start:r.start+r.length]) / float64(r.length),
			})
		}
	}
	if len(candidates) == 0 {
		return []float64{}
	}

	// Drop weak candidates relative to the strongest one
	maxEnergy := candidates[0].meanEnergy
	for _, c := range candidates[1:] {
		if c.meanEnergy > maxEnergy {
			maxEnergy = c.meanEnergy
		}
	}

	var bips []float64
	for _, c := range candidates {
		if c.meanEnergy > d.cfg.EnergyFraction*maxEnergy {
			bips = append(bips, float64(c.startFrame)*d.cfg.StepSec)
		}
	}

	d.logger.Debug("bip detection completed", logging.Fields{
		"frames":     spec.TimeFrames,
		"candidates": len(candidates),
		"bips":       len(bips),
	})

	if bips == nil {
		return []float64{}
	}
	return bips
}

// contiguousRegions finds the maximal runs of true values, including runs
// touching either end of the sequence
func contiguousRegions(cond []bool) []region {
	var regions []region
	start := -1
	for i, v := range cond {
		if v && start < 0 {
			start = i
		}
		if !v && start >= 0 {
			regions = append(regions, region{start: start, length: i - start})
			start = -1
		}
	}
	if start >= 0 {
		regions = append(regions, region{start: start, length: len(cond) - start})
	}
	return regions
}
