// Package batch runs speaking clock detection over many media files with a
// bounded worker pool.
package batch

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ina-foss/horloge/internal/detect"
	"github.com/ina-foss/horloge/logging"
)

// FileResult holds the outcome for a single input file
type FileResult struct {
	Input  string         `json:"input"`
	Report *detect.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
	// Expected is the reference channel code for regression runs, when an
	// expectations file was provided
	Expected *int          `json:"expected,omitempty"`
	Match    *bool         `json:"match,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Summary aggregates a batch run
type Summary struct {
	Results  []FileResult  `json:"results"`
	Track    int           `json:"track"`
	None     int           `json:"none"`
	Multiple int           `json:"multiple"`
	Failed   int           `json:"failed"`
	// Mismatched counts results that differ from the expectations file
	Mismatched    int           `json:"mismatched,omitempty"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	TotalDuration time.Duration `json:"total_duration"`
}

// Headers implements output.Tabular
func (s *Summary) Headers() []string {
	return []string{"input", "verdict", "expected", "elapsed_s", "error"}
}

// Rows implements output.Tabular
func (s *Summary) Rows() [][]string {
	rows := make([][]string, 0, len(s.Results))
	for _, r := range s.Results {
		verdict := ""
		if r.Report != nil {
			verdict = r.Report.Token()
		}
		expected := ""
		if r.Expected != nil {
			expected = strconv.Itoa(*r.Expected)
			if r.Match != nil && !*r.Match {
				expected += " (MISMATCH)"
			}
		}
		rows = append(rows, []string{
			r.Input,
			verdict,
			expected,
			strconv.FormatFloat(r.Elapsed.Seconds(), 'f', 2, 64),
			r.Error,
		})
	}
	return rows
}

// Orchestrator coordinates a batch detection run
type Orchestrator struct {
	engine      *detect.Engine
	concurrency int
	fileTimeout time.Duration
	expected    map[string]int
	logger      logging.Logger
}

// NewOrchestrator creates a batch orchestrator. The expected map, keyed by
// input path, may be nil; when present each result is compared against the
// reference channel code.
func NewOrchestrator(engine *detect.Engine, concurrency int, fileTimeout time.Duration, expected map[string]int, logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		engine:      engine,
		concurrency: concurrency,
		fileTimeout: fileTimeout,
		expected:    expected,
		logger: logger.WithFields(logging.Fields{
			"component": "batch_orchestrator",
		}),
	}
}

// Run analyzes every file and returns the summary. Per-file failures are
// recorded in their result rather than aborting the batch; results keep the
// input order regardless of completion order.
func (o *Orchestrator) Run(ctx context.Context, files []string) (*Summary, error) {
	startTime := time.Now()

	o.logger.Debug("starting batch run", logging.Fields{
		"files":       len(files),
		"concurrency": o.concurrency,
	})

	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, input := range files {
		i, input := i, input
		g.Go(func() error {
			results[i] = o.runOne(gctx, input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	endTime := time.Now()
	summary := &Summary{
		Results:       results,
		StartTime:     startTime,
		EndTime:       endTime,
		TotalDuration: endTime.Sub(startTime),
	}
	o.tally(summary)

	o.logger.Info("batch run completed", logging.Fields{
		"files":      len(files),
		"track":      summary.Track,
		"none":       summary.None,
		"multiple":   summary.Multiple,
		"failed":     summary.Failed,
		"mismatched": summary.Mismatched,
		"duration_s": summary.TotalDuration.Seconds(),
	})

	return summary, nil
}

func (o *Orchestrator) runOne(ctx context.Context, input string) FileResult {
	if o.fileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.fileTimeout)
		defer cancel()
	}

	start := time.Now()
	result := FileResult{Input: input}

	report, err := o.engine.DetectClock(ctx, input)
	result.Elapsed = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		o.logger.Warn("file analysis failed", logging.Fields{
			"input": input,
			"error": err.Error(),
		})
		return result
	}
	result.Report = report

	if o.expected != nil {
		if code, ok := o.expected[input]; ok {
			match := report.Code() == code
			result.Expected = &code
			result.Match = &match
		}
	}

	return result
}

func (o *Orchestrator) tally(summary *Summary) {
	for _, r := range summary.Results {
		switch {
		case r.Error != "":
			summary.Failed++
		case r.Report.Code() >= 0:
			summary.Track++
		case r.Report.Code() == -2:
			summary.Multiple++
		default:
			summary.None++
		}
		if r.Match != nil && !*r.Match {
			summary.Mismatched++
		}
	}
}
