package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ina-foss/horloge/configs"
	"github.com/ina-foss/horloge/internal/batch"
	"github.com/ina-foss/horloge/internal/detect"
	"github.com/ina-foss/horloge/pkg/audio"
)

var (
	batchListFile     string
	batchExpectedFile string
	batchConcurrency  int
	batchEndSec       float64
	batchOutputFile   string
)

var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Run speaking clock detection over many media files",
	Long: `Analyzes a set of media files concurrently with a bounded worker
pool and reports one verdict per file plus aggregate counts.

An optional expectations file turns the batch into a regression run: each
line holds a media path and the reference channel code (the matching channel
index, -1 for no clock, -2 for multiple channels), separated by whitespace.
Results differing from the reference are flagged and counted.

Examples:
  horloge batch corpus/positive/*.mp4 --concurrency 8
  horloge batch --list corpus.txt --expected expected.txt --output csv -o results.csv
  horloge batch --end-sec 600 corpus/*.ts`,
	Args: cobra.ArbitraryArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchListFile, "list", "",
		"file holding one media path per line, in addition to positional files")
	batchCmd.Flags().StringVar(&batchExpectedFile, "expected", "",
		"expectations file for regression runs (path and channel code per line)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0,
		"number of parallel workers (default: number of CPUs)")
	batchCmd.Flags().Float64Var(&batchEndSec, "end-sec", 0,
		"only analyze the first N seconds of each file (0 = whole media)")
	batchCmd.Flags().StringVarP(&batchOutputFile, "output-file", "o", "",
		"write results to a file instead of stdout")
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	config, err := configs.LoadConfig()
	if err != nil {
		return err
	}
	if batchConcurrency > 0 {
		config.Batch.Concurrency = batchConcurrency
	}
	if cmd.Flags().Changed("end-sec") {
		config.Detect.EndSec = batchEndSec
	}

	files := append([]string{}, args...)
	if batchListFile != "" {
		listed, err := readLines(batchListFile)
		if err != nil {
			return fmt.Errorf("failed to read file list: %w", err)
		}
		files = append(files, listed...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files (pass paths or --list)")
	}

	var expected map[string]int
	if batchExpectedFile != "" {
		expected, err = readExpectations(batchExpectedFile)
		if err != nil {
			return fmt.Errorf("failed to read expectations: %w", err)
		}
	}

	decoder := audio.NewDecoder(&config.Decoder, logger)
	if err := decoder.ValidateConfig(); err != nil {
		return err
	}

	engine := detect.NewEngine(&detect.EngineConfig{
		Decoder:  decoder,
		Analysis: &config.Analysis,
		Phase:    config.Phase,
		EndSec:   config.Detect.EndSec,
		Logger:   logger,
	})

	orchestrator := batch.NewOrchestrator(engine, config.Batch.Concurrency,
		config.Batch.FileTimeout, expected, logger)

	summary, err := orchestrator.Run(context.Background(), files)
	if err != nil {
		return err
	}

	if err := writeFormatted(batchOutputFile, viper.GetString("output_format"), summary); err != nil {
		return err
	}

	if summary.Mismatched > 0 {
		return fmt.Errorf("%d of %d results differ from the expectations file",
			summary.Mismatched, len(summary.Results))
	}
	if summary.Failed == len(summary.Results) {
		return fmt.Errorf("all %d files failed to analyze", summary.Failed)
	}
	return nil
}

// readLines reads non-empty, non-comment lines from a file
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// readExpectations parses "path code" lines into a lookup map
func readExpectations(path string) (map[string]int, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	expected := make(map[string]int, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed expectation line %q, want: path code", line)
		}
		code, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("bad channel code in %q: %w", line, err)
		}
		expected[fields[0]] = code
	}
	return expected, nil
}
