package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ina-foss/horloge/logging"
)

// DecoderConfig contains decoder settings
type DecoderConfig struct {
	// FFmpegPath is the ffmpeg binary to invoke
	FFmpegPath string `mapstructure:"ffmpeg_path" json:"ffmpeg_path"`
	// TempDir receives intermediate WAV files in temp-dir mode. A fast
	// directory such as a ram disk is preferable for long media.
	TempDir string `mapstructure:"temp_dir" json:"temp_dir"`
	// PassThrough makes ffmpeg stream WAV data over a pipe instead of
	// going through a temporary file
	PassThrough bool `mapstructure:"pass_through" json:"pass_through"`
	// Timeout bounds a single decode invocation, 0 means no limit
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
}

// DefaultDecoderConfig returns decoder defaults
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		FFmpegPath:  "ffmpeg",
		TempDir:     os.TempDir(),
		PassThrough: false,
		Timeout:     0,
	}
}

// DecodeRequest describes one decode invocation
type DecodeRequest struct {
	// Input is a media path or URL handed to ffmpeg
	Input string
	// SampleRate is the requested output rate; 0 keeps the source rate
	SampleRate int
	// StartSec and EndSec optionally trim the decoded range in seconds.
	// EndSec of 0 means decode to the end of the media.
	StartSec float64
	EndSec   float64
}

// Decoder turns arbitrary media into in-memory PCM via an external ffmpeg
// process. Decoding is synchronous: it returns a complete buffer or fails
// with the diagnostic output of the decoder, and is never retried here.
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a decoder with the given configuration
func NewDecoder(config *DecoderConfig, logger logging.Logger) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Decoder{
		config: config,
		logger: logger.WithFields(logging.Fields{
			"component": "ffmpeg_decoder",
		}),
	}
}

// ValidateConfig checks that the ffmpeg binary and temp directory are usable
func (d *Decoder) ValidateConfig() error {
	if _, err := exec.LookPath(d.config.FFmpegPath); err != nil {
		return NewDecodeError("", ErrCodeBinaryMissing,
			fmt.Sprintf("ffmpeg binary %q not found", d.config.FFmpegPath), err)
	}
	if !d.config.PassThrough {
		info, err := os.Stat(d.config.TempDir)
		if err != nil || !info.IsDir() {
			return NewDecodeError("", ErrCodeInvalidInput,
				fmt.Sprintf("temp directory %q not accessible", d.config.TempDir), err)
		}
	}
	return nil
}

// Decode runs ffmpeg over the request's input and returns the decoded
// buffer. The returned buffer is checked for internal consistency: a sample
// rate differing from the requested one, or an empty decode, is an error.
func (d *Decoder) Decode(ctx context.Context, req *DecodeRequest) (*AudioData, error) {
	if req.Input == "" {
		return nil, NewDecodeError("", ErrCodeInvalidInput, "empty media locator", nil)
	}

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	start := time.Now()

	var (
		wavBytes []byte
		err      error
	)
	if d.config.PassThrough {
		wavBytes, err = d.decodeToPipe(ctx, req)
	} else {
		wavBytes, err = d.decodeToTempFile(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	data, err := ParseWAV(wavBytes)
	if err != nil {
		return nil, NewDecodeError(req.Input, ErrCodeInvalidFormat,
			"decoder produced unparseable wav data", err)
	}

	if data.Frames() == 0 {
		return nil, NewDecodeError(req.Input, ErrCodeInvalidInput, "decoded audio is empty", nil)
	}
	if req.SampleRate > 0 && data.SampleRate != req.SampleRate {
		return nil, NewDecodeError(req.Input, ErrCodeRateMismatch,
			fmt.Sprintf("decoded rate %d Hz, requested %d Hz", data.SampleRate, req.SampleRate), nil)
	}

	d.logger.Debug("media decoded", logging.Fields{
		"input":       req.Input,
		"sample_rate": data.SampleRate,
		"channels":    data.Channels,
		"frames":      data.Frames(),
		"decode_time": time.Since(start).Seconds(),
	})

	return data, nil
}

// decodeToPipe streams WAV output over stdout
func (d *Decoder) decodeToPipe(ctx context.Context, req *DecodeRequest) ([]byte, error) {
	args := d.buildArgs(req, "-")

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, NewDecodeErrorWithDetail(req.Input, ErrCodeDecoding,
			"ffmpeg decode failed", stderr.String(), err)
	}
	return stdout.Bytes(), nil
}

// decodeToTempFile decodes through a temporary WAV file in TempDir
func (d *Decoder) decodeToTempFile(ctx context.Context, req *DecodeRequest) ([]byte, error) {
	tmpWav := filepath.Join(d.config.TempDir,
		fmt.Sprintf("horloge_%d_%s.wav", time.Now().UnixNano(), filepath.Base(req.Input)))
	defer os.Remove(tmpWav)

	args := d.buildArgs(req, tmpWav)

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, NewDecodeErrorWithDetail(req.Input, ErrCodeDecoding,
			"ffmpeg decode failed", stderr.String(), err)
	}

	wavBytes, err := os.ReadFile(tmpWav)
	if err != nil {
		return nil, NewDecodeError(req.Input, ErrCodeDecoding,
			"failed to read decoded wav file", err)
	}
	return wavBytes, nil
}

// buildArgs assembles the ffmpeg command line for a request
func (d *Decoder) buildArgs(req *DecodeRequest, output string) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-nostdin"}

	if req.StartSec > 0 {
		args = append(args, "-ss", formatSeconds(req.StartSec))
	}
	args = append(args, "-i", req.Input)
	if req.EndSec > 0 {
		args = append(args, "-t", formatSeconds(req.EndSec-req.StartSec))
	}

	args = append(args, "-vn", "-acodec", "pcm_s16le")
	if req.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(req.SampleRate))
	}
	args = append(args, "-f", "wav", output)
	return args
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
