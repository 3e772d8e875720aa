package audio

import (
	"encoding/binary"
	"fmt"
	"time"
)

// ParseWAV parses a RIFF/WAVE buffer holding 16-bit little-endian PCM and
// converts it to float64 samples in [-1, 1].
//
// The parser must work on WAV data produced by ffmpeg writing to a pipe,
// where the RIFF and data chunk sizes are unknown at header time and left
// as placeholders. Declared sizes are therefore only trusted when they fit
// the buffer; otherwise the data chunk is read to the end of the buffer.
func ParseWAV(data []byte) (*AudioData, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("wav buffer too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE buffer")
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		audioFormat   int
		pcmBytes      []byte
		haveFmt       bool
	)

	// Walk the chunk list. ffmpeg emits at least fmt and data; other chunks
	// (LIST, fact) are skipped.
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		switch chunkID {
		case "fmt ":
			if body+16 > len(data) {
				return nil, fmt.Errorf("truncated fmt chunk")
			}
			audioFormat = int(binary.LittleEndian.Uint16(data[body : body+2]))
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			end := body + chunkSize
			if chunkSize <= 0 || end > len(data) {
				// streaming header: size is a placeholder, take the rest
				end = len(data)
			}
			pcmBytes = data[body:end]
			// data is the last chunk ffmpeg writes
			offset = len(data)
			continue
		}

		if chunkSize < 0 {
			return nil, fmt.Errorf("invalid chunk size for %q", chunkID)
		}
		// chunks are word aligned
		offset = body + chunkSize + (chunkSize & 1)
	}

	if !haveFmt {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if audioFormat != 1 {
		return nil, fmt.Errorf("unsupported wav format %d, want PCM", audioFormat)
	}
	if bitsPerSample != 16 {
		return nil, fmt.Errorf("unsupported bits per sample: %d", bitsPerSample)
	}
	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid wav header: channels=%d rate=%d", channels, sampleRate)
	}
	if pcmBytes == nil {
		return nil, fmt.Errorf("missing data chunk")
	}

	// drop a trailing partial frame, if any
	frameBytes := 2 * channels
	pcmBytes = pcmBytes[:len(pcmBytes)/frameBytes*frameBytes]

	sampleCount := len(pcmBytes) / 2
	samples := make([]float64, sampleCount)
	for i := 0; i < sampleCount; i++ {
		s := int16(binary.LittleEndian.Uint16(pcmBytes[i*2 : i*2+2]))
		samples[i] = float64(s) / 32768.0
	}

	frames := sampleCount / channels
	return &AudioData{
		PCM:        samples,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second)),
	}, nil
}
