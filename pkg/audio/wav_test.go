package audio

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWAV assembles a minimal RIFF/WAVE buffer with a 16-bit PCM fmt chunk
// followed by a data chunk holding the given interleaved samples
func buildWAV(channels, sampleRate int, samples []int16, dataSize uint32) []byte {
	pcm := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}

	var buf []byte
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(pcm)))
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate*channels*2))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels*2))
	buf = binary.LittleEndian.AppendUint16(buf, 16)

	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, dataSize)
	buf = append(buf, pcm...)
	return buf
}

func TestParseWAVMono(t *testing.T) {
	samples := []int16{0, 16384, -16384, 32767, -32768, 0, 0, 0}
	data, err := ParseWAV(buildWAV(1, 4000, samples, uint32(2*len(samples))))
	require.NoError(t, err)

	assert.Equal(t, 4000, data.SampleRate)
	assert.Equal(t, 1, data.Channels)
	assert.Equal(t, 8, data.Frames())
	assert.Equal(t, 2*time.Millisecond, data.Duration)

	require.Len(t, data.PCM, 8)
	assert.InDelta(t, 0.0, data.PCM[0], 1e-12)
	assert.InDelta(t, 0.5, data.PCM[1], 1e-12)
	assert.InDelta(t, -0.5, data.PCM[2], 1e-12)
	assert.InDelta(t, 32767.0/32768.0, data.PCM[3], 1e-12)
	assert.InDelta(t, -1.0, data.PCM[4], 1e-12)
}

func TestParseWAVStereoDeinterleave(t *testing.T) {
	// left channel holds 100, 200, 300; right holds -100, -200, -300
	samples := []int16{100, -100, 200, -200, 300, -300}
	data, err := ParseWAV(buildWAV(2, 44100, samples, uint32(2*len(samples))))
	require.NoError(t, err)

	assert.Equal(t, 2, data.Channels)
	assert.Equal(t, 3, data.Frames())

	channels := data.ChannelData()
	require.Len(t, channels, 2)
	assert.InDelta(t, 100.0/32768.0, channels[0][0], 1e-12)
	assert.InDelta(t, 300.0/32768.0, channels[0][2], 1e-12)
	assert.InDelta(t, -200.0/32768.0, channels[1][1], 1e-12)
}

func TestParseWAVStreamingPlaceholderSizes(t *testing.T) {
	samples := []int16{1, 2, 3, 4}

	// a zero data size and an overstated one must both fall back to reading
	// the chunk to the end of the buffer
	for _, declared := range []uint32{0, 0xFFFFFFFF} {
		data, err := ParseWAV(buildWAV(1, 4000, samples, declared))
		require.NoError(t, err, "declared size %d", declared)
		assert.Equal(t, 4, data.Frames())
	}
}

func TestParseWAVDropsTrailingPartialFrame(t *testing.T) {
	// stereo data with an odd sample count: the dangling half frame goes
	samples := []int16{1, 2, 3, 4, 5}
	data, err := ParseWAV(buildWAV(2, 8000, samples, uint32(2*len(samples))))
	require.NoError(t, err)

	assert.Equal(t, 2, data.Frames())
	assert.Len(t, data.PCM, 4)
}

func TestParseWAVSkipsUnknownChunks(t *testing.T) {
	wav := buildWAV(1, 4000, []int16{7, 8, 9, 10}, 8)

	// splice a LIST chunk between fmt and data
	list := append([]byte("LIST"), 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(list[4:], 4)
	list = append(list, "INFO"...)

	spliced := append([]byte{}, wav[:36]...)
	spliced = append(spliced, list...)
	spliced = append(spliced, wav[36:]...)

	data, err := ParseWAV(spliced)
	require.NoError(t, err)
	assert.Equal(t, 4, data.Frames())
}

func TestParseWAVErrors(t *testing.T) {
	valid := buildWAV(1, 4000, []int16{1, 2, 3, 4}, 8)

	float32Fmt := buildWAV(1, 4000, []int16{1, 2}, 4)
	binary.LittleEndian.PutUint16(float32Fmt[20:], 3)

	eightBit := buildWAV(1, 4000, []int16{1, 2}, 4)
	binary.LittleEndian.PutUint16(eightBit[34:], 8)

	zeroChannels := buildWAV(0, 4000, nil, 0)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty buffer", nil},
		{"too short", valid[:20]},
		{"wrong magic", append([]byte("JUNK"), valid[4:]...)},
		{"float format", float32Fmt},
		{"eight bit samples", eightBit},
		{"zero channels", zeroChannels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWAV(tt.data)
			assert.Error(t, err)
		})
	}
}
