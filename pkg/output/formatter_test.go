package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTable struct{}

func (fakeTable) Headers() []string { return []string{"input", "verdict"} }
func (fakeTable) Rows() [][]string {
	return [][]string{
		{"a.mp3", "SPEAKING_CLOCK_TRACK 0"},
		{"b.mp3", "SPEAKING_CLOCK_NONE"},
	}
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{}

	payload := map[string]int{"channel": 1}

	out, err := f.Format(payload, false)
	require.NoError(t, err)
	assert.Equal(t, "{\"channel\":1}\n", string(out))

	out, err = f.Format(payload, true)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "\n"))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestYAMLFormatter(t *testing.T) {
	f := &YAMLFormatter{}

	out, err := f.Format(map[string]string{"verdict": "none"}, false)
	require.NoError(t, err)
	assert.Equal(t, "verdict: none\n", string(out))
}

func TestCSVFormatter(t *testing.T) {
	f := &CSVFormatter{}

	out, err := f.Format(fakeTable{}, false)
	require.NoError(t, err)
	assert.Equal(t, "input,verdict\na.mp3,SPEAKING_CLOCK_TRACK 0\nb.mp3,SPEAKING_CLOCK_NONE\n", string(out))
}

func TestCSVFormatterRejectsNonTabular(t *testing.T) {
	f := &CSVFormatter{}

	_, err := f.Format(map[string]int{"channel": 1}, false)
	assert.Error(t, err)
}

func TestTableFormatter(t *testing.T) {
	f := &TableFormatter{}

	out, err := f.Format(fakeTable{}, false)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "input"))
	assert.Contains(t, lines[1], "a.mp3")
}

func TestTableFormatterRejectsNonTabular(t *testing.T) {
	f := &TableFormatter{}

	_, err := f.Format("not a table", false)
	assert.Error(t, err)
}

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, ForFormat("json"))
	assert.IsType(t, &JSONFormatter{}, ForFormat(""))
	assert.IsType(t, &YAMLFormatter{}, ForFormat("yaml"))
	assert.IsType(t, &CSVFormatter{}, ForFormat("csv"))
	assert.IsType(t, &TableFormatter{}, ForFormat("table"))
}
