// Package output formats result structures for the CLI.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Formatter renders a result structure into bytes for output
type Formatter interface {
	Format(data any, pretty bool) ([]byte, error)
}

// Tabular is implemented by results that can render as rows. The CSV and
// table formatters only accept tabular data.
type Tabular interface {
	Headers() []string
	Rows() [][]string
}

// JSONFormatter renders results as JSON
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any, pretty bool) ([]byte, error) {
	if pretty {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	}
	out, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// YAMLFormatter renders results as YAML
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any, pretty bool) ([]byte, error) {
	return yaml.Marshal(data)
}

// CSVFormatter renders tabular results as CSV
type CSVFormatter struct{}

func (f *CSVFormatter) Format(data any, pretty bool) ([]byte, error) {
	tab, ok := data.(Tabular)
	if !ok {
		return nil, fmt.Errorf("csv output requires tabular data, got %T", data)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(tab.Headers()); err != nil {
		return nil, err
	}
	if err := w.WriteAll(tab.Rows()); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// TableFormatter renders tabular results as an aligned text table
type TableFormatter struct{}

func (f *TableFormatter) Format(data any, pretty bool) ([]byte, error) {
	tab, ok := data.(Tabular)
	if !ok {
		return nil, fmt.Errorf("table output requires tabular data, got %T", data)
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for i, h := range tab.Headers() {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, h)
	}
	fmt.Fprintln(w)
	for _, row := range tab.Rows() {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ForFormat returns the formatter matching a format name, defaulting to JSON
func ForFormat(format string) Formatter {
	switch format {
	case "yaml":
		return &YAMLFormatter{}
	case "csv":
		return &CSVFormatter{}
	case "table":
		return &TableFormatter{}
	default:
		return &JSONFormatter{}
	}
}
