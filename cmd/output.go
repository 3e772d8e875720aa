package cmd

import (
	"os"

	"github.com/ina-foss/horloge/pkg/output"
)

// writeReportJSON marshals a report through the JSON formatter and writes
// it to the output destination
func writeReportJSON(outputFile string, report any) error {
	formatter := &output.JSONFormatter{}
	data, err := formatter.Format(report, true)
	if err != nil {
		return err
	}
	return writeBytes(outputFile, data)
}

// writeFormatted renders data with the named format and writes it out
func writeFormatted(outputFile, format string, data any) error {
	formatted, err := output.ForFormat(format).Format(data, true)
	if err != nil {
		return err
	}
	return writeBytes(outputFile, formatted)
}

func writeBytes(outputFile string, data []byte) error {
	if outputFile == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outputFile, data, 0o644)
}
