package export

import (
	"encoding/csv"
	"io"

	"github.com/iksnae/chat-dashboard/internal"
)

// CSVExporter exports every report table into one CSV file. Each table starts
// with a one-cell title row and is followed by an empty line.
type CSVExporter struct{}

// Export exports a report to CSV format
func (e *CSVExporter) Export(report *internal.Report, w io.Writer) error {
	cw := csv.NewWriter(w)

	for i, sec := range sections(report) {
		if i > 0 {
			if err := cw.Write([]string{""}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{sec.Title}); err != nil {
			return err
		}
		if err := cw.Write(sec.Header); err != nil {
			return err
		}
		if err := cw.WriteAll(sec.Rows); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Extension returns the file extension for this format
func (e *CSVExporter) Extension() string {
	return "csv"
}
