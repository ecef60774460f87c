package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iksnae/chat-dashboard/internal"
)

// TextExporter exports reports as aligned plain text
type TextExporter struct{}

// Export exports a report to plain text
func (e *TextExporter) Export(report *internal.Report, w io.Writer) error {
	heading := title(report)
	_, _ = fmt.Fprintf(w, "%s\n%s\n", heading, strings.Repeat("=", len([]rune(heading))))

	for _, sec := range sections(report) {
		_, _ = fmt.Fprintf(w, "\n%s\n%s\n", sec.Title, strings.Repeat("-", len(sec.Title)))

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, strings.Join(sec.Header, "\t"))
		for _, row := range sec.Rows {
			_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *TextExporter) Extension() string {
	return "txt"
}
