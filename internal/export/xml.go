package export

import (
	"encoding/xml"
	"io"

	"github.com/iksnae/chat-dashboard/internal"
)

// XMLExporter exports reports as an indented XML document
type XMLExporter struct{}

// Export exports a report to XML format
func (e *XMLExporter) Export(report *internal.Report, w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Extension returns the file extension for this format
func (e *XMLExporter) Extension() string {
	return "xml"
}
