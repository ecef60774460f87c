package export

import (
	"fmt"
	"io"

	"github.com/iksnae/chat-dashboard/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(report *internal.Report, w io.Writer) error
	Extension() string
}

// Formats lists the supported format names
var Formats = []string{"json", "yaml", "csv", "xml", "txt", "md", "jsonl"}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "csv":
		return &CSVExporter{}, nil
	case "xml":
		return &XMLExporter{}, nil
	case "txt", "text":
		return &TextExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, csv, xml, txt, md, jsonl)", format)
	}
}

// Write exports report with e. Reports built from demo data are refused.
func Write(e Exporter, report *internal.Report, w io.Writer) error {
	if report == nil {
		return &internal.ExportError{Format: e.Extension(), Err: fmt.Errorf("nothing to export")}
	}
	if report.Demo {
		return &internal.ExportError{Format: e.Extension(), Err: internal.ErrDemoPayload}
	}
	if err := e.Export(report, w); err != nil {
		return &internal.ExportError{Format: e.Extension(), Err: err}
	}
	return nil
}
