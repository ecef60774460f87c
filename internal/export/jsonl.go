package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/chat-dashboard/internal"
)

// JSONLExporter exports the daily series in JSONL format (one day per line)
type JSONLExporter struct{}

// Export exports a report's daily series to JSONL format
func (e *JSONLExporter) Export(report *internal.Report, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, day := range report.Daily {
		obj := map[string]interface{}{
			"vertical":      report.Vertical,
			"day":           day.Day,
			"date":          day.Date,
			"conversations": day.Conversations,
			"messages":      day.Messages,
			"intents":       day.Intents,
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode day %s: %w", day.Day, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
