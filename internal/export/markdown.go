package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/chat-dashboard/internal"
)

// MarkdownExporter exports reports as Markdown tables
type MarkdownExporter struct{}

// Export exports a report to Markdown format
func (e *MarkdownExporter) Export(report *internal.Report, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# %s\n", escapeMarkdown(title(report)))

	for _, sec := range sections(report) {
		_, _ = fmt.Fprintf(w, "\n## %s\n\n", sec.Title)
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(sec.Header, " | "))

		sep := make([]string, len(sec.Header))
		for i := range sep {
			sep[i] = "---"
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(sep, " | "))

		for _, row := range sec.Rows {
			cells := make([]string, len(row))
			for i, cell := range row {
				cells[i] = escapeMarkdown(cell)
			}
			_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
		}
	}

	return nil
}

// escapeMarkdown escapes the characters that would break a table cell or add emphasis
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "|", "\\|")
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	text = strings.ReplaceAll(text, "__", "\\_\\_")
	return text
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
