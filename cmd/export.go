package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iksnae/chat-dashboard/internal"
	"github.com/iksnae/chat-dashboard/internal/export"
	"github.com/spf13/cobra"
)

var (
	format     string
	outputPath string
	exportOpts snapshotOptions
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the dashboard of a vertical to a file",
	Long: `Export the aggregated dashboard to json, yaml, csv, xml, txt, md or jsonl.

Only the display fields are written; raw rows never leave the pipeline.
Reports built from demo data cannot be exported.

--out may be a directory (a file name is generated), a file path, or - for stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		snap, err := buildSnapshot(cmd.Context(), exportOpts)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := export.Write(exporter, snap.Report(), &buf); err != nil {
			return err
		}

		if outputPath == "-" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}

		path := outputPath
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			name := fmt.Sprintf("dashboard-%s-%s.%s", snap.Vertical, time.Now().Format("20060102-150405"), exporter.Extension())
			path = filepath.Join(path, name)
		}
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
			}
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
		}

		internal.PrintSuccess(fmt.Sprintf("Exported %s dashboard to %s", snap.Vertical, path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "csv", "Export format (json, yaml, csv, xml, txt, md, jsonl)")
	exportCmd.Flags().StringVarP(&outputPath, "out", "o", ".", "Output directory, file, or - for stdout")
	exportCmd.Flags().StringVar(&exportOpts.from, "from", "", "First day of the window (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportOpts.to, "to", "", "Last day of the window (YYYY-MM-DD)")
	exportCmd.Flags().BoolVar(&exportOpts.refresh, "refresh", false, "Ignore cached payloads and fetch again")
	exportCmd.Flags().BoolVar(&exportOpts.clearCache, "clear-cache", false, "Clear the payload cache before loading")
}
