package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/iksnae/chat-dashboard/internal"
	"github.com/spf13/cobra"
)

var (
	summaryOpts snapshotOptions
	summaryJSON bool
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Render the dashboard of a vertical in the terminal",
	Long: `Fetch (or replay with --input) the data of a vertical, aggregate it and render
the summary metrics, top queries, intent flows and hourly activity.

Use --from/--to (YYYY-MM-DD, inclusive) to narrow the window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := buildSnapshot(cmd.Context(), summaryOpts)
		if err != nil {
			return err
		}

		report := snap.Report()
		if summaryJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Fprintln(cmd.OutOrStdout(), internal.RenderReport(report))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVar(&summaryOpts.from, "from", "", "First day of the window (YYYY-MM-DD)")
	summaryCmd.Flags().StringVar(&summaryOpts.to, "to", "", "Last day of the window (YYYY-MM-DD)")
	summaryCmd.Flags().BoolVar(&summaryOpts.refresh, "refresh", false, "Ignore cached payloads and fetch again")
	summaryCmd.Flags().BoolVar(&summaryOpts.clearCache, "clear-cache", false, "Clear the payload cache before loading")
	summaryCmd.Flags().BoolVar(&summaryOpts.allowDemo, "allow-demo", false, "Accept payloads tagged as demo data")
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Print the report as JSON")
}
