package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/chat-dashboard/internal"
	"github.com/spf13/cobra"
)

var (
	fetchOutDir  string
	fetchRefresh bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the raw webhook payloads of a vertical",
	Long: `Fetch the raw payloads of a vertical from its webhooks and save them as JSON
files. The files can be replayed later with --input. Fetched payloads also
refresh the payload cache.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		cfg, err := env.vertical(vertical)
		if err != nil {
			return err
		}

		var bodies []internal.CachedBody
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Fetching %s payloads", cfg.Name), func() error {
			var fetchErr error
			bodies, fetchErr = env.webhookSource().Bodies(cmd.Context(), cfg.Name, fetchRefresh)
			return fetchErr
		})
		if err != nil {
			return err
		}

		if err := os.MkdirAll(fetchOutDir, 0755); err != nil {
			return &internal.StorageError{Path: fetchOutDir, Op: "write", Err: err}
		}
		for i, body := range bodies {
			path := filepath.Join(fetchOutDir, fmt.Sprintf("%s_%d.json", cfg.Name, i))
			if err := os.WriteFile(path, body.Body, 0644); err != nil {
				return &internal.StorageError{Path: path, Op: "write", Err: err}
			}
			internal.PrintSuccess(fmt.Sprintf("Saved %s (%d bytes from %s)", path, len(body.Body), body.Endpoint))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVarP(&fetchOutDir, "out", "o", ".", "Directory to write the payload files to")
	fetchCmd.Flags().BoolVar(&fetchRefresh, "refresh", true, "Ignore cached payloads and fetch again")
}
