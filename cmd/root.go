package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/chat-dashboard/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	logLevel   string
	vertical   string
	inputFiles []string
	envFile    string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chat-dashboard",
	Short: "Aggregate chatbot conversation, appointment and order data into dashboards",
	Long: `A CLI and HTTP API that turns the raw webhook data of the salud and comida
chatbots into dashboard metrics and chart-ready series.

Data is fetched from the configured webhooks (or replayed from JSON files with
--input), classified into conversations, appointments and orders, and aggregated
into a snapshot: summary metrics, daily and hourly activity, top queries,
intent distribution and flows, sentiment and order figures.

Quick Start:
  chat-dashboard summary --vertical salud              # Render the dashboard in the terminal
  chat-dashboard export --format csv --from 2024-01-01 # Export a date window
  chat-dashboard serve                                 # Start the HTTP API

Configuration is read from the environment and an optional .env file
(SALUD_WEBHOOK_URL, COMIDA_WEBHOOK_URL, DASHBOARD_TIMEZONE, ...).`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			internal.SetVerbose(true)
			return nil
		}
		level, err := internal.ParseLogLevel(logLevel)
		if err != nil {
			return err
		}
		internal.SetLogLevel(level)
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (error, warn, info, debug)")
	rootCmd.PersistentFlags().StringVar(&vertical, "vertical", internal.VerticalSalud, "Business vertical (salud, comida)")
	rootCmd.PersistentFlags().StringSliceVarP(&inputFiles, "input", "i", nil, "Read payloads from JSON files instead of the webhooks")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to the .env file")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
