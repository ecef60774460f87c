package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chat-dashboard/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckDetails bool
	healthcheckPing    bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, webhooks and local storage",
	Long: `Check the health of chat-dashboard by verifying:
  • Environment configuration
  • Vertical configuration (built-in defaults plus VERTICAL_CONFIG)
  • Webhook endpoints per vertical (fetched and classified with --ping)
  • Agent settings database
  • Payload cache`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0

		fmt.Fprintln(out, sectionStyle.Render("🔍 Chat Dashboard Health Check"))
		fmt.Fprintln(out)

		// Step 1: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		env, err := loadEnvironment()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Configuration is invalid:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckDetails {
			fmt.Fprintf(out, "   Time zone: %s\n", env.config.TimeZone)
			fmt.Fprintf(out, "   Webhook timeout: %s, retries: %d\n", env.config.WebhookTimeout, env.config.WebhookRetries)
			if env.config.VerticalFile != "" {
				fmt.Fprintf(out, "   Vertical overrides: %s\n", env.config.VerticalFile)
			}
		}
		fmt.Fprintln(out)

		// Step 2: Webhooks
		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking webhooks..."))
		configured := 0
		for _, name := range sortedKeys(env.verticals) {
			endpoints, err := env.config.Endpoints(name)
			if err != nil {
				fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  %s: no webhook configured", name)))
				continue
			}
			configured++
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %s: %d endpoint(s)", name, len(endpoints))))
			if healthcheckDetails {
				for _, e := range endpoints {
					fmt.Fprintf(out, "   %s\n", e)
				}
			}
			if healthcheckPing && !pingVertical(cmd, out, env, name) {
				failed++
			}
		}
		if configured == 0 && len(inputFiles) == 0 {
			fmt.Fprintln(out, errorStyle.Render("❌ No vertical has a webhook configured"))
			failed++
		}
		fmt.Fprintln(out)

		// Step 3: Settings database
		fmt.Fprintln(out, infoStyle.Render("Step 3: Opening settings database..."))
		dbPath := env.config.SettingsDBPath
		if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Settings database not created yet (first write creates it)"))
		} else if counts, err := internal.InspectSettings(dbPath); err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Settings database unavailable:"), err)
			failed++
		} else {
			total := 0
			for _, n := range counts {
				total += n
			}
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Settings database ready (%d agent(s))", total)))
			if healthcheckDetails {
				fmt.Fprintf(out, "   Database: %s\n", dbPath)
				for _, name := range sortedKeys(counts) {
					fmt.Fprintf(out, "   %s: %d agent(s)\n", name, counts[name])
				}
			}
		}
		fmt.Fprintln(out)

		// Step 4: Payload cache
		fmt.Fprintln(out, infoStyle.Render("Step 4: Inspecting payload cache..."))
		cache := env.cache()
		index, err := cache.LoadIndex()
		switch {
		case err == nil:
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %d cached payload(s)", len(index.Payloads))))
			if healthcheckDetails {
				for _, entry := range index.Payloads {
					fmt.Fprintf(out, "   %s %s (%d bytes, fetched %s)\n", entry.Vertical, entry.Endpoint, entry.Bytes, entry.FetchedAt.Format("2006-01-02 15:04"))
				}
			}
		case errors.Is(err, fs.ErrNotExist):
			fmt.Fprintln(out, warningStyle.Render("⚠️  Cache is empty"))
		default:
			fmt.Fprintln(out, warningStyle.Render("⚠️  Cache index unreadable:"), err)
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		if failed > 0 {
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("❌ Health check failed (%d problem(s))", failed)))
			return fmt.Errorf("health check failed: %d problem(s)", failed)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

// pingVertical fetches and classifies the payloads of a vertical
func pingVertical(cmd *cobra.Command, out io.Writer, env *environment, name string) bool {
	payloads, err := env.webhookSource().Payloads(cmd.Context(), name, true)
	if err == nil {
		_, err = internal.NewAggregator(env.verticals[name]).Partition(payloads...)
	}
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("❌ %s [%s]:", name, internal.ErrorKind(err))), err)
		return false
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ %s webhook answered with a recognized payload", name)))
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckDetails, "details", "d", false, "Show detailed diagnostic information")
	healthcheckCmd.Flags().BoolVar(&healthcheckPing, "ping", false, "Fetch each configured webhook and classify its payload")
}
