package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/iksnae/chat-dashboard/internal"
	"github.com/iksnae/chat-dashboard/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP API",
	Long: `Serve dashboard snapshots, exports and agent settings over HTTP.

Routes:
  GET /healthz
  GET /api/:vertical/snapshot?from=YYYY-MM-DD&to=YYYY-MM-DD&refresh=true
  GET /api/:vertical/export?format=csv&from=&to=
  GET /api/:vertical/settings
  GET /api/:vertical/settings/:agent
  PUT /api/:vertical/settings/:agent

When ADMIN_API_KEY is set, /api requires it as X-Admin-Key or a bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		store, err := internal.OpenSettingsStore(env.config.SettingsDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		addr := env.config.ServerAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.New(server.Options{
			Addr:        addr,
			AdminAPIKey: env.config.AdminAPIKey,
			CORSOrigins: env.config.CORSOrigins,
			SnapshotTTL: env.config.CacheTTL,
			Verticals:   env.verticals,
			Source:      env.source(),
			Settings:    store,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides SERVER_ADDR)")
}
