// Package server exposes dashboard snapshots, exports and agent settings over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/iksnae/chat-dashboard/internal"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// SettingsRepository is the agent settings storage the API needs
type SettingsRepository interface {
	List(ctx context.Context, vertical string) ([]internal.AgentSettings, error)
	Get(ctx context.Context, vertical, agentID string) (*internal.AgentSettings, error)
	Put(ctx context.Context, vertical, agentID string, fields map[string]string, merge bool) (*internal.AgentSettings, error)
}

// Options configures a Server
type Options struct {
	Addr        string
	AdminAPIKey string
	CORSOrigins []string
	// SnapshotTTL is how long an aggregated snapshot is reused before the
	// source is asked again.
	SnapshotTTL time.Duration

	Verticals map[string]*internal.VerticalConfig
	Source    internal.PayloadSource
	Settings  SettingsRepository
}

// Server is the dashboard HTTP API
type Server struct {
	opts      Options
	router    *gin.Engine
	snapshots *cache.Cache
	loads     singleflight.Group
}

// New creates a Server and registers its routes
func New(opts Options) *Server {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = 10 * time.Minute
	}

	s := &Server{
		opts:      opts,
		snapshots: cache.New(opts.SnapshotTTL, 2*opts.SnapshotTTL),
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", s.health)

	api := router.Group("/api", AdminAuth(opts.AdminAPIKey))
	{
		api.GET("/:vertical/snapshot", s.snapshot)
		api.GET("/:vertical/export", s.export)
		api.GET("/:vertical/settings", s.listSettings)
		api.GET("/:vertical/settings/:agent", s.getSettings)
		api.PUT("/:vertical/settings/:agent", s.putSettings)
	}

	s.router = router
	return s
}

// Handler returns the HTTP handler of the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		internal.LogInfo("Dashboard API listening on %s", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	internal.LogInfo("Shutting down dashboard API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// loadSnapshot returns the cached snapshot of a vertical, aggregating a fresh
// one when missing or when refresh is set. Concurrent loads share one fetch.
func (s *Server) loadSnapshot(ctx context.Context, cfg *internal.VerticalConfig, refresh bool) (*internal.Snapshot, error) {
	if !refresh {
		if cached, ok := s.snapshots.Get(cfg.Name); ok {
			return cached.(*internal.Snapshot), nil
		}
	}

	// the load is shared by every caller in the flight, so one client
	// going away must not cancel it for the others
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loads.Do(cfg.Name, func() (interface{}, error) {
		payloads, err := s.opts.Source.Payloads(loadCtx, cfg.Name, refresh)
		if err != nil {
			return nil, err
		}
		snap, err := internal.NewAggregator(cfg).Aggregate(loadCtx, payloads...)
		if err != nil {
			return nil, err
		}
		s.snapshots.Set(cfg.Name, snap, cache.DefaultExpiration)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*internal.Snapshot), nil
}
