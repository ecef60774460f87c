package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/iksnae/chat-dashboard/internal"
)

// environment is the configuration every command starts from
type environment struct {
	config    *internal.Config
	verticals map[string]*internal.VerticalConfig
}

func loadEnvironment() (*environment, error) {
	config, err := internal.LoadConfig(envFile)
	if err != nil {
		return nil, err
	}
	verticals, err := internal.LoadVerticalConfigs(config.VerticalFile, config.TimeZone)
	if err != nil {
		return nil, err
	}
	return &environment{config: config, verticals: verticals}, nil
}

// vertical returns the configuration of the selected vertical
func (e *environment) vertical(name string) (*internal.VerticalConfig, error) {
	cfg, ok := e.verticals[name]
	if !ok {
		return nil, fmt.Errorf("unknown vertical: %s (supported: %s, %s)", name, internal.VerticalSalud, internal.VerticalComida)
	}
	return cfg, nil
}

func (e *environment) cache() *internal.CacheManager {
	return internal.NewCacheManager(e.config.CacheDir, e.config.CacheTTL)
}

func (e *environment) webhookSource() *internal.WebhookSource {
	client := internal.NewWebhookClient(e.config.WebhookTimeout, e.config.WebhookRetries)
	return internal.NewWebhookSource(client, e.config, e.cache())
}

// source returns the file source when --input is set, else the webhooks
func (e *environment) source() internal.PayloadSource {
	if len(inputFiles) > 0 {
		return &internal.FileSource{Paths: inputFiles}
	}
	return e.webhookSource()
}

// snapshotOptions are the flags shared by summary and export
type snapshotOptions struct {
	from       string
	to         string
	refresh    bool
	clearCache bool
	allowDemo  bool
}

// buildSnapshot loads payloads for the selected vertical and aggregates them,
// narrowing to the requested window.
func buildSnapshot(ctx context.Context, opts snapshotOptions) (*internal.Snapshot, error) {
	env, err := loadEnvironment()
	if err != nil {
		return nil, err
	}
	cfg, err := env.vertical(vertical)
	if err != nil {
		return nil, err
	}

	from, err := parseDay(opts.from, cfg)
	if err != nil {
		return nil, err
	}
	to, err := parseDay(opts.to, cfg)
	if err != nil {
		return nil, err
	}

	if opts.clearCache {
		if err := env.cache().ClearCache(); err != nil {
			internal.LogWarn("Failed to clear cache: %v", err)
		} else {
			internal.LogInfo("Cache cleared")
		}
	}

	var payloads []any
	var snap *internal.Snapshot
	aggregator := internal.NewAggregator(cfg)
	aggregator.AllowDemo = opts.allowDemo

	steps := []internal.ProgressStep{
		{
			Message: fmt.Sprintf("Loading %s data", cfg.Name),
			Fn: func() error {
				var loadErr error
				payloads, loadErr = env.source().Payloads(ctx, cfg.Name, opts.refresh)
				return loadErr
			},
		},
		{
			Message: "Aggregating dashboard",
			Fn: func() error {
				var aggErr error
				snap, aggErr = aggregator.Aggregate(ctx, payloads...)
				if aggErr != nil {
					return aggErr
				}
				if !from.IsZero() || !to.IsZero() {
					snap, aggErr = snap.Refilter(ctx, from, to)
				}
				return aggErr
			},
		},
	}
	if err := internal.ShowProgressWithSteps(ctx, steps); err != nil {
		return nil, err
	}

	return snap, nil
}

// parseDay reads an optional YYYY-MM-DD flag value in the vertical's time zone
func parseDay(value string, cfg *internal.VerticalConfig) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, cfg.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}
