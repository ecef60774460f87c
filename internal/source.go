package internal

import (
	"context"
	"fmt"
	"os"
)

// PayloadSource yields the decoded raw payloads of a vertical
type PayloadSource interface {
	Payloads(ctx context.Context, vertical string, refresh bool) ([]any, error)
}

// WebhookSource fetches payloads from the configured webhooks, going through
// the disk cache when one is set.
type WebhookSource struct {
	client *WebhookClient
	config *Config
	cache  *CacheManager
}

// NewWebhookSource creates a WebhookSource. cache may be nil.
func NewWebhookSource(client *WebhookClient, config *Config, cache *CacheManager) *WebhookSource {
	return &WebhookSource{client: client, config: config, cache: cache}
}

// Payloads returns one payload per configured endpoint. Cached bodies younger
// than the cache TTL are reused unless refresh is set.
func (s *WebhookSource) Payloads(ctx context.Context, vertical string, refresh bool) ([]any, error) {
	bodies, err := s.Bodies(ctx, vertical, refresh)
	if err != nil {
		return nil, err
	}
	return decodeBodies(bodies)
}

// Bodies returns the raw response bodies, fetching when the cache cannot serve them
func (s *WebhookSource) Bodies(ctx context.Context, vertical string, refresh bool) ([]CachedBody, error) {
	endpoints, err := s.config.Endpoints(vertical)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && !refresh {
		valid, err := s.cache.IsCacheValid(vertical, endpoints)
		if err != nil {
			LogWarn("Ignoring unreadable payload cache: %v", err)
		}
		if valid {
			bodies, err := s.cache.LoadPayloads(vertical)
			if err == nil {
				LogDebug("Using cached payloads for %s", vertical)
				return bodies, nil
			}
			LogWarn("Failed to load cached payloads for %s: %v", vertical, err)
		}
	}

	bodies := make([]CachedBody, 0, len(endpoints))
	for _, endpoint := range endpoints {
		LogInfo("Fetching %s data from %s", vertical, endpoint)
		body, err := s.client.FetchBody(ctx, endpoint, vertical)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, CachedBody{Endpoint: endpoint, Body: body})
	}

	// Only bodies that decode are worth caching
	if _, err := decodeBodies(bodies); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SavePayloads(vertical, bodies); err != nil {
			LogWarn("Failed to cache payloads for %s: %v", vertical, err)
		}
	}
	return bodies, nil
}

// FileSource reads payloads from JSON files, for fixture replay
type FileSource struct {
	Paths []string
}

// Payloads decodes every file in order. vertical and refresh are ignored.
func (s *FileSource) Payloads(ctx context.Context, vertical string, refresh bool) ([]any, error) {
	if len(s.Paths) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	bodies := make([]CachedBody, 0, len(s.Paths))
	for _, path := range s.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &StorageError{Path: path, Op: "read", Err: err}
		}
		bodies = append(bodies, CachedBody{Endpoint: path, Body: data})
	}
	return decodeBodies(bodies)
}

func decodeBodies(bodies []CachedBody) ([]any, error) {
	payloads := make([]any, 0, len(bodies))
	for _, body := range bodies {
		payload, err := DecodePayload(body.Body, body.Endpoint)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}
