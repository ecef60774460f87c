package internal

import (
	"context"
	"errors"
	"fmt"
)

// Aggregator turns classified webhook payloads into dashboard snapshots
// for one vertical. It holds no state between runs.
type Aggregator struct {
	cfg     *VerticalConfig
	dates   *DateNormalizer
	metrics *MetricsAggregator
	series  *SeriesBuilder

	// AllowDemo lets payloads tagged as demo data through; the resulting
	// snapshot is marked Demo.
	AllowDemo bool
}

// NewAggregator creates an Aggregator over a private copy of cfg
func NewAggregator(cfg *VerticalConfig) *Aggregator {
	cfg = cfg.Clone()
	return &Aggregator{
		cfg:     cfg,
		dates:   NewDateNormalizer(cfg.Location(), cfg.DateLayouts),
		metrics: NewMetricsAggregator(cfg),
		series:  NewSeriesBuilder(cfg),
	}
}

// Config returns the vertical configuration the aggregator runs with
func (a *Aggregator) Config() *VerticalConfig {
	return a.cfg
}

// Dates returns the date normalizer built from the vertical configuration
func (a *Aggregator) Dates() *DateNormalizer {
	return a.dates
}

// Partition classifies each payload and merges the results in order.
// Any unrecognized payload fails the whole call.
func (a *Aggregator) Partition(payloads ...any) (Partition, error) {
	if len(payloads) == 0 {
		return Partition{}, errors.New("no payload to aggregate")
	}

	var merged Partition
	for i, payload := range payloads {
		c, err := Classify(payload)
		if err != nil {
			if len(payloads) > 1 {
				return Partition{}, fmt.Errorf("payload %d: %w", i+1, err)
			}
			return Partition{}, err
		}
		LogDebug("Payload %d classified as %s (%d conversations, %d appointments, %d orders)",
			i+1, c.Shape, len(c.Partition.Conversations), len(c.Partition.Appointments), len(c.Partition.Orders))
		merged = merged.Merge(c.Partition)
	}
	return merged, nil
}

// Aggregate classifies payloads and builds the snapshot from their merged rows
func (a *Aggregator) Aggregate(ctx context.Context, payloads ...any) (*Snapshot, error) {
	p, err := a.Partition(payloads...)
	if err != nil {
		return nil, err
	}
	return a.AggregatePartition(ctx, p)
}

// AggregateBytes decodes a JSON body and aggregates it
func (a *Aggregator) AggregateBytes(ctx context.Context, body []byte, source string) (*Snapshot, error) {
	payload, err := DecodePayload(body, source)
	if err != nil {
		return nil, err
	}
	return a.Aggregate(ctx, payload)
}

// AggregatePartition builds a snapshot from already classified rows.
// p is copied; the snapshot never shares slices with the caller.
func (a *Aggregator) AggregatePartition(ctx context.Context, p Partition) (*Snapshot, error) {
	if p.Demo && !a.AllowDemo {
		return nil, fmt.Errorf("%s: %w", a.cfg.Name, ErrDemoPayload)
	}

	raw := p.Copy()
	snap, err := a.build(ctx, raw)
	if err != nil {
		return nil, err
	}
	snap.raw = raw
	return snap, nil
}

// build runs the metrics and series steps over rows. It does not retain rows.
func (a *Aggregator) build(ctx context.Context, rows Partition) (*Snapshot, error) {
	timed := a.dates.TimeConversations(rows.Conversations)

	conv := a.metrics.ConversationStats(timed)
	appts := a.metrics.AppointmentStats(rows.Appointments)

	joined, err := runAnalyses(ctx, timed)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	snap := &Snapshot{
		Vertical:          a.cfg.Name,
		Demo:              rows.Demo,
		Summary:           BuildSummary(conv, appts, joined.sentiment),
		AppointmentStatus: appts.ByStatus,
		Daily:             a.series.Daily(timed),
		TopQueries:        a.series.TopQueries(timed),
		Hourly:            a.series.Hourly(timed),
		Intents:           a.series.Intents(timed),
		Sentiment:         joined.sentiment.Buckets(),
		Engagement:        joined.engagement,
		Flows:             a.series.Flows(timed),
		Orders:            a.metrics.OrderSummary(rows.Orders, a.dates),
		agg:               a,
	}

	LogDebug("Built %s snapshot: %d conversations, %d messages, %d appointments, %d orders",
		a.cfg.Name, conv.DistinctConversations, conv.Messages, appts.Total, len(rows.Orders))

	return snap, nil
}
