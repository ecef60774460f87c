package internal

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Sentiment buckets
const (
	SentimentPositive = "Positivo"
	SentimentNeutral  = "Neutro"
	SentimentNegative = "Negativo"
)

// ClassifySentiment maps a free-text sentiment label to one of the three buckets.
// Absent or unrecognized labels are neutral.
func ClassifySentiment(label string) string {
	switch {
	case containsAny(label, []string{"positiv"}):
		return SentimentPositive
	case containsAny(label, []string{"negativ"}):
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// SentimentDistribution counts rows per sentiment bucket
type SentimentDistribution struct {
	Positive int
	Neutral  int
	Negative int
}

// SentimentBucket is one slice of the sentiment chart
type SentimentBucket struct {
	Name  string `json:"name" yaml:"name" xml:"name,attr"`
	Count int    `json:"count" yaml:"count" xml:"count,attr"`
}

// Total is the number of classified rows
func (d SentimentDistribution) Total() int {
	return d.Positive + d.Neutral + d.Negative
}

// Buckets returns the three buckets in fixed order
func (d SentimentDistribution) Buckets() []SentimentBucket {
	return []SentimentBucket{
		{Name: SentimentPositive, Count: d.Positive},
		{Name: SentimentNeutral, Count: d.Neutral},
		{Name: SentimentNegative, Count: d.Negative},
	}
}

// SatisfactionRate is the rounded share of positive rows, e.g. "67%"
func (d SentimentDistribution) SatisfactionRate() string {
	total := d.Total()
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(math.Round(float64(d.Positive)/float64(total)*100)))
}

// Sentiment classifies every row into exactly one bucket
func Sentiment(rows []TimedConversation) SentimentDistribution {
	var d SentimentDistribution
	for _, row := range rows {
		switch ClassifySentiment(row.Sentiment) {
		case SentimentPositive:
			d.Positive++
		case SentimentNegative:
			d.Negative++
		default:
			d.Neutral++
		}
	}
	return d
}

// EngagementBucket counts conversations by how many messages they hold
type EngagementBucket struct {
	Label         string `json:"label" yaml:"label" xml:"label,attr"`
	Conversations int    `json:"conversations" yaml:"conversations" xml:"conversations,attr"`
}

var engagementBuckets = []struct {
	label    string
	min, max int // inclusive; max 0 means open ended
}{
	{"1", 1, 1},
	{"2-3", 2, 3},
	{"4-6", 4, 6},
	{"7+", 7, 0},
}

// Engagement buckets conversations by message count
func Engagement(rows []TimedConversation) []EngagementBucket {
	perConversation := make(map[string]int)
	for _, row := range rows {
		if row.ConversationID != "" {
			perConversation[row.ConversationID]++
		}
	}

	out := make([]EngagementBucket, len(engagementBuckets))
	for i, b := range engagementBuckets {
		out[i].Label = b.label
	}
	for _, n := range perConversation {
		for i, b := range engagementBuckets {
			if n >= b.min && (b.max == 0 || n <= b.max) {
				out[i].Conversations++
				break
			}
		}
	}
	return out
}

// analyses is the joined result of the concurrent analysis sub-steps
type analyses struct {
	sentiment  SentimentDistribution
	engagement []EngagementBucket
}

// runAnalyses computes sentiment and engagement concurrently and joins them.
// Each goroutine writes only its own field.
func runAnalyses(ctx context.Context, rows []TimedConversation) (analyses, error) {
	var out analyses
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out.sentiment = Sentiment(rows)
		return nil
	})

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out.engagement = Engagement(rows)
		return nil
	})

	if err := g.Wait(); err != nil {
		return analyses{}, err
	}
	return out, nil
}
