package internal

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FlowSeparator joins the steps of an intent flow into its key
const FlowSeparator = " → "

// IntentCount is a histogram entry for one intent label
type IntentCount struct {
	Name  string `json:"name" yaml:"name" xml:"name,attr"`
	Count int    `json:"count" yaml:"count" xml:"count,attr"`
}

// DailyPoint aggregates the conversation rows of one calendar day
type DailyPoint struct {
	Date          string        `json:"date" yaml:"date" xml:"date,attr"` // display label
	Day           string        `json:"day" yaml:"day" xml:"day,attr"`    // YYYY-MM-DD
	Conversations int           `json:"conversations" yaml:"conversations" xml:"conversations,attr"`
	Messages      int           `json:"messages" yaml:"messages" xml:"messages,attr"`
	Intents       []IntentCount `json:"intents" yaml:"intents" xml:"intent"`
}

// HourlyPoint is one slot of the 24-hour activity histogram
type HourlyPoint struct {
	Hour     int    `json:"hour" yaml:"hour" xml:"hour,attr"`
	Label    string `json:"label" yaml:"label" xml:"label,attr"`
	Messages int    `json:"messages" yaml:"messages" xml:"messages,attr"`
}

// TopQuery is a user message and how often it was sent verbatim
type TopQuery struct {
	Query string `json:"query" yaml:"query" xml:",chardata"`
	Count int    `json:"count" yaml:"count" xml:"count,attr"`
}

// IntentShare is one slice of the intent distribution chart
type IntentShare struct {
	Name       string `json:"name" yaml:"name" xml:"name,attr"`
	Count      int    `json:"count" yaml:"count" xml:"count,attr"`
	ColorIndex int    `json:"colorIndex" yaml:"color_index" xml:"colorIndex,attr"`
	Color      string `json:"color" yaml:"color" xml:"color,attr"`
}

// IntentFlow is an ordered intent sequence and the number of conversations following it
type IntentFlow struct {
	Steps []string `json:"steps" yaml:"steps" xml:"step"`
	Path  string   `json:"path" yaml:"path" xml:"path,attr"`
	Count int      `json:"count" yaml:"count" xml:"count,attr"`
}

// SeriesBuilder groups conversation rows into chart-ready series
type SeriesBuilder struct {
	cfg *VerticalConfig
}

// NewSeriesBuilder creates a SeriesBuilder
func NewSeriesBuilder(cfg *VerticalConfig) *SeriesBuilder {
	return &SeriesBuilder{cfg: cfg}
}

func (b *SeriesBuilder) intentLabel(raw string) string {
	label := strings.TrimSpace(raw)
	if label == "" {
		return b.cfg.NoIntent
	}
	return label
}

// Daily groups rows by the calendar day of their start time, ascending by date.
// Rows without a parseable start are left out.
func (b *SeriesBuilder) Daily(rows []TimedConversation) []DailyPoint {
	type day struct {
		point   DailyPoint
		ids     map[string]struct{}
		intents map[string]int
		order   []string
	}
	days := make(map[string]*day)

	for _, row := range rows {
		if !row.HasStart {
			continue
		}
		local := row.Start.In(b.cfg.Location())
		key := local.Format("2006-01-02")
		d, ok := days[key]
		if !ok {
			d = &day{
				point:   DailyPoint{Date: local.Format(b.cfg.DayLabelLayout), Day: key},
				ids:     make(map[string]struct{}),
				intents: make(map[string]int),
			}
			days[key] = d
		}
		d.point.Messages++
		if row.ConversationID != "" {
			d.ids[row.ConversationID] = struct{}{}
		}
		intent := b.intentLabel(row.Intent)
		if _, seen := d.intents[intent]; !seen {
			d.order = append(d.order, intent)
		}
		d.intents[intent]++
	}

	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]DailyPoint, 0, len(keys))
	for _, key := range keys {
		d := days[key]
		d.point.Conversations = len(d.ids)
		d.point.Intents = rankCounts(d.order, d.intents)
		out = append(out, d.point)
	}
	return out
}

// Hourly counts rows per hour of day of their start time
func (b *SeriesBuilder) Hourly(rows []TimedConversation) []HourlyPoint {
	var slots [24]int
	for _, row := range rows {
		if !row.HasStart {
			continue
		}
		slots[row.Start.In(b.cfg.Location()).Hour()]++
	}

	out := make([]HourlyPoint, 24)
	for h := range slots {
		out[h] = HourlyPoint{Hour: h, Label: fmt.Sprintf("%02d:00", h), Messages: slots[h]}
	}
	return out
}

// TopQueries ranks trimmed user messages by frequency. Equal counts keep the
// order in which the messages were first seen.
func (b *SeriesBuilder) TopQueries(rows []TimedConversation) []TopQuery {
	counts := make(map[string]int)
	var order []string
	for _, row := range rows {
		q := strings.TrimSpace(row.UserMessage)
		if q == "" {
			continue
		}
		if _, seen := counts[q]; !seen {
			order = append(order, q)
		}
		counts[q]++
	}

	ranked := rankCounts(order, counts)
	if len(ranked) > b.cfg.TopQueries {
		ranked = ranked[:b.cfg.TopQueries]
	}

	out := make([]TopQuery, len(ranked))
	for i, r := range ranked {
		out[i] = TopQuery{Query: r.Name, Count: r.Count}
	}
	return out
}

// canonicalIntent returns the vocabulary spelling of raw, or "" when it is not a known intent
func (b *SeriesBuilder) canonicalIntent(raw string) string {
	label := strings.TrimSpace(raw)
	for _, known := range b.cfg.Intents {
		if strings.EqualFold(label, known) {
			return known
		}
	}
	return ""
}

// Intents counts rows per known intent and assigns palette colours by rank.
// Labels outside the vocabulary are dropped from this view.
func (b *SeriesBuilder) Intents(rows []TimedConversation) []IntentShare {
	counts := make(map[string]int)
	var order []string
	for _, row := range rows {
		intent := b.canonicalIntent(row.Intent)
		if intent == "" {
			continue
		}
		if _, seen := counts[intent]; !seen {
			order = append(order, intent)
		}
		counts[intent]++
	}

	ranked := rankCounts(order, counts)
	out := make([]IntentShare, len(ranked))
	for i, r := range ranked {
		idx := i % len(b.cfg.Palette)
		out[i] = IntentShare{Name: r.Name, Count: r.Count, ColorIndex: idx, Color: b.cfg.Palette[idx]}
	}
	return out
}

// Flows extracts the intent sequence of every conversation and returns the most
// frequent ones. Greeting and no-intent steps are dropped, sequences are cut to
// FlowSteps, and sequences shorter than two steps are not counted.
func (b *SeriesBuilder) Flows(rows []TimedConversation) []IntentFlow {
	byConversation := make(map[string][]TimedConversation)
	var ids []string
	for _, row := range rows {
		if row.ConversationID == "" {
			continue
		}
		if _, seen := byConversation[row.ConversationID]; !seen {
			ids = append(ids, row.ConversationID)
		}
		byConversation[row.ConversationID] = append(byConversation[row.ConversationID], row)
	}

	counts := make(map[string]int)
	steps := make(map[string][]string)
	var order []string

	for _, id := range ids {
		convRows := byConversation[id]
		sort.SliceStable(convRows, func(i, j int) bool {
			return startsBefore(convRows[i], convRows[j])
		})

		var seq []string
		for _, row := range convRows {
			intent := b.intentLabel(row.Intent)
			if strings.EqualFold(intent, b.cfg.NoIntent) || strings.EqualFold(intent, b.cfg.Greeting) {
				continue
			}
			seq = append(seq, intent)
			if len(seq) == b.cfg.FlowSteps {
				break
			}
		}
		if len(seq) < 2 {
			continue
		}

		key := strings.Join(seq, FlowSeparator)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			steps[key] = seq
		}
		counts[key]++
	}

	ranked := rankCounts(order, counts)
	if len(ranked) > b.cfg.TopFlows {
		ranked = ranked[:b.cfg.TopFlows]
	}

	out := make([]IntentFlow, len(ranked))
	for i, r := range ranked {
		out[i] = IntentFlow{Steps: steps[r.Name], Path: r.Name, Count: r.Count}
	}
	return out
}

// startsBefore orders rows by start time; rows without one sort last
func startsBefore(a, b TimedConversation) bool {
	switch {
	case a.HasStart && b.HasStart:
		return a.Start.Before(b.Start)
	case a.HasStart:
		return true
	default:
		return false
	}
}

// rankCounts returns the counted names ordered by count descending.
// order is first-seen order, which the stable sort keeps for ties.
func rankCounts(order []string, counts map[string]int) []IntentCount {
	out := make([]IntentCount, len(order))
	for i, name := range order {
		out[i] = IntentCount{Name: name, Count: counts[name]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// dayStart returns midnight of t's calendar day in loc
func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
