package internal

import (
	"context"
	"encoding/xml"
	"errors"
	"slices"
	"time"
)

// DateWindow is an inclusive range of calendar days
type DateWindow struct {
	From time.Time // zero means unbounded
	To   time.Time // zero means unbounded
}

// IsZero reports whether the window has no bounds
func (w DateWindow) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// Snapshot is the derived analytics of one aggregation run. It is never
// modified after it is returned; Refilter produces a new one.
type Snapshot struct {
	Vertical string
	Demo     bool
	Window   DateWindow

	Summary           Summary
	AppointmentStatus []StatusCount
	Daily             []DailyPoint
	TopQueries        []TopQuery
	Hourly            []HourlyPoint
	Intents           []IntentShare
	Sentiment         []SentimentBucket
	Engagement        []EngagementBucket
	Flows             []IntentFlow
	Orders            *OrderSummary

	raw Partition
	agg *Aggregator
}

// Raw returns a copy of the rows the snapshot was built from
func (s *Snapshot) Raw() Partition {
	return s.raw.Copy()
}

// Refilter rebuilds the snapshot from the retained rows whose date falls in
// [from, to], compared by calendar day in the vertical's time zone. A zero
// bound is open. Rows without a parseable date are left out of a bounded window.
func (s *Snapshot) Refilter(ctx context.Context, from, to time.Time) (*Snapshot, error) {
	if s.agg == nil {
		return nil, errors.New("snapshot has no retained rows to refilter")
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, errors.New("invalid date window: end is before start")
	}

	window := DateWindow{From: from, To: to}
	rows := s.raw.Copy()
	if !window.IsZero() {
		rows = s.agg.filter(rows, window)
	}

	out, err := s.agg.build(ctx, rows)
	if err != nil {
		return nil, err
	}
	out.Window = window
	// keep the full set so another window can be applied later
	out.raw = s.raw.Copy()
	return out, nil
}

// filter keeps the rows whose date lies in window
func (a *Aggregator) filter(p Partition, window DateWindow) Partition {
	loc := a.cfg.Location()
	var lower, upper time.Time
	if !window.From.IsZero() {
		lower = dayStart(window.From, loc)
	}
	if !window.To.IsZero() {
		upper = dayStart(window.To, loc).AddDate(0, 0, 1)
	}

	inside := func(raw string) bool {
		t, err := a.dates.Parse(raw)
		if err != nil {
			return false
		}
		if !lower.IsZero() && t.Before(lower) {
			return false
		}
		if !upper.IsZero() && !t.Before(upper) {
			return false
		}
		return true
	}

	out := Partition{Demo: p.Demo}
	for _, row := range p.Conversations {
		if inside(row.StartTime) {
			out.Conversations = append(out.Conversations, row)
		}
	}
	for _, row := range p.Appointments {
		if inside(row.StartDate) {
			out.Appointments = append(out.Appointments, row)
		}
	}
	for _, row := range p.Orders {
		if inside(row.OrderDate) {
			out.Orders = append(out.Orders, row)
		}
	}

	LogDebug("Window kept %d/%d conversations, %d/%d appointments, %d/%d orders",
		len(out.Conversations), len(p.Conversations),
		len(out.Appointments), len(p.Appointments),
		len(out.Orders), len(p.Orders))

	return out
}

// Report is the display-only view of a snapshot handed to exporters and the API.
// It carries no raw rows.
type Report struct {
	XMLName  xml.Name `json:"-" yaml:"-" xml:"dashboard"`
	Vertical string   `json:"vertical" yaml:"vertical" xml:"vertical,attr"`
	From     string   `json:"from,omitempty" yaml:"from,omitempty" xml:"from,attr,omitempty"`
	To       string   `json:"to,omitempty" yaml:"to,omitempty" xml:"to,attr,omitempty"`
	Demo     bool     `json:"demo,omitempty" yaml:"demo,omitempty" xml:"demo,attr,omitempty"`

	Summary           Summary            `json:"summary" yaml:"summary" xml:"summary"`
	AppointmentStatus []StatusCount      `json:"appointmentStatus" yaml:"appointment_status" xml:"appointmentStatus>status"`
	Daily             []DailyPoint       `json:"daily" yaml:"daily" xml:"daily>day"`
	TopQueries        []TopQuery         `json:"topQueries" yaml:"top_queries" xml:"topQueries>query"`
	Hourly            []HourlyPoint      `json:"hourly" yaml:"hourly" xml:"hourly>hour"`
	Intents           []IntentShare      `json:"intents" yaml:"intents" xml:"intents>intent"`
	Sentiment         []SentimentBucket  `json:"sentiment" yaml:"sentiment" xml:"sentiment>bucket"`
	Engagement        []EngagementBucket `json:"engagement" yaml:"engagement" xml:"engagement>bucket"`
	Flows             []IntentFlow       `json:"flows" yaml:"flows" xml:"flows>flow"`
	Orders            *OrderSummary      `json:"orders,omitempty" yaml:"orders,omitempty" xml:"orders,omitempty"`
}

// Report returns the display fields of the snapshot. The report owns its
// slices; changing them leaves the snapshot untouched.
func (s *Snapshot) Report() *Report {
	r := &Report{
		Vertical:          s.Vertical,
		Demo:              s.Demo,
		Summary:           s.Summary,
		AppointmentStatus: slices.Clone(s.AppointmentStatus),
		Daily:             cloneDaily(s.Daily),
		TopQueries:        slices.Clone(s.TopQueries),
		Hourly:            slices.Clone(s.Hourly),
		Intents:           slices.Clone(s.Intents),
		Sentiment:         slices.Clone(s.Sentiment),
		Engagement:        slices.Clone(s.Engagement),
		Flows:             cloneFlows(s.Flows),
		Orders:            cloneOrders(s.Orders),
	}
	if !s.Window.From.IsZero() {
		r.From = s.Window.From.Format("2006-01-02")
	}
	if !s.Window.To.IsZero() {
		r.To = s.Window.To.Format("2006-01-02")
	}
	return r
}

func cloneDaily(days []DailyPoint) []DailyPoint {
	out := slices.Clone(days)
	for i := range out {
		out[i].Intents = slices.Clone(out[i].Intents)
	}
	return out
}

func cloneFlows(flows []IntentFlow) []IntentFlow {
	out := slices.Clone(flows)
	for i := range out {
		out[i].Steps = slices.Clone(out[i].Steps)
	}
	return out
}

func cloneOrders(o *OrderSummary) *OrderSummary {
	if o == nil {
		return nil
	}
	c := *o
	c.TopProducts = slices.Clone(o.TopProducts)
	c.Daily = slices.Clone(o.Daily)
	return &c
}
