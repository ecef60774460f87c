package internal

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

func windowPartition() Partition {
	conv := func(id, start string) ConversationRow {
		return ConversationRow{ConversationID: id, StartTime: start, UserMessage: "mensaje " + id, AgentMessage: "Con gusto le ayudo"}
	}
	return Partition{
		Conversations: []ConversationRow{
			conv("C1", "2024-01-30T10:00:00Z"),
			conv("C2", "2024-01-31T10:00:00Z"),
			conv("C2", "2024-01-31T23:59:59Z"),
			conv("C3", "2024-02-01T00:00:00Z"),
			conv("C4", ""),
		},
		Appointments: []AppointmentRow{
			{Status: "ACTIVO", Name: "Ana", StartDate: "30/01/2024 09:00:00"},
			{Status: "CANCELADO", Name: "Luis", StartDate: "31/01/2024 09:00:00"},
			{Status: "PENDIENTE", Name: "Eva"},
		},
		Orders: []OrderRow{
			{CustomerPhone: "300", Products: "Pizza", TotalPrice: 1000, OrderDate: "2024-01-31T12:00:00Z"},
			{CustomerPhone: "301", Products: "Soda", TotalPrice: 500, OrderDate: "2024-02-01T12:00:00Z"},
		},
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSnapshot_Refilter(t *testing.T) {
	ctx := context.Background()
	snap, err := NewAggregator(saludConfig(t)).AggregatePartition(ctx, windowPartition())
	if err != nil {
		t.Fatalf("AggregatePartition() error = %v", err)
	}
	before, _ := json.Marshal(snap.Report())

	tests := []struct {
		name                           string
		from, to                       time.Time
		messages, conversations, appts int
		orders                         int
	}{
		{"single day", day(2024, 1, 31), day(2024, 1, 31), 2, 1, 1, 1},
		{"open end", day(2024, 1, 31), time.Time{}, 3, 2, 1, 2},
		{"open start", time.Time{}, day(2024, 1, 30), 1, 1, 1, 0},
		{"whole range", day(2024, 1, 1), day(2024, 12, 31), 4, 3, 2, 2},
		{"unbounded keeps undated rows", time.Time{}, time.Time{}, 5, 4, 3, 2},
		{"no data", day(2023, 1, 1), day(2023, 1, 2), 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := snap.Refilter(ctx, tt.from, tt.to)
			if err != nil {
				t.Fatalf("Refilter() error = %v", err)
			}
			if out.Summary.TotalMessages != tt.messages || out.Summary.TotalConversations != tt.conversations {
				t.Errorf("messages/conversations = %d/%d, want %d/%d",
					out.Summary.TotalMessages, out.Summary.TotalConversations, tt.messages, tt.conversations)
			}
			if out.Summary.ScheduledAppointments != tt.appts {
				t.Errorf("appointments = %d, want %d", out.Summary.ScheduledAppointments, tt.appts)
			}
			gotOrders := 0
			if out.Orders != nil {
				gotOrders = out.Orders.TotalOrders
			}
			if gotOrders != tt.orders {
				t.Errorf("orders = %d, want %d", gotOrders, tt.orders)
			}
			if !out.Window.From.Equal(tt.from) || !out.Window.To.Equal(tt.to) {
				t.Errorf("Window = %+v, want %v..%v", out.Window, tt.from, tt.to)
			}
			if len(out.Raw().Conversations) != 5 {
				t.Errorf("refiltered snapshot retains %d conversations, want all 5", len(out.Raw().Conversations))
			}
		})
	}

	after, _ := json.Marshal(snap.Report())
	if string(before) != string(after) {
		t.Error("Refilter() modified the original snapshot")
	}
}

func TestSnapshot_RefilterTwice(t *testing.T) {
	ctx := context.Background()
	snap, err := NewAggregator(saludConfig(t)).AggregatePartition(ctx, windowPartition())
	if err != nil {
		t.Fatal(err)
	}

	narrow, err := snap.Refilter(ctx, day(2024, 1, 31), day(2024, 1, 31))
	if err != nil {
		t.Fatal(err)
	}
	wide, err := narrow.Refilter(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(wide.Summary, snap.Summary) {
		t.Errorf("widening again gave %+v, want %+v", wide.Summary, snap.Summary)
	}
}

func TestSnapshot_RefilterTimeZone(t *testing.T) {
	cfg := saludConfig(t)
	cot := time.FixedZone("COT", -5*60*60)
	cfg.location = cot

	p := Partition{Conversations: []ConversationRow{
		{ConversationID: "late", StartTime: "2024-02-01T03:00:00Z", UserMessage: "Hola"},
		{ConversationID: "next", StartTime: "2024-02-01T06:00:00Z", UserMessage: "Hola"},
	}}
	snap, err := NewAggregator(cfg).AggregatePartition(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	out, err := snap.Refilter(context.Background(), time.Date(2024, 1, 31, 0, 0, 0, 0, cot), time.Date(2024, 1, 31, 0, 0, 0, 0, cot))
	if err != nil {
		t.Fatal(err)
	}
	if out.Summary.TotalMessages != 1 {
		t.Errorf("TotalMessages = %d, want 1 (03:00 UTC is still 31/01 in COT)", out.Summary.TotalMessages)
	}
}

func TestSnapshot_RefilterErrors(t *testing.T) {
	snap := CreateTestSnapshot()
	if _, err := snap.Refilter(context.Background(), day(2024, 2, 1), day(2024, 1, 1)); err == nil {
		t.Error("Refilter() with end before start should fail")
	}

	var detached Snapshot
	if _, err := detached.Refilter(context.Background(), time.Time{}, time.Time{}); err == nil {
		t.Error("Refilter() on a snapshot without rows should fail")
	}
}

func TestSnapshot_Report(t *testing.T) {
	ctx := context.Background()
	snap := CreateTestSnapshot()

	r := snap.Report()
	if r.From != "" || r.To != "" {
		t.Errorf("unbounded report From/To = %q/%q, want empty", r.From, r.To)
	}

	windowed, err := snap.Refilter(ctx, day(2024, 1, 31), day(2024, 2, 2))
	if err != nil {
		t.Fatal(err)
	}
	r = windowed.Report()
	if r.From != "2024-01-31" || r.To != "2024-02-02" {
		t.Errorf("From/To = %q/%q, want 2024-01-31/2024-02-02", r.From, r.To)
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	for _, leaked := range []string{"Con gusto le ayudo", "agent_message", "Telefono", "3001234567"} {
		if strings.Contains(string(data), leaked) {
			t.Errorf("report JSON leaks raw row data %q", leaked)
		}
	}
}

func TestDateWindow_IsZero(t *testing.T) {
	if !(DateWindow{}).IsZero() {
		t.Error("empty window should be zero")
	}
	if (DateWindow{From: day(2024, 1, 1)}).IsZero() {
		t.Error("window with a start should not be zero")
	}
}

func TestSnapshot_ReportOwnsSlices(t *testing.T) {
	snap := CreateTestSnapshot()
	before, err := json.Marshal(snap.Report())
	if err != nil {
		t.Fatal(err)
	}

	r := snap.Report()
	if len(r.TopQueries) == 0 || len(r.Daily) == 0 || len(r.Daily[0].Intents) == 0 || len(r.Flows) == 0 {
		t.Fatalf("test snapshot lacks series: %+v", r)
	}
	r.TopQueries[0].Count = 99
	r.Daily[0].Messages = 99
	r.Daily[0].Intents[0] = IntentCount{Name: "MUTATED", Count: 99}
	r.Flows[0].Steps[0] = "MUTATED"
	r.Hourly[10].Messages = 99
	r.AppointmentStatus = append(r.AppointmentStatus[:0], StatusCount{Status: "MUTATED"})

	after, err := json.Marshal(snap.Report())
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Errorf("changing a report changed the snapshot:\nbefore %s\nafter  %s", before, after)
	}
}
