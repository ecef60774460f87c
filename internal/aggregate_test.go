package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/iksnae/chat-dashboard/testutil"
)

func TestAggregator_TestPartition(t *testing.T) {
	snap := CreateTestSnapshot()
	s := snap.Summary

	if s.TotalConversations != 2 || s.TotalMessages != 4 {
		t.Errorf("conversations/messages = %d/%d, want 2/4", s.TotalConversations, s.TotalMessages)
	}
	if s.AvgMessagesPerConversation != "2" {
		t.Errorf("AvgMessagesPerConversation = %q, want 2", s.AvgMessagesPerConversation)
	}
	if s.AvgResponseTime != "25s" {
		t.Errorf("AvgResponseTime = %q, want 25s", s.AvgResponseTime)
	}
	if s.AvgConversationDuration != "1m 35s" {
		t.Errorf("AvgConversationDuration = %q, want 1m 35s", s.AvgConversationDuration)
	}
	if s.Escalations != 1 {
		t.Errorf("Escalations = %d, want 1", s.Escalations)
	}
	if s.SatisfactionRate != "50%" {
		t.Errorf("SatisfactionRate = %q, want 50%%", s.SatisfactionRate)
	}
	if s.ScheduledAppointments != 3 || s.ConfirmedAppointments != 1 || s.CancelledAppointments != 1 || s.PendingAppointments != 0 {
		t.Errorf("appointments = %d/%d/%d/%d, want 3/1/1/0",
			s.ScheduledAppointments, s.ConfirmedAppointments, s.CancelledAppointments, s.PendingAppointments)
	}

	if len(snap.Intents) != 3 {
		t.Errorf("Intents = %v, want 3 known intents", snap.Intents)
	}
	if len(snap.Flows) != 1 || snap.Flows[0].Path != "AGENDAR_CITA → CONSULTAR_PRECIOS" {
		t.Errorf("Flows = %v", snap.Flows)
	}
	if len(snap.Daily) != 1 || snap.Daily[0].Date != "31/01/2024" || snap.Daily[0].Conversations != 2 || snap.Daily[0].Messages != 4 {
		t.Errorf("Daily = %v", snap.Daily)
	}
	if snap.Hourly[10].Messages != 3 || snap.Hourly[11].Messages != 1 {
		t.Errorf("Hourly[10], Hourly[11] = %d, %d, want 3, 1", snap.Hourly[10].Messages, snap.Hourly[11].Messages)
	}
	if snap.Engagement[0].Conversations != 1 || snap.Engagement[1].Conversations != 1 {
		t.Errorf("Engagement = %v", snap.Engagement)
	}
	if len(snap.TopQueries) != 4 {
		t.Errorf("TopQueries = %v, want 4 entries", snap.TopQueries)
	}
	if snap.Orders != nil {
		t.Errorf("Orders = %+v, want nil without order rows", snap.Orders)
	}
	if snap.Vertical != VerticalSalud {
		t.Errorf("Vertical = %q, want salud", snap.Vertical)
	}
}

func TestAggregator_Scenarios(t *testing.T) {
	domicilio := make([]string, 0, 13)
	for i := 0; i < 10; i++ {
		domicilio = append(domicilio, fmt.Sprintf(`{"conversation_id": "X%d", "user_message": "pregunta %d"}`, i, i))
		if i%3 == 0 && i < 9 {
			domicilio = append(domicilio, fmt.Sprintf(`{"conversation_id": "D%d", "user_message": "¿Tienen servicio a domicilio?"}`, i))
		}
	}

	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, s *Snapshot)
	}{
		{
			name: "response time average",
			body: `[
				{"conversation_id": "C1", "start_time": "2024-01-31T10:00:00Z", "end_time": "2024-01-31T10:00:10Z", "user_message": "Hola", "agent_message": "Hola"},
				{"conversation_id": "C1", "start_time": "2024-01-31T10:01:00Z", "end_time": "2024-01-31T10:01:20Z", "user_message": "Cita", "agent_message": "Claro"}
			]`,
			check: func(t *testing.T, s *Snapshot) {
				if s.Summary.TotalConversations != 1 || s.Summary.TotalMessages != 2 {
					t.Errorf("conversations/messages = %d/%d, want 1/2", s.Summary.TotalConversations, s.Summary.TotalMessages)
				}
				if s.Summary.AvgMessagesPerConversation != "2" || s.Summary.AvgResponseTime != "15s" {
					t.Errorf("avg messages = %q, avg response = %q, want 2 and 15s", s.Summary.AvgMessagesPerConversation, s.Summary.AvgResponseTime)
				}
			},
		},
		{
			name: "active appointment",
			body: `[{"Estado": "ACTIVO", "Nombre": "Ana"}]`,
			check: func(t *testing.T, s *Snapshot) {
				if len(s.AppointmentStatus) != 1 || s.AppointmentStatus[0].Status != StatusActive {
					t.Errorf("AppointmentStatus = %v, want Activa", s.AppointmentStatus)
				}
				if s.Summary.ConfirmedAppointments != 1 || s.Summary.ScheduledAppointments != 1 {
					t.Errorf("confirmed/scheduled = %d/%d, want 1/1", s.Summary.ConfirmedAppointments, s.Summary.ScheduledAppointments)
				}
			},
		},
		{
			name: "positive sentiment",
			body: `{"conversations": [{"conversation_id": "C1", "user_message": "Gracias", "sentimiento": "Muy positivo"}]}`,
			check: func(t *testing.T, s *Snapshot) {
				if s.Sentiment[0].Name != SentimentPositive || s.Sentiment[0].Count != 1 {
					t.Errorf("Sentiment = %v, want one Positivo", s.Sentiment)
				}
				if s.Summary.SatisfactionRate != "100%" {
					t.Errorf("SatisfactionRate = %q, want 100%%", s.Summary.SatisfactionRate)
				}
			},
		},
		{
			name: "mixed array",
			body: testutil.MixedArrayPayload,
			check: func(t *testing.T, s *Snapshot) {
				raw := s.Raw()
				if len(raw.Appointments) != 2 || len(raw.Conversations) != 1 {
					t.Errorf("raw = %d appointments, %d conversations, want 2 and 1", len(raw.Appointments), len(raw.Conversations))
				}
				if s.Summary.ScheduledAppointments != 2 || s.Summary.TotalConversations != 1 {
					t.Errorf("summary = %+v", s.Summary)
				}
			},
		},
		{
			name: "day first start time",
			body: `[{"conversation_id": "C1", "user_message": "Hola", "start_time": "31/01/2024 10:00:00"}]`,
			check: func(t *testing.T, s *Snapshot) {
				if len(s.Daily) != 1 || s.Daily[0].Day != "2024-01-31" {
					t.Errorf("Daily = %v, want 2024-01-31", s.Daily)
				}
				if s.Hourly[10].Messages != 1 {
					t.Errorf("Hourly[10] = %d, want 1", s.Hourly[10].Messages)
				}
			},
		},
		{
			name: "repeated query ranks first",
			body: "[" + strings.Join(domicilio, ",") + "]",
			check: func(t *testing.T, s *Snapshot) {
				if len(s.TopQueries) != 11 {
					t.Fatalf("TopQueries has %d entries, want 11", len(s.TopQueries))
				}
				if s.TopQueries[0].Query != "¿Tienen servicio a domicilio?" || s.TopQueries[0].Count != 3 {
					t.Errorf("TopQueries[0] = %+v", s.TopQueries[0])
				}
			},
		},
	}

	agg := NewAggregator(saludConfig(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := agg.AggregateBytes(context.Background(), []byte(tt.body), "fixture")
			if err != nil {
				t.Fatalf("AggregateBytes() error = %v", err)
			}
			tt.check(t, snap)
		})
	}
}

func TestAggregator_Idempotent(t *testing.T) {
	agg := NewAggregator(saludConfig(t))
	ctx := context.Background()

	first, err := agg.AggregateBytes(ctx, []byte(testutil.StructuredPayload), "fixture")
	if err != nil {
		t.Fatalf("AggregateBytes() error = %v", err)
	}
	second, err := agg.AggregateBytes(ctx, []byte(testutil.StructuredPayload), "fixture")
	if err != nil {
		t.Fatalf("AggregateBytes() error = %v", err)
	}

	a, _ := json.Marshal(first.Report())
	b, _ := json.Marshal(second.Report())
	if string(a) != string(b) {
		t.Errorf("two runs differ:\n%s\n%s", a, b)
	}
	if !reflect.DeepEqual(first.Raw(), second.Raw()) {
		t.Error("retained rows differ between runs")
	}
}

func TestAggregator_Errors(t *testing.T) {
	agg := NewAggregator(saludConfig(t))
	ctx := context.Background()

	if _, err := agg.Aggregate(ctx); err == nil {
		t.Error("Aggregate() without payloads should fail")
	}

	_, err := agg.AggregateBytes(ctx, []byte(`"just text"`), "fixture")
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Errorf("AggregateBytes(string) error = %v, want *ShapeError", err)
	}

	_, err = agg.AggregateBytes(ctx, nil, "fixture")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) || transportErr.Kind != TransportEmpty {
		t.Errorf("AggregateBytes(nil) error = %v, want empty transport error", err)
	}

	good := decodeFixture(t, testutil.ConversationArrayPayload)
	_, err = agg.Aggregate(ctx, good, 17.0)
	if !errors.As(err, &shapeErr) || !strings.Contains(err.Error(), "payload 2") {
		t.Errorf("Aggregate(good, bad) error = %v, want shape error naming payload 2", err)
	}
}

func TestAggregator_Demo(t *testing.T) {
	ctx := context.Background()
	cfg, err := DefaultVerticalConfig(VerticalComida)
	if err != nil {
		t.Fatal(err)
	}
	agg := NewAggregator(cfg)

	_, err = agg.AggregateBytes(ctx, []byte(testutil.DemoPayload), "fixture")
	if !errors.Is(err, ErrDemoPayload) {
		t.Fatalf("AggregateBytes(demo) error = %v, want ErrDemoPayload", err)
	}
	if ErrorKind(err) != "demo" {
		t.Errorf("ErrorKind() = %q, want demo", ErrorKind(err))
	}

	agg.AllowDemo = true
	snap, err := agg.AggregateBytes(ctx, []byte(testutil.DemoPayload), "fixture")
	if err != nil {
		t.Fatalf("AggregateBytes(demo) with AllowDemo error = %v", err)
	}
	if !snap.Demo || !snap.Report().Demo {
		t.Error("demo snapshot is not marked as demo")
	}
}

func TestAggregator_MergesPayloads(t *testing.T) {
	cfg, err := DefaultVerticalConfig(VerticalComida)
	if err != nil {
		t.Fatal(err)
	}
	agg := NewAggregator(cfg)

	snap, err := agg.Aggregate(context.Background(),
		decodeFixture(t, testutil.ConversationArrayPayload),
		decodeFixture(t, testutil.OrdersPayload),
	)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if snap.Summary.TotalMessages != 2 {
		t.Errorf("TotalMessages = %d, want 2", snap.Summary.TotalMessages)
	}
	if snap.Orders == nil || snap.Orders.TotalOrders != 3 {
		t.Errorf("Orders = %+v, want 3 orders", snap.Orders)
	}
	if len(snap.Flows) != 1 || snap.Flows[0].Path != "CONSULTAR_MENU → HACER_PEDIDO" {
		t.Errorf("Flows = %v", snap.Flows)
	}
}

func TestAggregator_EmptyPayload(t *testing.T) {
	agg := NewAggregator(saludConfig(t))

	snap, err := agg.AggregateBytes(context.Background(), []byte(`[]`), "fixture")
	if err != nil {
		t.Fatalf("AggregateBytes([]) error = %v", err)
	}
	if snap.Summary.TotalMessages != 0 || snap.Summary.SatisfactionRate != "0%" {
		t.Errorf("Summary = %+v, want zero values", snap.Summary)
	}
	if len(snap.Hourly) != 24 {
		t.Errorf("Hourly has %d slots, want 24", len(snap.Hourly))
	}
	if len(snap.Daily) != 0 || len(snap.TopQueries) != 0 || len(snap.Flows) != 0 {
		t.Error("empty payload produced series data")
	}
}

func TestNewAggregator_CopiesConfig(t *testing.T) {
	cfg := saludConfig(t)
	agg := NewAggregator(cfg)

	cfg.EscalationKeywords[0] = "gracias"
	cfg.TopQueries = 1

	if agg.Config().EscalationKeywords[0] != "humano" || agg.Config().TopQueries != 15 {
		t.Error("aggregator shares its configuration with the caller")
	}
}

func TestAggregator_AggregatePartitionCopiesInput(t *testing.T) {
	agg := NewAggregator(saludConfig(t))
	p := CreateTestPartition()

	snap, err := agg.AggregatePartition(context.Background(), p)
	if err != nil {
		t.Fatalf("AggregatePartition() error = %v", err)
	}

	p.Conversations[0].UserMessage = "changed"
	raw := snap.Raw()
	if raw.Conversations[0].UserMessage != "Hola" {
		t.Error("snapshot shares rows with the caller's partition")
	}

	raw.Conversations[1].UserMessage = "changed too"
	if snap.Raw().Conversations[1].UserMessage == "changed too" {
		t.Error("Raw() exposes the retained rows")
	}
}

func TestAggregator_TimeOnlyDatesAreUnparsed(t *testing.T) {
	rows := []ConversationRow{
		{ConversationID: "T1", StartTime: "10:00AM", EndTime: "10:00AM", UserMessage: "Hola", AgentMessage: "Hola"},
		{ConversationID: "T2", StartTime: "Jan 31 10:00:00", EndTime: "Jan 31 10:00:40", UserMessage: "Hola", AgentMessage: "Hola"},
	}

	snap, err := NewAggregator(saludConfig(t)).AggregatePartition(context.Background(), Partition{Conversations: rows})
	if err != nil {
		t.Fatalf("AggregatePartition() error = %v", err)
	}
	if snap.Summary.TotalMessages != 2 {
		t.Errorf("TotalMessages = %d, want 2", snap.Summary.TotalMessages)
	}
	if len(snap.Daily) != 0 {
		t.Errorf("Daily = %+v, want no days", snap.Daily)
	}
	for _, h := range snap.Hourly {
		if h.Messages != 0 {
			t.Errorf("hour %d has %d messages, want 0", h.Hour, h.Messages)
		}
	}
	if snap.Summary.AvgResponseTime != "0s" {
		t.Errorf("AvgResponseTime = %q, want 0s", snap.Summary.AvgResponseTime)
	}
}
