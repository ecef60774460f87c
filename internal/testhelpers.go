package internal

import (
	"context"
	"fmt"
	"time"
)

// testDay is the calendar day the test helpers place their rows on
var testDay = time.Date(2024, time.January, 31, 10, 0, 0, 0, time.UTC)

// CreateTestConversation creates a conversation row whose reply took responseSeconds.
// offsetMinutes shifts the start from 10:00 UTC on 31 January 2024.
func CreateTestConversation(id string, offsetMinutes int, responseSeconds float64, user, intent, sentiment string) ConversationRow {
	start := testDay.Add(time.Duration(offsetMinutes) * time.Minute)
	end := start.Add(time.Duration(responseSeconds * float64(time.Second)))
	return ConversationRow{
		ConversationID: id,
		StartTime:      start.Format(time.RFC3339Nano),
		EndTime:        end.Format(time.RFC3339Nano),
		UserMessage:    user,
		AgentMessage:   "Con gusto le ayudo",
		Sentiment:      sentiment,
		Intent:         intent,
	}
}

// CreateTestAppointment creates an appointment row with the given raw status
func CreateTestAppointment(name, status string) AppointmentRow {
	return AppointmentRow{
		Status:    status,
		Name:      name,
		Type:      "Consulta general",
		Phone:     "3001234567",
		StartDate: testDay.Format(time.RFC3339),
		EndDate:   testDay.Add(30 * time.Minute).Format(time.RFC3339),
		Calendar:  "principal",
	}
}

// CreateTestOrder creates an order row placed offsetDays after 31 January 2024
func CreateTestOrder(phone, products string, total float64, offsetDays int) OrderRow {
	return OrderRow{
		CustomerPhone:   phone,
		CustomerName:    "Cliente " + phone,
		CustomerAddress: "Calle 10 # 20-30",
		Products:        products,
		TotalPrice:      total,
		OrderDate:       testDay.AddDate(0, 0, offsetDays).Format(time.RFC3339),
	}
}

// CreateTestPartition creates a small salud partition: two conversations,
// one of them escalated, and three appointments.
func CreateTestPartition() Partition {
	return Partition{
		Conversations: []ConversationRow{
			CreateTestConversation("C1", 0, 10, "Hola", "SALUDO", "Positivo"),
			CreateTestConversation("C1", 1, 20, "Quiero agendar una cita", "AGENDAR_CITA", "positivo"),
			CreateTestConversation("C1", 2, 30, "¿Cuánto cuesta?", "CONSULTAR_PRECIOS", ""),
			CreateTestConversation("C2", 60, 40, "Quiero hablar con un humano", "HABLAR_CON_HUMANO", "Negativo"),
		},
		Appointments: []AppointmentRow{
			CreateTestAppointment("Ana", "ACTIVO"),
			CreateTestAppointment("Luis", "CANCELADO"),
			CreateTestAppointment("Eva", ""),
		},
	}
}

// CreateTestSnapshot aggregates CreateTestPartition with the salud defaults
func CreateTestSnapshot() *Snapshot {
	cfg, err := DefaultVerticalConfig(VerticalSalud)
	if err != nil {
		panic(err)
	}
	snap, err := NewAggregator(cfg).AggregatePartition(context.Background(), CreateTestPartition())
	if err != nil {
		panic(fmt.Sprintf("aggregating test partition: %v", err))
	}
	return snap
}

// CreateTestReport returns the report of CreateTestSnapshot
func CreateTestReport() *Report {
	return CreateTestSnapshot().Report()
}
