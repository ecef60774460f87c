package internal

import (
	"strings"

	"github.com/spf13/cast"
)

// Webhook field names. Some deployments emit the id, start time and customer
// name with a trailing space in the property name; both spellings are read.
const (
	fieldConversationID = "conversation_id"
	fieldStartTime      = "start_time"
	fieldEndTime        = "end_time"
	fieldUserMessage    = "user_message"
	fieldAgentMessage   = "agent_message"
	fieldSentiment      = "sentimiento"
	fieldIntent         = "main_intent"

	fieldStatus    = "Estado"
	fieldName      = "Nombre"
	fieldType      = "Tipo"
	fieldPhone     = "Telefono"
	fieldEmail     = "Correo"
	fieldStartDate = "Fecha de inicio"
	fieldEndDate   = "Fecha de fin"
	fieldCalendar  = "Calendario"

	fieldCustomerPhone   = "cliente_telefono"
	fieldCustomerName    = "cliente_nombre"
	fieldCustomerAddress = "cliente_direccion"
	fieldProducts        = "productos"
	fieldTotalPrice      = "total_precio"
	fieldOrderDate       = "fecha_pedido"
)

// ConversationRow is one logged message exchange
type ConversationRow struct {
	ConversationID string `json:"conversation_id" yaml:"conversation_id"`
	StartTime      string `json:"start_time" yaml:"start_time"`
	EndTime        string `json:"end_time" yaml:"end_time"`
	UserMessage    string `json:"user_message" yaml:"user_message"`
	AgentMessage   string `json:"agent_message" yaml:"agent_message"`
	Sentiment      string `json:"sentimiento,omitempty" yaml:"sentimiento,omitempty"`
	Intent         string `json:"main_intent,omitempty" yaml:"main_intent,omitempty"`
}

// AppointmentRow is one scheduled appointment
type AppointmentRow struct {
	Status    string `json:"Estado" yaml:"Estado"`
	Name      string `json:"Nombre" yaml:"Nombre"`
	Type      string `json:"Tipo,omitempty" yaml:"Tipo,omitempty"`
	Phone     string `json:"Telefono,omitempty" yaml:"Telefono,omitempty"`
	Email     string `json:"Correo,omitempty" yaml:"Correo,omitempty"`
	StartDate string `json:"Fecha de inicio,omitempty" yaml:"Fecha de inicio,omitempty"`
	EndDate   string `json:"Fecha de fin,omitempty" yaml:"Fecha de fin,omitempty"`
	Calendar  string `json:"Calendario,omitempty" yaml:"Calendario,omitempty"`
}

// OrderRow is one placed order (comida vertical)
type OrderRow struct {
	CustomerPhone   string  `json:"cliente_telefono" yaml:"cliente_telefono"`
	CustomerName    string  `json:"cliente_nombre" yaml:"cliente_nombre"`
	CustomerAddress string  `json:"cliente_direccion" yaml:"cliente_direccion"`
	Products        string  `json:"productos" yaml:"productos"`
	TotalPrice      float64 `json:"total_precio" yaml:"total_precio"`
	OrderDate       string  `json:"fecha_pedido" yaml:"fecha_pedido"`
}

// lookup returns the value stored under key or under key with a trailing space
func lookup(rec map[string]any, key string) (any, bool) {
	if v, ok := rec[key]; ok && v != nil {
		return v, true
	}
	if v, ok := rec[key+" "]; ok && v != nil {
		return v, true
	}
	return nil, false
}

func has(rec map[string]any, key string) bool {
	_, ok := lookup(rec, key)
	return ok
}

// str reads a field as a string; numbers become their decimal form
func str(rec map[string]any, key string) string {
	v, ok := lookup(rec, key)
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// decodeConversation builds a ConversationRow from a webhook record
func decodeConversation(rec map[string]any) ConversationRow {
	return ConversationRow{
		ConversationID: strings.TrimSpace(str(rec, fieldConversationID)),
		StartTime:      str(rec, fieldStartTime),
		EndTime:        str(rec, fieldEndTime),
		UserMessage:    str(rec, fieldUserMessage),
		AgentMessage:   str(rec, fieldAgentMessage),
		Sentiment:      str(rec, fieldSentiment),
		Intent:         str(rec, fieldIntent),
	}
}

// decodeAppointment builds an AppointmentRow from a webhook record
func decodeAppointment(rec map[string]any) AppointmentRow {
	return AppointmentRow{
		Status:    str(rec, fieldStatus),
		Name:      strings.TrimSpace(str(rec, fieldName)),
		Type:      str(rec, fieldType),
		Phone:     str(rec, fieldPhone),
		Email:     str(rec, fieldEmail),
		StartDate: str(rec, fieldStartDate),
		EndDate:   str(rec, fieldEndDate),
		Calendar:  str(rec, fieldCalendar),
	}
}

// decodeOrder builds an OrderRow from a webhook record. total_precio may be a
// number or a string such as "$ 25.000,50"; unreadable prices decode as 0.
func decodeOrder(rec map[string]any) OrderRow {
	return OrderRow{
		CustomerPhone:   str(rec, fieldCustomerPhone),
		CustomerName:    strings.TrimSpace(str(rec, fieldCustomerName)),
		CustomerAddress: str(rec, fieldCustomerAddress),
		Products:        str(rec, fieldProducts),
		TotalPrice:      parsePrice(rec),
		OrderDate:       str(rec, fieldOrderDate),
	}
}

func parsePrice(rec map[string]any) float64 {
	v, ok := lookup(rec, fieldTotalPrice)
	if !ok {
		return 0
	}
	if s, isString := v.(string); isString {
		v = cleanPrice(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		LogDebug("Ignoring unreadable order total %v: %v", v, err)
		return 0
	}
	return f
}

// cleanPrice strips currency symbols and thousands separators. A comma followed
// by exactly two digits at the end is the decimal separator; dots grouping
// three digits ("38.000") are thousands separators.
func cleanPrice(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if i := strings.LastIndex(s, ","); i >= 0 && len(s)-i == 3 {
		return strings.ReplaceAll(s[:i], ".", "") + "." + s[i+1:]
	}
	s = strings.ReplaceAll(s, ",", "")
	if groups := strings.Split(s, "."); len(groups) > 1 && len(groups[len(groups)-1]) == 3 {
		return strings.Join(groups, "")
	}
	return s
}
