package internal

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Normalized appointment statuses
const (
	StatusActive    = "Activa"
	StatusCancelled = "Cancelada"
	StatusPending   = "Pendiente"
	StatusNone      = "Sin estado"
)

// Summary is the display-ready metrics record of a snapshot
type Summary struct {
	TotalConversations         int    `json:"totalConversations" yaml:"total_conversations" xml:"totalConversations"`
	TotalMessages              int    `json:"totalMessages" yaml:"total_messages" xml:"totalMessages"`
	AvgMessagesPerConversation string `json:"avgMessagesPerConversation" yaml:"avg_messages_per_conversation" xml:"avgMessagesPerConversation"`
	AvgResponseTime            string `json:"avgResponseTime" yaml:"avg_response_time" xml:"avgResponseTime"`
	AvgConversationDuration    string `json:"avgConversationDuration" yaml:"avg_conversation_duration" xml:"avgConversationDuration"`
	Escalations                int    `json:"escalations" yaml:"escalations" xml:"escalations"`
	SatisfactionRate           string `json:"satisfactionRate" yaml:"satisfaction_rate" xml:"satisfactionRate"`
	ScheduledAppointments      int    `json:"scheduledAppointments" yaml:"scheduled_appointments" xml:"scheduledAppointments"`
	ConfirmedAppointments      int    `json:"confirmedAppointments" yaml:"confirmed_appointments" xml:"confirmedAppointments"`
	PendingAppointments        int    `json:"pendingAppointments" yaml:"pending_appointments" xml:"pendingAppointments"`
	CancelledAppointments      int    `json:"cancelledAppointments" yaml:"cancelled_appointments" xml:"cancelledAppointments"`
}

// StatusCount is the number of appointments with one normalized status
type StatusCount struct {
	Status string `json:"status" yaml:"status" xml:"status,attr"`
	Count  int    `json:"count" yaml:"count" xml:"count,attr"`
}

// ConversationStats are the conversation-derived figures of the summary
type ConversationStats struct {
	DistinctConversations int
	Messages              int
	ResponseTimes         []float64 // seconds, only values inside (0, max)
	Durations             []float64 // seconds per conversation, only values inside (0, max)
	Escalations           int
}

// AppointmentStats are the appointment-derived figures of the summary
type AppointmentStats struct {
	Total     int
	Confirmed int
	Pending   int
	Cancelled int
	ByStatus  []StatusCount
}

// MetricsAggregator computes summary statistics from conversation and appointment rows
type MetricsAggregator struct {
	cfg *VerticalConfig
}

// NewMetricsAggregator creates a MetricsAggregator
func NewMetricsAggregator(cfg *VerticalConfig) *MetricsAggregator {
	return &MetricsAggregator{cfg: cfg}
}

// ConversationStats counts conversations and messages and collects timing samples.
// Rows with missing or unparseable timestamps still count as messages.
func (m *MetricsAggregator) ConversationStats(rows []TimedConversation) ConversationStats {
	stats := ConversationStats{Messages: len(rows)}

	type window struct {
		start, end       time.Time
		hasStart, hasEnd bool
	}
	windows := make(map[string]*window)
	var order []string

	for i, row := range rows {
		if containsAny(row.UserMessage, m.cfg.EscalationKeywords) {
			stats.Escalations++
		}

		if row.HasStart && row.HasEnd && strings.TrimSpace(row.UserMessage) != "" && strings.TrimSpace(row.AgentMessage) != "" {
			secs := row.End.Sub(row.Start).Seconds()
			if secs > 0 && secs < m.cfg.MaxResponseSeconds {
				stats.ResponseTimes = append(stats.ResponseTimes, secs)
			} else {
				LogDebug("Discarding response time %.1fs for %s", secs, rowRef(i, row.ConversationID))
			}
		}

		if row.ConversationID == "" {
			continue
		}
		w, ok := windows[row.ConversationID]
		if !ok {
			w = &window{}
			windows[row.ConversationID] = w
			order = append(order, row.ConversationID)
		}
		if row.HasStart && (!w.hasStart || row.Start.Before(w.start)) {
			w.start, w.hasStart = row.Start, true
		}
		if row.HasEnd && (!w.hasEnd || row.End.After(w.end)) {
			w.end, w.hasEnd = row.End, true
		}
	}

	stats.DistinctConversations = len(windows)

	for _, id := range order {
		w := windows[id]
		if !w.hasStart || !w.hasEnd {
			continue
		}
		secs := w.end.Sub(w.start).Seconds()
		if secs > 0 && secs < m.cfg.MaxDurationSeconds {
			stats.Durations = append(stats.Durations, secs)
		} else {
			LogDebug("Discarding duration %.1fs for conversation %s", secs, id)
		}
	}

	return stats
}

// NormalizeAppointmentStatus maps a raw status code onto the fixed vocabulary.
// Unknown non-empty codes pass through unchanged.
func NormalizeAppointmentStatus(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return StatusNone
	case strings.EqualFold(s, "ACTIVO"):
		return StatusActive
	case strings.EqualFold(s, "CANCELADO"):
		return StatusCancelled
	case strings.EqualFold(s, "PENDIENTE"):
		return StatusPending
	default:
		return raw
	}
}

// AppointmentStats normalizes statuses and counts them
func (m *MetricsAggregator) AppointmentStats(rows []AppointmentRow) AppointmentStats {
	stats := AppointmentStats{Total: len(rows)}

	counts := make(map[string]int)
	var order []string
	for _, row := range rows {
		status := NormalizeAppointmentStatus(row.Status)
		if _, ok := counts[status]; !ok {
			order = append(order, status)
		}
		counts[status]++
	}

	stats.Confirmed = counts[StatusActive]
	stats.Pending = counts[StatusPending]
	stats.Cancelled = counts[StatusCancelled]

	stats.ByStatus = make([]StatusCount, 0, len(order))
	for _, status := range order {
		stats.ByStatus = append(stats.ByStatus, StatusCount{Status: status, Count: counts[status]})
	}
	sort.SliceStable(stats.ByStatus, func(i, j int) bool {
		return stats.ByStatus[i].Count > stats.ByStatus[j].Count
	})

	return stats
}

// BuildSummary assembles the display-ready summary
func BuildSummary(conv ConversationStats, appts AppointmentStats, sentiment SentimentDistribution) Summary {
	avgMessages := "0"
	if conv.DistinctConversations > 0 {
		avgMessages = fmt.Sprintf("%d", int(math.Round(float64(conv.Messages)/float64(conv.DistinctConversations))))
	}

	return Summary{
		TotalConversations:         conv.DistinctConversations,
		TotalMessages:              conv.Messages,
		AvgMessagesPerConversation: avgMessages,
		AvgResponseTime:            FormatSeconds(mean(conv.ResponseTimes)),
		AvgConversationDuration:    FormatSeconds(mean(conv.Durations)),
		Escalations:                conv.Escalations,
		SatisfactionRate:           sentiment.SatisfactionRate(),
		ScheduledAppointments:      appts.Total,
		ConfirmedAppointments:      appts.Confirmed,
		PendingAppointments:        appts.Pending,
		CancelledAppointments:      appts.Cancelled,
	}
}

// FormatSeconds renders a duration as "Nm Ss" from one minute up, else "Ss"
func FormatSeconds(seconds float64) string {
	total := int(math.Round(seconds))
	if total >= 60 {
		return fmt.Sprintf("%dm %ds", total/60, total%60)
	}
	return fmt.Sprintf("%ds", total)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func rowRef(i int, id string) string {
	if id == "" {
		return fmt.Sprintf("row %d", i)
	}
	return fmt.Sprintf("row %d (conversation %s)", i, id)
}
