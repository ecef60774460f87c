package internal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(40)

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

// RenderReport formats a report for the terminal
func RenderReport(r *Report) string {
	heading := "Dashboard " + r.Vertical
	if r.From != "" || r.To != "" {
		heading += fmt.Sprintf(" [%s .. %s]", orDash(r.From), orDash(r.To))
	}
	if r.Demo {
		heading += " (DEMO DATA)"
	}

	s := r.Summary
	blocks := []string{
		titleStyle.Render(heading),
		panel("Summary", [][2]string{
			{"Conversations", fmt.Sprint(s.TotalConversations)},
			{"Messages", fmt.Sprint(s.TotalMessages)},
			{"Avg messages / conversation", s.AvgMessagesPerConversation},
			{"Avg response time", s.AvgResponseTime},
			{"Avg conversation duration", s.AvgConversationDuration},
			{"Escalations", fmt.Sprint(s.Escalations)},
			{"Satisfaction rate", s.SatisfactionRate},
			{"Appointments", fmt.Sprint(s.ScheduledAppointments)},
			{"  confirmed", fmt.Sprint(s.ConfirmedAppointments)},
			{"  pending", fmt.Sprint(s.PendingAppointments)},
			{"  cancelled", fmt.Sprint(s.CancelledAppointments)},
		}),
	}

	if len(r.TopQueries) > 0 {
		rows := make([][2]string, 0, len(r.TopQueries))
		for i, q := range r.TopQueries {
			rows = append(rows, [2]string{fmt.Sprintf("%2d. %s", i+1, truncate(q.Query, 34)), fmt.Sprint(q.Count)})
		}
		blocks = append(blocks, panel("Top queries", rows))
	}

	if len(r.Flows) > 0 {
		rows := make([][2]string, 0, len(r.Flows))
		for _, f := range r.Flows {
			rows = append(rows, [2]string{truncate(f.Path, 38), fmt.Sprint(f.Count)})
		}
		blocks = append(blocks, panel("Intent flows", rows))
	}

	blocks = append(blocks, hourlyPanel(r.Hourly))

	if o := r.Orders; o != nil {
		rows := [][2]string{
			{"Orders", fmt.Sprint(o.TotalOrders)},
			{"Revenue", fmt.Sprintf("%.2f", o.Revenue)},
			{"Average ticket", fmt.Sprintf("%.2f", o.AverageTicket)},
			{"Customers", fmt.Sprint(o.Customers)},
		}
		for _, p := range o.TopProducts {
			rows = append(rows, [2]string{"  " + truncate(p.Product, 36), fmt.Sprint(p.Quantity)})
		}
		blocks = append(blocks, panel("Orders", rows))
	}

	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func panel(title string, rows [][2]string) string {
	lines := []string{valueStyle.Render(title)}
	for _, row := range rows {
		lines = append(lines, labelStyle.Render(row[0])+valueStyle.Render(row[1]))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// hourlyPanel draws the 24-hour histogram as horizontal bars scaled to 30 cells
func hourlyPanel(hours []HourlyPoint) string {
	peak := 0
	for _, h := range hours {
		if h.Messages > peak {
			peak = h.Messages
		}
	}

	lines := []string{valueStyle.Render("Hourly activity")}
	for _, h := range hours {
		if h.Messages == 0 {
			continue
		}
		width := h.Messages * 30 / peak
		if width == 0 {
			width = 1
		}
		lines = append(lines, fmt.Sprintf("%s %s %d", h.Label, barStyle.Render(strings.Repeat("█", width)), h.Messages))
	}
	if peak == 0 {
		lines = append(lines, "no timestamped messages")
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
