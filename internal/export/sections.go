package export

import (
	"strconv"
	"strings"

	"github.com/iksnae/chat-dashboard/internal"
)

// section is a titled table shared by the tabular formats
type section struct {
	Title  string
	Header []string
	Rows   [][]string
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// sections lays out the report as tables in display order. Empty tables are skipped.
func sections(r *internal.Report) []section {
	s := r.Summary
	out := []section{{
		Title:  "Summary",
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total conversations", itoa(s.TotalConversations)},
			{"Total messages", itoa(s.TotalMessages)},
			{"Avg messages per conversation", s.AvgMessagesPerConversation},
			{"Avg response time", s.AvgResponseTime},
			{"Avg conversation duration", s.AvgConversationDuration},
			{"Escalations", itoa(s.Escalations)},
			{"Satisfaction rate", s.SatisfactionRate},
			{"Scheduled appointments", itoa(s.ScheduledAppointments)},
			{"Confirmed appointments", itoa(s.ConfirmedAppointments)},
			{"Pending appointments", itoa(s.PendingAppointments)},
			{"Cancelled appointments", itoa(s.CancelledAppointments)},
		},
	}}

	add := func(title string, header []string, rows [][]string) {
		if len(rows) > 0 {
			out = append(out, section{Title: title, Header: header, Rows: rows})
		}
	}

	var rows [][]string
	for _, st := range r.AppointmentStatus {
		rows = append(rows, []string{st.Status, itoa(st.Count)})
	}
	add("Appointments by status", []string{"Status", "Count"}, rows)

	rows = nil
	for _, d := range r.Daily {
		rows = append(rows, []string{d.Date, itoa(d.Conversations), itoa(d.Messages)})
	}
	add("Daily activity", []string{"Date", "Conversations", "Messages"}, rows)

	rows = nil
	for i, q := range r.TopQueries {
		rows = append(rows, []string{itoa(i + 1), q.Query, itoa(q.Count)})
	}
	add("Top queries", []string{"Rank", "Query", "Count"}, rows)

	rows = nil
	for _, h := range r.Hourly {
		if h.Messages > 0 {
			rows = append(rows, []string{h.Label, itoa(h.Messages)})
		}
	}
	add("Hourly activity", []string{"Hour", "Messages"}, rows)

	rows = nil
	for _, in := range r.Intents {
		rows = append(rows, []string{in.Name, itoa(in.Count), in.Color})
	}
	add("Intents", []string{"Intent", "Count", "Color"}, rows)

	rows = nil
	for _, b := range r.Sentiment {
		rows = append(rows, []string{b.Name, itoa(b.Count)})
	}
	add("Sentiment", []string{"Sentiment", "Count"}, rows)

	rows = nil
	for _, b := range r.Engagement {
		rows = append(rows, []string{b.Label, itoa(b.Conversations)})
	}
	add("Engagement", []string{"Messages", "Conversations"}, rows)

	rows = nil
	for _, f := range r.Flows {
		rows = append(rows, []string{strings.Join(f.Steps, internal.FlowSeparator), itoa(f.Count)})
	}
	add("Intent flows", []string{"Flow", "Conversations"}, rows)

	if o := r.Orders; o != nil {
		add("Orders", []string{"Metric", "Value"}, [][]string{
			{"Total orders", itoa(o.TotalOrders)},
			{"Revenue", money(o.Revenue)},
			{"Average ticket", money(o.AverageTicket)},
			{"Customers", itoa(o.Customers)},
		})

		rows = nil
		for _, p := range o.TopProducts {
			rows = append(rows, []string{p.Product, itoa(p.Quantity)})
		}
		add("Top products", []string{"Product", "Quantity"}, rows)

		rows = nil
		for _, d := range o.Daily {
			rows = append(rows, []string{d.Date, itoa(d.Orders), money(d.Revenue)})
		}
		add("Daily orders", []string{"Date", "Orders", "Revenue"}, rows)
	}

	return out
}

// title is the document heading of a report
func title(r *internal.Report) string {
	t := "Dashboard " + r.Vertical
	switch {
	case r.From != "" && r.To != "":
		t += " (" + r.From + " to " + r.To + ")"
	case r.From != "":
		t += " (from " + r.From + ")"
	case r.To != "":
		t += " (until " + r.To + ")"
	}
	return t
}
