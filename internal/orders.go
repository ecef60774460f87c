package internal

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ProductCount is how many units of a product were ordered
type ProductCount struct {
	Product  string `json:"product" yaml:"product" xml:",chardata"`
	Quantity int    `json:"quantity" yaml:"quantity" xml:"quantity,attr"`
}

// OrderDay aggregates the orders of one calendar day
type OrderDay struct {
	Date    string  `json:"date" yaml:"date" xml:"date,attr"`
	Day     string  `json:"day" yaml:"day" xml:"day,attr"`
	Orders  int     `json:"orders" yaml:"orders" xml:"orders,attr"`
	Revenue float64 `json:"revenue" yaml:"revenue" xml:"revenue,attr"`
}

// OrderSummary is the order view of the comida vertical
type OrderSummary struct {
	TotalOrders   int            `json:"totalOrders" yaml:"total_orders" xml:"totalOrders"`
	Revenue       float64        `json:"revenue" yaml:"revenue" xml:"revenue"`
	AverageTicket float64        `json:"averageTicket" yaml:"average_ticket" xml:"averageTicket"`
	Customers     int            `json:"customers" yaml:"customers" xml:"customers"`
	TopProducts   []ProductCount `json:"topProducts" yaml:"top_products" xml:"topProducts>product"`
	Daily         []OrderDay     `json:"daily" yaml:"daily" xml:"daily>day"`
}

var (
	productSplitter = regexp.MustCompile(`[,;\n]+`)
	quantityPrefix  = regexp.MustCompile(`^(\d+)\s*(?:[xX×]\s*|\s+)(.+)$`)
)

// ParseProducts splits a delimited product description into items with quantities.
// "2x Pizza, Soda" yields Pizza:2 and Soda:1.
func ParseProducts(desc string) []ProductCount {
	var items []ProductCount
	for _, part := range productSplitter.Split(desc, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		qty := 1
		if m := quantityPrefix.FindStringSubmatch(part); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				qty = n
				part = strings.TrimSpace(m[2])
			}
		}
		items = append(items, ProductCount{Product: part, Quantity: qty})
	}
	return items
}

// OrderSummary aggregates order rows. Rows with an unparseable order date
// still count toward totals but not toward the daily series.
func (m *MetricsAggregator) OrderSummary(rows []OrderRow, dates *DateNormalizer) *OrderSummary {
	if len(rows) == 0 {
		return nil
	}

	summary := &OrderSummary{TotalOrders: len(rows)}
	customers := make(map[string]struct{})

	quantities := make(map[string]int)
	display := make(map[string]string)
	var productOrder []string

	days := make(map[string]*OrderDay)

	for i, row := range rows {
		summary.Revenue += row.TotalPrice

		if id := customerKey(row); id != "" {
			customers[id] = struct{}{}
		}

		for _, item := range ParseProducts(row.Products) {
			key := fold(item.Product)
			if _, seen := quantities[key]; !seen {
				productOrder = append(productOrder, key)
				display[key] = item.Product
			}
			quantities[key] += item.Quantity
		}

		t, ok := dates.parseField(row.OrderDate, fieldOrderDate, i, "")
		if !ok {
			continue
		}
		local := t.In(m.cfg.Location())
		key := local.Format("2006-01-02")
		d, exists := days[key]
		if !exists {
			d = &OrderDay{Date: local.Format(m.cfg.DayLabelLayout), Day: key}
			days[key] = d
		}
		d.Orders++
		d.Revenue += row.TotalPrice
	}

	summary.Revenue = roundCents(summary.Revenue)
	summary.AverageTicket = roundCents(summary.Revenue / float64(summary.TotalOrders))
	summary.Customers = len(customers)

	ranked := rankCounts(productOrder, quantities)
	if len(ranked) > m.cfg.TopProducts {
		ranked = ranked[:m.cfg.TopProducts]
	}
	summary.TopProducts = make([]ProductCount, len(ranked))
	for i, r := range ranked {
		summary.TopProducts[i] = ProductCount{Product: display[r.Name], Quantity: r.Count}
	}

	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	summary.Daily = make([]OrderDay, 0, len(keys))
	for _, key := range keys {
		p := *days[key]
		p.Revenue = roundCents(p.Revenue)
		summary.Daily = append(summary.Daily, p)
	}

	return summary
}

func customerKey(row OrderRow) string {
	if phone := strings.TrimSpace(row.CustomerPhone); phone != "" {
		return phone
	}
	return fold(row.CustomerName)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
