package internal

import (
	"testing"

	"github.com/iksnae/chat-dashboard/testutil"
)

func TestParseProducts(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want []ProductCount
	}{
		{"quantity prefix", "2x Pizza hawaiana, Gaseosa", []ProductCount{{"Pizza hawaiana", 2}, {"Gaseosa", 1}}},
		{"spaced multiplier", "2 x Coca-Cola", []ProductCount{{"Coca-Cola", 2}}},
		{"bare number", "3 Empanadas", []ProductCount{{"Empanadas", 3}}},
		{"times sign", "2×Limonada", []ProductCount{{"Limonada", 2}}},
		{"digits in name", "Pizza 4 quesos; 7up", []ProductCount{{"Pizza 4 quesos", 1}, {"7up", 1}}},
		{"mixed separators", "2X Pizza\nSoda;;", []ProductCount{{"Pizza", 2}, {"Soda", 1}}},
		{"empty", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseProducts(tt.desc)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseProducts(%q) = %v, want %v", tt.desc, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ParseProducts(%q)[%d] = %+v, want %+v", tt.desc, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMetricsAggregator_OrderSummary(t *testing.T) {
	c, err := Classify(decodeFixture(t, testutil.OrdersPayload))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	cfg, err := DefaultVerticalConfig(VerticalComida)
	if err != nil {
		t.Fatal(err)
	}
	m := NewMetricsAggregator(cfg)
	dates := NewDateNormalizer(cfg.Location(), cfg.DateLayouts)

	summary := m.OrderSummary(c.Partition.Orders, dates)
	if summary == nil {
		t.Fatal("OrderSummary() = nil")
	}

	if summary.TotalOrders != 3 {
		t.Errorf("TotalOrders = %d, want 3", summary.TotalOrders)
	}
	if summary.Revenue != 112000 {
		t.Errorf("Revenue = %v, want 112000", summary.Revenue)
	}
	if summary.AverageTicket != 37333.33 {
		t.Errorf("AverageTicket = %v, want 37333.33", summary.AverageTicket)
	}
	if summary.Customers != 2 {
		t.Errorf("Customers = %d, want 2", summary.Customers)
	}

	wantProducts := []ProductCount{{"Pizza hawaiana", 3}, {"Gaseosa", 2}, {"Limonada", 1}}
	if len(summary.TopProducts) != len(wantProducts) {
		t.Fatalf("TopProducts = %v, want %v", summary.TopProducts, wantProducts)
	}
	for i := range wantProducts {
		if summary.TopProducts[i] != wantProducts[i] {
			t.Errorf("TopProducts[%d] = %+v, want %+v", i, summary.TopProducts[i], wantProducts[i])
		}
	}

	wantDays := []OrderDay{
		{Date: "01/03/2024", Day: "2024-03-01", Orders: 2, Revenue: 107000},
		{Date: "02/03/2024", Day: "2024-03-02", Orders: 1, Revenue: 5000},
	}
	if len(summary.Daily) != len(wantDays) {
		t.Fatalf("Daily = %v, want %v", summary.Daily, wantDays)
	}
	for i := range wantDays {
		if summary.Daily[i] != wantDays[i] {
			t.Errorf("Daily[%d] = %+v, want %+v", i, summary.Daily[i], wantDays[i])
		}
	}
}

func TestMetricsAggregator_OrderSummaryEdgeCases(t *testing.T) {
	cfg, err := DefaultVerticalConfig(VerticalComida)
	if err != nil {
		t.Fatal(err)
	}
	m := NewMetricsAggregator(cfg)
	dates := NewDateNormalizer(cfg.Location(), cfg.DateLayouts)

	if got := m.OrderSummary(nil, dates); got != nil {
		t.Errorf("OrderSummary(nil) = %+v, want nil", got)
	}

	undated := CreateTestOrder("300", "Pizza", 10000, 0)
	undated.OrderDate = "pronto"
	nameOnly := CreateTestOrder("", "2x pizza", 5000.25, 0)
	nameOnly.CustomerName = "  Ana "

	summary := m.OrderSummary([]OrderRow{undated, nameOnly}, dates)
	if summary.TotalOrders != 2 {
		t.Errorf("TotalOrders = %d, want 2", summary.TotalOrders)
	}
	if summary.Revenue != 15000.25 {
		t.Errorf("Revenue = %v, want 15000.25", summary.Revenue)
	}
	if len(summary.Daily) != 1 || summary.Daily[0].Orders != 1 {
		t.Errorf("Daily = %v, want only the dated order", summary.Daily)
	}
	if summary.Customers != 2 {
		t.Errorf("Customers = %d, want 2", summary.Customers)
	}
	// product names are grouped case-insensitively under the first spelling
	if len(summary.TopProducts) != 1 || summary.TopProducts[0] != (ProductCount{"Pizza", 3}) {
		t.Errorf("TopProducts = %v, want Pizza x3", summary.TopProducts)
	}
}
