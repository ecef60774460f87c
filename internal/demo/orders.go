// Package demo produces synthetic order data for demonstrations. Nothing in
// the aggregation path imports it; its payloads are tagged so the pipeline
// refuses them unless demo data is explicitly allowed.
package demo

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	names    = []string{"Ana Gómez", "Luis Pérez", "María Rodríguez", "Carlos López", "Sofía Martínez", "Jorge Ramírez", "Valentina Torres", "Andrés Castro"}
	streets  = []string{"Calle 10", "Carrera 45", "Avenida 68", "Calle 127", "Transversal 5", "Diagonal 22"}
	products = []struct {
		name  string
		price float64
	}{
		{"Pizza hawaiana", 32000},
		{"Hamburguesa clásica", 24000},
		{"Perro caliente", 15000},
		{"Papas fritas", 8000},
		{"Gaseosa", 5000},
		{"Limonada", 6000},
		{"Ensalada César", 21000},
		{"Alitas BBQ", 27000},
	}
)

// Order is one synthetic order in webhook field names
type Order struct {
	ID              string  `json:"id"`
	CustomerPhone   string  `json:"cliente_telefono"`
	CustomerName    string  `json:"cliente_nombre"`
	CustomerAddress string  `json:"cliente_direccion"`
	Products        string  `json:"productos"`
	TotalPrice      float64 `json:"total_precio"`
	OrderDate       string  `json:"fecha_pedido"`
}

// Payload is the structured payload the generator writes
type Payload struct {
	Orders []Order `json:"orders"`
	Demo   bool    `json:"demo"`
}

// Generator creates random orders spread over the days before End
type Generator struct {
	rng  *rand.Rand
	End  time.Time
	Days int
}

// NewGenerator creates a generator. The same seed yields the same orders,
// apart from their ids.
func NewGenerator(seed int64, end time.Time, days int) *Generator {
	if days <= 0 {
		days = 7
	}
	return &Generator{rng: rand.New(rand.NewSource(seed)), End: end, Days: days}
}

// Orders returns n random orders
func (g *Generator) Orders(n int) []Order {
	orders := make([]Order, 0, n)
	for i := 0; i < n; i++ {
		orders = append(orders, g.order())
	}
	return orders
}

func (g *Generator) order() Order {
	customer := g.rng.Intn(len(names))

	items := 1 + g.rng.Intn(3)
	parts := make([]string, 0, items)
	var total float64
	for _, idx := range g.rng.Perm(len(products))[:items] {
		qty := 1 + g.rng.Intn(3)
		p := products[idx]
		total += float64(qty) * p.price
		if qty == 1 {
			parts = append(parts, p.name)
		} else {
			parts = append(parts, fmt.Sprintf("%dx %s", qty, p.name))
		}
	}

	placed := g.End.
		AddDate(0, 0, -g.rng.Intn(g.Days)).
		Add(-time.Duration(g.rng.Intn(12*60)) * time.Minute)

	return Order{
		ID:              uuid.NewString(),
		CustomerPhone:   fmt.Sprintf("300%07d", 1000000+customer*7919),
		CustomerName:    names[customer],
		CustomerAddress: fmt.Sprintf("%s # %d-%d", streets[g.rng.Intn(len(streets))], 1+g.rng.Intn(99), 1+g.rng.Intn(99)),
		Products:        strings.Join(parts, ", "),
		TotalPrice:      total,
		OrderDate:       placed.Format(time.RFC3339),
	}
}

// Write encodes n orders as a demo-tagged payload
func (g *Generator) Write(w io.Writer, n int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Payload{Orders: g.Orders(n), Demo: true})
}
