// Package cart models the keyed item-variant map the ordering page keeps in
// local storage. The server rebuilds a cart from each submitted order to
// recompute authoritative totals.
package cart

import (
	"math"
	"sort"

	"curryhouse/internal/domain"
)

type Line struct {
	Name       string
	Quantity   int
	UnitPrice  float64 // base price plus the addon contribution
	BasePrice  float64
	SpiceLevel string
	Addons     []domain.Addon
}

// Cart is keyed by the item-variant name. Quantities never go below zero;
// a line whose quantity reaches zero is removed.
type Cart struct {
	lines map[string]*Line
}

func New() *Cart {
	return &Cart{lines: make(map[string]*Line)}
}

// Add puts a line into the cart or bumps its quantity when the key is
// already present.
func (c *Cart) Add(l Line) {
	if l.Quantity <= 0 {
		return
	}
	if cur, ok := c.lines[l.Name]; ok {
		cur.Quantity += l.Quantity
		return
	}
	cp := l
	c.lines[l.Name] = &cp
}

func (c *Cart) Increment(name string) {
	if cur, ok := c.lines[name]; ok {
		cur.Quantity++
	}
}

func (c *Cart) Decrement(name string) {
	cur, ok := c.lines[name]
	if !ok {
		return
	}
	cur.Quantity--
	if cur.Quantity <= 0 {
		delete(c.lines, name)
	}
}

func (c *Cart) Quantity(name string) int {
	if cur, ok := c.lines[name]; ok {
		return cur.Quantity
	}
	return 0
}

func (c *Cart) Len() int { return len(c.lines) }

// Lines returns the cart contents in a stable order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Subtotal sums quantity x unit price over all lines, rounded to cents.
func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, l := range c.lines {
		sum += float64(l.Quantity) * l.UnitPrice
	}
	return Round2(sum)
}

// Totals returns (subtotal, tax, total) for the given tax rate, each
// rounded to two decimals.
func (c *Cart) Totals(taxRate float64) (subtotal, tax, total float64) {
	subtotal = c.Subtotal()
	tax = Round2(subtotal * taxRate)
	total = Round2(subtotal + tax)
	return subtotal, tax, total
}

// FromOrderLines rebuilds a cart from submitted order lines. The unit
// price is recomputed from the base price and addon prices, so a client
// cannot understate a line by fiddling with the unit price field.
func FromOrderLines(items []domain.OrderLine) *Cart {
	c := New()
	for _, it := range items {
		unit := it.BasePrice
		for _, a := range it.Addons {
			unit += a.Price
		}
		if it.BasePrice == 0 {
			unit = it.UnitPrice
		}
		c.Add(Line{
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  Round2(unit),
			BasePrice:  it.BasePrice,
			SpiceLevel: it.SpiceLevel,
			Addons:     it.Addons,
		})
	}
	return c
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
