// Package cart holds the line items a customer has selected and derives
// monetary totals from them.
package cart

import (
	"campuseats/internal/model"
)

// DefaultTaxRate is the sales tax applied at checkout, in basis points (8%).
const DefaultTaxRate = 800

const basisPoints = 10000

type Ledger struct {
	items   []model.LineItem
	taxRate int64
}

// NewLedger returns an empty ledger taxing at rate basis points.
func NewLedger(rate int64) *Ledger {
	if rate < 0 {
		rate = 0
	}
	return &Ledger{taxRate: rate}
}

// FromItems rebuilds a ledger from stored lines. Lines with a non-positive
// quantity and repeated ids are dropped.
func FromItems(items []model.LineItem, rate int64) *Ledger {
	l := NewLedger(rate)
	for _, it := range items {
		if it.Quantity <= 0 || l.index(it.ID) >= 0 {
			continue
		}
		l.items = append(l.items, it)
	}
	return l
}

func (l *Ledger) index(id string) int {
	for i := range l.items {
		if l.items[i].ID == id {
			return i
		}
	}
	return -1
}

// AddOrToggle selects item with quantity 1, or deselects it if it is
// already in the cart. It reports whether the item is selected afterwards.
func (l *Ledger) AddOrToggle(item model.LineItem) bool {
	if i := l.index(item.ID); i >= 0 {
		l.removeAt(i)
		return false
	}
	item.Quantity = 1
	l.items = append(l.items, item)
	return true
}

// SetQuantity sets the quantity of line id, removing it when quantity <= 0.
// It returns false and leaves the cart alone if id is not in the cart.
func (l *Ledger) SetQuantity(id string, quantity int) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		l.removeAt(i)
		return true
	}
	l.items[i].Quantity = quantity
	return true
}

func (l *Ledger) RemoveItem(id string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.removeAt(i)
	return true
}

func (l *Ledger) removeAt(i int) {
	l.items = append(l.items[:i], l.items[i+1:]...)
}

// Items returns a copy of the lines in the order they were added.
func (l *Ledger) Items() []model.LineItem {
	out := make([]model.LineItem, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Ledger) Len() int { return len(l.items) }

func (l *Ledger) Empty() bool { return len(l.items) == 0 }

func (l *Ledger) TaxRate() int64 { return l.taxRate }

func (l *Ledger) Subtotal() int64 {
	var sum int64
	for _, it := range l.items {
		sum += it.UnitPrice * int64(it.Quantity)
	}
	return sum
}

// Tax rounds subtotal * rate half-up to a whole currency unit.
func (l *Ledger) Tax(subtotal int64) int64 {
	return ComputeTax(subtotal, l.taxRate)
}

func (l *Ledger) Total(subtotal, tax int64) int64 {
	return subtotal + tax
}

// Totals is the checkout breakdown for the current lines.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

func (l *Ledger) Totals() Totals {
	sub := l.Subtotal()
	tax := l.Tax(sub)
	return Totals{Subtotal: sub, Tax: tax, Total: l.Total(sub, tax)}
}

// ComputeTax applies rate (basis points) to a non-negative subtotal.
func ComputeTax(subtotal, rate int64) int64 {
	if subtotal <= 0 || rate <= 0 {
		return 0
	}
	return (subtotal*rate + basisPoints/2) / basisPoints
}

// RateFromPercent converts a fractional rate such as 0.08 to basis points.
func RateFromPercent(rate float64) int64 {
	if rate <= 0 {
		return 0
	}
	return int64(rate*basisPoints + 0.5)
}
