// Package orderbook keeps the restaurant's order queue and moves orders
// through the pending -> ready -> completed pipeline.
package orderbook

import (
	"errors"
	"fmt"
	"slices"

	"campuseats/internal/model"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateOrder    = errors.New("order already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Book struct {
	orders []model.Order
	byID   map[string]int
}

func New() *Book {
	return &Book{byID: make(map[string]int)}
}

// Add appends an order to the book. Orders without a status start pending.
func (b *Book) Add(order model.Order) error {
	if _, ok := b.byID[order.ID]; ok {
		return fmt.Errorf("add %s: %w", order.ID, ErrDuplicateOrder)
	}
	if order.Status == "" {
		order.Status = model.StatusPending
	}
	b.byID[order.ID] = len(b.orders)
	b.orders = append(b.orders, clone(order))
	return nil
}

func (b *Book) Get(id string) (model.Order, error) {
	i, ok := b.byID[id]
	if !ok {
		return model.Order{}, ErrOrderNotFound
	}
	return clone(b.orders[i]), nil
}

// clone detaches an order's item list from the book's copy.
func clone(o model.Order) model.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

// MarkAsReady moves a pending order to ready. Ready and completed orders are
// left as they are. The returned bool reports whether the status changed.
func (b *Book) MarkAsReady(id string) (model.Order, bool, error) {
	i, ok := b.byID[id]
	if !ok {
		return model.Order{}, false, ErrOrderNotFound
	}
	o := &b.orders[i]
	if o.Status != model.StatusPending {
		return clone(*o), false, nil
	}
	o.Status = model.StatusReady
	return clone(*o), true, nil
}

// MarkAsCompleted moves a ready order to completed. A pending order cannot
// skip the ready stage; completed orders are left as they are.
func (b *Book) MarkAsCompleted(id string) (model.Order, bool, error) {
	i, ok := b.byID[id]
	if !ok {
		return model.Order{}, false, ErrOrderNotFound
	}
	o := &b.orders[i]
	switch o.Status {
	case model.StatusReady:
		o.Status = model.StatusCompleted
		return clone(*o), true, nil
	case model.StatusCompleted:
		return clone(*o), false, nil
	default:
		return clone(*o), false, fmt.Errorf("%s -> %s: %w", o.Status, model.StatusCompleted, ErrInvalidTransition)
	}
}

// Replace overwrites the stored order with the same id. Services use it to
// roll back a transition that could not be persisted.
func (b *Book) Replace(order model.Order) error {
	i, ok := b.byID[order.ID]
	if !ok {
		return ErrOrderNotFound
	}
	b.orders[i] = clone(order)
	return nil
}

type Partition struct {
	Pending   []model.Order `json:"pending"`
	Ready     []model.Order `json:"ready"`
	Completed []model.Order `json:"completed"`
}

// PartitionByStatus splits the book by status in one pass, keeping
// insertion order inside each group.
func (b *Book) PartitionByStatus() Partition {
	p := Partition{
		Pending:   []model.Order{},
		Ready:     []model.Order{},
		Completed: []model.Order{},
	}
	for _, o := range b.orders {
		switch o.Status {
		case model.StatusPending:
			p.Pending = append(p.Pending, clone(o))
		case model.StatusReady:
			p.Ready = append(p.Ready, clone(o))
		case model.StatusCompleted:
			p.Completed = append(p.Completed, clone(o))
		}
	}
	return p
}

func (b *Book) List() []model.Order {
	out := make([]model.Order, len(b.orders))
	for i, o := range b.orders {
		out[i] = clone(o)
	}
	return out
}

func (b *Book) Len() int { return len(b.orders) }
