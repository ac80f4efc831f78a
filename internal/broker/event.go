// Package broker delivers order lifecycle events to interested consumers.
package broker

import (
	"time"

	"campuseats/internal/model"
)

type EventType string

const (
	EventOrderPlaced    EventType = "order.placed"
	EventOrderReady     EventType = "order.ready"
	EventOrderCompleted EventType = "order.completed"
)

type Event struct {
	Type        EventType         `json:"type"`
	OrderID     string            `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	CustomerID  string            `json:"customerId"`
	Status      model.OrderStatus `json:"status"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// NewEvent describes the current state of o.
func NewEvent(t EventType, o model.Order, at time.Time) Event {
	return Event{
		Type:        t,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		OccurredAt:  at.UTC(),
	}
}
