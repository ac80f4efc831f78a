package model

import (
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusReady     OrderStatus = "ready"
	StatusCompleted OrderStatus = "completed"
)

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCampus PaymentMethod = "campus"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentOnline || p == PaymentCampus
}

type Order struct {
	ID            string        `json:"id"`
	OrderNumber   string        `json:"orderNumber"`
	CustomerID    string        `json:"customerId"`
	CustomerName  string        `json:"customerName"`
	Items         []string      `json:"items"`
	Subtotal      int64         `json:"subtotal"`
	Tax           int64         `json:"tax"`
	Total         int64         `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Status        OrderStatus   `json:"status"` // pending, ready, completed
	Time          string        `json:"time"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// LineItem is one selected product in a cart. Prices are in minor currency units.
type LineItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Image     string `json:"image,omitempty"`
}
