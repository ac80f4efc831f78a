package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"campuseats/internal/broker"
	"campuseats/internal/model"
	"campuseats/internal/orderbook"
)

const displayTimeLayout = "03:04 PM"

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

type OrderRepository interface {
	Create(ctx context.Context, o model.Order) error
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error
	List(ctx context.Context) ([]model.Order, error)
}

// Customer identifies who is placing an order.
type Customer struct {
	ID   string
	Name string
}

// OrderService owns the order book. Every change is written to the
// repository before it becomes visible, and queued as an event for the
// notification worker.
type OrderService struct {
	mu     sync.Mutex
	book   *orderbook.Book
	outbox []broker.Event

	repo  OrderRepository
	carts *CartService
	rng   *rand.Rand
	now   func() time.Time
}

func NewOrderService(repo OrderRepository, carts *CartService) *OrderService {
	seed := uint64(time.Now().UnixNano())
	return &OrderService{
		book:  orderbook.New(),
		repo:  repo,
		carts: carts,
		rng:   rand.New(rand.NewPCG(seed, seed>>1)),
		now:   time.Now,
	}
}

// Load replaces the in-memory book with the stored orders.
func (s *OrderService) Load(ctx context.Context) error {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}

	book := orderbook.New()
	for _, o := range orders {
		if err := book.Add(o); err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
	}

	s.mu.Lock()
	s.book = book
	s.mu.Unlock()
	return nil
}

// Checkout takes the customer's cart and turns it into a pending order. The
// cart is emptied up front so a repeated request finds nothing to order; it
// is restored if the order cannot be placed.
func (s *OrderService) Checkout(ctx context.Context, c Customer, method model.PaymentMethod) (model.Order, error) {
	if !method.Valid() {
		return model.Order{}, ErrInvalidPaymentMethod
	}

	view, err := s.carts.Take(ctx, c.ID)
	if err != nil {
		return model.Order{}, err
	}
	if len(view.Items) == 0 {
		return model.Order{}, ErrEmptyCart
	}

	order, err := s.place(ctx, c, method, view)
	if err != nil {
		if rerr := s.carts.Restore(ctx, c.ID, view.Items); rerr != nil {
			slog.Error("failed to restore cart after checkout error", "user_id", c.ID, "error", rerr)
		}
		return model.Order{}, err
	}

	slog.Info("order placed", "order", order.OrderNumber, "total", order.Total, "payment", order.PaymentMethod)
	return order, nil
}

func (s *OrderService) place(ctx context.Context, c Customer, method model.PaymentMethod, view CartView) (model.Order, error) {
	items := make([]string, 0, len(view.Items))
	for _, it := range view.Items {
		items = append(items, describe(it))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	number, err := s.book.NextOrderNumber(s.rng)
	if err != nil {
		return model.Order{}, err
	}

	now := s.now()
	order := model.Order{
		ID:            uuid.NewString(),
		OrderNumber:   number,
		CustomerID:    c.ID,
		CustomerName:  c.Name,
		Items:         items,
		Subtotal:      view.Subtotal,
		Tax:           view.Tax,
		Total:         view.Total,
		PaymentMethod: method,
		Status:        model.StatusPending,
		Time:          now.Format(displayTimeLayout),
		CreatedAt:     now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return model.Order{}, fmt.Errorf("save order: %w", err)
	}
	if err := s.book.Add(order); err != nil {
		return model.Order{}, err
	}
	s.outbox = append(s.outbox, broker.NewEvent(broker.EventOrderPlaced, order, now))
	return order, nil
}

func describe(it model.LineItem) string {
	if it.Quantity == 1 {
		return it.Name
	}
	return it.Name + " x" + strconv.Itoa(it.Quantity)
}

func (s *OrderService) MarkAsReady(ctx context.Context, id string) (model.Order, error) {
	return s.transition(ctx, id, (*orderbook.Book).MarkAsReady, broker.EventOrderReady)
}

func (s *OrderService) MarkAsCompleted(ctx context.Context, id string) (model.Order, error) {
	return s.transition(ctx, id, (*orderbook.Book).MarkAsCompleted, broker.EventOrderCompleted)
}

func (s *OrderService) transition(
	ctx context.Context,
	id string,
	apply func(*orderbook.Book, string) (model.Order, bool, error),
	event broker.EventType,
) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.book.Get(id)
	if err != nil {
		return model.Order{}, err
	}

	order, changed, err := apply(s.book, id)
	if err != nil || !changed {
		return order, err
	}

	if err := s.repo.UpdateStatus(ctx, id, order.Status); err != nil {
		_ = s.book.Replace(prev)
		return model.Order{}, fmt.Errorf("save status: %w", err)
	}
	s.outbox = append(s.outbox, broker.NewEvent(event, order, s.now()))

	slog.Info("order status changed", "order", order.OrderNumber, "from", prev.Status, "to", order.Status)
	return order, nil
}

func (s *OrderService) Get(id string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Get(id)
}

func (s *OrderService) Dashboard() orderbook.Partition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.PartitionByStatus()
}

// ListByCustomer returns the customer's orders, newest first.
func (s *OrderService) ListByCustomer(customerID string) []model.Order {
	s.mu.Lock()
	all := s.book.List()
	s.mu.Unlock()

	orders := []model.Order{}
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].CustomerID == customerID {
			orders = append(orders, all[i])
		}
	}
	return orders
}

// PendingEvents removes and returns up to limit queued events, oldest first.
func (s *OrderService) PendingEvents(limit int) []broker.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.outbox) {
		limit = len(s.outbox)
	}
	batch := make([]broker.Event, limit)
	copy(batch, s.outbox)
	s.outbox = s.outbox[limit:]
	return batch
}

// Requeue puts events back at the head of the queue.
func (s *OrderService) Requeue(events []broker.Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(append([]broker.Event{}, events...), s.outbox...)
}
