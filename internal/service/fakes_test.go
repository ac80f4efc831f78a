package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"campuseats/internal/cache"
	"campuseats/internal/cart"
	"campuseats/internal/catalog"
	"campuseats/internal/database"
	"campuseats/internal/model"
)

var errStorage = errors.New("storage unavailable")

type fakeUsers struct {
	mu      sync.Mutex
	byLogin map[string]model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byLogin: map[string]model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byLogin[u.Login]; ok {
		return nil, database.ErrDuplicate
	}
	u.CreatedAt = time.Now()
	f.byLogin[u.Login] = u
	return &u, nil
}

func (f *fakeUsers) GetByLogin(_ context.Context, login string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byLogin[login]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

type fakeProducts struct {
	mu       sync.Mutex
	products []model.Product
	fail     bool
}

func (f *fakeProducts) Save(_ context.Context, p model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStorage
	}
	for i := range f.products {
		if f.products[i].ID == p.ID {
			f.products[i] = p
			return nil
		}
	}
	f.products = append(f.products, p)
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStorage
	}
	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeProducts) List(context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStorage
	}
	return append([]model.Product(nil), f.products...), nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []model.Order
	fail   bool
}

func (f *fakeOrders) Create(_ context.Context, o model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStorage
	}
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id string, status model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errStorage
	}
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakeOrders) List(context.Context) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errStorage
	}
	return append([]model.Order(nil), f.orders...), nil
}

func (f *fakeOrders) status(id string) model.OrderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			return o.Status
		}
	}
	return ""
}

type fixture struct {
	mr       *miniredis.Miniredis
	products *ProductService
	carts    *CartService
	orders   *OrderService
	orderDB  *fakeOrders
	pasta    model.Product
	sushi    model.Product
	soldOut  model.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	f := &fixture{mr: mr, orderDB: &fakeOrders{}}
	f.products = NewProductService(&fakeProducts{})
	f.carts = NewCartService(cache.NewCartStore(client, time.Hour), f.products, cart.DefaultTaxRate)
	f.orders = NewOrderService(f.orderDB, f.carts)
	f.orders.now = func() time.Time { return time.Date(2025, 3, 1, 11, 30, 0, 0, time.UTC) }

	ctx := context.Background()
	mustCreate := func(in catalog.Input) model.Product {
		p, err := f.products.Create(ctx, in)
		if err != nil {
			t.Fatalf("create product: %v", err)
		}
		return p
	}
	f.pasta = mustCreate(catalog.Input{Name: "Pasta Carbonara", Price: 15000, Category: "Platos Principales", Image: "🍝", Available: true})
	f.sushi = mustCreate(catalog.Input{Name: "Sushi Roll", Price: 18000, Category: "Sushi", Image: "🍣", Available: true})
	f.soldOut = mustCreate(catalog.Input{Name: "Pizza", Price: 20000, Category: "Pizzas", Available: false})
	return f
}
