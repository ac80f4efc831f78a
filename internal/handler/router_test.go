package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuseats/internal/cache"
	"campuseats/internal/cart"
	"campuseats/internal/database"
	"campuseats/internal/model"
	"campuseats/internal/orderbook"
	"campuseats/internal/service"
)

const testSecret = "handler-secret"

type memUsers struct {
	mu    sync.Mutex
	users map[string]model.User
}

func (m *memUsers) Create(_ context.Context, u model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Login]; ok {
		return nil, database.ErrDuplicate
	}
	m.users[u.Login] = u
	return &u, nil
}

func (m *memUsers) GetByLogin(_ context.Context, login string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[login]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

type memProducts struct{}

func (memProducts) Save(context.Context, model.Product) error     { return nil }
func (memProducts) Delete(context.Context, string) error          { return nil }
func (memProducts) List(context.Context) ([]model.Product, error) { return nil, nil }

type memOrders struct{}

func (memOrders) Create(context.Context, model.Order) error                     { return nil }
func (memOrders) UpdateStatus(context.Context, string, model.OrderStatus) error { return nil }
func (memOrders) List(context.Context) ([]model.Order, error)                   { return nil, nil }

type testServer struct {
	t      *testing.T
	router http.Handler
	orders *service.OrderService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	products := service.NewProductService(memProducts{})
	carts := service.NewCartService(cache.NewCartStore(client, time.Hour), products, cart.DefaultTaxRate)
	orders := service.NewOrderService(memOrders{}, carts)
	svc := Services{
		Auth:     service.NewAuthService(&memUsers{users: map[string]model.User{}}, testSecret, time.Hour),
		Products: products,
		Carts:    carts,
		Orders:   orders,
	}
	return &testServer{t: t, router: NewRouter(svc, testSecret), orders: orders}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(email string, role model.Role) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":                  "Test " + string(role),
		"email":                 email,
		"password":              "secret1",
		"password_confirmation": "secret1",
		"role":                  role,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp authResponse
	require.NoError(s.t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(s.t, "Bearer "+resp.AccessToken, rec.Header().Get("Authorization"))
	return resp.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	s.register("ana@campus.edu", model.RoleStudent)

	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": "Ana", "email": "ana@campus.edu", "password": "secret1", "password_confirmation": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", loginRequest{Login: "ana@campus.edu", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[authResponse](t, rec)
	assert.Equal(t, model.RoleStudent, resp.User.Role)

	rec = s.do(http.MethodPost, "/api/auth/login", "", loginRequest{Login: "ana@campus.edu", Password: "nope123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", loginRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderingFlow(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("owner@campus.edu", model.RoleRestaurant)
	student := s.register("student@campus.edu", model.RoleStudent)

	rec := s.do(http.MethodPost, "/api/restaurant/products", student, map[string]any{"name": "x", "category": "Sushi"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/restaurant/products", owner, map[string]any{
		"name": "Pasta Carbonara", "price": 15000, "category": "Platos Principales", "available": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pasta := decode[model.Product](t, rec)

	rec = s.do(http.MethodPost, "/api/restaurant/products", owner, map[string]any{
		"name": "Sushi Roll", "price": 18000, "category": "Sushi", "available": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	sushi := decode[model.Product](t, rec)

	rec = s.do(http.MethodPost, "/api/restaurant/products", owner, map[string]any{"name": "Taco", "category": "Tacos"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodGet, "/api/products?q=sushi", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Product](t, rec), 1)

	rec = s.do(http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/checkout", student, checkoutRequest{PaymentMethod: model.PaymentOnline})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "empty cart")

	rec = s.do(http.MethodPost, "/api/cart/items/"+pasta.ID+"/toggle", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[toggleResponse](t, rec).Selected)

	s.do(http.MethodPost, "/api/cart/items/"+sushi.ID+"/toggle", student, nil)
	rec = s.do(http.MethodPut, "/api/cart/items/"+sushi.ID, student, map[string]int{"quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[service.CartView](t, rec)
	assert.Equal(t, int64(51000), view.Subtotal)
	assert.Equal(t, int64(4080), view.Tax)
	assert.Equal(t, int64(55080), view.Total)

	rec = s.do(http.MethodPut, "/api/cart/items/missing", student, map[string]int{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPut, "/api/cart/items/"+sushi.ID, student, map[string]int{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/checkout", student, checkoutRequest{PaymentMethod: model.PaymentCampus})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[model.Order](t, rec)
	assert.Equal(t, int64(55080), order.Total)
	assert.Equal(t, model.StatusPending, order.Status)

	rec = s.do(http.MethodGet, "/api/orders", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Order](t, rec), 1)

	rec = s.do(http.MethodGet, "/api/orders", owner, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/api/restaurant/orders/"+order.ID+"/complete", owner, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "pending cannot skip ready")

	rec = s.do(http.MethodPost, "/api/restaurant/orders/"+order.ID+"/ready", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/api/restaurant/orders/"+order.ID+"/ready", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusReady, decode[model.Order](t, rec).Status)

	rec = s.do(http.MethodGet, "/api/restaurant/orders", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[orderbook.Partition](t, rec)
	assert.Empty(t, p.Pending)
	assert.Len(t, p.Ready, 1)

	rec = s.do(http.MethodPost, "/api/restaurant/orders/"+order.ID+"/complete", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusCompleted, decode[model.Order](t, rec).Status)

	rec = s.do(http.MethodPost, "/api/restaurant/orders/missing/ready", owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/restaurant/products/"+pasta.ID, owner, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/api/products/"+pasta.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProducts_BadFlag(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/api/products?available=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode[[]string](t, rec), "Sushi")
}

func TestCheckout_RepeatAndStaleCart(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("owner@campus.edu", model.RoleRestaurant)
	student := s.register("student@campus.edu", model.RoleStudent)

	rec := s.do(http.MethodPost, "/api/restaurant/products", owner, map[string]any{
		"name": "Tacos", "price": 9000, "category": "Platos Principales", "available": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tacos := decode[model.Product](t, rec)

	s.do(http.MethodPost, "/api/cart/items/"+tacos.ID+"/toggle", student, nil)
	rec = s.do(http.MethodPost, "/api/checkout", student, checkoutRequest{PaymentMethod: model.PaymentOnline})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/api/checkout", student, checkoutRequest{PaymentMethod: model.PaymentOnline})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "second checkout finds the cart empty")

	s.do(http.MethodPost, "/api/cart/items/"+tacos.ID+"/toggle", student, nil)
	rec = s.do(http.MethodDelete, "/api/restaurant/products/"+tacos.ID, owner, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/api/checkout", student, checkoutRequest{PaymentMethod: model.PaymentOnline})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = s.do(http.MethodGet, "/api/cart", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[service.CartView](t, rec).Items, 1, "failed checkout keeps the cart")

	rec = s.do(http.MethodDelete, "/api/cart", student, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/api/cart", student, nil)
	assert.Empty(t, decode[service.CartView](t, rec).Items)
}
