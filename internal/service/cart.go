package service

import (
	"context"
	"errors"
	"fmt"

	"campuseats/internal/cart"
	"campuseats/internal/model"
)

var (
	ErrItemNotInCart      = errors.New("item not in cart")
	ErrProductUnavailable = errors.New("product unavailable")
)

type CartStore interface {
	Load(ctx context.Context, userID string) ([]model.LineItem, error)
	Update(ctx context.Context, userID string, fn func([]model.LineItem) ([]model.LineItem, error)) ([]model.LineItem, error)
	Clear(ctx context.Context, userID string) error
}

type CartService struct {
	store    CartStore
	products *ProductService
	taxRate  int64
}

func NewCartService(store CartStore, products *ProductService, taxRate int64) *CartService {
	return &CartService{store: store, products: products, taxRate: taxRate}
}

// CartView is a cart with its checkout breakdown.
type CartView struct {
	Items []model.LineItem `json:"items"`
	cart.Totals
}

func (s *CartService) view(items []model.LineItem) CartView {
	l := cart.FromItems(items, s.taxRate)
	return CartView{Items: l.Items(), Totals: l.Totals()}
}

func (s *CartService) Get(ctx context.Context, userID string) (CartView, error) {
	items, err := s.store.Load(ctx, userID)
	if err != nil {
		return CartView{}, fmt.Errorf("load cart: %w", err)
	}
	return s.view(items), nil
}

// Toggle selects productID or removes it if it is already in the cart. It
// reports whether the product is in the cart afterwards.
func (s *CartService) Toggle(ctx context.Context, userID, productID string) (CartView, bool, error) {
	p, err := s.products.Get(productID)
	if err != nil {
		return CartView{}, false, err
	}

	var selected bool
	items, err := s.store.Update(ctx, userID, func(items []model.LineItem) ([]model.LineItem, error) {
		l := cart.FromItems(items, s.taxRate)
		selected = l.AddOrToggle(model.LineItem{ID: p.ID, Name: p.Name, UnitPrice: p.Price, Image: p.Image})
		if selected && !p.Available {
			return nil, ErrProductUnavailable
		}
		return l.Items(), nil
	})
	if err != nil {
		return CartView{}, false, err
	}
	return s.view(items), selected, nil
}

// SetQuantity sets the quantity of productID; zero or less removes it.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (CartView, error) {
	items, err := s.store.Update(ctx, userID, func(items []model.LineItem) ([]model.LineItem, error) {
		l := cart.FromItems(items, s.taxRate)
		if !l.SetQuantity(productID, quantity) {
			return nil, ErrItemNotInCart
		}
		return l.Items(), nil
	})
	if err != nil {
		return CartView{}, err
	}
	return s.view(items), nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID string) (CartView, error) {
	items, err := s.store.Update(ctx, userID, func(items []model.LineItem) ([]model.LineItem, error) {
		l := cart.FromItems(items, s.taxRate)
		if !l.RemoveItem(productID) {
			return nil, ErrItemNotInCart
		}
		return l.Items(), nil
	})
	if err != nil {
		return CartView{}, err
	}
	return s.view(items), nil
}

// Take empties the cart in one transaction and returns what it held, priced
// against the current catalog. If a line's product was deleted or sold out in
// the meantime the cart is put back and ErrProductUnavailable is returned.
func (s *CartService) Take(ctx context.Context, userID string) (CartView, error) {
	var taken []model.LineItem
	_, err := s.store.Update(ctx, userID, func(items []model.LineItem) ([]model.LineItem, error) {
		taken = items
		return nil, nil
	})
	if err != nil {
		return CartView{}, fmt.Errorf("take cart: %w", err)
	}

	l := cart.FromItems(taken, s.taxRate)
	items := l.Items()
	for i, it := range items {
		p, err := s.products.Get(it.ID)
		if err != nil || !p.Available {
			if rerr := s.Restore(ctx, userID, taken); rerr != nil {
				return CartView{}, rerr
			}
			return CartView{}, fmt.Errorf("%s: %w", it.Name, ErrProductUnavailable)
		}
		items[i].Name = p.Name
		items[i].UnitPrice = p.Price
		items[i].Image = p.Image
	}
	return s.view(items), nil
}

// Restore puts taken lines back in front of whatever the cart holds now.
// Lines added since keep their place; a product present in both keeps the
// taken quantity.
func (s *CartService) Restore(ctx context.Context, userID string, taken []model.LineItem) error {
	if len(taken) == 0 {
		return nil
	}
	_, err := s.store.Update(ctx, userID, func(items []model.LineItem) ([]model.LineItem, error) {
		merged := append([]model.LineItem{}, taken...)
		merged = append(merged, items...)
		return cart.FromItems(merged, s.taxRate).Items(), nil
	})
	if err != nil {
		return fmt.Errorf("restore cart: %w", err)
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.store.Clear(ctx, userID)
}
