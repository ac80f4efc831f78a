package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"campuseats/internal/catalog"
	"campuseats/internal/model"
)

type ProductRepository interface {
	Save(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Product, error)
}

// ProductService serves the catalog from memory and writes every change
// through to the repository.
type ProductService struct {
	mu      sync.RWMutex
	catalog *catalog.Catalog
	repo    ProductRepository
}

func NewProductService(repo ProductRepository) *ProductService {
	return &ProductService{catalog: catalog.New(), repo: repo}
}

// Load replaces the in-memory catalog with the stored products.
func (s *ProductService) Load(ctx context.Context) error {
	products, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	s.mu.Lock()
	s.catalog = catalog.New(products...)
	s.mu.Unlock()
	return nil
}

func (s *ProductService) Create(ctx context.Context, in catalog.Input) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.catalog.Create(uuid.NewString(), in)
	if err != nil {
		return model.Product{}, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		_ = s.catalog.Delete(p.ID)
		return model.Product{}, err
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, in catalog.Input) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.catalog.Get(id)
	if err != nil {
		return model.Product{}, err
	}
	p, err := s.catalog.Update(id, in)
	if err != nil {
		return model.Product{}, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		_, _ = s.catalog.Update(id, inputOf(prev))
		return model.Product{}, err
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.catalog.Get(id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.catalog.Delete(id)
}

func (s *ProductService) Get(id string) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Get(id)
}

func (s *ProductService) Search(f catalog.Filter) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Search(f)
}

func inputOf(p model.Product) catalog.Input {
	return catalog.Input{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Image:       p.Image,
		Available:   p.Available,
	}
}
