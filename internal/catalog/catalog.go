// Package catalog manages a restaurant's products.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"campuseats/internal/model"
)

const DefaultImage = "🍽️"

// Categories lists the menu sections a product can belong to.
var Categories = []string{
	"Platos Principales",
	"Acompañamientos",
	"Bebidas",
	"Postres",
	"Sushi",
	"Hamburguesas",
	"Pizzas",
}

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateID     = errors.New("product id already exists")
	ErrInvalidProduct  = errors.New("invalid product")
)

func ValidCategory(c string) bool {
	return slices.Contains(Categories, c)
}

// Input carries the editable fields of a product.
type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Available   bool   `json:"available"`
}

func (in Input) normalize() (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if in.Price < 0 {
		return in, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if !ValidCategory(in.Category) {
		return in, fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, in.Category)
	}
	if strings.TrimSpace(in.Image) == "" {
		in.Image = DefaultImage
	}
	return in, nil
}

type Catalog struct {
	products []model.Product
}

func New(products ...model.Product) *Catalog {
	c := &Catalog{}
	for _, p := range products {
		if c.index(p.ID) < 0 {
			c.products = append(c.products, p)
		}
	}
	return c
}

func (c *Catalog) index(id string) int {
	for i := range c.products {
		if c.products[i].ID == id {
			return i
		}
	}
	return -1
}

// Create validates in and appends it under id.
func (c *Catalog) Create(id string, in Input) (model.Product, error) {
	if c.index(id) >= 0 {
		return model.Product{}, ErrDuplicateID
	}
	in, err := in.normalize()
	if err != nil {
		return model.Product{}, err
	}
	p := model.Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Image:       in.Image,
		Available:   in.Available,
	}
	c.products = append(c.products, p)
	return p, nil
}

// Update replaces every editable field of product id.
func (c *Catalog) Update(id string, in Input) (model.Product, error) {
	i := c.index(id)
	if i < 0 {
		return model.Product{}, ErrProductNotFound
	}
	in, err := in.normalize()
	if err != nil {
		return model.Product{}, err
	}
	p := &c.products[i]
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Category = in.Category
	p.Image = in.Image
	p.Available = in.Available
	return *p, nil
}

func (c *Catalog) Delete(id string) error {
	i := c.index(id)
	if i < 0 {
		return ErrProductNotFound
	}
	c.products = append(c.products[:i], c.products[i+1:]...)
	return nil
}

func (c *Catalog) Get(id string) (model.Product, error) {
	i := c.index(id)
	if i < 0 {
		return model.Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

func (c *Catalog) List() []model.Product {
	return slices.Clone(c.products)
}

type Filter struct {
	Query         string
	Category      string
	AvailableOnly bool
}

// Search matches Query case-insensitively against name and description.
func (c *Catalog) Search(f Filter) []model.Product {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []model.Product{}
	for _, p := range c.products {
		if f.AvailableOnly && !p.Available {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}
