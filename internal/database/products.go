package database

import (
	"context"
	"database/sql"
	"fmt"

	"campuseats/internal/model"
)

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Save inserts p or overwrites the stored row with the same id.
func (r *ProductRepo) Save(ctx context.Context, p model.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, price, category, image, available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			image = EXCLUDED.image,
			available = EXCLUDED.available
	`, p.ID, p.Name, p.Description, p.Price, p.Category, p.Image, p.Available)
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, price, category, image, available
		FROM products
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Image, &p.Available); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return products, nil
}
