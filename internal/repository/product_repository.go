package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/storefront/internal/model"
)

const productColumns = "id, sku, name, category, price_cents, image, badge, stock"

// ProductRepo is the catalog store.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

// List returns the catalog ordered by id, optionally filtered by category.
func (r *ProductRepo) List(ctx context.Context, category string) ([]model.Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	var args []any
	if category != "" {
		query += " WHERE category=?"
		args = append(args, category)
	}
	query += " ORDER BY id"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.PriceCents, &p.Image, &p.Badge, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID fetches one product.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? LIMIT 1", id).
		Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.PriceCents, &p.Image, &p.Badge, &p.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}
	return &p, nil
}

// Inventory returns stock levels for every product.
func (r *ProductRepo) Inventory(ctx context.Context) ([]model.InventoryItem, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, sku, name, stock FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	out := []model.InventoryItem{}
	for rows.Next() {
		var it model.InventoryItem
		if err := rows.Scan(&it.ID, &it.SKU, &it.Name, &it.Stock); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpdateStock sets the stock of the product with sku.  An unknown sku
// yields ErrNotFound.
func (r *ProductRepo) UpdateStock(ctx context.Context, sku string, stock int) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE products SET stock=? WHERE sku=?", stock, sku)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if n == 0 {
		// MySQL reports 0 affected rows when the value is unchanged, so
		// confirm the sku exists before calling it missing.
		var one int
		err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM products WHERE sku=? LIMIT 1", sku).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
	}
	return nil
}
