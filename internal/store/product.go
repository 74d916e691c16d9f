// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"qrmenu/internal/models"
)

// ProductStore handles all product-related database operations.
type ProductStore struct {
	db *sqlx.DB
}

// NewProductStore creates a new ProductStore with the given database connection.
func NewProductStore(db *sqlx.DB) *ProductStore {
	return &ProductStore{db: db}
}

// ProductInput carries the full set of writable product fields. Pointer
// fields distinguish "missing" from zero values.
type ProductInput struct {
	Name        string
	Description *string
	Price       *decimal.Decimal
	Category    *int64
	Images      models.ImageList
	Status      models.Status
}

const productColumns = `id, name, description, price, category, images, status, created_at`

// List returns products newest first, joined with their category name. When
// categorySlug is non-empty only that category's products are returned.
// Products whose category was deleted are listed with an empty name.
func (s *ProductStore) List(ctx context.Context, categorySlug string) ([]models.ProductListItem, error) {
	items := []models.ProductListItem{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT p.id, p.name, p.description, p.price, p.category, p.images, p.status, p.created_at,
		       COALESCE(c.category_name, '') AS category_name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category
		WHERE ($1 = '' OR c.slug = $1)
		ORDER BY p.created_at DESC, p.id DESC
	`, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	for i := range items {
		items[i].ImagePath = items[i].Images.First()
	}
	return items, nil
}

// FindByID retrieves a product by ID. Returns nil if not found.
func (s *ProductStore) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := s.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return &p, nil
}

// Create inserts a new product. At least one image is required.
func (s *ProductStore) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	if len(in.Images) == 0 {
		return nil, invalid("at least one image is required")
	}

	var p models.Product
	err := s.db.GetContext(ctx, &p, `
		INSERT INTO products (name, description, price, category, images, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		in.Name, in.Description, *in.Price, *in.Category, in.Images, in.Status,
	)
	if err != nil {
		return nil, productWriteError("create product", *in.Category, err)
	}
	return &p, nil
}

// Update replaces every field of an existing product, including the whole
// images list. A nil list is stored as empty.
func (s *ProductStore) Update(ctx context.Context, id int64, in ProductInput) (*models.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	if in.Images == nil {
		in.Images = models.ImageList{}
	}

	var p models.Product
	err := s.db.GetContext(ctx, &p, `
		UPDATE products
		SET name = $1, description = $2, price = $3, category = $4, images = $5, status = $6
		WHERE id = $7
		RETURNING `+productColumns,
		in.Name, in.Description, *in.Price, *in.Category, in.Images, in.Status, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, productWriteError("update product", *in.Category, err)
	}
	return &p, nil
}

// RemoveImage removes the first occurrence of path from the product's images
// and returns the remaining list. The read and the write run in one
// transaction holding the row lock, so concurrent removals cannot lose each
// other's changes. The image file itself is left alone.
func (s *ProductStore) RemoveImage(ctx context.Context, id int64, path string) (models.ImageList, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("remove image begin: %w", err)
	}
	defer tx.Rollback()

	var images models.ImageList
	err = tx.GetContext(ctx, &images, `SELECT images FROM products WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("remove image select: %w", err)
	}

	remaining, found := images.Without(path)
	if !found {
		return nil, fmt.Errorf("%w: image %q on product %d", ErrNotFound, path, id)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE products SET images = $1 WHERE id = $2`, remaining, id); err != nil {
		return nil, fmt.Errorf("remove image update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("remove image commit: %w", err)
	}
	return remaining, nil
}

// Delete removes a product row. Its image files are not touched.
func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return nil
}

// ReferencedImages returns every image path referenced by a product or a
// category.
func (s *ProductStore) ReferencedImages(ctx context.Context) (map[string]struct{}, error) {
	refs := make(map[string]struct{})

	var lists []models.ImageList
	if err := s.db.SelectContext(ctx, &lists, `SELECT images FROM products`); err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	for _, images := range lists {
		for _, p := range images {
			refs[p] = struct{}{}
		}
	}

	var paths []string
	if err := s.db.SelectContext(ctx, &paths, `SELECT image_path FROM categories WHERE image_path IS NOT NULL`); err != nil {
		return nil, fmt.Errorf("list category images: %w", err)
	}
	for _, p := range paths {
		refs[p] = struct{}{}
	}
	return refs, nil
}

func validateProduct(in ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return invalid("name is required")
	case in.Price == nil:
		return invalid("price is required")
	case in.Price.IsNegative():
		return invalid("price must not be negative")
	case in.Category == nil:
		return invalid("category is required")
	case in.Status == "":
		return invalid("status is required")
	case !in.Status.Valid():
		return invalid("status must be %q or %q", models.StatusInStock, models.StatusOutOfStock)
	}
	return nil
}

func productWriteError(op string, category int64, err error) error {
	switch {
	case isForeignKeyViolation(err):
		return invalid("category %d does not exist", category)
	case isCheckViolation(err):
		return invalid("product violates a value constraint")
	}
	return fmt.Errorf("%s: %w", op, err)
}
