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

	"qrmenu/internal/models"
	"qrmenu/internal/slug"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sqlx.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sqlx.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, category_name, slug, image_path, created_at`

// List returns all categories, newest first.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	items := []models.Category{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := s.db.GetContext(ctx, &c, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return &c, nil
}

// FindBySlug retrieves a category by its slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	err := s.db.GetContext(ctx, &c, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return &c, nil
}

// Create inserts a new category. Returns ErrConflict if the slug is taken.
func (s *CategoryStore) Create(ctx context.Context, name, slug string, imagePath *string) (*models.Category, error) {
	if err := validateCategory(name, slug); err != nil {
		return nil, err
	}

	var taken bool
	if err := s.db.GetContext(ctx, &taken, `SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1)`, slug); err != nil {
		return nil, fmt.Errorf("check category slug: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: category slug %q already exists", ErrConflict, slug)
	}

	var c models.Category
	err := s.db.GetContext(ctx, &c, `
		INSERT INTO categories (category_name, slug, image_path)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		name, slug, emptyToNil(imagePath),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: category slug %q already exists", ErrConflict, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

// Update overwrites name, slug and image path of an existing category.
// Returns ErrConflict if another category already uses the same name and
// slug, or the slug alone; ErrNotFound if the ID does not exist.
func (s *CategoryStore) Update(ctx context.Context, id int64, name, slug string, imagePath *string) (*models.Category, error) {
	if err := validateCategory(name, slug); err != nil {
		return nil, err
	}

	var duplicate bool
	err := s.db.GetContext(ctx, &duplicate, `
		SELECT EXISTS (
			SELECT 1 FROM categories WHERE category_name = $1 AND slug = $2 AND id <> $3
		)
	`, name, slug, id)
	if err != nil {
		return nil, fmt.Errorf("check category duplicate: %w", err)
	}
	if duplicate {
		return nil, fmt.Errorf("%w: another category already uses %q / %q", ErrConflict, name, slug)
	}

	var c models.Category
	err = s.db.GetContext(ctx, &c, `
		UPDATE categories
		SET category_name = $1, slug = $2, image_path = $3
		WHERE id = $4
		RETURNING `+categoryColumns,
		name, slug, emptyToNil(imagePath), id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %d", ErrNotFound, id)
	}
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: category slug %q already exists", ErrConflict, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return &c, nil
}

// Delete removes a category. Products that referenced it keep existing with
// a NULL category.
func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: category %d", ErrNotFound, id)
	}
	return nil
}

func validateCategory(name, categorySlug string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("category name is required")
	}
	if strings.TrimSpace(categorySlug) == "" {
		return invalid("slug is required")
	}
	if !slug.Valid(categorySlug) {
		return invalid("slug %q must be lowercase letters, digits and hyphens", categorySlug)
	}
	return nil
}

// emptyToNil treats an empty optional path as absent.
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
