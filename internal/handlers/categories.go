// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"qrmenu/internal/models"
	"qrmenu/internal/slug"
	"qrmenu/internal/store"
)

// CategoryRepository is the part of store.CategoryStore the handlers use.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, name, slug string, imagePath *string) (*models.Category, error)
	Update(ctx context.Context, id int64, name, slug string, imagePath *string) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// Categories groups the category endpoints.
type Categories struct {
	store CategoryRepository
}

// NewCategories creates the category handler group.
func NewCategories(store CategoryRepository) *Categories {
	return &Categories{store: store}
}

// categoryRequest is the body of POST and PUT. The admin console sends
// "name" on create and "category_name" on update; both are accepted.
type categoryRequest struct {
	Name         string  `json:"name"`
	CategoryName string  `json:"category_name"`
	Slug         string  `json:"slug"`
	ImagePath    *string `json:"image_path"`
}

// fields returns the trimmed name and the normalized slug.
func (req categoryRequest) fields() (string, string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(req.CategoryName)
	}
	if name == "" {
		return "", "", fmt.Errorf("%w: name and slug are required", store.ErrValidation)
	}

	s := slug.Generate(req.Slug)
	if s == "" {
		return "", "", fmt.Errorf("%w: name and slug are required", store.ErrValidation)
	}

	if err := validateCategoryFields(name, s, req.ImagePath); err != nil {
		return "", "", err
	}
	return name, s, nil
}

// List returns every category, newest first.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Get returns one category.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	c, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GetBySlug returns the category behind a public menu route such as
// /menu/hot-drinks.
func (h *Categories) GetBySlug(w http.ResponseWriter, r *http.Request) {
	raw, err := url.PathUnescape(chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	key := slug.Generate(raw)
	if key == "" {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}

	c, err := h.store.FindBySlug(r.Context(), key)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "Category not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create adds a category. A slug that is already taken yields 409.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	name, s, err := req.fields()
	if err != nil {
		respondError(w, r, err)
		return
	}

	c, err := h.store.Create(r.Context(), name, s, req.ImagePath)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Update overwrites a category.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	name, s, err := req.fields()
	if err != nil {
		respondError(w, r, err)
		return
	}

	c, err := h.store.Update(r.Context(), id, name, s, req.ImagePath)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete removes a category. Its products keep existing without one.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
