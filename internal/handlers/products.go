// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"qrmenu/internal/models"
	"qrmenu/internal/slug"
	"qrmenu/internal/store"
)

// ProductRepository is the part of store.ProductStore the handlers use.
type ProductRepository interface {
	List(ctx context.Context, categorySlug string) ([]models.ProductListItem, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, in store.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id int64, in store.ProductInput) (*models.Product, error)
	RemoveImage(ctx context.Context, id int64, path string) (models.ImageList, error)
	Delete(ctx context.Context, id int64) error
}

// Products groups the product endpoints. Removing an image or a product
// only changes rows; files left without a reference are collected by the
// sweep command.
type Products struct {
	store ProductRepository
}

// NewProducts creates the product handler group.
func NewProducts(store ProductRepository) *Products {
	return &Products{store: store}
}

// productRequest is the body of POST and PUT /products.
type productRequest struct {
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    json.RawMessage  `json:"category"`
	Images      models.ImageList `json:"images"`
	Status      models.Status    `json:"status"`
}

func (req productRequest) input() (store.ProductInput, error) {
	category, err := parseCategoryID(req.Category)
	if err != nil {
		return store.ProductInput{}, err
	}
	name := strings.TrimSpace(req.Name)
	if err := validateProductFields(name, req.Description, req.Images); err != nil {
		return store.ProductInput{}, err
	}
	return store.ProductInput{
		Name:        name,
		Description: req.Description,
		Price:       req.Price,
		Category:    category,
		Images:      req.Images,
		Status:      models.Status(strings.TrimSpace(string(req.Status))),
	}, nil
}

// parseCategoryID accepts the category id as a JSON number or a numeric
// string, since the admin console submits select values as strings.
// Absent, null and "" mean no category.
func parseCategoryID(raw json.RawMessage) (*int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: invalid category", errBadRequest)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
	} else {
		s = string(raw)
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: invalid category %s", errBadRequest, raw)
	}
	return &id, nil
}

// List returns products, optionally only those of ?category=<slug>. The
// filter is normalized the way stored slugs are.
func (h *Products) List(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("category"))
	category := slug.Generate(raw)
	if raw != "" && category == "" {
		writeJSON(w, http.StatusOK, []models.ProductListItem{})
		return
	}

	items, err := h.store.List(r.Context(), category)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get returns one product with its full image list.
func (h *Products) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create adds a product. At least one image is required.
func (h *Products) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	in, err := req.input()
	if err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.store.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update overwrites a product, including its image list.
func (h *Products) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	in, err := req.input()
	if err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product updated successfully",
		"product": p,
	})
}

// RemoveImage handles DELETE /products/{id} with body {"image": path}. The
// stored file is left in place.
func (h *Products) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Image string `json:"image"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Image) == "" {
		writeError(w, http.StatusBadRequest, "Image path is required")
		return
	}

	remaining, err := h.store.RemoveImage(r.Context(), id, req.Image)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Image removed successfully",
		"images":  remaining,
	})
}

// Delete handles DELETE /products?id=<id>.
func (h *Products) Delete(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Product ID is required")
		return
	}
	id, err := parseID(raw)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}
