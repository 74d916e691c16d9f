// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"qrmenu/internal/imaging"
)

// Public path layout of uploaded product images.
const (
	PublicPrefix  = "/uploads/"
	ProductsDir   = "products/"
	ProductPrefix = PublicPrefix + ProductsDir
)

// ImageStore maps uploaded images to fresh public paths and deletes them by
// path. It knows nothing about which rows reference a path.
type ImageStore struct {
	backend Backend
	newID   func() string
}

// NewImageStore returns an ImageStore writing to backend.
func NewImageStore(backend Backend) *ImageStore {
	return &ImageStore{backend: backend, newID: uuid.NewString}
}

// Save validates data as an image and stores it under a new unique name that
// keeps the original extension. Returns the public path, e.g.
// "/uploads/products/0b6d...e1.jpg". The returned error wraps one of the
// imaging errors when data is not an acceptable image.
func (s *ImageStore) Save(ctx context.Context, data []byte, originalName string) (string, error) {
	info, err := imaging.Inspect(data, originalName)
	if err != nil {
		return "", fmt.Errorf("inspect upload: %w", err)
	}

	key := ProductsDir + s.newID() + info.Ext
	if err := s.backend.Put(ctx, key, info.ContentType, data); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return PublicPrefix + key, nil
}

// Delete removes the file behind publicPath and reports whether it existed.
// Paths outside the products directory are treated as absent.
func (s *ImageStore) Delete(ctx context.Context, publicPath string) (bool, error) {
	key, ok := KeyFromPath(publicPath)
	if !ok {
		return false, nil
	}
	deleted, err := s.backend.Delete(ctx, key)
	if err != nil {
		return false, fmt.Errorf("delete image: %w", err)
	}
	return deleted, nil
}

// StoredImage is a product image file and when it was last written.
type StoredImage struct {
	Path    string
	ModTime time.Time
}

// List returns every stored product image by public path.
func (s *ImageStore) List(ctx context.Context) ([]StoredImage, error) {
	objects, err := s.backend.List(ctx, ProductsDir)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	images := make([]StoredImage, 0, len(objects))
	for _, o := range objects {
		images = append(images, StoredImage{Path: PublicPrefix + o.Key, ModTime: o.ModTime})
	}
	return images, nil
}

// Handler serves GET /uploads/* from the backend.
func (s *ImageStore) Handler() http.Handler {
	return http.StripPrefix(strings.TrimSuffix(PublicPrefix, "/"), s.backend.Handler())
}

// KeyFromPath converts "/uploads/products/<name>" into the backend key
// "products/<name>". It rejects anything that is not a plain file name
// directly inside the products directory.
func KeyFromPath(publicPath string) (string, bool) {
	name, ok := strings.CutPrefix(publicPath, ProductPrefix)
	if !ok || name == "" || name == "." || name == ".." {
		return "", false
	}
	if strings.ContainsAny(name, `/\`) || path.Clean(name) != name {
		return "", false
	}
	return ProductsDir + name, true
}
