// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage persists uploaded menu images. Files live either on the
// local disk under the upload directory or in an S3-compatible public
// bucket; both are addressed by the same public path
// "/uploads/products/<id><ext>".
package storage

import (
	"context"
	"net/http"
	"time"
)

// Object is a stored blob as reported by List.
type Object struct {
	Key     string
	ModTime time.Time
}

// Backend stores opaque blobs under slash-separated keys such as
// "products/3f2a.jpg".
type Backend interface {
	// Put writes a new object. It must fail rather than replace an
	// existing key.
	Put(ctx context.Context, key, contentType string, data []byte) error
	// Delete removes key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns every object under prefix with its last modification
	// time.
	List(ctx context.Context, prefix string) ([]Object, error)
	// Handler serves GET requests whose path is "/<key>".
	Handler() http.Handler
}
