// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"qrmenu/internal/imaging"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newDiskImageStore(t *testing.T) (*ImageStore, string) {
	t.Helper()
	root := t.TempDir()
	d, err := NewDisk(root)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	return NewImageStore(d), root
}

var uploadPath = regexp.MustCompile(`^/uploads/products/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.png$`)

func TestImageStoreSave(t *testing.T) {
	s, root := newDiskImageStore(t)
	data := pngBytes(t)

	p1, err := s.Save(t.Context(), data, "Photo.PNG")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !uploadPath.MatchString(p1) {
		t.Errorf("path %q does not match %s", p1, uploadPath)
	}

	onDisk := filepath.Join(root, filepath.FromSlash(p1[len(PublicPrefix):]))
	got, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("saved bytes differ from input")
	}

	// Same input twice yields two distinct files.
	p2, err := s.Save(t.Context(), data, "Photo.PNG")
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if p1 == p2 {
		t.Errorf("Save returned the same path twice: %s", p1)
	}
}

func TestImageStoreSaveRejectsNonImage(t *testing.T) {
	s, root := newDiskImageStore(t)

	_, err := s.Save(t.Context(), []byte("#!/bin/sh\necho hi\n"), "script.jpg")
	if !errors.Is(err, imaging.ErrUnsupportedType) {
		t.Fatalf("got %v, want ErrUnsupportedType", err)
	}

	entries, _ := os.ReadDir(filepath.Join(root, "products"))
	if len(entries) != 0 {
		t.Errorf("rejected upload left %d files behind", len(entries))
	}
}

func TestImageStoreSaveWriteFailure(t *testing.T) {
	s, _ := newDiskImageStore(t)
	s.newID = func() string { return "fixed" }

	if _, err := s.Save(t.Context(), pngBytes(t), "a.png"); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if _, err := s.Save(t.Context(), pngBytes(t), "a.png"); err == nil {
		t.Error("Save onto an existing name should fail, not overwrite")
	}
}

func TestImageStoreDelete(t *testing.T) {
	s, _ := newDiskImageStore(t)
	ctx := t.Context()

	p, err := s.Save(ctx, pngBytes(t), "a.png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	deleted, err := s.Delete(ctx, p)
	if err != nil || !deleted {
		t.Fatalf("Delete = %v, %v; want true, nil", deleted, err)
	}

	for _, path := range []string{p, "/uploads/products/never-existed.png", "/etc/passwd", "/uploads/products/../../go.mod", ""} {
		deleted, err := s.Delete(ctx, path)
		if err != nil || deleted {
			t.Errorf("Delete(%q) = %v, %v; want false, nil", path, deleted, err)
		}
	}
}

func TestImageStoreList(t *testing.T) {
	s, _ := newDiskImageStore(t)
	ctx := t.Context()

	p, err := s.Save(ctx, pngBytes(t), "a.png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	images, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(images) != 1 || images[0].Path != p {
		t.Fatalf("List = %v, want [%s]", images, p)
	}
	if images[0].ModTime.IsZero() {
		t.Error("List returned a zero ModTime")
	}
}

func TestImageStoreHandler(t *testing.T) {
	s, _ := newDiskImageStore(t)
	p, err := s.Save(t.Context(), pngBytes(t), "a.png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s = %d, want 200", p, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
}

func TestKeyFromPath(t *testing.T) {
	tests := []struct {
		path string
		key  string
		ok   bool
	}{
		{"/uploads/products/a.jpg", "products/a.jpg", true},
		{"/uploads/products/", "", false},
		{"/uploads/products/..", "", false},
		{"/uploads/products/../secret", "", false},
		{"/uploads/products/sub/a.jpg", "", false},
		{`/uploads/products/a\b.jpg`, "", false},
		{"/uploads/other/a.jpg", "", false},
		{"uploads/products/a.jpg", "", false},
		{"/placeholder.svg", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			key, ok := KeyFromPath(tt.path)
			if key != tt.key || ok != tt.ok {
				t.Errorf("KeyFromPath(%q) = %q, %v; want %q, %v", tt.path, key, ok, tt.key, tt.ok)
			}
		})
	}
}
