// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ImageStorage stores uploaded image files under public paths.
type ImageStorage interface {
	Save(ctx context.Context, data []byte, originalName string) (string, error)
}

// Upload accepts image files for products and categories.
type Upload struct {
	images   ImageStorage
	maxBytes int64
}

// NewUpload creates the upload handler. maxBytes caps the file size.
func NewUpload(images ImageStorage, maxBytes int64) *Upload {
	return &Upload{images: images, maxBytes: maxBytes}
}

// Handle stores the multipart field "file" and returns its public path.
func (h *Upload) Handle(w http.ResponseWriter, r *http.Request) {
	tooLarge := fmt.Sprintf("File too large. Maximum size is %d MB.", h.maxBytes>>20)

	// Leave room for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<16)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "Expected a multipart form upload.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "Uploaded file is empty.")
		return
	}

	path, err := h.images.Save(r.Context(), data, header.Filename)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filePath": path,
	})
}
