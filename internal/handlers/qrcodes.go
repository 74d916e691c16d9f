// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"qrmenu/internal/models"
	"qrmenu/internal/qrcode"
)

// QRConfigRepository is the part of store.QRCodeStore the handlers use.
type QRConfigRepository interface {
	Latest(ctx context.Context) (*models.QRConfig, error)
	Save(ctx context.Context, cfg models.QRConfig) (*models.QRConfig, error)
}

// QRCodes groups the QR configuration endpoints.
type QRCodes struct {
	store     QRConfigRepository
	renderURL string
}

// NewQRCodes creates the QR handler group. renderURL is the base of the
// external rendering service; empty selects qrcode.DefaultRenderURL.
func NewQRCodes(store QRConfigRepository, renderURL string) *QRCodes {
	return &QRCodes{store: store, renderURL: renderURL}
}

// qrResponse is a saved configuration plus the URL that renders it.
type qrResponse struct {
	*models.QRConfig
	RenderURL string `json:"render_url"`
}

func (h *QRCodes) respond(w http.ResponseWriter, r *http.Request, status int, cfg *models.QRConfig) {
	u, err := qrcode.RenderURL(h.renderURL, *cfg)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, status, qrResponse{QRConfig: cfg, RenderURL: u})
}

// Latest returns the newest configuration, or 404 before the first save.
func (h *QRCodes) Latest(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.Latest(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, cfg)
}

// Save appends a new configuration.
func (h *QRCodes) Save(w http.ResponseWriter, r *http.Request) {
	var cfg models.QRConfig
	if err := decodeJSON(w, r, &cfg); err != nil {
		respondError(w, r, err)
		return
	}

	saved, err := h.store.Save(r.Context(), cfg)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, saved)
}

// Image renders the newest configuration as a PNG.
func (h *QRCodes) Image(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.Latest(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	png, err := qrcode.PNG(*cfg)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
