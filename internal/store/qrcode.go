// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"

	"qrmenu/internal/models"
)

// QR size bounds in pixels.
const (
	MinQRSize = 50
	MaxQRSize = 2000
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// QRCodeStore keeps the history of QR configurations. Rows are only
// inserted; the newest row is the current configuration.
type QRCodeStore struct {
	db *sqlx.DB
}

// NewQRCodeStore creates a new QRCodeStore.
func NewQRCodeStore(db *sqlx.DB) *QRCodeStore {
	return &QRCodeStore{db: db}
}

const qrColumns = `id, menu_url, size, color, bg_color, error_correction, created_at`

// Latest returns the most recently saved configuration, or ErrNotFound when
// none has been saved yet.
func (s *QRCodeStore) Latest(ctx context.Context) (*models.QRConfig, error) {
	var q models.QRConfig
	err := s.db.GetContext(ctx, &q, `
		SELECT `+qrColumns+`
		FROM qr_codes
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no QR configuration saved", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest qr code: %w", err)
	}
	return &q, nil
}

// Save validates and appends a new configuration. Earlier rows are kept.
func (s *QRCodeStore) Save(ctx context.Context, cfg models.QRConfig) (*models.QRConfig, error) {
	if err := ValidateQRConfig(&cfg); err != nil {
		return nil, err
	}

	var q models.QRConfig
	err := s.db.GetContext(ctx, &q, `
		INSERT INTO qr_codes (menu_url, size, color, bg_color, error_correction)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+qrColumns,
		cfg.MenuURL, cfg.Size, cfg.Color, cfg.BgColor, cfg.ErrorCorrection,
	)
	if isCheckViolation(err) {
		return nil, invalid("qr configuration violates a value constraint")
	}
	if err != nil {
		return nil, fmt.Errorf("save qr code: %w", err)
	}
	return &q, nil
}

// ValidateQRConfig checks every field and normalizes colors to upper case.
func ValidateQRConfig(cfg *models.QRConfig) error {
	cfg.MenuURL = strings.TrimSpace(cfg.MenuURL)
	if cfg.MenuURL == "" {
		return invalid("menu_url is required")
	}
	u, err := url.Parse(cfg.MenuURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("menu_url must be an absolute http(s) URL")
	}

	if cfg.Size == 0 {
		return invalid("size is required")
	}
	if cfg.Size < MinQRSize || cfg.Size > MaxQRSize {
		return invalid("size must be between %d and %d", MinQRSize, MaxQRSize)
	}

	for _, c := range []struct {
		field string
		value *string
	}{{"color", &cfg.Color}, {"bg_color", &cfg.BgColor}} {
		if *c.value == "" {
			return invalid("%s is required", c.field)
		}
		if !hexColor.MatchString(*c.value) {
			return invalid("%s must look like #RRGGBB", c.field)
		}
		*c.value = strings.ToUpper(*c.value)
	}

	if cfg.ErrorCorrection == "" {
		return invalid("error_correction is required")
	}
	if !cfg.ErrorCorrection.Valid() {
		return invalid("error_correction must be one of L, M, Q, H")
	}
	return nil
}
