// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package qrcode turns a saved QR configuration into something a browser can
// display: either a URL on the external rendering service or a PNG rendered
// in-process.
package qrcode

import (
	"fmt"
	"image/color"
	"net/url"
	"strconv"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"

	"qrmenu/internal/models"
)

// DefaultRenderURL is the public rendering service used when none is configured.
const DefaultRenderURL = "https://api.qrserver.com/v1/create-qr-code/"

// RenderURL builds the rendering service URL for cfg. Colors are passed
// without the leading '#'.
func RenderURL(base string, cfg models.QRConfig) (string, error) {
	if base == "" {
		base = DefaultRenderURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse render url: %w", err)
	}

	q := u.Query()
	q.Set("data", cfg.MenuURL)
	q.Set("size", fmt.Sprintf("%dx%d", cfg.Size, cfg.Size))
	q.Set("color", strings.TrimPrefix(cfg.Color, "#"))
	q.Set("bgcolor", strings.TrimPrefix(cfg.BgColor, "#"))
	q.Set("ecc", string(cfg.ErrorCorrection))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// PNG renders cfg as a size x size PNG image.
func PNG(cfg models.QRConfig) ([]byte, error) {
	fg, err := ParseHexColor(cfg.Color)
	if err != nil {
		return nil, err
	}
	bg, err := ParseHexColor(cfg.BgColor)
	if err != nil {
		return nil, err
	}

	q, err := goqrcode.New(cfg.MenuURL, RecoveryLevel(cfg.ErrorCorrection))
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	q.ForegroundColor = fg
	q.BackgroundColor = bg

	png, err := q.PNG(cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}
	return png, nil
}

// RecoveryLevel maps L/M/Q/H to the encoder's levels. Unknown values fall
// back to Medium.
func RecoveryLevel(ec models.ErrorCorrection) goqrcode.RecoveryLevel {
	switch ec {
	case models.ErrorCorrectionLow:
		return goqrcode.Low
	case models.ErrorCorrectionQuartile:
		return goqrcode.High
	case models.ErrorCorrectionHigh:
		return goqrcode.Highest
	default:
		return goqrcode.Medium
	}
}

// ParseHexColor parses "#RRGGBB".
func ParseHexColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("parse color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
