// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging inspects uploaded files before they are stored. It sniffs
// the content type, checks it against the accepted image formats and reads
// raster dimensions from the header so that decompression bombs are
// rejected without a full decode.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxPixels caps width*height of accepted raster images.
// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
const MaxPixels = 100_000_000

var (
	// ErrUnsupportedType is returned for anything that is not an accepted image.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrTooManyPixels is returned when the declared dimensions exceed MaxPixels.
	ErrTooManyPixels = errors.New("image dimensions too large")
	// ErrCorrupt is returned when the header cannot be decoded.
	ErrCorrupt = errors.New("image data is corrupt")
)

// allowedTypes maps accepted MIME types to their canonical extension.
var allowedTypes = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

// extAliases lists extensions accepted for each type besides the canonical one.
var extAliases = map[string][]string{
	"image/jpeg": {".jpeg", ".jpe"},
}

// Info describes an accepted upload.
type Info struct {
	ContentType string
	Ext         string // lower-case, with leading dot
	Width       int    // zero for SVG
	Height      int    // zero for SVG
}

// Inspect validates data as an image. filename is only used for its
// extension: it decides SVG detection and, when it matches the detected
// type, is kept as the stored extension.
func Inspect(data []byte, filename string) (Info, error) {
	contentType := DetectContentType(data, filename)

	canonical, ok := allowedTypes[contentType]
	if !ok {
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	info := Info{ContentType: contentType, Ext: chooseExt(contentType, canonical, filename)}
	if contentType == "image/svg+xml" {
		return info, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Info{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, MaxPixels)
	}
	info.Width, info.Height = cfg.Width, cfg.Height
	return info, nil
}

// DetectContentType sniffs the first 512 bytes. DetectContentType reports
// SVG as XML or plain text, so the .svg extension promotes those results.
func DetectContentType(data []byte, filename string) string {
	sniff := data
	if len(sniff) > 512 {
		sniff = sniff[:512]
	}
	contentType := http.DetectContentType(sniff)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	if strings.EqualFold(filepath.Ext(filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		contentType = "image/svg+xml"
	}
	return contentType
}

func chooseExt(contentType, canonical, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == canonical {
		return ext
	}
	for _, alias := range extAliases[contentType] {
		if ext == alias {
			return ext
		}
	}
	return canonical
}
