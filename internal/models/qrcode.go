// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ErrorCorrection is the QR redundancy level.
type ErrorCorrection string

const (
	ErrorCorrectionLow      ErrorCorrection = "L"
	ErrorCorrectionMedium   ErrorCorrection = "M"
	ErrorCorrectionQuartile ErrorCorrection = "Q"
	ErrorCorrectionHigh     ErrorCorrection = "H"
)

// Valid reports whether e is one of L, M, Q, H.
func (e ErrorCorrection) Valid() bool {
	switch e {
	case ErrorCorrectionLow, ErrorCorrectionMedium, ErrorCorrectionQuartile, ErrorCorrectionHigh:
		return true
	}
	return false
}

// QRConfig is one saved set of QR rendering parameters. Rows are only ever
// inserted; the newest one is the current configuration.
type QRConfig struct {
	ID              int64           `db:"id" json:"id"`
	MenuURL         string          `db:"menu_url" json:"menu_url"`
	Size            int             `db:"size" json:"size"`
	Color           string          `db:"color" json:"color"`
	BgColor         string          `db:"bg_color" json:"bg_color"`
	ErrorCorrection ErrorCorrection `db:"error_correction" json:"error_correction"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
