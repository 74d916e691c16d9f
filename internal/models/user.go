// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import "time"

// User is the administrative identity. There is exactly one in practice.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"` // Never serialize the hash
	TOTPSecret   *string   `db:"totp_secret" json:"-"`   // Nullable; set during 2FA setup
	TOTPEnabled  bool      `db:"totp_enabled" json:"totp_enabled"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Requires2FA returns true if login must also present a TOTP code.
func (u *User) Requires2FA() bool {
	return u.TOTPEnabled && u.TOTPSecret != nil
}
