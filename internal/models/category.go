// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category groups products on the menu. Slug is the public route key and is
// unique across all categories.
type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"category_name" json:"category_name"`
	Slug      string    `db:"slug" json:"slug"`
	ImagePath *string   `db:"image_path" json:"image_path"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
