// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlaceholderImage is shown for products that have no images left.
const PlaceholderImage = "/placeholder.svg"

// Status is the stock state of a product.
type Status string

const (
	StatusInStock    Status = "In Stock"
	StatusOutOfStock Status = "Out of Stock"
)

// Valid reports whether s is one of the statuses the store writes.
func (s Status) Valid() bool {
	return s == StatusInStock || s == StatusOutOfStock
}

// Product is a single menu item. Category references Category.ID and is nil
// once the referenced category has been deleted.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Category    *int64          `db:"category" json:"category"`
	Images      ImageList       `db:"images" json:"images"`
	Status      Status          `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// ProductListItem is a product joined with its category for listings.
type ProductListItem struct {
	Product
	CategoryName string `db:"category_name" json:"category_name"`
	ImagePath    string `db:"-" json:"image_path"`
}
