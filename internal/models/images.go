// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ImageList is the ordered list of public image paths owned by a product.
// It is persisted as a JSON array in a text column.
type ImageList []string

// ParseImageList decodes a stored images value. Anything that is not a JSON
// array of strings yields an empty list instead of an error.
func ParseImageList(raw string) ImageList {
	if raw == "" {
		return ImageList{}
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil || list == nil {
		return ImageList{}
	}
	return ImageList(list)
}

// Scan implements sql.Scanner.
func (l *ImageList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = ImageList{}
	case string:
		*l = ParseImageList(v)
	case []byte:
		*l = ParseImageList(string(v))
	default:
		return fmt.Errorf("scan image list: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer. An empty or nil list is stored as "[]".
func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("encode image list: %w", err)
	}
	return string(b), nil
}

// MarshalJSON always emits an array, never null.
func (l ImageList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// First returns the first image path or the placeholder when empty.
func (l ImageList) First() string {
	if len(l) == 0 {
		return PlaceholderImage
	}
	return l[0]
}

// Contains reports whether path is in the list.
func (l ImageList) Contains(path string) bool {
	return l.index(path) >= 0
}

// Without returns a copy of the list with the first occurrence of path
// removed, and whether it was found. The order of the rest is preserved.
func (l ImageList) Without(path string) (ImageList, bool) {
	i := l.index(path)
	if i < 0 {
		return l, false
	}
	out := make(ImageList, 0, len(l)-1)
	out = append(out, l[:i]...)
	out = append(out, l[i+1:]...)
	return out, true
}

func (l ImageList) index(path string) int {
	for i, p := range l {
		if p == path {
			return i
		}
	}
	return -1
}
