package database

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"qrmenu/internal/slug"
)

//go:embed seed.yaml
var sampleMenu []byte

// SeedMenu is the development sample menu.
type SeedMenu struct {
	Categories []SeedCategory `yaml:"categories"`
	QRCode     *SeedQRCode    `yaml:"qr_code"`
}

// SeedCategory is one category with its products.
type SeedCategory struct {
	Name     string        `yaml:"name"`
	Slug     string        `yaml:"slug"`
	Products []SeedProduct `yaml:"products"`
}

// SeedProduct is one sample product. Status defaults to "In Stock".
type SeedProduct struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Price       decimal.Decimal `yaml:"price"`
	Status      string          `yaml:"status"`
}

// SeedQRCode is the initial QR configuration.
type SeedQRCode struct {
	MenuURL         string `yaml:"menu_url"`
	Size            int    `yaml:"size"`
	Color           string `yaml:"color"`
	BgColor         string `yaml:"bg_color"`
	ErrorCorrection string `yaml:"error_correction"`
}

// ParseSeedMenu decodes a YAML sample menu.
func ParseSeedMenu(data []byte) (*SeedMenu, error) {
	var m SeedMenu
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse seed menu: %w", err)
	}
	for i, c := range m.Categories {
		if c.Name == "" || c.Slug == "" {
			return nil, fmt.Errorf("parse seed menu: category %d needs name and slug", i)
		}
		if !slug.Valid(c.Slug) {
			return nil, fmt.Errorf("parse seed menu: category slug %q is not in slug form", c.Slug)
		}
		for j, p := range c.Products {
			if p.Name == "" {
				return nil, fmt.Errorf("parse seed menu: product %d of %q needs a name", j, c.Slug)
			}
			if p.Price.IsNegative() {
				return nil, fmt.Errorf("parse seed menu: product %q has a negative price", p.Name)
			}
		}
	}
	return &m, nil
}

// Seed creates the admin account if no user exists yet. The credentials come
// from configuration; the admin can change the password afterwards.
func Seed(db *sqlx.DB, username, password string) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("admin user already present, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (username, password_hash, totp_enabled)
		VALUES ($1, $2, FALSE)
	`, username, string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with admin user", "username", username)
	return nil
}

// SeedSampleMenu loads the embedded sample menu when the catalog is empty.
// Only used in development.
func SeedSampleMenu(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM categories"); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("catalog already populated, skipping sample menu")
		return nil
	}

	menu, err := ParseSeedMenu(sampleMenu)
	if err != nil {
		return err
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	products := 0
	for _, c := range menu.Categories {
		var categoryID int64
		err := tx.Get(&categoryID, `
			INSERT INTO categories (category_name, slug) VALUES ($1, $2) RETURNING id
		`, c.Name, c.Slug)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.Slug, err)
		}

		for _, p := range c.Products {
			status := p.Status
			if status == "" {
				status = "In Stock"
			}
			var description *string
			if p.Description != "" {
				description = &p.Description
			}
			_, err := tx.Exec(`
				INSERT INTO products (name, description, price, category, images, status)
				VALUES ($1, $2, $3, $4, '[]', $5)
			`, p.Name, description, p.Price, categoryID, status)
			if err != nil {
				return fmt.Errorf("seed insert product %q: %w", p.Name, err)
			}
			products++
		}
	}

	if q := menu.QRCode; q != nil {
		_, err := tx.Exec(`
			INSERT INTO qr_codes (menu_url, size, color, bg_color, error_correction)
			VALUES ($1, $2, $3, $4, $5)
		`, q.MenuURL, q.Size, q.Color, q.BgColor, q.ErrorCorrection)
		if err != nil {
			return fmt.Errorf("seed insert qr code: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("sample menu seeded", "categories", len(menu.Categories), "products", products)
	return nil
}
