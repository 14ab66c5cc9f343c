package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID    string `json:"id" yaml:"id" validate:"required"`
	Name  string `json:"name" yaml:"name" validate:"required"`
	Image string `json:"image" yaml:"image"`
}

// Food is an orderable item. Category holds a category name, matched
// without regard to case.
type Food struct {
	ID          string          `json:"id" yaml:"id" validate:"required"`
	Name        string          `json:"name" yaml:"name" validate:"required"`
	Description string          `json:"description" yaml:"description"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Image       string          `json:"image" yaml:"image"`
	Category    string          `json:"category" yaml:"category"`
}

// Snapshot is a complete catalog. A newer snapshot replaces the previous
// one wholesale.
type Snapshot struct {
	Categories []Category `json:"categories" yaml:"categories" validate:"dive"`
	Foods      []Food     `json:"foods" yaml:"foods" validate:"dive"`
	Version    int64      `json:"version" yaml:"version"`
	UpdatedAt  time.Time  `json:"updated_at" yaml:"updated_at"`
}

// SameCategory reports whether a food's category label names category.
func SameCategory(label, category string) bool {
	return strings.EqualFold(strings.TrimSpace(label), strings.TrimSpace(category))
}
