package models

import "github.com/shopspring/decimal"

// Budget represents a monthly spending limit for a category.
// At most one row exists per (user_id, category, month, year); creating a
// duplicate key updates the existing row instead.
type Budget struct {
	Base
	UserID   uint            `gorm:"not null;index;uniqueIndex:idx_budget_key" json:"user_id"`
	Category string          `gorm:"not null;uniqueIndex:idx_budget_key" json:"category"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Month    int             `gorm:"not null;uniqueIndex:idx_budget_key" json:"month"`
	Year     int             `gorm:"not null;uniqueIndex:idx_budget_key" json:"year"`
}
