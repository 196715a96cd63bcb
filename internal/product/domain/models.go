// Package domain contains persistence models for the product catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Product is a sellable dairy item. Price is the current selling price;
// generated orders snapshot it so later price edits do not rewrite history.
type Product struct {
	ID        snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Unit      string          `gorm:"not null;default:'litre'" json:"unit"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	GSTRate   decimal.Decimal `gorm:"column:gst_rate;type:numeric(5,2);not null" json:"gst_rate"`
	IsActive  bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
