// Package domain contains date-ranged subscription modifications and the
// overlay rules that apply them to a base quantity.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeSkip     Type = "SKIP"
	TypeIncrease Type = "INCREASE"
	TypeDecrease Type = "DECREASE"
	TypeNote     Type = "NOTE"
)

// Modification overrides a customer+product's planned quantity across an
// inclusive date window. Several modifications may overlap one date.
type Modification struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID     snowflake.ID    `gorm:"not null;index:ix_modifications_customer_product" json:"customer_id"`
	ProductID      snowflake.ID    `gorm:"not null;index:ix_modifications_customer_product" json:"product_id"`
	Type           Type            `gorm:"type:text;not null" json:"type"`
	StartDate      time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate        time.Time       `gorm:"type:date;not null" json:"end_date"`
	QuantityChange decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0" json:"quantity_change"`
	Note           string          `gorm:"not null;default:''" json:"note"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Modification) TableName() string { return "modifications" }

// Key identifies the subscription line a modification applies to.
type Key struct {
	CustomerID snowflake.ID
	ProductID  snowflake.ID
}

func (m Modification) Key() Key {
	return Key{CustomerID: m.CustomerID, ProductID: m.ProductID}
}

// CoversDate reports whether date falls inside the inclusive window.
func (m Modification) CoversDate(date time.Time) bool {
	d := truncate(date)
	return !d.Before(truncate(m.StartDate)) && !d.After(truncate(m.EndDate))
}

func truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
