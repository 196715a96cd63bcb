package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DeliverySlot is the half-day a customer's orders go out in.
type DeliverySlot string

const (
	SlotMorning DeliverySlot = "MORNING"
	SlotEvening DeliverySlot = "EVENING"
)

// Customer is a subscriber or walk-in buyer. OpeningBalance is the static
// historical debt carried in from before invoicing; the effective figure is
// always derived from allocations, never stored.
type Customer struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name           string            `gorm:"not null" json:"name"`
	Phone          string            `gorm:"not null;default:''" json:"phone"`
	Address        string            `gorm:"not null;default:''" json:"address"`
	RouteID        *snowflake.ID     `gorm:"index" json:"route_id,omitempty"`
	DeliverySlot   DeliverySlot      `gorm:"type:text;not null;default:'MORNING'" json:"delivery_slot"`
	OpeningBalance decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0" json:"opening_balance"`
	IsActive       bool              `gorm:"not null;default:true" json:"is_active"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
