// Package domain contains generated daily delivery orders and the batch
// planner that produces them from subscriptions and modifications.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// DailyOrder is one generated delivery row for (customer, product, date).
// UnitPrice is snapshotted from the product at generation time. Rows are
// immutable once generated except for status changes and whole-date
// delete/regenerate.
type DailyOrder struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID   snowflake.ID    `gorm:"not null;uniqueIndex:ux_daily_orders,priority:2" json:"customer_id"`
	ProductID    snowflake.ID    `gorm:"not null;uniqueIndex:ux_daily_orders,priority:3" json:"product_id"`
	RouteID      *snowflake.ID   `gorm:"index" json:"route_id,omitempty"`
	OrderDate    time.Time       `gorm:"type:date;not null;uniqueIndex:ux_daily_orders,priority:1" json:"order_date"`
	Quantity     decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	DeliverySlot string          `gorm:"type:text;not null;default:'MORNING'" json:"delivery_slot"`
	Status       Status          `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (DailyOrder) TableName() string { return "daily_orders" }
