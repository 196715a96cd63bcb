// Package domain contains customer payments, their allocations against
// opening balance, invoices, and credit sales, and the greedy allocator.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TargetType names what an allocation is applied against.
type TargetType string

const (
	TargetOpeningBalance TargetType = "OPENING_BALANCE"
	TargetInvoice        TargetType = "INVOICE"
	TargetSale           TargetType = "SALE"
)

type Payment struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	CustomerID  snowflake.ID      `gorm:"not null;index:ix_payments_customer_date" json:"customer_id"`
	Amount      decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentDate time.Time         `gorm:"type:date;not null;index:ix_payments_customer_date" json:"payment_date"`
	Method      string            `gorm:"type:text;not null;default:'CASH'" json:"method"`
	Note        string            `gorm:"not null;default:''" json:"note"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Payment) TableName() string { return "payments" }

// PaymentAllocation applies part of a payment to one target. TargetID is
// nil for the opening-balance pseudo-item. The payment amount minus the
// sum of its allocations is the payment's unapplied credit.
type PaymentAllocation struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	PaymentID  snowflake.ID    `gorm:"not null;index" json:"payment_id"`
	CustomerID snowflake.ID    `gorm:"not null;index:ix_payment_allocations_customer" json:"customer_id"`
	TargetType TargetType      `gorm:"type:text;not null;index:ix_payment_allocations_customer" json:"target_type"`
	TargetID   *snowflake.ID   `json:"target_id,omitempty"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PaymentAllocation) TableName() string { return "payment_allocations" }
