// Package domain contains manual sales recorded outside the subscription
// flow, both cash and credit.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	// StatusPending marks a credit sale awaiting payment or invoicing.
	StatusPending PaymentStatus = "PENDING"
	// StatusPaid marks a sale settled in cash or by payment allocation.
	StatusPaid PaymentStatus = "PAID"
	// StatusInvoiced marks a credit sale rolled into an invoice; deleting
	// that invoice reverts the sale to pending.
	StatusInvoiced PaymentStatus = "INVOICED"
)

// Sale is a one-off sale. CustomerID is nil for walk-in cash sales.
type Sale struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID    *snowflake.ID   `gorm:"index:ix_sales_customer_date" json:"customer_id,omitempty"`
	ProductID     snowflake.ID    `gorm:"not null" json:"product_id"`
	SaleDate      time.Time       `gorm:"type:date;not null;index:ix_sales_customer_date" json:"sale_date"`
	Quantity      decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	PaymentStatus PaymentStatus   `gorm:"type:text;not null;default:'PENDING'" json:"payment_status"`
	InvoiceID     *snowflake.ID   `gorm:"index" json:"invoice_id,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Sale) TableName() string { return "sales" }
