// Package domain contains monthly customer invoices built from delivered
// subscription orders and uninvoiced credit sales.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusGenerated Status = "GENERATED"
	StatusSent      Status = "SENT"
	StatusPaid      Status = "PAID"
)

// Invoice bills one customer for one period. AmountOutstanding is a
// denormalized convenience column; the outstanding aggregator treats the
// allocation ledger as ground truth and this column is kept in step with
// it inside payment transactions.
type Invoice struct {
	ID                 snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID         snowflake.ID    `gorm:"not null;uniqueIndex:ux_invoices_customer_period,priority:1" json:"customer_id"`
	PeriodLabel        string          `gorm:"not null;uniqueIndex:ux_invoices_customer_period,priority:2" json:"period_label"`
	PeriodStart        time.Time       `gorm:"type:date;not null" json:"period_start"`
	PeriodEnd          time.Time       `gorm:"type:date;not null" json:"period_end"`
	SubscriptionAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"subscription_amount"`
	SalesAmount        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"sales_amount"`
	GSTAmount          decimal.Decimal `gorm:"column:gst_amount;type:numeric(12,2);not null;default:0" json:"gst_amount"`
	TotalAmount        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_amount"`
	AmountPaid         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount_paid"`
	AmountOutstanding  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount_outstanding"`
	Status             Status          `gorm:"type:text;not null;default:'GENERATED'" json:"status"`
	CreatedAt          time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }
