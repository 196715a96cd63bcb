package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GenerateInvoiceRequest struct {
	CustomerID string
	Year       int
	Month      time.Month
}

type GenerateBulkRequest struct {
	Year  int
	Month time.Month
}

type ListInvoiceRequest struct {
	CustomerID  string
	Status      string
	PeriodLabel string
}

type ListInvoiceFilter struct {
	CustomerID  *snowflake.ID
	Status      *Status
	PeriodLabel string
}

// OrderLine is one product's delivered subscription total inside a
// period, with the rate needed to tax it.
type OrderLine struct {
	ProductID snowflake.ID    `json:"product_id"`
	GSTRate   decimal.Decimal `gorm:"column:gst_rate" json:"gst_rate"`
	Amount    decimal.Decimal `json:"amount"`
}

type BulkItemError struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

type BulkResult struct {
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	Errors    []BulkItemError `json:"errors,omitempty"`
	Invoices  []Invoice       `json:"invoices,omitempty"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, inv *Invoice) error
	Update(ctx context.Context, db *gorm.DB, inv *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter) ([]*Invoice, error)
	// SubscriptionLines sums delivered daily orders per product for the
	// customer and window, carrying each product's GST rate.
	SubscriptionLines(ctx context.Context, db *gorm.DB, customerID snowflake.ID, start, end time.Time) ([]OrderLine, error)
	// DeleteAllocations drops payment allocations that target the
	// invoice, freeing those amounts back into unapplied credit.
	DeleteAllocations(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error
}

type Service interface {
	// Generate builds one customer's invoice for a calendar month. The
	// sales it absorbs are marked invoiced in the same transaction.
	Generate(context.Context, GenerateInvoiceRequest) (Invoice, error)
	// GenerateBulk runs Generate for every active customer, skipping
	// those with nothing to bill, and reports per-customer results.
	GenerateBulk(context.Context, GenerateBulkRequest) (BulkResult, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(context.Context, ListInvoiceRequest) ([]Invoice, error)
	MarkSent(ctx context.Context, id string) (Invoice, error)
	// Delete removes an unpaid invoice, reverting its sales to pending
	// and releasing its payment allocations, all in one transaction.
	Delete(ctx context.Context, id string) error
	DeleteBulk(ctx context.Context, ids []string) (BulkResult, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrInvalidStatus   = errors.New("invalid_invoice_status")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrPeriodInvoiced  = errors.New("invoice_exists_for_period")
	ErrNothingToBill   = errors.New("nothing_to_bill")
	ErrInvoicePaid     = errors.New("paid_invoice_cannot_be_deleted")
)
