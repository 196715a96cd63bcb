package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportRequest struct {
	StartDate         time.Time
	EndDate           time.Time
	CustomerSelection string
	SelectedIDs       []string
	SortKey           string
	SortDirection     string
}

type DashboardRequest struct {
	CustomerSelection string
	SelectedIDs       []string
	SortKey           string
	SortDirection     string
}

// Repository reads the aggregate inputs in whole-table batches so the
// dashboard is a fixed number of queries however many customers exist.
type Repository interface {
	// InvoiceOutstandingByCustomer sums amount_outstanding across
	// non-paid invoices, keyed by customer.
	InvoiceOutstandingByCustomer(ctx context.Context, db *gorm.DB) (map[snowflake.ID]decimal.Decimal, error)
	// OpeningBalanceAllocations sums opening-balance allocations per
	// customer.
	OpeningBalanceAllocations(ctx context.Context, db *gorm.DB) (map[snowflake.ID]decimal.Decimal, error)
	// UnappliedCreditByCustomer sums per-payment shortfalls per customer.
	UnappliedCreditByCustomer(ctx context.Context, db *gorm.DB) (map[snowflake.ID]decimal.Decimal, error)
	// CustomersWithActiveSubscription lists customers holding at least
	// one active subscription.
	CustomersWithActiveSubscription(ctx context.Context, db *gorm.DB) (map[snowflake.ID]bool, error)
	// Deliveries, Sales, and Payments feed the dated report ledger.
	Deliveries(ctx context.Context, db *gorm.DB, start, end time.Time) ([]DeliveryRecord, error)
	Sales(ctx context.Context, db *gorm.DB, start, end time.Time) ([]SaleRecord, error)
	Payments(ctx context.Context, db *gorm.DB, start, end time.Time) ([]PaymentRecord, error)
}

type Service interface {
	// Dashboard computes every active customer's outstanding as of now.
	Dashboard(context.Context, DashboardRequest) (Dashboard, error)
	// CustomerOutstanding computes one customer's figures.
	CustomerOutstanding(ctx context.Context, customerID string) (CustomerOutstanding, error)
	// Report reconstructs per-customer statements for a window from raw
	// deliveries, sales, and payments.
	Report(context.Context, ReportRequest) (Report, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidWindow   = errors.New("invalid_date_window")
	ErrNotFound        = errors.New("not_found")
)
