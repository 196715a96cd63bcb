package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateSaleRequest struct {
	CustomerID string
	ProductID  string
	SaleDate   time.Time
	Quantity   decimal.Decimal
	// UnitPrice overrides the product's current price when positive.
	UnitPrice decimal.Decimal
	Paid      bool
}

type ListSaleRequest struct {
	CustomerID string
	Status     string
	StartDate  *time.Time
	EndDate    *time.Time
}

type ListSaleFilter struct {
	CustomerID *snowflake.ID
	Status     *PaymentStatus
	StartDate  *time.Time
	EndDate    *time.Time
}

// BulkItemError reports one failed row of a bulk operation.
type BulkItemError struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// BulkResult reports partial success: bulk operations are not
// all-or-nothing.
type BulkResult struct {
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Errors    []BulkItemError `json:"errors,omitempty"`
	Sales     []Sale          `json:"sales,omitempty"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sale *Sale) error
	Update(ctx context.Context, db *gorm.DB, sale *Sale) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Sale, error)
	List(ctx context.Context, db *gorm.DB, filter ListSaleFilter) ([]*Sale, error)
	// ListUninvoiced returns a customer's pending credit sales inside the
	// window that have not yet been rolled into an invoice.
	ListUninvoiced(ctx context.Context, db *gorm.DB, customerID snowflake.ID, start, end time.Time) ([]*Sale, error)
	// MarkInvoiced stamps sales with the invoice that absorbed them.
	MarkInvoiced(ctx context.Context, db *gorm.DB, saleIDs []snowflake.ID, invoiceID snowflake.ID) error
	// RevertInvoiced returns an invoice's sales to pending.
	RevertInvoiced(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error
}

type Service interface {
	Create(context.Context, CreateSaleRequest) (Sale, error)
	CreateBulk(ctx context.Context, reqs []CreateSaleRequest) (BulkResult, error)
	Delete(ctx context.Context, id string) error
	DeleteBulk(ctx context.Context, ids []string) (BulkResult, error)
	GetByID(ctx context.Context, id string) (Sale, error)
	List(context.Context, ListSaleRequest) ([]Sale, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidProduct  = errors.New("invalid_product")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidPrice    = errors.New("invalid_unit_price")
	ErrInvalidStatus   = errors.New("invalid_payment_status")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrSaleInvoiced    = errors.New("sale_already_invoiced")
)
