package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AllocationRequest struct {
	Type     string
	TargetID string
	Amount   decimal.Decimal
}

type RecordPaymentRequest struct {
	CustomerID  string
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string
	Note        string
	// AutoAllocate ignores Allocations and spreads the amount greedily.
	AutoAllocate bool
	Allocations  []AllocationRequest
}

// RecordPaymentResponse carries the saved payment plus what the
// allocator decided, so callers can show the operator where the money
// went and whether any was left as credit.
type RecordPaymentResponse struct {
	Payment         Payment         `json:"payment"`
	Allocations     []Allocation    `json:"allocations"`
	AllocatedTotal  decimal.Decimal `json:"allocated_total"`
	UnappliedCredit decimal.Decimal `json:"unapplied_credit"`
	OverAllocated   bool            `json:"over_allocated"`
}

type ListPaymentRequest struct {
	CustomerID string
	StartDate  *time.Time
	EndDate    *time.Time
}

type ListPaymentFilter struct {
	CustomerID *snowflake.ID
	StartDate  *time.Time
	EndDate    *time.Time
}

// PoolsResponse is the allocation dialog's data: every eligible item
// with its cap, plus the customer's current unapplied credit.
type PoolsResponse struct {
	CustomerID      snowflake.ID    `json:"customer_id"`
	Pools           []Pool          `json:"pools"`
	UnappliedCredit decimal.Decimal `json:"unapplied_credit"`
}

type Repository interface {
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	DeletePayment(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindPaymentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	ListPayments(ctx context.Context, db *gorm.DB, filter ListPaymentFilter) ([]*Payment, error)
	InsertAllocations(ctx context.Context, db *gorm.DB, allocs []PaymentAllocation) error
	ListAllocationsByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]*PaymentAllocation, error)
	DeleteAllocationsByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) error
	// AllocatedToOpeningBalance sums what has ever been applied against
	// the customer's opening balance.
	AllocatedToOpeningBalance(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (decimal.Decimal, error)
	// UnappliedCredit sums each payment's shortfall between its amount
	// and its allocations for the customer.
	UnappliedCredit(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (decimal.Decimal, error)
}

type Service interface {
	// Record saves a payment and its allocations in one transaction,
	// updating invoice paid/outstanding columns and sale statuses.
	Record(context.Context, RecordPaymentRequest) (RecordPaymentResponse, error)
	// Delete reverses a payment: invoice and sale effects are undone and
	// the allocations removed, in one transaction.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Payment, error)
	List(context.Context, ListPaymentRequest) ([]Payment, error)
	// Pools lists a customer's allocation-eligible items.
	Pools(ctx context.Context, customerID string) (PoolsResponse, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidTarget   = errors.New("invalid_allocation_target")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrOverAllocated   = errors.New("allocations_exceed_payment_amount")
)
