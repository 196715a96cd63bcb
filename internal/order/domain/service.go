package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListOrderFilter struct {
	Date       *time.Time
	CustomerID *snowflake.ID
	RouteID    *snowflake.ID
	Status     *Status
}

type ListOrderRequest struct {
	Date       *time.Time
	CustomerID string
	RouteID    string
	Status     string
}

type UpdateOrderStatusRequest struct {
	ID     string
	Status string
}

// DeleteResult reports a whole-date delete.
type DeleteResult struct {
	Date    time.Time `json:"date"`
	Deleted int64     `json:"deleted"`
}

type Repository interface {
	// CountOnDate backs the existing-orders guard inside the
	// generation transaction.
	CountOnDate(ctx context.Context, db *gorm.DB, date time.Time) (int64, error)
	InsertBatch(ctx context.Context, db *gorm.DB, orders []DailyOrder) error
	DeleteByDate(ctx context.Context, db *gorm.DB, date time.Time) (int64, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DailyOrder, error)
	Update(ctx context.Context, db *gorm.DB, order *DailyOrder) error
	List(ctx context.Context, db *gorm.DB, filter ListOrderFilter) ([]*DailyOrder, error)
}

type Service interface {
	// Preview builds the plan for a date without writing anything.
	Preview(ctx context.Context, date time.Time) (Plan, error)
	// Generate builds and commits the plan. The no-existing-orders check
	// and the inserts run in one transaction, so concurrent runs for the
	// same date cannot both commit.
	Generate(ctx context.Context, date time.Time) (Plan, error)
	// DeleteByDate removes every order for the date so it can be
	// regenerated.
	DeleteByDate(ctx context.Context, date time.Time) (DeleteResult, error)
	UpdateStatus(ctx context.Context, req UpdateOrderStatusRequest) (DailyOrder, error)
	List(ctx context.Context, req ListOrderRequest) ([]DailyOrder, error)
}

var (
	ErrOrdersExist     = errors.New("orders_already_exist_for_date")
	ErrNoOrders        = errors.New("no_orders_for_date")
	ErrInvalidDate     = errors.New("invalid_date")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidStatus   = errors.New("invalid_order_status")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidRoute    = errors.New("invalid_route")
	ErrNotFound        = errors.New("not_found")
)
