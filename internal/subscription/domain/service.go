package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateSubscriptionRequest struct {
	CustomerID       string
	ProductID        string
	Type             string
	Quantity         decimal.Decimal
	Day1Quantity     decimal.Decimal
	Day2Quantity     decimal.Decimal
	PatternStartDate *time.Time
}

type UpdateSubscriptionRequest struct {
	ID               string
	Quantity         *decimal.Decimal
	Day1Quantity     *decimal.Decimal
	Day2Quantity     *decimal.Decimal
	PatternStartDate *time.Time
	IsActive         *bool
}

type ListSubscriptionFilter struct {
	CustomerID *snowflake.ID
	ProductID  *snowflake.ID
	Active     *bool
}

type ListSubscriptionRequest struct {
	CustomerID string
	ProductID  string
	Active     *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	Update(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	List(ctx context.Context, db *gorm.DB, filter ListSubscriptionFilter) ([]*Subscription, error)
	// ListActive returns all active subscriptions belonging to active
	// customers, for batch order generation.
	ListActive(ctx context.Context, db *gorm.DB) ([]*Subscription, error)
}

type Service interface {
	Create(context.Context, CreateSubscriptionRequest) (Subscription, error)
	Update(context.Context, UpdateSubscriptionRequest) (Subscription, error)
	GetByID(ctx context.Context, id string) (Subscription, error)
	List(context.Context, ListSubscriptionRequest) ([]Subscription, error)
	// ResolveQuantity reports the planned base quantity for a date.
	ResolveQuantity(ctx context.Context, id string, date time.Time) (decimal.Decimal, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidProduct  = errors.New("invalid_product")
	ErrInvalidType     = errors.New("invalid_subscription_type")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrMissingAnchor   = errors.New("missing_pattern_start_date")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
