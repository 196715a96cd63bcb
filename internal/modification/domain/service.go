package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateModificationRequest struct {
	CustomerID     string
	ProductID      string
	Type           string
	StartDate      time.Time
	EndDate        time.Time
	QuantityChange decimal.Decimal
	Note           string
}

type UpdateModificationRequest struct {
	ID             string
	StartDate      *time.Time
	EndDate        *time.Time
	QuantityChange *decimal.Decimal
	Note           *string
	IsActive       *bool
}

type ListModificationFilter struct {
	CustomerID *snowflake.ID
	ProductID  *snowflake.ID
	Active     *bool
	Date       *time.Time
}

type ListModificationRequest struct {
	CustomerID string
	ProductID  string
	Active     *bool
	Date       *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, mod *Modification) error
	Update(ctx context.Context, db *gorm.DB, mod *Modification) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Modification, error)
	List(ctx context.Context, db *gorm.DB, filter ListModificationFilter) ([]*Modification, error)
	// ActiveOn returns every active modification whose window covers
	// date, in one query for a whole generation run.
	ActiveOn(ctx context.Context, db *gorm.DB, date time.Time) ([]*Modification, error)
}

type Service interface {
	Create(context.Context, CreateModificationRequest) (Modification, error)
	Update(context.Context, UpdateModificationRequest) (Modification, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Modification, error)
	List(context.Context, ListModificationRequest) ([]Modification, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidProduct  = errors.New("invalid_product")
	ErrInvalidType     = errors.New("invalid_modification_type")
	ErrInvalidWindow   = errors.New("invalid_date_window")
	ErrInvalidQuantity = errors.New("invalid_quantity_change")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
