package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateCustomerRequest struct {
	Name           string
	Phone          string
	Address        string
	RouteID        string
	DeliverySlot   string
	OpeningBalance decimal.Decimal
}

type UpdateCustomerRequest struct {
	ID             string
	Name           *string
	Phone          *string
	Address        *string
	RouteID        *string
	DeliverySlot   *string
	OpeningBalance *decimal.Decimal
	IsActive       *bool
}

type ListCustomerRequest struct {
	PageToken string
	PageSize  int
	Search    string
	RouteID   string
	Active    *bool
}

type ListCustomerFilter struct {
	Search  string
	RouteID *snowflake.ID
	Active  *bool
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	// FindByIDs loads a set of customers in one query for batch jobs.
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]*Customer, error)
	List(ctx context.Context, db *gorm.DB, filter ListCustomerFilter, page pagination.Pagination) ([]*Customer, error)
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
}

var (
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidRoute   = errors.New("invalid_route")
	ErrInvalidSlot    = errors.New("invalid_delivery_slot")
	ErrInvalidBalance = errors.New("invalid_opening_balance")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
)
