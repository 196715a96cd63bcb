package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Route is a delivery route customers are grouped under.
type Route struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Code      string       `gorm:"not null;uniqueIndex" json:"code"`
	IsActive  bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Route) TableName() string { return "routes" }

type CreateRouteRequest struct {
	Name string
	Code string
}

type UpdateRouteRequest struct {
	ID       string
	Name     *string
	IsActive *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, route *Route) error
	Update(ctx context.Context, db *gorm.DB, route *Route) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Route, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*Route, error)
}

type Service interface {
	Create(context.Context, CreateRouteRequest) (Route, error)
	Update(context.Context, UpdateRouteRequest) (Route, error)
	GetByID(ctx context.Context, id string) (Route, error)
	List(ctx context.Context, activeOnly bool) ([]Route, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidCode = errors.New("invalid_code")
	ErrInvalidID   = errors.New("invalid_id")
	ErrCodeTaken   = errors.New("route_code_taken")
	ErrNotFound    = errors.New("not_found")
)
