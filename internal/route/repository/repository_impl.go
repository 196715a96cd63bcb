package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/route/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, route *domain.Route) error {
	return db.WithContext(ctx).Create(route).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, route *domain.Route) error {
	return db.WithContext(ctx).Save(route).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Route, error) {
	var route domain.Route
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, code, is_active, created_at, updated_at
		 FROM routes WHERE id = ?`,
		id,
	).Scan(&route).Error
	if err != nil {
		return nil, err
	}
	if route.ID == 0 {
		return nil, nil
	}
	return &route, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*domain.Route, error) {
	var routes []*domain.Route
	stmt := db.WithContext(ctx).Model(&domain.Route{})
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	if err := stmt.Order("name asc").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}
