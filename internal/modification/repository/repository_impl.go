package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/modification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, mod *domain.Modification) error {
	return db.WithContext(ctx).Create(mod).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, mod *domain.Modification) error {
	return db.WithContext(ctx).Save(mod).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Modification{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Modification, error) {
	var mod domain.Modification
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, product_id, type, start_date, end_date,
		        quantity_change, note, is_active, created_at, updated_at
		 FROM modifications WHERE id = ?`,
		id,
	).Scan(&mod).Error
	if err != nil {
		return nil, err
	}
	if mod.ID == 0 {
		return nil, nil
	}
	return &mod, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListModificationFilter) ([]*domain.Modification, error) {
	var mods []*domain.Modification
	stmt := db.WithContext(ctx).Model(&domain.Modification{})
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ProductID != nil {
		stmt = stmt.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Active != nil {
		stmt = stmt.Where("is_active = ?", *filter.Active)
	}
	if filter.Date != nil {
		stmt = stmt.Where("start_date <= ? AND end_date >= ?", *filter.Date, *filter.Date)
	}
	if err := stmt.Order("start_date desc, id desc").Find(&mods).Error; err != nil {
		return nil, err
	}
	return mods, nil
}

func (r *repo) ActiveOn(ctx context.Context, db *gorm.DB, date time.Time) ([]*domain.Modification, error) {
	var mods []*domain.Modification
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, product_id, type, start_date, end_date,
		        quantity_change, note, is_active, created_at, updated_at
		 FROM modifications
		 WHERE is_active = ? AND start_date <= ? AND end_date >= ?
		 ORDER BY created_at, id`,
		true,
		date,
		date,
	).Scan(&mods).Error
	if err != nil {
		return nil, err
	}
	return mods, nil
}
