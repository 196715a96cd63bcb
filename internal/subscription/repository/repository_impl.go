package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Save(sub).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, product_id, type, quantity, day1_quantity, day2_quantity,
		        pattern_start_date, is_active, created_at, updated_at
		 FROM base_subscriptions WHERE id = ?`,
		id,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListSubscriptionFilter) ([]*domain.Subscription, error) {
	var subs []*domain.Subscription
	stmt := db.WithContext(ctx).Model(&domain.Subscription{})
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ProductID != nil {
		stmt = stmt.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Active != nil {
		stmt = stmt.Where("is_active = ?", *filter.Active)
	}
	if err := stmt.Order("created_at desc, id desc").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]*domain.Subscription, error) {
	var subs []*domain.Subscription
	err := db.WithContext(ctx).Raw(
		`SELECT s.id, s.customer_id, s.product_id, s.type, s.quantity, s.day1_quantity,
		        s.day2_quantity, s.pattern_start_date, s.is_active, s.created_at, s.updated_at
		 FROM base_subscriptions s
		 JOIN customers c ON c.id = s.customer_id
		 WHERE s.is_active = ? AND c.is_active = ?
		 ORDER BY s.customer_id, s.product_id`,
		true,
		true,
	).Scan(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
