package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CountOnDate(ctx context.Context, db *gorm.DB, date time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.DailyOrder{}).
		Where("order_date = ?", date).
		Count(&count).Error
	return count, err
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, orders []domain.DailyOrder) error {
	if len(orders) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(orders, 200).Error
}

func (r *repo) DeleteByDate(ctx context.Context, db *gorm.DB, date time.Time) (int64, error) {
	result := db.WithContext(ctx).Where("order_date = ?", date).Delete(&domain.DailyOrder{})
	return result.RowsAffected, result.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.DailyOrder, error) {
	var order domain.DailyOrder
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, product_id, route_id, order_date, quantity,
		        unit_price, total_amount, delivery_slot, status, created_at, updated_at
		 FROM daily_orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *domain.DailyOrder) error {
	return db.WithContext(ctx).Save(order).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListOrderFilter) ([]*domain.DailyOrder, error) {
	var orders []*domain.DailyOrder
	stmt := db.WithContext(ctx).Model(&domain.DailyOrder{})
	if filter.Date != nil {
		stmt = stmt.Where("order_date = ?", *filter.Date)
	}
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.RouteID != nil {
		stmt = stmt.Where("route_id = ?", *filter.RouteID)
	}
	if filter.Status != nil {
		stmt = stmt.Where("status = ?", *filter.Status)
	}
	if err := stmt.Order("order_date desc, customer_id, product_id").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
