package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/sale/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).Create(sale).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, sale *domain.Sale) error {
	return db.WithContext(ctx).Save(sale).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Sale{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Sale, error) {
	var sale domain.Sale
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, product_id, sale_date, quantity, unit_price,
		        total_amount, payment_status, invoice_id, created_at, updated_at
		 FROM sales WHERE id = ?`,
		id,
	).Scan(&sale).Error
	if err != nil {
		return nil, err
	}
	if sale.ID == 0 {
		return nil, nil
	}
	return &sale, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListSaleFilter) ([]*domain.Sale, error) {
	var sales []*domain.Sale
	stmt := db.WithContext(ctx).Model(&domain.Sale{})
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		stmt = stmt.Where("payment_status = ?", *filter.Status)
	}
	if filter.StartDate != nil {
		stmt = stmt.Where("sale_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		stmt = stmt.Where("sale_date <= ?", *filter.EndDate)
	}
	if err := stmt.Order("sale_date desc, id desc").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repo) ListUninvoiced(ctx context.Context, db *gorm.DB, customerID snowflake.ID, start, end time.Time) ([]*domain.Sale, error) {
	var sales []*domain.Sale
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, product_id, sale_date, quantity, unit_price,
		        total_amount, payment_status, invoice_id, created_at, updated_at
		 FROM sales
		 WHERE customer_id = ?
		   AND payment_status = ?
		   AND invoice_id IS NULL
		   AND sale_date >= ? AND sale_date <= ?
		 ORDER BY sale_date, id`,
		customerID,
		domain.StatusPending,
		start,
		end,
	).Scan(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repo) MarkInvoiced(ctx context.Context, db *gorm.DB, saleIDs []snowflake.ID, invoiceID snowflake.ID) error {
	if len(saleIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("id IN ?", saleIDs).
		Updates(map[string]any{
			"payment_status": domain.StatusInvoiced,
			"invoice_id":     invoiceID,
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (r *repo) RevertInvoiced(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("invoice_id = ?", invoiceID).
		Updates(map[string]any{
			"payment_status": domain.StatusPending,
			"invoice_id":     nil,
			"updated_at":     time.Now().UTC(),
		}).Error
}
