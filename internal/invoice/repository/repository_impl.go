package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/invoice/domain"
	orderdomain "github.com/freshvale/dairyops/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Create(inv).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, inv *domain.Invoice) error {
	return db.WithContext(ctx).Save(inv).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Invoice{}, "id = ?", id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, period_label, period_start, period_end,
		        subscription_amount, sales_amount, gst_amount, total_amount,
		        amount_paid, amount_outstanding, status, created_at, updated_at
		 FROM invoices WHERE id = ?`,
		id,
	).Scan(&inv).Error
	if err != nil {
		return nil, err
	}
	if inv.ID == 0 {
		return nil, nil
	}
	return &inv, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		stmt = stmt.Where("status = ?", *filter.Status)
	}
	if filter.PeriodLabel != "" {
		stmt = stmt.Where("period_label = ?", filter.PeriodLabel)
	}
	if err := stmt.Order("period_start desc, id desc").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) SubscriptionLines(ctx context.Context, db *gorm.DB, customerID snowflake.ID, start, end time.Time) ([]domain.OrderLine, error) {
	var lines []domain.OrderLine
	err := db.WithContext(ctx).Raw(
		`SELECT o.product_id, p.gst_rate, SUM(o.total_amount) AS amount
		 FROM daily_orders o
		 JOIN products p ON p.id = o.product_id
		 WHERE o.customer_id = ?
		   AND o.order_date >= ? AND o.order_date <= ?
		   AND o.status = ?
		 GROUP BY o.product_id, p.gst_rate
		 ORDER BY o.product_id`,
		customerID,
		start,
		end,
		orderdomain.StatusDelivered,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) DeleteAllocations(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM payment_allocations WHERE target_type = 'INVOICE' AND target_id = ?`,
		invoiceID,
	).Error
}
