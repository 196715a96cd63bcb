package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/payment/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) DeletePayment(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Payment{}, "id = ?", id).Error
}

func (r *repo) FindPaymentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, amount, payment_date, method, note, metadata,
		        created_at, updated_at
		 FROM payments WHERE id = ?`,
		id,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, filter domain.ListPaymentFilter) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	stmt := db.WithContext(ctx).Model(&domain.Payment{})
	if filter.CustomerID != nil {
		stmt = stmt.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.StartDate != nil {
		stmt = stmt.Where("payment_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		stmt = stmt.Where("payment_date <= ?", *filter.EndDate)
	}
	if err := stmt.Order("payment_date desc, id desc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) InsertAllocations(ctx context.Context, db *gorm.DB, allocs []domain.PaymentAllocation) error {
	if len(allocs) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(allocs).Error
}

func (r *repo) ListAllocationsByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]*domain.PaymentAllocation, error) {
	var allocs []*domain.PaymentAllocation
	err := db.WithContext(ctx).
		Model(&domain.PaymentAllocation{}).
		Where("payment_id = ?", paymentID).
		Order("id").
		Find(&allocs).Error
	if err != nil {
		return nil, err
	}
	return allocs, nil
}

func (r *repo) DeleteAllocationsByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.PaymentAllocation{}, "payment_id = ?", paymentID).Error
}

func (r *repo) AllocatedToOpeningBalance(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (decimal.Decimal, error) {
	return r.sum(ctx, db,
		`SELECT COALESCE(SUM(amount), 0) AS total
		 FROM payment_allocations
		 WHERE customer_id = ? AND target_type = ?`,
		customerID, domain.TargetOpeningBalance,
	)
}

func (r *repo) UnappliedCredit(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (decimal.Decimal, error) {
	// Per-payment shortfalls only: an over-allocated payment must not
	// cancel out another payment's credit.
	return r.sum(ctx, db,
		`SELECT COALESCE(SUM(credit), 0) AS total FROM (
		     SELECT p.amount - COALESCE(SUM(a.amount), 0) AS credit
		     FROM payments p
		     LEFT JOIN payment_allocations a ON a.payment_id = p.id
		     WHERE p.customer_id = ?
		     GROUP BY p.id, p.amount
		 ) shortfalls WHERE credit > 0`,
		customerID,
	)
}

func (r *repo) sum(ctx context.Context, db *gorm.DB, query string, args ...any) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
