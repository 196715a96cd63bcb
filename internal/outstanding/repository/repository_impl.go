package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/freshvale/dairyops/internal/invoice/domain"
	orderdomain "github.com/freshvale/dairyops/internal/order/domain"
	"github.com/freshvale/dairyops/internal/outstanding/domain"
	paymentdomain "github.com/freshvale/dairyops/internal/payment/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type customerTotal struct {
	CustomerID snowflake.ID
	Total      decimal.Decimal
}

func (r *repo) InvoiceOutstandingByCustomer(ctx context.Context, db *gorm.DB) (map[snowflake.ID]decimal.Decimal, error) {
	return r.totals(ctx, db,
		`SELECT customer_id, COALESCE(SUM(amount_outstanding), 0) AS total
		 FROM invoices
		 WHERE status <> ?
		 GROUP BY customer_id`,
		invoicedomain.StatusPaid,
	)
}

func (r *repo) OpeningBalanceAllocations(ctx context.Context, db *gorm.DB) (map[snowflake.ID]decimal.Decimal, error) {
	return r.totals(ctx, db,
		`SELECT customer_id, COALESCE(SUM(amount), 0) AS total
		 FROM payment_allocations
		 WHERE target_type = ?
		 GROUP BY customer_id`,
		paymentdomain.TargetOpeningBalance,
	)
}

func (r *repo) UnappliedCreditByCustomer(ctx context.Context, db *gorm.DB) (map[snowflake.ID]decimal.Decimal, error) {
	return r.totals(ctx, db,
		`SELECT customer_id, COALESCE(SUM(credit), 0) AS total FROM (
		     SELECT p.customer_id, p.amount - COALESCE(SUM(a.amount), 0) AS credit
		     FROM payments p
		     LEFT JOIN payment_allocations a ON a.payment_id = p.id
		     GROUP BY p.id, p.customer_id, p.amount
		 ) shortfalls WHERE credit > 0 GROUP BY customer_id`,
	)
}

func (r *repo) CustomersWithActiveSubscription(ctx context.Context, db *gorm.DB) (map[snowflake.ID]bool, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT customer_id FROM base_subscriptions WHERE is_active = ?`,
		true,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[snowflake.ID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *repo) Deliveries(ctx context.Context, db *gorm.DB, start, end time.Time) ([]domain.DeliveryRecord, error) {
	var records []domain.DeliveryRecord
	err := db.WithContext(ctx).Raw(
		`SELECT o.customer_id, o.product_id, p.name AS product_name, o.order_date,
		        o.quantity, o.total_amount AS amount
		 FROM daily_orders o
		 JOIN products p ON p.id = o.product_id
		 WHERE o.order_date >= ? AND o.order_date <= ? AND o.status = ?
		 ORDER BY o.customer_id, o.order_date`,
		start,
		end,
		orderdomain.StatusDelivered,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) Sales(ctx context.Context, db *gorm.DB, start, end time.Time) ([]domain.SaleRecord, error) {
	var records []domain.SaleRecord
	err := db.WithContext(ctx).Raw(
		`SELECT s.customer_id, p.name AS product_name, s.sale_date, s.quantity,
		        s.total_amount AS amount
		 FROM sales s
		 JOIN products p ON p.id = s.product_id
		 WHERE s.customer_id IS NOT NULL
		   AND s.sale_date >= ? AND s.sale_date <= ?
		 ORDER BY s.customer_id, s.sale_date`,
		start,
		end,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) Payments(ctx context.Context, db *gorm.DB, start, end time.Time) ([]domain.PaymentRecord, error) {
	var records []domain.PaymentRecord
	err := db.WithContext(ctx).Raw(
		`SELECT customer_id, payment_date, method, amount
		 FROM payments
		 WHERE payment_date >= ? AND payment_date <= ?
		 ORDER BY customer_id, payment_date`,
		start,
		end,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) totals(ctx context.Context, db *gorm.DB, query string, args ...any) (map[snowflake.ID]decimal.Decimal, error) {
	var rows []customerTotal
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[snowflake.ID]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.CustomerID] = row.Total
	}
	return out, nil
}
