package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/config"
	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	"github.com/freshvale/dairyops/internal/invoice/domain"
	productdomain "github.com/freshvale/dairyops/internal/product/domain"
	saledomain "github.com/freshvale/dairyops/internal/sale/domain"
	"github.com/freshvale/dairyops/pkg/db"
	"github.com/freshvale/dairyops/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config    config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Sales     saledomain.Repository
	Products  productdomain.Repository
	Customers customerdomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	repo           domain.Repository
	sales          saledomain.Repository
	products       productdomain.Repository
	customers      customerdomain.Repository
	defaultGSTRate decimal.Decimal
}

func New(p Params) domain.Service {
	rate, err := decimal.NewFromString(p.Config.DefaultGSTRate)
	if err != nil || rate.IsNegative() {
		rate = decimal.Zero
	}
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("invoice.service"),
		genID:          p.GenID,
		repo:           p.Repo,
		sales:          p.Sales,
		products:       p.Products,
		customers:      p.Customers,
		defaultGSTRate: rate,
	}
}

var hundred = decimal.NewFromInt(100)

func (s *Service) Generate(ctx context.Context, req domain.GenerateInvoiceRequest) (domain.Invoice, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCustomer
	}
	if req.Year < 2000 || req.Month < time.January || req.Month > time.December {
		return domain.Invoice{}, domain.ErrInvalidPeriod
	}

	customer, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if customer == nil {
		return domain.Invoice{}, domain.ErrInvalidCustomer
	}

	var inv domain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		inv, txErr = s.generate(ctx, tx, customerID, req.Year, req.Month)
		return txErr
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("generated invoice",
		zap.String("customer_id", customerID.String()),
		zap.String("period", inv.PeriodLabel),
		zap.String("total", inv.TotalAmount.String()),
	)
	return inv, nil
}

func (s *Service) GenerateBulk(ctx context.Context, req domain.GenerateBulkRequest) (domain.BulkResult, error) {
	if req.Year < 2000 || req.Month < time.January || req.Month > time.December {
		return domain.BulkResult{}, domain.ErrInvalidPeriod
	}

	active := true
	customers, err := s.customers.List(ctx, s.db, customerdomain.ListCustomerFilter{Active: &active}, paginationAll())
	if err != nil {
		return domain.BulkResult{}, err
	}

	result := domain.BulkResult{}
	for i, customer := range customers {
		var inv domain.Invoice
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var txErr error
			inv, txErr = s.generate(ctx, tx, customer.ID, req.Year, req.Month)
			return txErr
		})
		switch {
		case err == nil:
			result.Succeeded++
			result.Invoices = append(result.Invoices, inv)
		case err == domain.ErrNothingToBill || err == domain.ErrPeriodInvoiced:
			result.Skipped++
		default:
			result.Failed++
			result.Errors = append(result.Errors, domain.BulkItemError{
				Index:  i,
				ID:     customer.ID.String(),
				Reason: err.Error(),
			})
		}
	}
	return result, nil
}

// generate runs inside a transaction so the invoice insert and the sale
// status updates commit together.
func (s *Service) generate(ctx context.Context, tx *gorm.DB, customerID snowflake.ID, year int, month time.Month) (domain.Invoice, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	label := fmt.Sprintf("%04d-%02d", year, int(month))

	existing, err := s.repo.List(ctx, tx, domain.ListInvoiceFilter{CustomerID: &customerID, PeriodLabel: label})
	if err != nil {
		return domain.Invoice{}, err
	}
	if len(existing) > 0 {
		return domain.Invoice{}, domain.ErrPeriodInvoiced
	}

	lines, err := s.repo.SubscriptionLines(ctx, tx, customerID, start, end)
	if err != nil {
		return domain.Invoice{}, err
	}
	sales, err := s.sales.ListUninvoiced(ctx, tx, customerID, start, end)
	if err != nil {
		return domain.Invoice{}, err
	}
	if len(lines) == 0 && len(sales) == 0 {
		return domain.Invoice{}, domain.ErrNothingToBill
	}

	subscriptionAmount := decimal.Zero
	gstAmount := decimal.Zero
	for _, line := range lines {
		subscriptionAmount = subscriptionAmount.Add(line.Amount)
		gstAmount = gstAmount.Add(line.Amount.Mul(s.gstRate(line.GSTRate)).Div(hundred))
	}

	rates, err := s.productRates(ctx, tx)
	if err != nil {
		return domain.Invoice{}, err
	}
	salesAmount := decimal.Zero
	saleIDs := make([]snowflake.ID, 0, len(sales))
	for _, sale := range sales {
		salesAmount = salesAmount.Add(sale.TotalAmount)
		gstAmount = gstAmount.Add(sale.TotalAmount.Mul(s.gstRate(rates[sale.ProductID])).Div(hundred))
		saleIDs = append(saleIDs, sale.ID)
	}

	gstAmount = gstAmount.Round(2)
	total := subscriptionAmount.Add(salesAmount).Add(gstAmount)

	now := time.Now().UTC()
	inv := domain.Invoice{
		ID:                 s.genID.Generate(),
		CustomerID:         customerID,
		PeriodLabel:        label,
		PeriodStart:        start,
		PeriodEnd:          end,
		SubscriptionAmount: subscriptionAmount,
		SalesAmount:        salesAmount,
		GSTAmount:          gstAmount,
		TotalAmount:        total,
		AmountPaid:         decimal.Zero,
		AmountOutstanding:  total,
		Status:             domain.StatusGenerated,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Insert(ctx, tx, &inv); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrPeriodInvoiced
		}
		return domain.Invoice{}, err
	}
	if err := s.sales.MarkInvoiced(ctx, tx, saleIDs, inv.ID); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Invoice, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if inv == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *inv, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) ([]domain.Invoice, error) {
	filter := domain.ListInvoiceFilter{PeriodLabel: strings.TrimSpace(req.PeriodLabel)}
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
		if err != nil || customerID == 0 {
			return nil, domain.ErrInvalidCustomer
		}
		filter.CustomerID = &customerID
	}
	if strings.TrimSpace(req.Status) != "" {
		status, err := parseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		invoices = append(invoices, *item)
	}
	return invoices, nil
}

func (s *Service) MarkSent(ctx context.Context, rawID string) (domain.Invoice, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if inv == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	if inv.Status == domain.StatusPaid {
		return *inv, nil
	}
	inv.Status = domain.StatusSent
	inv.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, inv); err != nil {
		return domain.Invoice{}, err
	}
	return *inv, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.deleteOne(ctx, tx, id)
	})
}

// DeleteBulk deletes each invoice in its own transaction; a failure in
// one does not roll back the others, so it reports per-item results.
func (s *Service) DeleteBulk(ctx context.Context, ids []string) (domain.BulkResult, error) {
	result := domain.BulkResult{}
	for i, rawID := range ids {
		if err := s.Delete(ctx, rawID); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.BulkItemError{Index: i, ID: rawID, Reason: err.Error()})
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

func (s *Service) deleteOne(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	inv, err := s.repo.FindByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrNotFound
	}
	if inv.Status == domain.StatusPaid {
		return domain.ErrInvoicePaid
	}
	if err := s.sales.RevertInvoiced(ctx, tx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteAllocations(ctx, tx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, tx, id)
}

func (s *Service) gstRate(rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return s.defaultGSTRate
	}
	return rate
}

func (s *Service) productRates(ctx context.Context, tx *gorm.DB) (map[snowflake.ID]decimal.Decimal, error) {
	products, err := s.products.List(ctx, tx, false)
	if err != nil {
		return nil, err
	}
	rates := make(map[snowflake.ID]decimal.Decimal, len(products))
	for _, p := range products {
		rates[p.ID] = p.GSTRate
	}
	return rates, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// paginationAll disables the page limit for batch runs.
func paginationAll() pagination.Pagination {
	return pagination.Pagination{}
}

func parseStatus(value string) (domain.Status, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(domain.StatusGenerated):
		return domain.StatusGenerated, nil
	case string(domain.StatusSent):
		return domain.StatusSent, nil
	case string(domain.StatusPaid):
		return domain.StatusPaid, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}
