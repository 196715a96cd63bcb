package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/clock"
	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	"github.com/freshvale/dairyops/internal/outstanding/domain"
	paymentdomain "github.com/freshvale/dairyops/internal/payment/domain"
	"github.com/freshvale/dairyops/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Repo      domain.Repository
	Customers customerdomain.Repository
	Payments  paymentdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      domain.Repository
	customers customerdomain.Repository
	payments  paymentdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("outstanding.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		customers: p.Customers,
		payments:  p.Payments,
	}
}

func (s *Service) Dashboard(ctx context.Context, req domain.DashboardRequest) (domain.Dashboard, error) {
	rows, err := s.computeAll(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}

	rows, err = s.applySelection(rows, req.CustomerSelection, req.SelectedIDs, req.SortKey, req.SortDirection)
	if err != nil {
		return domain.Dashboard{}, err
	}

	dash := domain.Dashboard{
		Customers:            rows,
		TotalOutstanding:     decimal.Zero,
		TotalUnappliedCredit: decimal.Zero,
		AsOf:                 s.clock.Now(),
	}
	for _, row := range rows {
		dash.TotalOutstanding = dash.TotalOutstanding.Add(row.TotalOutstanding)
		dash.TotalUnappliedCredit = dash.TotalUnappliedCredit.Add(row.UnappliedCredit)
	}
	return dash, nil
}

func (s *Service) CustomerOutstanding(ctx context.Context, rawID string) (domain.CustomerOutstanding, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return domain.CustomerOutstanding{}, domain.ErrInvalidCustomer
	}
	customer, err := s.customers.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CustomerOutstanding{}, err
	}
	if customer == nil {
		return domain.CustomerOutstanding{}, domain.ErrNotFound
	}

	// The batch maps and the single-customer sums share the allocation
	// ledger, so both paths produce the same figures.
	invoiceOutstanding, err := s.repo.InvoiceOutstandingByCustomer(ctx, s.db)
	if err != nil {
		return domain.CustomerOutstanding{}, err
	}
	allocated, err := s.payments.AllocatedToOpeningBalance(ctx, s.db, id)
	if err != nil {
		return domain.CustomerOutstanding{}, err
	}
	credit, err := s.payments.UnappliedCredit(ctx, s.db, id)
	if err != nil {
		return domain.CustomerOutstanding{}, err
	}
	withSub, err := s.repo.CustomersWithActiveSubscription(ctx, s.db)
	if err != nil {
		return domain.CustomerOutstanding{}, err
	}

	return buildRow(*customer, allocated, invoiceOutstanding[id], credit, withSub[id]), nil
}

func (s *Service) Report(ctx context.Context, req domain.ReportRequest) (domain.Report, error) {
	start, end := dateOnly(req.StartDate), dateOnly(req.EndDate)
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return domain.Report{}, domain.ErrInvalidWindow
	}

	rows, err := s.computeAll(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	rows, err = s.applySelection(rows, req.CustomerSelection, req.SelectedIDs, req.SortKey, req.SortDirection)
	if err != nil {
		return domain.Report{}, err
	}

	deliveries, err := s.repo.Deliveries(ctx, s.db, start, end)
	if err != nil {
		return domain.Report{}, err
	}
	sales, err := s.repo.Sales(ctx, s.db, start, end)
	if err != nil {
		return domain.Report{}, err
	}
	payments, err := s.repo.Payments(ctx, s.db, start, end)
	if err != nil {
		return domain.Report{}, err
	}

	deliveriesBy := map[snowflake.ID][]domain.DeliveryRecord{}
	for _, d := range deliveries {
		deliveriesBy[d.CustomerID] = append(deliveriesBy[d.CustomerID], d)
	}
	salesBy := map[snowflake.ID][]domain.SaleRecord{}
	for _, sl := range sales {
		salesBy[sl.CustomerID] = append(salesBy[sl.CustomerID], sl)
	}
	paymentsBy := map[snowflake.ID][]domain.PaymentRecord{}
	for _, p := range payments {
		paymentsBy[p.CustomerID] = append(paymentsBy[p.CustomerID], p)
	}

	report := domain.Report{
		StartDate:  start,
		EndDate:    end,
		GrandTotal: decimal.Zero,
	}
	for _, row := range rows {
		st := domain.BuildStatement(row,
			deliveriesBy[row.CustomerID],
			salesBy[row.CustomerID],
			paymentsBy[row.CustomerID],
		)
		report.Statements = append(report.Statements, st)
		report.GrandTotal = report.GrandTotal.Add(row.TotalOutstanding)
	}
	return report, nil
}

// computeAll runs the canonical computation for every active customer
// with a fixed number of queries.
func (s *Service) computeAll(ctx context.Context) ([]domain.CustomerOutstanding, error) {
	active := true
	customers, err := s.customers.List(ctx, s.db, customerdomain.ListCustomerFilter{Active: &active}, pagination.Pagination{})
	if err != nil {
		return nil, err
	}

	invoiceOutstanding, err := s.repo.InvoiceOutstandingByCustomer(ctx, s.db)
	if err != nil {
		return nil, err
	}
	allocations, err := s.repo.OpeningBalanceAllocations(ctx, s.db)
	if err != nil {
		return nil, err
	}
	credits, err := s.repo.UnappliedCreditByCustomer(ctx, s.db)
	if err != nil {
		return nil, err
	}
	withSub, err := s.repo.CustomersWithActiveSubscription(ctx, s.db)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.CustomerOutstanding, 0, len(customers))
	for _, customer := range customers {
		rows = append(rows, buildRow(*customer,
			allocations[customer.ID],
			invoiceOutstanding[customer.ID],
			credits[customer.ID],
			withSub[customer.ID],
		))
	}
	return rows, nil
}

func (s *Service) applySelection(rows []domain.CustomerOutstanding, selection string, selectedIDs []string, sortKey, sortDirection string) ([]domain.CustomerOutstanding, error) {
	mode, err := domain.ParseSelection(selection)
	if err != nil {
		return nil, err
	}
	key, err := domain.ParseSortKey(sortKey)
	if err != nil {
		return nil, err
	}

	var selected []snowflake.ID
	if mode == domain.SelectSelected {
		for _, raw := range selectedIDs {
			id, err := snowflake.ParseString(strings.TrimSpace(raw))
			if err != nil || id == 0 {
				return nil, domain.ErrInvalidCustomer
			}
			selected = append(selected, id)
		}
	}

	rows = domain.Filter(rows, mode, selected)
	domain.Sort(rows, key, domain.ParseSortDirection(sortDirection))
	return rows, nil
}

func buildRow(customer customerdomain.Customer, allocated, invoiceOutstanding, credit decimal.Decimal, hasSub bool) domain.CustomerOutstanding {
	effective, total := domain.Compute(customer.OpeningBalance, allocated, invoiceOutstanding)
	return domain.CustomerOutstanding{
		CustomerID:              customer.ID,
		Name:                    customer.Name,
		Phone:                   customer.Phone,
		RouteID:                 customer.RouteID,
		OpeningBalance:          customer.OpeningBalance,
		EffectiveOpeningBalance: effective,
		InvoiceOutstanding:      invoiceOutstanding,
		TotalOutstanding:        total,
		UnappliedCredit:         credit,
		HasActiveSubscription:   hasSub,
	}
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
