package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/config"
	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	invoicedomain "github.com/freshvale/dairyops/internal/invoice/domain"
	"github.com/freshvale/dairyops/internal/payment/domain"
	saledomain "github.com/freshvale/dairyops/internal/sale/domain"
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
	Customers customerdomain.Repository
	Invoices  invoicedomain.Repository
	Sales     saledomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	customers customerdomain.Repository
	invoices  invoicedomain.Repository
	sales     saledomain.Repository
	policy    domain.OverAllocationPolicy
}

func New(p Params) domain.Service {
	policy := domain.PolicyWarn
	if p.Config.OverAllocationPolicy == string(domain.PolicyReject) {
		policy = domain.PolicyReject
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payment.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		customers: p.Customers,
		invoices:  p.Invoices,
		sales:     p.Sales,
		policy:    policy,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordPaymentRequest) (domain.RecordPaymentResponse, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.RecordPaymentResponse{}, domain.ErrInvalidCustomer
	}
	if !req.Amount.IsPositive() {
		return domain.RecordPaymentResponse{}, domain.ErrInvalidAmount
	}

	var resp domain.RecordPaymentResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.customers.FindByID(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrInvalidCustomer
		}

		pools, err := s.loadPools(ctx, tx, *customer)
		if err != nil {
			return err
		}

		var allocs []domain.Allocation
		overAllocated := false
		if req.AutoAllocate {
			allocs = domain.AutoAllocate(req.Amount, pools)
		} else {
			requested, err := parseAllocationRequests(req.Allocations)
			if err != nil {
				return err
			}
			allocs = domain.ClampManual(pools, requested)
			overAllocated, err = domain.CheckOverAllocation(req.Amount, allocs, s.policy)
			if err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		payment := domain.Payment{
			ID:          s.genID.Generate(),
			CustomerID:  customerID,
			Amount:      req.Amount,
			PaymentDate: dateOnly(req.PaymentDate),
			Method:      normalizeMethod(req.Method),
			Note:        strings.TrimSpace(req.Note),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.InsertPayment(ctx, tx, &payment); err != nil {
			return err
		}

		rows := make([]domain.PaymentAllocation, 0, len(allocs))
		for _, a := range allocs {
			rows = append(rows, domain.PaymentAllocation{
				ID:         s.genID.Generate(),
				PaymentID:  payment.ID,
				CustomerID: customerID,
				TargetType: a.Type,
				TargetID:   a.TargetID,
				Amount:     a.Amount,
				CreatedAt:  now,
			})
		}
		if err := s.repo.InsertAllocations(ctx, tx, rows); err != nil {
			return err
		}
		if err := s.applyAllocations(ctx, tx, allocs); err != nil {
			return err
		}

		allocated := domain.AllocatedTotal(allocs)
		credit := req.Amount.Sub(allocated)
		if credit.IsNegative() {
			credit = decimal.Zero
		}
		resp = domain.RecordPaymentResponse{
			Payment:         payment,
			Allocations:     allocs,
			AllocatedTotal:  allocated,
			UnappliedCredit: credit,
			OverAllocated:   overAllocated,
		}
		return nil
	})
	if err != nil {
		return domain.RecordPaymentResponse{}, err
	}

	s.log.Info("recorded payment",
		zap.String("customer_id", customerID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("allocated", resp.AllocatedTotal.String()),
		zap.Bool("over_allocated", resp.OverAllocated),
	)
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.repo.FindPaymentByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if payment == nil {
			return domain.ErrNotFound
		}

		allocs, err := s.repo.ListAllocationsByPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, a := range allocs {
			if err := s.revertAllocation(ctx, tx, a); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteAllocationsByPayment(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.DeletePayment(ctx, tx, id)
	})
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Payment, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Payment{}, err
	}
	payment, err := s.repo.FindPaymentByID(ctx, s.db, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment == nil {
		return domain.Payment{}, domain.ErrNotFound
	}
	return *payment, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentRequest) ([]domain.Payment, error) {
	filter := domain.ListPaymentFilter{StartDate: req.StartDate, EndDate: req.EndDate}
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
		if err != nil || customerID == 0 {
			return nil, domain.ErrInvalidCustomer
		}
		filter.CustomerID = &customerID
	}

	items, err := s.repo.ListPayments(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		payments = append(payments, *item)
	}
	return payments, nil
}

func (s *Service) Pools(ctx context.Context, rawCustomerID string) (domain.PoolsResponse, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(rawCustomerID))
	if err != nil || customerID == 0 {
		return domain.PoolsResponse{}, domain.ErrInvalidCustomer
	}
	customer, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.PoolsResponse{}, err
	}
	if customer == nil {
		return domain.PoolsResponse{}, domain.ErrNotFound
	}

	pools, err := s.loadPools(ctx, s.db, *customer)
	if err != nil {
		return domain.PoolsResponse{}, err
	}
	credit, err := s.repo.UnappliedCredit(ctx, s.db, customerID)
	if err != nil {
		return domain.PoolsResponse{}, err
	}
	return domain.PoolsResponse{
		CustomerID:      customerID,
		Pools:           pools,
		UnappliedCredit: credit,
	}, nil
}

// loadPools builds the allocation-eligible items: the opening-balance
// pseudo-item at its effective (unallocated) amount, unpaid invoices at
// their outstanding, and pending credit sales at their total.
func (s *Service) loadPools(ctx context.Context, db *gorm.DB, customer customerdomain.Customer) ([]domain.Pool, error) {
	var pools []domain.Pool

	allocated, err := s.repo.AllocatedToOpeningBalance(ctx, db, customer.ID)
	if err != nil {
		return nil, err
	}
	effective := customer.OpeningBalance.Sub(allocated)
	if effective.IsPositive() {
		pools = append(pools, domain.Pool{
			Type:      domain.TargetOpeningBalance,
			Label:     "Opening balance",
			MaxAmount: effective,
		})
	}

	invoices, err := s.invoices.List(ctx, db, invoicedomain.ListInvoiceFilter{CustomerID: &customer.ID})
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if inv.Status == invoicedomain.StatusPaid || !inv.AmountOutstanding.IsPositive() {
			continue
		}
		id := inv.ID
		pools = append(pools, domain.Pool{
			Type:      domain.TargetInvoice,
			TargetID:  &id,
			Label:     "Invoice " + inv.PeriodLabel,
			MaxAmount: inv.AmountOutstanding,
			Date:      inv.PeriodStart,
		})
	}

	pending := saledomain.StatusPending
	sales, err := s.sales.List(ctx, db, saledomain.ListSaleFilter{CustomerID: &customer.ID, Status: &pending})
	if err != nil {
		return nil, err
	}
	for _, sale := range sales {
		id := sale.ID
		pools = append(pools, domain.Pool{
			Type:      domain.TargetSale,
			TargetID:  &id,
			Label:     "Credit sale " + sale.SaleDate.Format("2006-01-02"),
			MaxAmount: sale.TotalAmount,
			Date:      sale.SaleDate,
		})
	}
	return pools, nil
}

// applyAllocations pushes allocation effects into the denormalized
// invoice columns and sale statuses inside the payment transaction.
func (s *Service) applyAllocations(ctx context.Context, tx *gorm.DB, allocs []domain.Allocation) error {
	for _, a := range allocs {
		switch a.Type {
		case domain.TargetInvoice:
			if a.TargetID == nil {
				return domain.ErrInvalidTarget
			}
			inv, err := s.invoices.FindByID(ctx, tx, *a.TargetID)
			if err != nil {
				return err
			}
			if inv == nil {
				return domain.ErrInvalidTarget
			}
			inv.AmountPaid = inv.AmountPaid.Add(a.Amount)
			inv.AmountOutstanding = inv.AmountOutstanding.Sub(a.Amount)
			if !inv.AmountOutstanding.IsPositive() {
				inv.AmountOutstanding = decimal.Zero
				inv.Status = invoicedomain.StatusPaid
			}
			inv.UpdatedAt = time.Now().UTC()
			if err := s.invoices.Update(ctx, tx, inv); err != nil {
				return err
			}
		case domain.TargetSale:
			if a.TargetID == nil {
				return domain.ErrInvalidTarget
			}
			sale, err := s.sales.FindByID(ctx, tx, *a.TargetID)
			if err != nil {
				return err
			}
			if sale == nil {
				return domain.ErrInvalidTarget
			}
			// Partial coverage leaves the sale pending.
			if a.Amount.GreaterThanOrEqual(sale.TotalAmount) {
				sale.PaymentStatus = saledomain.StatusPaid
				sale.UpdatedAt = time.Now().UTC()
				if err := s.sales.Update(ctx, tx, sale); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Service) revertAllocation(ctx context.Context, tx *gorm.DB, a *domain.PaymentAllocation) error {
	switch a.TargetType {
	case domain.TargetInvoice:
		if a.TargetID == nil {
			return nil
		}
		inv, err := s.invoices.FindByID(ctx, tx, *a.TargetID)
		if err != nil || inv == nil {
			return err
		}
		inv.AmountPaid = inv.AmountPaid.Sub(a.Amount)
		if inv.AmountPaid.IsNegative() {
			inv.AmountPaid = decimal.Zero
		}
		inv.AmountOutstanding = inv.TotalAmount.Sub(inv.AmountPaid)
		if inv.Status == invoicedomain.StatusPaid && inv.AmountOutstanding.IsPositive() {
			inv.Status = invoicedomain.StatusSent
		}
		inv.UpdatedAt = time.Now().UTC()
		return s.invoices.Update(ctx, tx, inv)
	case domain.TargetSale:
		if a.TargetID == nil {
			return nil
		}
		sale, err := s.sales.FindByID(ctx, tx, *a.TargetID)
		if err != nil || sale == nil {
			return err
		}
		if sale.PaymentStatus == saledomain.StatusPaid {
			sale.PaymentStatus = saledomain.StatusPending
			sale.UpdatedAt = time.Now().UTC()
			return s.sales.Update(ctx, tx, sale)
		}
	}
	return nil
}

func parseAllocationRequests(reqs []domain.AllocationRequest) ([]domain.Allocation, error) {
	var out []domain.Allocation
	for _, req := range reqs {
		alloc := domain.Allocation{Amount: req.Amount}
		switch strings.ToUpper(strings.TrimSpace(req.Type)) {
		case string(domain.TargetOpeningBalance):
			alloc.Type = domain.TargetOpeningBalance
		case string(domain.TargetInvoice):
			alloc.Type = domain.TargetInvoice
		case string(domain.TargetSale):
			alloc.Type = domain.TargetSale
		default:
			return nil, domain.ErrInvalidTarget
		}
		if alloc.Type != domain.TargetOpeningBalance {
			id, err := snowflake.ParseString(strings.TrimSpace(req.TargetID))
			if err != nil || id == 0 {
				return nil, domain.ErrInvalidTarget
			}
			alloc.TargetID = &id
		}
		out = append(out, alloc)
	}
	return out, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func normalizeMethod(value string) string {
	method := strings.ToUpper(strings.TrimSpace(value))
	if method == "" {
		return "CASH"
	}
	return method
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
