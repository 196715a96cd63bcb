package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	productdomain "github.com/freshvale/dairyops/internal/product/domain"
	"github.com/freshvale/dairyops/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Products productdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	products productdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("sale.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		products: p.Products,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSaleRequest) (domain.Sale, error) {
	sale, err := s.build(ctx, s.db, req)
	if err != nil {
		return domain.Sale{}, err
	}
	if err := s.repo.Insert(ctx, s.db, &sale); err != nil {
		return domain.Sale{}, err
	}
	return sale, nil
}

// CreateBulk inserts each row independently and reports per-row results;
// one bad row does not abort the rest.
func (s *Service) CreateBulk(ctx context.Context, reqs []domain.CreateSaleRequest) (domain.BulkResult, error) {
	result := domain.BulkResult{}
	for i, req := range reqs {
		sale, err := s.Create(ctx, req)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.BulkItemError{Index: i, Reason: err.Error()})
			continue
		}
		result.Succeeded++
		result.Sales = append(result.Sales, sale)
	}
	return result, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}
	sale, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if sale == nil {
		return domain.ErrNotFound
	}
	// Invoiced sales belong to their invoice; delete that first.
	if sale.PaymentStatus == domain.StatusInvoiced {
		return domain.ErrSaleInvoiced
	}
	return s.repo.Delete(ctx, s.db, id)
}

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

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Sale, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Sale{}, err
	}
	sale, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Sale{}, err
	}
	if sale == nil {
		return domain.Sale{}, domain.ErrNotFound
	}
	return *sale, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSaleRequest) ([]domain.Sale, error) {
	filter := domain.ListSaleFilter{StartDate: req.StartDate, EndDate: req.EndDate}
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
	sales := make([]domain.Sale, 0, len(items))
	for _, item := range items {
		sales = append(sales, *item)
	}
	return sales, nil
}

func (s *Service) build(ctx context.Context, db *gorm.DB, req domain.CreateSaleRequest) (domain.Sale, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil || productID == 0 {
		return domain.Sale{}, domain.ErrInvalidProduct
	}
	product, err := s.products.FindByID(ctx, db, productID)
	if err != nil {
		return domain.Sale{}, err
	}
	if product == nil {
		return domain.Sale{}, domain.ErrInvalidProduct
	}

	if req.Quantity.IsNegative() || req.Quantity.IsZero() {
		return domain.Sale{}, domain.ErrInvalidQuantity
	}
	if req.UnitPrice.IsNegative() {
		return domain.Sale{}, domain.ErrInvalidPrice
	}

	unitPrice := product.Price
	if req.UnitPrice.IsPositive() {
		unitPrice = req.UnitPrice
	}

	sale := domain.Sale{
		ID:            s.genID.Generate(),
		ProductID:     productID,
		SaleDate:      dateOnly(req.SaleDate),
		Quantity:      req.Quantity,
		UnitPrice:     unitPrice,
		TotalAmount:   req.Quantity.Mul(unitPrice),
		PaymentStatus: domain.StatusPending,
	}
	if req.Paid {
		sale.PaymentStatus = domain.StatusPaid
	}

	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
		if err != nil || customerID == 0 {
			return domain.Sale{}, domain.ErrInvalidCustomer
		}
		sale.CustomerID = &customerID
	} else if !req.Paid {
		// Credit needs someone to owe it.
		return domain.Sale{}, domain.ErrInvalidCustomer
	}

	now := time.Now().UTC()
	sale.CreatedAt = now
	sale.UpdatedAt = now
	return sale, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseStatus(value string) (domain.PaymentStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(domain.StatusPending):
		return domain.StatusPending, nil
	case string(domain.StatusPaid):
		return domain.StatusPaid, nil
	case string(domain.StatusInvoiced):
		return domain.StatusInvoiced, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
