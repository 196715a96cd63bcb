package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/subscription/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.Subscription, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Subscription{}, domain.ErrInvalidCustomer
	}
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil || productID == 0 {
		return domain.Subscription{}, domain.ErrInvalidProduct
	}

	subType, err := parseType(req.Type)
	if err != nil {
		return domain.Subscription{}, err
	}

	sub := domain.Subscription{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		ProductID:  productID,
		Type:       subType,
		IsActive:   true,
	}

	switch subType {
	case domain.TypeDaily:
		if req.Quantity.IsNegative() || req.Quantity.IsZero() {
			return domain.Subscription{}, domain.ErrInvalidQuantity
		}
		sub.Quantity = req.Quantity
	case domain.TypePattern:
		if req.Day1Quantity.IsNegative() || req.Day2Quantity.IsNegative() {
			return domain.Subscription{}, domain.ErrInvalidQuantity
		}
		if req.Day1Quantity.IsZero() && req.Day2Quantity.IsZero() {
			return domain.Subscription{}, domain.ErrInvalidQuantity
		}
		if req.PatternStartDate == nil {
			return domain.Subscription{}, domain.ErrMissingAnchor
		}
		anchor := req.PatternStartDate.UTC()
		sub.Day1Quantity = req.Day1Quantity
		sub.Day2Quantity = req.Day2Quantity
		sub.PatternStartDate = &anchor
	}

	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &sub); err != nil {
		return domain.Subscription{}, err
	}
	return sub, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateSubscriptionRequest) (domain.Subscription, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Subscription{}, err
	}

	sub, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	if sub == nil {
		return domain.Subscription{}, domain.ErrNotFound
	}

	if req.Quantity != nil {
		if req.Quantity.IsNegative() {
			return domain.Subscription{}, domain.ErrInvalidQuantity
		}
		sub.Quantity = *req.Quantity
	}
	if req.Day1Quantity != nil {
		if req.Day1Quantity.IsNegative() {
			return domain.Subscription{}, domain.ErrInvalidQuantity
		}
		sub.Day1Quantity = *req.Day1Quantity
	}
	if req.Day2Quantity != nil {
		if req.Day2Quantity.IsNegative() {
			return domain.Subscription{}, domain.ErrInvalidQuantity
		}
		sub.Day2Quantity = *req.Day2Quantity
	}
	if req.PatternStartDate != nil {
		anchor := req.PatternStartDate.UTC()
		sub.PatternStartDate = &anchor
	}
	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
	}
	sub.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, sub); err != nil {
		return domain.Subscription{}, err
	}
	return *sub, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Subscription, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Subscription{}, err
	}
	sub, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Subscription{}, err
	}
	if sub == nil {
		return domain.Subscription{}, domain.ErrNotFound
	}
	return *sub, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSubscriptionRequest) ([]domain.Subscription, error) {
	filter := domain.ListSubscriptionFilter{Active: req.Active}
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
		if err != nil || customerID == 0 {
			return nil, domain.ErrInvalidCustomer
		}
		filter.CustomerID = &customerID
	}
	if strings.TrimSpace(req.ProductID) != "" {
		productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
		if err != nil || productID == 0 {
			return nil, domain.ErrInvalidProduct
		}
		filter.ProductID = &productID
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	subs := make([]domain.Subscription, 0, len(items))
	for _, item := range items {
		subs = append(subs, *item)
	}
	return subs, nil
}

func (s *Service) ResolveQuantity(ctx context.Context, rawID string, dateOn time.Time) (decimal.Decimal, error) {
	sub, err := s.GetByID(ctx, rawID)
	if err != nil {
		return decimal.Zero, err
	}
	return sub.QuantityOn(dateOn), nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseType(value string) (domain.Type, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(domain.TypeDaily):
		return domain.TypeDaily, nil
	case string(domain.TypePattern):
		return domain.TypePattern, nil
	default:
		return "", domain.ErrInvalidType
	}
}
