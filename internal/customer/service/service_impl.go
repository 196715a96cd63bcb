package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/customer/domain"
	"github.com/freshvale/dairyops/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}
	if req.OpeningBalance.IsNegative() {
		return domain.Customer{}, domain.ErrInvalidBalance
	}

	slot, err := parseSlot(req.DeliverySlot)
	if err != nil {
		return domain.Customer{}, err
	}

	var routeID *snowflake.ID
	if strings.TrimSpace(req.RouteID) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(req.RouteID))
		if err != nil || id == 0 {
			return domain.Customer{}, domain.ErrInvalidRoute
		}
		routeID = &id
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:             s.genID.Generate(),
		Name:           name,
		Phone:          strings.TrimSpace(req.Phone),
		Address:        strings.TrimSpace(req.Address),
		RouteID:        routeID,
		DeliverySlot:   slot,
		OpeningBalance: req.OpeningBalance,
		IsActive:       true,
		Metadata:       datatypes.JSONMap{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Customer{}, domain.ErrInvalidName
		}
		customer.Name = name
	}
	if req.Phone != nil {
		customer.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		customer.Address = strings.TrimSpace(*req.Address)
	}
	if req.RouteID != nil {
		if strings.TrimSpace(*req.RouteID) == "" {
			customer.RouteID = nil
		} else {
			routeID, err := snowflake.ParseString(strings.TrimSpace(*req.RouteID))
			if err != nil || routeID == 0 {
				return domain.Customer{}, domain.ErrInvalidRoute
			}
			customer.RouteID = &routeID
		}
	}
	if req.DeliverySlot != nil {
		slot, err := parseSlot(*req.DeliverySlot)
		if err != nil {
			return domain.Customer{}, err
		}
		customer.DeliverySlot = slot
	}
	if req.OpeningBalance != nil {
		if req.OpeningBalance.IsNegative() {
			return domain.Customer{}, domain.ErrInvalidBalance
		}
		customer.OpeningBalance = *req.OpeningBalance
	}
	if req.IsActive != nil {
		customer.IsActive = *req.IsActive
	}
	customer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Customer, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Customer{}, err
	}
	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{
		Search: strings.TrimSpace(req.Search),
		Active: req.Active,
	}
	if strings.TrimSpace(req.RouteID) != "" {
		routeID, err := snowflake.ParseString(strings.TrimSpace(req.RouteID))
		if err != nil || routeID == 0 {
			return domain.ListCustomerResponse{}, domain.ErrInvalidRoute
		}
		filter.RouteID = &routeID
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(customer *domain.Customer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        customer.ID.String(),
			CreatedAt: customer.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		customers = append(customers, *item)
	}

	resp := domain.ListCustomerResponse{Customers: customers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseSlot(value string) (domain.DeliverySlot, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", string(domain.SlotMorning):
		return domain.SlotMorning, nil
	case string(domain.SlotEvening):
		return domain.SlotEvening, nil
	default:
		return "", domain.ErrInvalidSlot
	}
}
