package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/modification/domain"
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
		log:   p.Log.Named("modification.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateModificationRequest) (domain.Modification, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Modification{}, domain.ErrInvalidCustomer
	}
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil || productID == 0 {
		return domain.Modification{}, domain.ErrInvalidProduct
	}

	modType, err := parseType(req.Type)
	if err != nil {
		return domain.Modification{}, err
	}

	start, end := dateOnly(req.StartDate), dateOnly(req.EndDate)
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return domain.Modification{}, domain.ErrInvalidWindow
	}

	mod := domain.Modification{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		ProductID:  productID,
		Type:       modType,
		StartDate:  start,
		EndDate:    end,
		Note:       strings.TrimSpace(req.Note),
		IsActive:   true,
	}

	switch modType {
	case domain.TypeIncrease, domain.TypeDecrease:
		if req.QuantityChange.IsNegative() || req.QuantityChange.IsZero() {
			return domain.Modification{}, domain.ErrInvalidQuantity
		}
		mod.QuantityChange = req.QuantityChange
	}

	now := time.Now().UTC()
	mod.CreatedAt = now
	mod.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, &mod); err != nil {
		return domain.Modification{}, err
	}
	return mod, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateModificationRequest) (domain.Modification, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Modification{}, err
	}

	mod, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Modification{}, err
	}
	if mod == nil {
		return domain.Modification{}, domain.ErrNotFound
	}

	if req.StartDate != nil {
		mod.StartDate = dateOnly(*req.StartDate)
	}
	if req.EndDate != nil {
		mod.EndDate = dateOnly(*req.EndDate)
	}
	if mod.EndDate.Before(mod.StartDate) {
		return domain.Modification{}, domain.ErrInvalidWindow
	}
	if req.QuantityChange != nil {
		if req.QuantityChange.IsNegative() {
			return domain.Modification{}, domain.ErrInvalidQuantity
		}
		mod.QuantityChange = *req.QuantityChange
	}
	if req.Note != nil {
		mod.Note = strings.TrimSpace(*req.Note)
	}
	if req.IsActive != nil {
		mod.IsActive = *req.IsActive
	}
	mod.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, mod); err != nil {
		return domain.Modification{}, err
	}
	return *mod, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := s.parseID(rawID)
	if err != nil {
		return err
	}
	mod, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if mod == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Modification, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.Modification{}, err
	}
	mod, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Modification{}, err
	}
	if mod == nil {
		return domain.Modification{}, domain.ErrNotFound
	}
	return *mod, nil
}

func (s *Service) List(ctx context.Context, req domain.ListModificationRequest) ([]domain.Modification, error) {
	filter := domain.ListModificationFilter{Active: req.Active}
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
	if req.Date != nil {
		date := dateOnly(*req.Date)
		filter.Date = &date
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	mods := make([]domain.Modification, 0, len(items))
	for _, item := range items {
		mods = append(mods, *item)
	}
	return mods, nil
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
	case string(domain.TypeSkip):
		return domain.TypeSkip, nil
	case string(domain.TypeIncrease):
		return domain.TypeIncrease, nil
	case string(domain.TypeDecrease):
		return domain.TypeDecrease, nil
	case string(domain.TypeNote):
		return domain.TypeNote, nil
	default:
		return "", domain.ErrInvalidType
	}
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
