package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/freshvale/dairyops/internal/route/domain"
	"github.com/freshvale/dairyops/pkg/db"
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
		log:   p.Log.Named("route.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRouteRequest) (domain.Route, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Route{}, domain.ErrInvalidName
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.Route{}, domain.ErrInvalidCode
	}

	now := time.Now().UTC()
	route := domain.Route{
		ID:        s.genID.Generate(),
		Name:      name,
		Code:      code,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &route); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Route{}, domain.ErrCodeTaken
		}
		return domain.Route{}, err
	}
	return route, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRouteRequest) (domain.Route, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Route{}, err
	}

	route, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Route{}, err
	}
	if route == nil {
		return domain.Route{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Route{}, domain.ErrInvalidName
		}
		route.Name = name
	}
	if req.IsActive != nil {
		route.IsActive = *req.IsActive
	}
	route.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, route); err != nil {
		return domain.Route{}, err
	}
	return *route, nil
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Route, error) {
	id, err := parseID(rawID)
	if err != nil {
		return domain.Route{}, err
	}
	route, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Route{}, err
	}
	if route == nil {
		return domain.Route{}, domain.ErrNotFound
	}
	return *route, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]domain.Route, error) {
	items, err := s.repo.List(ctx, s.db, activeOnly)
	if err != nil {
		return nil, err
	}
	routes := make([]domain.Route, 0, len(items))
	for _, item := range items {
		routes = append(routes, *item)
	}
	return routes, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
