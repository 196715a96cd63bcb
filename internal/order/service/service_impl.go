package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/freshvale/dairyops/internal/customer/domain"
	modificationdomain "github.com/freshvale/dairyops/internal/modification/domain"
	"github.com/freshvale/dairyops/internal/order/domain"
	productdomain "github.com/freshvale/dairyops/internal/product/domain"
	subscriptiondomain "github.com/freshvale/dairyops/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Repo          domain.Repository
	Subscriptions subscriptiondomain.Repository
	Modifications modificationdomain.Repository
	Customers     customerdomain.Repository
	Products      productdomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	repo          domain.Repository
	subscriptions subscriptiondomain.Repository
	modifications modificationdomain.Repository
	customers     customerdomain.Repository
	products      productdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("order.service"),
		genID:         p.GenID,
		repo:          p.Repo,
		subscriptions: p.Subscriptions,
		modifications: p.Modifications,
		customers:     p.Customers,
		products:      p.Products,
	}
}

func (s *Service) Preview(ctx context.Context, date time.Time) (domain.Plan, error) {
	date = dateOnly(date)
	if date.IsZero() {
		return domain.Plan{}, domain.ErrInvalidDate
	}
	return s.buildPlan(ctx, s.db, date)
}

func (s *Service) Generate(ctx context.Context, date time.Time) (domain.Plan, error) {
	date = dateOnly(date)
	if date.IsZero() {
		return domain.Plan{}, domain.ErrInvalidDate
	}

	var plan domain.Plan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.repo.CountOnDate(ctx, tx, date)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrOrdersExist
		}

		plan, err = s.buildPlan(ctx, tx, date)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for i := range plan.Orders {
			plan.Orders[i].ID = s.genID.Generate()
			plan.Orders[i].CreatedAt = now
			plan.Orders[i].UpdatedAt = now
		}
		return s.repo.InsertBatch(ctx, tx, plan.Orders)
	})
	if err != nil {
		return domain.Plan{}, err
	}

	s.log.Info("generated daily orders",
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("orders", plan.OrderCount),
	)
	return plan, nil
}

func (s *Service) DeleteByDate(ctx context.Context, date time.Time) (domain.DeleteResult, error) {
	date = dateOnly(date)
	if date.IsZero() {
		return domain.DeleteResult{}, domain.ErrInvalidDate
	}

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		deleted, err = s.repo.DeleteByDate(ctx, tx, date)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return domain.ErrNoOrders
		}
		return nil
	})
	if err != nil {
		return domain.DeleteResult{}, err
	}

	s.log.Info("deleted daily orders",
		zap.String("date", date.Format("2006-01-02")),
		zap.Int64("deleted", deleted),
	)
	return domain.DeleteResult{Date: date, Deleted: deleted}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateOrderStatusRequest) (domain.DailyOrder, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.DailyOrder{}, domain.ErrInvalidID
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return domain.DailyOrder{}, err
	}

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.DailyOrder{}, err
	}
	if order == nil {
		return domain.DailyOrder{}, domain.ErrNotFound
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return domain.DailyOrder{}, err
	}
	return *order, nil
}

func (s *Service) List(ctx context.Context, req domain.ListOrderRequest) ([]domain.DailyOrder, error) {
	filter := domain.ListOrderFilter{}
	if req.Date != nil {
		date := dateOnly(*req.Date)
		filter.Date = &date
	}
	if strings.TrimSpace(req.CustomerID) != "" {
		customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
		if err != nil || customerID == 0 {
			return nil, domain.ErrInvalidCustomer
		}
		filter.CustomerID = &customerID
	}
	if strings.TrimSpace(req.RouteID) != "" {
		routeID, err := snowflake.ParseString(strings.TrimSpace(req.RouteID))
		if err != nil || routeID == 0 {
			return nil, domain.ErrInvalidRoute
		}
		filter.RouteID = &routeID
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
	orders := make([]domain.DailyOrder, 0, len(items))
	for _, item := range items {
		orders = append(orders, *item)
	}
	return orders, nil
}

// buildPlan preloads everything the planner needs with three queries:
// active subscriptions, their customers/products, and the date's
// modifications in one batch.
func (s *Service) buildPlan(ctx context.Context, db *gorm.DB, date time.Time) (domain.Plan, error) {
	subs, err := s.subscriptions.ListActive(ctx, db)
	if err != nil {
		return domain.Plan{}, err
	}

	input := domain.PlanInput{
		Date:          date,
		Subscriptions: make([]subscriptiondomain.Subscription, 0, len(subs)),
		Customers:     map[snowflake.ID]customerdomain.Customer{},
		Products:      map[snowflake.ID]productdomain.Product{},
	}

	customerIDs := make([]snowflake.ID, 0, len(subs))
	seen := map[snowflake.ID]bool{}
	for _, sub := range subs {
		input.Subscriptions = append(input.Subscriptions, *sub)
		if !seen[sub.CustomerID] {
			seen[sub.CustomerID] = true
			customerIDs = append(customerIDs, sub.CustomerID)
		}
	}

	customers, err := s.customers.FindByIDs(ctx, db, customerIDs)
	if err != nil {
		return domain.Plan{}, err
	}
	for _, c := range customers {
		input.Customers[c.ID] = *c
	}

	products, err := s.products.List(ctx, db, false)
	if err != nil {
		return domain.Plan{}, err
	}
	for _, p := range products {
		input.Products[p.ID] = *p
	}

	mods, err := s.modifications.ActiveOn(ctx, db, date)
	if err != nil {
		return domain.Plan{}, err
	}
	flat := make([]modificationdomain.Modification, 0, len(mods))
	for _, m := range mods {
		flat = append(flat, *m)
	}
	input.Modifications = modificationdomain.GroupByKey(flat)

	return domain.BuildPlan(input), nil
}

func parseStatus(value string) (domain.Status, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(domain.StatusPending):
		return domain.StatusPending, nil
	case string(domain.StatusDelivered):
		return domain.StatusDelivered, nil
	case string(domain.StatusCancelled):
		return domain.StatusCancelled, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
