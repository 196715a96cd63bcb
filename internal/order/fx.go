package order

import (
	"github.com/freshvale/dairyops/internal/order/repository"
	"github.com/freshvale/dairyops/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
