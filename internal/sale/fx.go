package sale

import (
	"github.com/freshvale/dairyops/internal/sale/repository"
	"github.com/freshvale/dairyops/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
