package customer

import (
	"github.com/freshvale/dairyops/internal/customer/repository"
	"github.com/freshvale/dairyops/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
