package invoice

import (
	"github.com/freshvale/dairyops/internal/invoice/repository"
	"github.com/freshvale/dairyops/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
