package product

import (
	"github.com/freshvale/dairyops/internal/product/repository"
	"github.com/freshvale/dairyops/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
