package route

import (
	"github.com/freshvale/dairyops/internal/route/repository"
	"github.com/freshvale/dairyops/internal/route/service"
	"go.uber.org/fx"
)

var Module = fx.Module("route.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
