package outstanding

import (
	"github.com/freshvale/dairyops/internal/outstanding/repository"
	"github.com/freshvale/dairyops/internal/outstanding/service"
	"go.uber.org/fx"
)

var Module = fx.Module("outstanding.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
