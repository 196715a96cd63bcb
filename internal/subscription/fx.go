package subscription

import (
	"github.com/freshvale/dairyops/internal/subscription/repository"
	"github.com/freshvale/dairyops/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
