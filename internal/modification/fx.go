package modification

import (
	"github.com/freshvale/dairyops/internal/modification/repository"
	"github.com/freshvale/dairyops/internal/modification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("modification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
