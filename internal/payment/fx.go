package payment

import (
	"github.com/freshvale/dairyops/internal/payment/repository"
	"github.com/freshvale/dairyops/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
