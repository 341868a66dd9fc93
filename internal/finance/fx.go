package finance

import (
	"github.com/lumistone/atelier/internal/finance/repository"
	"github.com/lumistone/atelier/internal/finance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("finance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
