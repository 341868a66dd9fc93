package purchase

import (
	"github.com/lumistone/atelier/internal/purchase/repository"
	"github.com/lumistone/atelier/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
