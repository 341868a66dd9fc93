package customer

import (
	"github.com/lumistone/atelier/internal/customer/repository"
	"github.com/lumistone/atelier/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
