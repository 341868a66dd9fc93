package sku

import (
	"github.com/lumistone/atelier/internal/sku/repository"
	"github.com/lumistone/atelier/internal/sku/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sku.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
