package migration

import (
	"context"

	"github.com/lumistone/atelier/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(registerHooks),
)

// registerHooks runs migrations on startup, before the HTTP server begins
// accepting traffic.
func registerHooks(lc fx.Lifecycle, cfg config.Config, gdb *gorm.DB, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return Run(cfg, gdb, log)
		},
	})
}
