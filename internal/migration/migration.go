package migration

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lumistone/atelier/internal/config"
	customerdomain "github.com/lumistone/atelier/internal/customer/domain"
	financedomain "github.com/lumistone/atelier/internal/finance/domain"
	purchasedomain "github.com/lumistone/atelier/internal/purchase/domain"
	skudomain "github.com/lumistone/atelier/internal/sku/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run applies pending schema migrations. Postgres uses the embedded SQL
// migration set; other dialects fall back to the model-driven migrator so
// local sqlite and mysql setups stay usable without a migration toolchain.
func Run(cfg config.Config, gdb *gorm.DB, log *zap.Logger) error {
	if cfg.DBType != "postgres" {
		return autoMigrate(gdb)
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(cfg.DBUser),
		url.QueryEscape(cfg.DBPassword),
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("open migration target: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info("schema migrations applied",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

func autoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&purchasedomain.Purchase{},
		&skudomain.ProductSku{},
		&skudomain.MaterialUsage{},
		&skudomain.SkuInventoryLog{},
		&customerdomain.Customer{},
		&customerdomain.CustomerPurchase{},
		&financedomain.FinancialRecord{},
	)
}
