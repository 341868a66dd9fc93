package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CatalogConfig holds operator-tunable catalog rules: the quality grades
// accepted at purchase intake and the minimum margin warned on at SKU pricing.
type CatalogConfig struct {
	QualityGrades   []string `mapstructure:"qualityGrades"`
	MinMarginPct    float64  `mapstructure:"minMarginPct"`
	SkuCodePrefix   string   `mapstructure:"skuCodePrefix"`
	LotCodePrefix   string   `mapstructure:"lotCodePrefix"`
	DefaultCurrency string   `mapstructure:"defaultCurrency"`
}

func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		QualityGrades:   []string{"AAA", "AA", "A", "B"},
		MinMarginPct:    20,
		SkuCodePrefix:   "SKU",
		LotCodePrefix:   "PUR",
		DefaultCurrency: "CNY",
	}
}

// CatalogConfigHolder serves the current catalog config and hot-reloads it
// when the backing file changes.
type CatalogConfigHolder struct {
	current atomic.Value // holds CatalogConfig
}

func NewCatalogConfigHolder() (*CatalogConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("catalog")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/atelier/config")
	v.AddConfigPath("/etc/atelier")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ATELIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultCatalogConfig()
		v.SetDefault("catalog.qualityGrades", defaults.QualityGrades)
		v.SetDefault("catalog.minMarginPct", defaults.MinMarginPct)
		v.SetDefault("catalog.skuCodePrefix", defaults.SkuCodePrefix)
		v.SetDefault("catalog.lotCodePrefix", defaults.LotCodePrefix)
		v.SetDefault("catalog.defaultCurrency", defaults.DefaultCurrency)
	}

	var cfg CatalogConfig
	if err := v.UnmarshalKey("catalog", &cfg); err != nil {
		return nil, err
	}
	if err := validateCatalogConfig(cfg); err != nil {
		return nil, err
	}

	holder := &CatalogConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CatalogConfig
		if err := v.UnmarshalKey("catalog", &updated); err != nil {
			log.Printf("[catalog-config] reload failed: %v", err)
			return
		}
		if err := validateCatalogConfig(updated); err != nil {
			log.Printf("[catalog-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[catalog-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticCatalogConfigHolder pins the holder to cfg without file watching.
// Intended for tests.
func NewStaticCatalogConfigHolder(cfg CatalogConfig) *CatalogConfigHolder {
	holder := &CatalogConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *CatalogConfigHolder) Get() CatalogConfig {
	return h.current.Load().(CatalogConfig)
}

// IsKnownGrade reports whether grade is one of the configured quality grades.
func (h *CatalogConfigHolder) IsKnownGrade(grade string) bool {
	grade = strings.ToUpper(strings.TrimSpace(grade))
	for _, known := range h.Get().QualityGrades {
		if strings.EqualFold(known, grade) {
			return true
		}
	}
	return false
}

func validateCatalogConfig(cfg CatalogConfig) error {
	if len(cfg.QualityGrades) == 0 {
		return errors.New("catalog.qualityGrades cannot be empty")
	}
	if cfg.MinMarginPct < 0 || cfg.MinMarginPct >= 100 {
		return errors.New("catalog.minMarginPct must be within [0, 100)")
	}
	return nil
}
