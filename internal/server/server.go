package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/lumistone/atelier/internal/config"
	"github.com/lumistone/atelier/internal/customer"
	customerdomain "github.com/lumistone/atelier/internal/customer/domain"
	"github.com/lumistone/atelier/internal/finance"
	financedomain "github.com/lumistone/atelier/internal/finance/domain"
	"github.com/lumistone/atelier/internal/inventory"
	inventorydomain "github.com/lumistone/atelier/internal/inventory/domain"
	"github.com/lumistone/atelier/internal/migration"
	"github.com/lumistone/atelier/internal/observability"
	obsmiddleware "github.com/lumistone/atelier/internal/observability/logger"
	obsmetrics "github.com/lumistone/atelier/internal/observability/metrics"
	obstracing "github.com/lumistone/atelier/internal/observability/tracing"
	"github.com/lumistone/atelier/internal/purchase"
	purchasedomain "github.com/lumistone/atelier/internal/purchase/domain"
	"github.com/lumistone/atelier/internal/sku"
	skudomain "github.com/lumistone/atelier/internal/sku/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	migration.Module,
	purchase.Module,
	sku.Module,
	customer.Module,
	finance.Module,
	inventory.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(OperatorContext())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	purchaseSvc  purchasedomain.Service
	skuSvc       skudomain.Service
	customerSvc  customerdomain.Service
	financeSvc   financedomain.Service
	inventorySvc inventorydomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	PurchaseSvc  purchasedomain.Service
	SkuSvc       skudomain.Service
	CustomerSvc  customerdomain.Service
	FinanceSvc   financedomain.Service
	InventorySvc inventorydomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		purchaseSvc:  p.PurchaseSvc,
		skuSvc:       p.SkuSvc,
		customerSvc:  p.CustomerSvc,
		financeSvc:   p.FinanceSvc,
		inventorySvc: p.InventorySvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Purchases --------
	api.GET("/purchases", s.ListPurchases)
	api.POST("/purchases", s.CreatePurchase)
	api.GET("/purchases/:id", s.GetPurchaseByID)
	api.PATCH("/purchases/:id", s.UpdatePurchase)

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.POST("/products/batch", s.CreateProductBatch)
	api.GET("/products/:id", s.GetProductByID)
	api.GET("/products/:id/logs", s.ListProductLogs)
	api.POST("/products/:id/adjust", s.AdjustProduct)
	api.POST("/products/:id/destroy", s.DestroyProduct)
	api.POST("/products/:id/deactivate", s.DeactivateProduct)

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PATCH("/customers/:id", s.UpdateCustomer)

	// -------- Sales --------
	api.GET("/sales", s.ListSales)
	api.POST("/sales", s.RecordSale)
	api.POST("/sales/:id/refund", s.RefundSale)

	// -------- Finance --------
	api.GET("/finance/records", s.ListFinancialRecords)
	api.POST("/finance/records", s.CreateFinancialRecord)
	api.GET("/finance/summary", s.FinancialSummary)

	// -------- Inventory --------
	api.GET("/inventory/matrix", s.InventoryMatrix)
}
