package router

import (
	"context"
	"time"

	"github.com/nazim1903/Businesstracker/internal/config"
	"github.com/nazim1903/Businesstracker/internal/handler"
	"github.com/nazim1903/Businesstracker/internal/infra"
	"github.com/nazim1903/Businesstracker/internal/middleware"
	"github.com/nazim1903/Businesstracker/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the constructed services and connections the routes need. DB, Redis
// and Cache are nil when the corresponding backend is not configured.
type Deps struct {
	Ledger  service.LedgerService
	Reports service.ReportService
	Backup  service.BackupService
	DB      *gorm.DB
	Redis   *redis.Client
	Cache   *infra.ReportCache
}

// New builds the Gin engine. ctx bounds the background rate-limiter purge.
func New(ctx context.Context, cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	go limiter.Purge(ctx, 5*time.Minute)

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Middleware())

	// ── Handlers ─────────────────────────────────────────────────────────────
	customersH := handler.NewCustomersHandler(d.Ledger)
	ordersH := handler.NewOrdersHandler(d.Ledger)
	paymentsH := handler.NewPaymentsHandler(d.Ledger)
	productsH := handler.NewProductsHandler(d.Ledger)
	reportsH := handler.NewReportsHandler(d.Reports)
	backupH := handler.NewBackupHandler(d.Backup)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(cfg.StoreDriver, d.DB, d.Redis, d.Cache))

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		customers := v1.Group("/customers")
		{
			customers.POST("", customersH.Create)
			customers.GET("", customersH.List)
			customers.GET("/:id", customersH.Get)
			customers.PUT("/:id", customersH.Update)
			customers.DELETE("/:id", customersH.Delete)
			customers.GET("/:id/report", reportsH.CustomerReport)
			customers.GET("/:id/statement.pdf", reportsH.CustomerStatementPDF)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", ordersH.Create)
			orders.GET("", ordersH.List)
			orders.GET("/:id", ordersH.Get)
			orders.PUT("/:id", ordersH.Update)
			orders.DELETE("/:id", ordersH.Delete)
			orders.POST("/:id/complete", ordersH.Complete)
			orders.POST("/:id/cancel", ordersH.Cancel)
			orders.GET("/:id/payments", ordersH.Payments)
			orders.GET("/:id/report", reportsH.OrderReport)
			orders.GET("/:id/statement.pdf", reportsH.OrderStatementPDF)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("", paymentsH.Create)
			payments.GET("", paymentsH.List)
			payments.GET("/:id", paymentsH.Get)
			payments.PUT("/:id", paymentsH.Update)
			payments.DELETE("/:id", paymentsH.Delete)
		}

		products := v1.Group("/products")
		{
			products.POST("", productsH.Create)
			products.GET("", productsH.List)
			products.GET("/:id", productsH.Get)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
		}

		v1.GET("/reports/dashboard", reportsH.Dashboard)
		v1.GET("/reports/cashflow.pdf", reportsH.CashFlowPDF)

		v1.GET("/backup/export", backupH.Export)
		v1.POST("/backup/import", backupH.Import)
	}

	// Swagger UI; only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
