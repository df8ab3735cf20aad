package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/pharmacy-pos/internal/config"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/handler"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/middleware"
	"github.com/sangkips/pharmacy-pos/pkg/clock"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Bill     *handler.BillHandler
	HeldBill *handler.HeldBillHandler
	Invoice  *handler.InvoiceHandler
	Product  *handler.ProductHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.CashierRateLimiter
	Clock           clock.Clock
	Log             *zap.Logger

	// MetricsHandler serves /metrics; the default registry when nil
	MetricsHandler http.Handler
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	metricsHandler := deps.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	router.GET("/metrics", gin.WrapH(metricsHandler))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.JWTManager))
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}
	{
		registerBillRoutes(v1, h, deps)
		registerHeldBillRoutes(v1, h)
		registerInvoiceRoutes(v1, h)
		registerCatalogRoutes(v1, h)
	}

	return router
}

func registerBillRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	bill := protected.Group("/bill")
	{
		bill.GET("", h.Bill.Get)
		bill.DELETE("", h.Bill.Clear)
		bill.POST("/items", h.Bill.AddItem)
		bill.PATCH("/items/:product_id", h.Bill.UpdateItem)
		bill.DELETE("/items/:product_id", h.Bill.RemoveItem)
		bill.PUT("/discount", h.Bill.ApplyDiscount)
		bill.PUT("/customer", h.Bill.SetCustomer)
		bill.PUT("/prescription", h.Bill.SetPrescription)
		bill.POST("/hold", h.Bill.Hold)
		bill.POST("/checkout", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:  deps.IdempotencyRepo,
			Clock: deps.Clock,
			TTL:   deps.Cfg.Billing.IdempotencyTTL,
			Log:   deps.Log,
		}), h.Bill.Checkout)
	}
}

func registerHeldBillRoutes(protected *gin.RouterGroup, h *Handlers) {
	held := protected.Group("/held-bills")
	{
		held.GET("", h.HeldBill.List)
		held.POST("/:id/resume", h.HeldBill.Resume)
		held.DELETE("/:id", h.HeldBill.Discard)
	}
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers) {
	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
	}
}

func registerCatalogRoutes(protected *gin.RouterGroup, h *Handlers) {
	catalog := protected.Group("/catalog")
	{
		catalog.GET("", h.Product.List)
		catalog.GET("/scan/:code", h.Product.Scan)
		catalog.GET("/:id", h.Product.Get)
	}
}
