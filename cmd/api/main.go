package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/internal/config"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/database"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/metrics"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/handler"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/middleware"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/routes"
	"github.com/sangkips/pharmacy-pos/pkg/clock"
	"github.com/sangkips/pharmacy-pos/pkg/logger"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
	"go.uber.org/zap"
)

const (
	shutdownTimeout        = 10 * time.Second
	idempotencySweepPeriod = time.Hour
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	policy, err := cfg.Billing.Policy()
	if err != nil {
		log.Fatal("invalid billing configuration", zap.Error(err))
	}

	location, err := cfg.Database.Location()
	if err != nil {
		log.Fatal("invalid timezone configuration", zap.Error(err))
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.AutoMigrate(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	if err := database.SeedDefaultData(db, log); err != nil {
		log.Warn("failed to seed default data", zap.Error(err))
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	clk := clock.New()
	billingMetrics := metrics.Billing()

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	heldRepo := repository.NewHeldBillRepository(clk)
	invoiceRepo := repository.NewInvoiceRepository(db, repository.InvoiceNumbering{
		Prefix: cfg.Billing.InvoicePrefix,
		Width:  cfg.Billing.InvoiceNumberWidth,
	})

	// Initialize services
	productService := service.NewProductService(productRepo, clk)
	invoiceService := service.NewInvoiceService(invoiceRepo, productRepo, clk, billingMetrics, log)
	billingService := service.NewBillingService(service.BillingDeps{
		ProductRepo:  productRepo,
		CustomerRepo: customerRepo,
		HeldRepo:     heldRepo,
		Invoices:     invoiceService,
		Policy:       policy,
		Clock:        clk,
		IDs:          utils.UUIDGenerator{},
		Metrics:      billingMetrics,
		Log:          log,
	})

	handlers := &routes.Handlers{
		Bill:     handler.NewBillHandler(billingService),
		HeldBill: handler.NewHeldBillHandler(billingService),
		Invoice:  handler.NewInvoiceHandler(invoiceService, location),
		Product:  handler.NewProductHandler(productService),
	}

	rateLimiter := middleware.NewCashierRateLimiter(
		middleware.RateLimiterConfigFromWindow(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Clock:           clk,
		Log:             log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepIdempotencyKeys(ctx, idempotencyRepo, clk, log)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Info("server starting",
			zap.String("app", cfg.App.Name),
			zap.String("env", cfg.App.Env),
			zap.String("port", port),
			zap.String("tax_rate", policy.Tax.CombinedPercent().String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// sweepIdempotencyKeys purges expired checkout keys until ctx is cancelled.
func sweepIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, clk clock.Clock, log *zap.Logger) {
	ticker := time.NewTicker(idempotencySweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, clk.Now())
			if err != nil {
				log.Warn("idempotency sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("idempotency keys purged", zap.Int64("count", n))
			}
		}
	}
}
