package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	analyticsapp "github.com/stocklot/backend/internal/application/analytics"
	expirationapp "github.com/stocklot/backend/internal/application/expiration"
	fifoapp "github.com/stocklot/backend/internal/application/fifo"
	lotapp "github.com/stocklot/backend/internal/application/lot"
	reconapp "github.com/stocklot/backend/internal/application/reconciliation"
	"github.com/stocklot/backend/internal/infrastructure/auth"
	"github.com/stocklot/backend/internal/infrastructure/config"
	"github.com/stocklot/backend/internal/infrastructure/directory"
	"github.com/stocklot/backend/internal/infrastructure/event"
	"github.com/stocklot/backend/internal/infrastructure/logger"
	"github.com/stocklot/backend/internal/infrastructure/persistence"
	"github.com/stocklot/backend/internal/infrastructure/telemetry"
	"github.com/stocklot/backend/internal/interfaces/http/handler"
	"github.com/stocklot/backend/internal/interfaces/http/middleware"
	"github.com/stocklot/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting stocklot backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(cfg.Database.DBName); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	lotRepo := persistence.NewGormLotRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	configRepo := persistence.NewGormConfigurationRepository(db.DB)
	alertRepo := persistence.NewGormAlertRepository(db.DB)
	sessionRepo := persistence.NewGormSessionRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Read-model directories synced from the catalog and identity services
	productDirectory := directory.NewGormProductDirectory(db.DB)
	agentDirectory := directory.NewGormAgentDirectory(db.DB)

	// Initialize application services
	ledgerService := lotapp.NewLedgerService(txScope, lotRepo, movementRepo)
	fifoService := fifoapp.NewService(configRepo, lotRepo, productDirectory)
	alertService := expirationapp.NewAlertService(alertRepo, lotRepo, configRepo)
	reconciliationService := reconapp.NewService(txScope, sessionRepo, lotRepo, auditRepo)
	advisorService := analyticsapp.NewAdvisorService(lotRepo, movementRepo, configRepo)

	ledgerService.SetProductDirectory(productDirectory)
	alertService.SetProductDirectory(productDirectory)
	advisorService.SetProductDirectory(productDirectory)
	reconciliationService.SetAgentDirectory(agentDirectory)
	advisorService.SetDefaultOptions(analyticsapp.AnalyticsOptions{
		CarryingRatePercent: decimal.NewFromFloat(cfg.Advisor.CarryingRatePercent),
		LowStockThreshold:   decimal.NewFromFloat(cfg.Advisor.LowStockThreshold),
	})

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLoggingEventHandler(log))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	ledgerService.SetEventPublisher(eventBus)
	alertService.SetEventPublisher(eventBus)
	reconciliationService.SetEventPublisher(eventBus)

	// Start the periodic expiration sweep (if enabled)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.Sweep.Enabled {
		go runSweepLoop(sweepCtx, alertService, lotRepo, cfg.Sweep.Interval, log)
		log.Info("Expiration sweep started", zap.Duration("interval", cfg.Sweep.Interval))
	}

	// Initialize HTTP handlers
	jwtService := auth.NewJWTService(cfg.JWT)
	lotHandler := handler.NewLotHandler(ledgerService)
	fifoHandler := handler.NewFIFOHandler(fifoService)
	alertHandler := handler.NewAlertHandler(alertService)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationService)
	analyticsHandler := handler.NewAnalyticsHandler(advisorService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig()))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Lot ledger
	lotRoutes := router.NewDomainGroup("lots", "/lots")
	lotRoutes.POST("", lotHandler.ReceiveLot)
	lotRoutes.GET("/:id", lotHandler.GetLot)
	lotRoutes.GET("/:id/movements", lotHandler.ListMovements)
	lotRoutes.GET("/:id/ledger/verify", lotHandler.VerifyLedger)
	lotRoutes.GET("/:id/risk", alertHandler.AssessLot)

	// Movement booking
	movementRoutes := router.NewDomainGroup("movements", "/movements")
	movementRoutes.POST("", lotHandler.ApplyMovement)
	movementRoutes.POST("/transfer", lotHandler.Transfer)

	// Product-scoped queries
	productRoutes := router.NewDomainGroup("products", "/products")
	productRoutes.GET("/:id/lots", lotHandler.ListLotsForProduct)
	productRoutes.GET("/:id/fifo/configuration", fifoHandler.ResolveConfiguration)
	productRoutes.GET("/:id/fifo/next-lot", fifoHandler.NextLot)
	productRoutes.GET("/:id/fifo/ranking", fifoHandler.RankLots)
	productRoutes.GET("/:id/fifo/compliance", fifoHandler.CheckCompliance)
	productRoutes.GET("/:id/analytics", analyticsHandler.ProductAnalytics)
	productRoutes.GET("/:id/analytics/suggestions", analyticsHandler.SuggestOptimizations)

	// FIFO configurations
	fifoRoutes := router.NewDomainGroup("fifo", "/fifo")
	fifoRoutes.POST("/configurations", fifoHandler.CreateConfiguration)
	fifoRoutes.GET("/configurations", fifoHandler.ListConfigurations)
	fifoRoutes.PUT("/configurations/:id", fifoHandler.UpdateConfiguration)
	fifoRoutes.DELETE("/configurations/:id", fifoHandler.DeleteConfiguration)

	// Expiration alerts
	alertRoutes := router.NewDomainGroup("alerts", "/alerts")
	alertRoutes.POST("/sweep", alertHandler.GenerateAlerts)
	alertRoutes.GET("", alertHandler.ListAlerts)
	alertRoutes.PUT("/:id/status", alertHandler.UpdateAlertStatus)

	// Reconciliation sessions
	reconciliationRoutes := router.NewDomainGroup("reconciliations", "/reconciliations")
	reconciliationRoutes.POST("", reconciliationHandler.StartSession)
	reconciliationRoutes.GET("", reconciliationHandler.ListSessions)
	reconciliationRoutes.GET("/:id", reconciliationHandler.GetSession)
	reconciliationRoutes.POST("/:id/counts", reconciliationHandler.RecordCount)
	reconciliationRoutes.GET("/:id/discrepancies", reconciliationHandler.GetDiscrepancies)
	reconciliationRoutes.POST("/:id/complete", reconciliationHandler.CompleteSession)
	reconciliationRoutes.POST("/:id/cancel", reconciliationHandler.CancelSession)
	reconciliationRoutes.GET("/:id/audit", reconciliationHandler.ListAuditTrail)

	// System
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(lotRoutes).
		Register(movementRoutes).
		Register(productRoutes).
		Register(fifoRoutes).
		Register(alertRoutes).
		Register(reconciliationRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runSweepLoop periodically regenerates expiration alerts for every tenant
// that holds lots with an expiration date
func runSweepLoop(ctx context.Context, alertService *expirationapp.AlertService, lotRepo interface {
	TenantsWithExpiringStock(ctx context.Context) ([]uuid.UUID, error)
}, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tenants, err := lotRepo.TenantsWithExpiringStock(ctx)
			if err != nil {
				log.Error("Sweep tenant discovery failed", zap.Error(err))
				continue
			}
			for _, tenantID := range tenants {
				result, err := alertService.GenerateAlerts(ctx, tenantID)
				if err != nil {
					log.Error("Expiration sweep failed",
						zap.String("tenant_id", tenantID.String()),
						zap.Error(err),
					)
					continue
				}
				log.Info("Expiration sweep completed",
					zap.String("tenant_id", tenantID.String()),
					zap.Int("lots_examined", result.LotsExamined),
					zap.Int("created", result.Created),
					zap.Int("refreshed", result.Refreshed),
				)
			}
		}
	}
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
