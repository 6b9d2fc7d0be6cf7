package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/rentflow/backend/docs"
	appbilling "github.com/rentflow/backend/internal/application/billing"
	appevent "github.com/rentflow/backend/internal/application/event"
	identityapp "github.com/rentflow/backend/internal/application/identity"
	propertyapp "github.com/rentflow/backend/internal/application/property"
	tenancyapp "github.com/rentflow/backend/internal/application/tenancy"
	"github.com/rentflow/backend/internal/application/workspace"
	"github.com/rentflow/backend/internal/domain/identity"
	"github.com/rentflow/backend/internal/infrastructure/auth"
	"github.com/rentflow/backend/internal/infrastructure/cache"
	"github.com/rentflow/backend/internal/infrastructure/config"
	"github.com/rentflow/backend/internal/infrastructure/event"
	"github.com/rentflow/backend/internal/infrastructure/logger"
	"github.com/rentflow/backend/internal/infrastructure/notification"
	"github.com/rentflow/backend/internal/infrastructure/persistence"
	"github.com/rentflow/backend/internal/infrastructure/scheduler"
	"github.com/rentflow/backend/internal/infrastructure/strategy"
	"github.com/rentflow/backend/internal/infrastructure/telemetry"
	"github.com/rentflow/backend/internal/interfaces/http/handler"
	"github.com/rentflow/backend/internal/interfaces/http/middleware"
	"github.com/rentflow/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const version = "1.0.0"

//	@title			RentFlow API
//	@version		1.0
//	@description	Property management backend: owners, tenancies, monthly invoices and payment verification.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry first so every later component logs and traces through it
	tel := setupTelemetry(ctx, cfg, log)
	log = tel.log
	defer tel.shutdown(log)

	log.Info("Starting RentFlow backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	db, err := persistence.Open(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBSystem:   db.System(),
	}, log); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}
	log.Info("Database connected")

	// Key stores: Redis when enabled, memory otherwise
	stores, err := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to create key stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing key stores", zap.Error(err))
		}
	}()

	var blacklist auth.TokenBlacklist
	if stores.Client != nil {
		blacklist = auth.NewRedisTokenBlacklistWithClient(stores.Client)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	tenancyRepo := persistence.NewGormTenancyRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	// Identity
	jwtService := auth.NewJWTService(cfg.JWT)
	accounts := auth.NewLocalAccountProvider(
		accountRepo,
		jwtService,
		blacklist,
		notification.NewLoggingMailer(log),
		auth.LocalAccountProviderConfig{
			LinkTTL:     cfg.Identity.PasswordLinkTTL,
			LinkBaseURL: cfg.Identity.PasswordLinkBaseURL,
			SessionTTL:  cfg.JWT.RefreshTokenExpiration,
		},
		log,
	)
	sessionService := identityapp.NewSessionService(userRepo, tenancyRepo, identity.FallbackPolicy(cfg.Identity.RoleFallback), log)
	authService := identityapp.NewAuthService(
		accounts, jwtService, blacklist, sessionService,
		persistence.NewGormIdentityTransactionScope(db.DB), log,
	)

	// Properties and tenancies
	propertyService := propertyapp.NewPropertyService(propertyRepo, tenancyRepo, userRepo, log)
	expenseService := propertyapp.NewExpenseService(expenseRepo, propertyRepo, log)
	tenancyService := tenancyapp.NewTenancyService(
		tenancyRepo, propertyRepo, userRepo, accounts,
		persistence.NewGormTenancyTransactionScope(db.DB), log,
	)
	workspaceService := workspace.NewService(propertyRepo, expenseRepo, tenancyRepo, invoiceRepo, userRepo, log)

	// Billing
	strategies, err := strategy.NewRegistryWithDefaults()
	if err != nil {
		log.Fatal("Failed to register allocation strategies", zap.Error(err))
	}
	policy, err := strategies.GetAllocationStrategy(cfg.Billing.AllocationPolicy)
	if err != nil {
		log.Fatal("Unknown allocation policy",
			zap.String("policy", cfg.Billing.AllocationPolicy),
			zap.Strings("available", strategies.ListAllocationStrategies()),
		)
	}

	receipts := newReceiptStorage(ctx, cfg, log)
	billingTx := persistence.NewGormBillingTransactionScope(db.DB)

	invoiceService := appbilling.NewInvoiceService(invoiceRepo, tenancyRepo, propertyRepo, billingTx, log)
	paymentService := appbilling.NewPaymentService(
		invoiceRepo, billingTx, policy, stores.Idempotency, receipts,
		appbilling.PaymentServiceConfig{UploadURLTTL: cfg.Storage.PresignExpiration},
		log,
	)
	verificationService := appbilling.NewVerificationService(
		invoiceRepo, propertyRepo, userRepo, receipts, newReceiptJudge(cfg, log), log,
	)

	var statements handler.StatementUseCases
	if renderer, closeRenderer := newStatementRenderer(cfg, log); renderer != nil {
		defer closeRenderer()
		statements = appbilling.NewStatementService(invoiceRepo, propertyRepo, userRepo, renderer, log)
	}

	// Domain events feed the billing metrics
	eventBus := event.NewInMemoryEventBus(log)
	billingMetrics, err := telemetry.NewBillingMetrics(tel.meter)
	if err != nil {
		log.Warn("Billing metrics unavailable", zap.Error(err))
	} else {
		metricsHandler := appevent.NewBillingMetricsHandler(billingMetrics)
		eventBus.Subscribe(event.NewIdempotentHandler(metricsHandler, stores.Idempotency, log), metricsHandler.EventTypes()...)
		verificationService.SetReceiptCheckRecorder(billingMetrics)
		log.Info("Event handlers registered", zap.Strings("billing_metrics_events", metricsHandler.EventTypes()))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	authService.SetEventPublisher(eventBus)
	propertyService.SetEventPublisher(eventBus)
	tenancyService.SetEventPublisher(eventBus)
	invoiceService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	verificationService.SetEventPublisher(eventBus)

	if cfg.Billing.AutoGenerate {
		invoiceScheduler, err := scheduler.NewInvoiceScheduler(scheduler.InvoiceSchedulerConfig{
			Spec: cfg.Billing.GenerateCron,
		}, invoiceService, log)
		if err != nil {
			log.Fatal("Failed to create invoice scheduler", zap.Error(err))
		}
		if err := invoiceScheduler.Start(); err != nil {
			log.Fatal("Failed to start invoice scheduler", zap.Error(err))
		}
		defer func() {
			if err := invoiceScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping invoice scheduler", zap.Error(err))
			}
		}()
		log.Info("Invoice scheduler started",
			zap.String("cron", cfg.Billing.GenerateCron),
			zap.Time("next_run", invoiceScheduler.NextRun()),
		)
	}

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order: request ID, tracing, logging, recovery, headers, limits, metrics
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.HTTPMetrics(tel.meter))
	engine.Use(middleware.Profiling(cfg.Pyroscope.Enabled))

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)
	engine.GET("/health", systemHandler.Health)

	requireJWT := middleware.RequireJWT(jwtService, middleware.WithBlacklist(blacklist), middleware.WithAuthLogger(log))
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, requireJWT),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	guards := router.Guards{
		Authenticate: requireJWT,
		Session:          middleware.Session(sessionService, log),
		SessionObservers: []gin.HandlerFunc{middleware.SessionSpanAttributes()},
	}
	if cfg.HTTP.RateLimitEnabled {
		guards.AuthRateLimit = middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow))
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(r, router.Handlers{
		System:    systemHandler,
		Auth:      handler.NewAuthHandler(authService),
		Workspace: handler.NewWorkspaceHandler(workspaceService),
		Property:  handler.NewPropertyHandler(propertyService),
		Tenancy:   handler.NewTenancyHandler(tenancyService),
		Expense:   handler.NewExpenseHandler(expenseService),
		Invoice:   handler.NewInvoiceHandler(invoiceService, verificationService, statements),
		Payment:   handler.NewPaymentHandler(paymentService),
	}, guards)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}
