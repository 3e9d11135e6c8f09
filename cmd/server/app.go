package main

import (
	"context"
	"fmt"

	adminapp "github.com/bizdir/backend/internal/application/admin"
	analyticsapp "github.com/bizdir/backend/internal/application/analytics"
	billingapp "github.com/bizdir/backend/internal/application/billing"
	bookingapp "github.com/bizdir/backend/internal/application/booking"
	builderapp "github.com/bizdir/backend/internal/application/builder"
	identityapp "github.com/bizdir/backend/internal/application/identity"
	listingapp "github.com/bizdir/backend/internal/application/listing"
	messagingapp "github.com/bizdir/backend/internal/application/messaging"
	moderationapp "github.com/bizdir/backend/internal/application/moderation"
	reviewapp "github.com/bizdir/backend/internal/application/review"
	"github.com/bizdir/backend/internal/domain/billing"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/bizdir/backend/internal/infrastructure/ai"
	"github.com/bizdir/backend/internal/infrastructure/auth"
	infrabilling "github.com/bizdir/backend/internal/infrastructure/billing"
	"github.com/bizdir/backend/internal/infrastructure/cache"
	"github.com/bizdir/backend/internal/infrastructure/config"
	"github.com/bizdir/backend/internal/infrastructure/event"
	"github.com/bizdir/backend/internal/infrastructure/logger"
	"github.com/bizdir/backend/internal/infrastructure/persistence"
	"github.com/bizdir/backend/internal/infrastructure/printing"
	"github.com/bizdir/backend/internal/infrastructure/scheduler"
	"github.com/bizdir/backend/internal/infrastructure/storage"
	"github.com/bizdir/backend/internal/infrastructure/telemetry"
	"github.com/bizdir/backend/internal/interfaces/http/handler"
	"github.com/bizdir/backend/internal/interfaces/http/middleware"
	"github.com/bizdir/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// application owns every long-lived component of the server
type application struct {
	cfg    *config.Config
	log    *zap.Logger
	db     *persistence.Database
	stores *cache.Stores
	bus    *event.InMemoryEventBus
	jobs   *scheduler.Scheduler
	cron   *scheduler.CronTrigger
	engine *gin.Engine
}

// objectStore is what listings and the builder need from storage
type objectStore interface {
	listingapp.PhotoStorage
	builderapp.DocumentStorage
}

func newApplication(ctx context.Context, cfg *config.Config, log *zap.Logger, providers *telemetry.Providers) (*application, error) {
	app := &application{cfg: cfg, log: log}

	// Database
	db, err := persistence.NewDatabase(ctx, cfg.Database, log, persistence.Options{
		LogLevel:      logger.GormLevel(cfg.Log.Level),
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
	})
	if err != nil {
		return nil, err
	}
	app.db = db
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, providers.Meter(), log); err != nil {
		log.Warn("Database instrumentation unavailable", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis-backed stores, in-memory outside production when Redis is down
	stores, err := cache.NewStores(ctx, cfg, log)
	if err != nil {
		app.close()
		return nil, err
	}
	app.stores = stores

	metrics, err := telemetry.NewDirectoryMetrics(providers.Meter())
	if err != nil {
		app.close()
		return nil, fmt.Errorf("failed to create directory metrics: %w", err)
	}

	objects, err := newObjectStore(ctx, cfg, log)
	if err != nil {
		app.close()
		return nil, err
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	listingRepo := persistence.NewGormListingRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	bookingRepo := persistence.NewGormBookingRepository(db.DB)
	messagingRepo := persistence.NewGormMessagingRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	analyticsRepo := telemetry.NewCountingEventRepository(persistence.NewGormAnalyticsRepository(db.DB), metrics)

	// Billing
	catalog := billing.NewCatalog(billing.DefaultPlans(), infrabilling.PriceIDs(cfg.Stripe))
	var (
		gateway   billingapp.SubscriptionGateway
		customers billingapp.CustomerDirectory
	)
	if cfg.Stripe.Enabled {
		adapter, err := infrabilling.NewStripeAdapter(cfg.Stripe, log)
		if err != nil {
			app.close()
			return nil, err
		}
		gateway, customers = adapter, adapter
	} else {
		log.Warn("Stripe disabled: subscription changes are unavailable")
	}
	billingService := billingapp.NewService(subscriptionRepo, catalog, gateway, log)
	webhookService := billingapp.NewStripeWebhookService(billingapp.StripeWebhookServiceConfig{
		Repo:          subscriptionRepo,
		Catalog:       catalog,
		Idempotency:   stores.Idempotency,
		Customers:     customers,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Logger:        log,
	})

	// Identity
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, stores.Blacklist, log)
	userService := identityapp.NewUserService(userRepo, stores.Blacklist, jwtService, log)

	// Listings and analytics reference each other; the tracker is set once both exist
	listingService := listingapp.NewService(listingRepo, billingService, userService, nil, objects, log)
	var renderer analyticsapp.ReportRenderer = printing.NewChromeRenderer(printing.Config{
		ChromePath: cfg.Analytics.ChromePath,
		Timeout:    cfg.Analytics.ExportTimeout,
		NoSandbox:  true,
	}, log)
	analyticsService := analyticsapp.NewService(analyticsRepo, listingService, stores.Values, renderer, analyticsapp.Config{
		CacheTTL:         cfg.Analytics.CacheTTL,
		RawRetentionDays: cfg.Analytics.RawRetentionDays,
		TopN:             cfg.Analytics.TopN,
	}, log)
	listingService.SetActivityTracker(analyticsService)

	reviewService := reviewapp.NewService(reviewRepo, listingService, log)
	bookingService := bookingapp.NewService(bookingRepo, listingService, log)
	messagingService := messagingapp.NewService(messagingRepo, listingService, log)
	moderationService := moderationapp.NewService(reportRepo, listingService, reviewService, userService, log)
	overviewService := adminapp.NewOverviewService(userService, listingService, moderationService, billingService, analyticsService, log)

	var analyzer builderapp.DocumentAnalyzer
	if cfg.AI.Enabled {
		gemini, err := ai.NewGeminiAnalyzer(ctx, cfg.AI, log)
		if err != nil {
			app.close()
			return nil, err
		}
		analyzer = gemini
	} else {
		log.Warn("AI disabled: document analysis is unavailable")
	}
	builderService := builderapp.NewService(objects, analyzer, listingService, log)

	// Event bus: cross-context reactions run after the publishing request commits
	app.bus = event.NewInMemoryEventBus(log, event.WithAsyncDispatch(4, 256))
	subscribe := func(h shared.EventHandler) {
		app.bus.Subscribe(event.NewIdempotentHandler(h, stores.Idempotency, event.DefaultDedupTTL, log), h.EventTypes()...)
	}
	subscribe(reviewapp.NewRatingRecalculator(reviewRepo, listingService, log))
	subscribe(moderationapp.NewEnforcementHandler(reviewService, listingService, userService, log))
	subscribe(listingapp.NewFeaturedSyncHandler(listingRepo, catalog, log))
	app.bus.Subscribe(metrics)

	for _, svc := range []interface {
		SetEventPublisher(shared.EventPublisher)
	}{authService, userService, listingService, reviewService, bookingService, messagingService, moderationService, webhookService} {
		svc.SetEventPublisher(app.bus)
	}

	// Nightly analytics rollup and purge
	if cfg.Scheduler.Enabled {
		app.jobs = scheduler.NewScheduler(scheduler.Config{
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
			QueueSize:         scheduler.DefaultConfig().QueueSize,
		}, scheduler.NewAnalyticsExecutor(analyticsService, log), log)
		app.cron, err = scheduler.NewCronTrigger(cfg.Scheduler.DailyCronSchedule, app.jobs, log)
		if err != nil {
			app.close()
			return nil, err
		}
	}

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Users:      handler.NewUserHandler(userService),
		Listings:   handler.NewListingHandler(listingService),
		Reviews:    handler.NewReviewHandler(reviewService),
		Bookings:   handler.NewBookingHandler(bookingService),
		Messaging:  handler.NewMessagingHandler(messagingService),
		Moderation: handler.NewModerationHandler(moderationService),
		Analytics:  handler.NewAnalyticsHandler(analyticsService),
		Billing:    handler.NewBillingHandler(billingService, webhookService, metrics),
		Builder:    handler.NewBuilderHandler(builderService),
		Admin:      handler.NewAdminHandler(overviewService),
	}
	health := handler.NewHealthHandler(cfg.App.Name, version, map[string]handler.Check{
		"database": db.Ping,
		"cache": func(ctx context.Context) error {
			if stores.Client == nil {
				return nil
			}
			return stores.Client.Ping(ctx).Err()
		},
	})

	engine, err := newEngine(cfg, log, providers, jwtService, stores.Blacklist)
	if err != nil {
		app.close()
		return nil, err
	}
	engine.GET("/health", health.Live)
	engine.GET("/ready", health.Ready)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{Enabled: cfg.HTTP.SwaggerEnabled}),
		ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.NewRouter(engine).Register(router.Groups(handlers)...).Setup()
	app.engine = engine

	log.Info("Routes registered", zap.Int("count", len(engine.Routes())))
	return app, nil
}

// newEngine builds the gin engine with the middleware chain in order
func newEngine(
	cfg *config.Config,
	log *zap.Logger,
	providers *telemetry.Providers,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
) (*gin.Engine, error) {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.IsProduction()

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled),
		logger.GinMiddleware(log),
		middleware.SecureWithConfig(security),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitBurst)))
	}
	engine.Use(
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			PublicRoutes:   middleware.DefaultPublicRoutes(),
			Logger:         log,
		}),
		middleware.SpanEnricher(),
		middleware.Profiling(cfg.Telemetry.ProfilingEnabled),
	)

	httpMetrics, err := middleware.HTTPMetrics(providers.Meter())
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}
	engine.Use(httpMetrics)
	return engine, nil
}

// newObjectStore returns S3 storage, or an in-memory store when no bucket is
// configured outside production
func newObjectStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (objectStore, error) {
	if cfg.Storage.Bucket == "" {
		if cfg.App.IsProduction() {
			return nil, fmt.Errorf("storage bucket is required in production")
		}
		log.Warn("No storage bucket configured, keeping uploads in memory")
		return storage.NewMemoryObjectStorage(cfg.Storage.PublicBaseURL), nil
	}
	s3, err := storage.NewS3ObjectStorage(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Warn("Bucket check failed", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
	}
	return s3, nil
}

// start launches background workers
func (a *application) start(ctx context.Context) error {
	if err := a.bus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}
	if a.jobs != nil {
		if err := a.jobs.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		if err := a.cron.Start(ctx); err != nil {
			return fmt.Errorf("failed to start cron trigger: %w", err)
		}
		a.log.Info("Nightly analytics jobs scheduled", zap.String("schedule", a.cfg.Scheduler.DailyCronSchedule))
	}
	return nil
}

// stop drains background workers, newest first
func (a *application) stop(ctx context.Context) {
	if a.cron != nil {
		if err := a.cron.Stop(ctx); err != nil {
			a.log.Warn("Cron trigger stop failed", zap.Error(err))
		}
	}
	if a.jobs != nil {
		if err := a.jobs.Stop(ctx); err != nil {
			a.log.Warn("Scheduler stop failed", zap.Error(err))
		}
	}
	if a.bus != nil {
		if err := a.bus.Stop(ctx); err != nil {
			a.log.Warn("Event bus stop failed", zap.Error(err))
		}
	}
}

// close releases connections
func (a *application) close() {
	if a.stores != nil {
		if err := a.stores.Close(); err != nil {
			a.log.Error("Error closing cache", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error("Error closing database", zap.Error(err))
		}
	}
}
