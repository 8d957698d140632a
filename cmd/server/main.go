package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/storesync/backend/internal/application/catalog"
	appstore "github.com/storesync/backend/internal/application/store"
	appsync "github.com/storesync/backend/internal/application/sync"
	"github.com/storesync/backend/internal/infrastructure/cache"
	"github.com/storesync/backend/internal/infrastructure/config"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/infrastructure/persistence"
	"github.com/storesync/backend/internal/infrastructure/ratelimit"
	"github.com/storesync/backend/internal/infrastructure/scheduler"
	"github.com/storesync/backend/internal/interfaces/http/handler"
	"github.com/storesync/backend/internal/interfaces/http/middleware"
	"github.com/storesync/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

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
		_ = logger.Sync(log)
	}()

	log.Info("Starting storesync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Cache. Redis is preferred; when it is unreachable at boot the
	// service runs on an in-process cache so a cache outage never blocks
	// sync ingress.
	var cacheStore cache.Store
	redisStore, err := cache.NewRedisStore(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-process cache", zap.Error(err))
		cacheStore = cache.NewMemoryStore()
	} else {
		cacheStore = redisStore
		log.Info("Redis connected")
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()

	// Repositories
	storeRepo := persistence.NewGormStoreRepository(db.DB)
	itemRepo := persistence.NewGormCatalogItemRepository(db.DB)
	runRepo := persistence.NewGormSyncRunRepository(db.DB)
	activityReader := persistence.NewGormActivityReader(db.DB, itemRepo)

	// Application services
	resolver := appstore.NewResolver(storeRepo, cacheStore, cfg.Sync.StoreCacheTTL)
	storeService := appstore.NewService(storeRepo, resolver)
	catalogService := appcatalog.NewService(itemRepo, cacheStore)
	tierService := appsync.NewTierService(storeRepo, activityReader, log)
	syncService := appsync.NewService(
		storeRepo,
		runRepo,
		appsync.NewReconciler(itemRepo),
		tierService,
		cacheStore,
		cfg.Sync,
	)

	limiter := ratelimit.NewLimiter(cacheStore, log)

	// Recurring jobs: tier evaluation and sync run retention
	if cfg.Scheduler.Enabled {
		jobs := scheduler.NewScheduler(log, cfg.Scheduler.JobTimeout)
		jobs.Register(appsync.NewTierEvaluationJob(tierService), cfg.Scheduler.TierEvalInterval)
		jobs.Register(appsync.NewRetentionJob(runRepo, cfg.Scheduler.RetentionAge, log), cfg.Scheduler.RetentionInterval)
		if err := jobs.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := jobs.Stop(ctx); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.Duration("tier_eval_interval", cfg.Scheduler.TierEvalInterval),
			zap.Duration("retention_interval", cfg.Scheduler.RetentionInterval),
		)
	}

	// HTTP handlers
	syncHandler := handler.NewSyncHandler(syncService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	storeHandler := handler.NewStoreHandler(storeService)
	healthHandler := handler.NewHealthHandler(db, cacheStore)

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

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	healthHandler.RegisterRoutes(engine)

	// Each surface carries its own auth/tenant and rate-limit chain:
	// sync agents authenticate by secret, the storefront resolves its
	// tenant from the request (falling back to the default store), the
	// dashboard requires an explicit store signal, and store admin is
	// an operator surface.
	tenantStorefront := middleware.Tenant(middleware.TenantConfig{
		Resolver:        resolver,
		PlatformHosts:   cfg.HTTP.PlatformHosts,
		DefaultFallback: true,
	})
	tenantDashboard := middleware.Tenant(middleware.TenantConfig{
		Resolver:      resolver,
		PlatformHosts: cfg.HTTP.PlatformHosts,
	})

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.RegisterFunc(syncHandler.RegisterAgentRoutes,
		middleware.SyncAuth(resolver),
		middleware.SyncRateLimit(limiter, cfg.RateLimit),
	)
	r.RegisterFunc(catalogHandler.RegisterRoutes,
		tenantStorefront,
		middleware.StorefrontRateLimit(limiter, cfg.RateLimit),
	)
	r.RegisterFunc(syncHandler.RegisterDashboardRoutes,
		tenantDashboard,
		middleware.DashboardRateLimit(limiter, cfg.RateLimit),
	)
	r.RegisterFunc(storeHandler.RegisterRoutes)
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
