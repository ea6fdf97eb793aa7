package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/diegocaceres21/saae-discount-api/api/swagger"
	"github.com/diegocaceres21/saae-discount-api/internal/handler"
	"github.com/diegocaceres21/saae-discount-api/internal/middleware"
	"github.com/diegocaceres21/saae-discount-api/internal/records"
	"github.com/diegocaceres21/saae-discount-api/internal/repository"
	"github.com/diegocaceres21/saae-discount-api/internal/service"
	"github.com/diegocaceres21/saae-discount-api/pkg/cache"
	"github.com/diegocaceres21/saae-discount-api/pkg/config"
	"github.com/diegocaceres21/saae-discount-api/pkg/database"
	"github.com/diegocaceres21/saae-discount-api/pkg/jobs"
	"github.com/diegocaceres21/saae-discount-api/pkg/logger"
	corsmiddleware "github.com/diegocaceres21/saae-discount-api/pkg/middleware/cors"
	reqidmiddleware "github.com/diegocaceres21/saae-discount-api/pkg/middleware/requestid"
	"github.com/diegocaceres21/saae-discount-api/pkg/storage"
)

// @title SAAE Discount API
// @version 1.0.0
// @description Sibling-group tuition discount pipeline and registry
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	registryRepo := repository.NewRegistryRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// The catalog cache is optional; a missing Redis only disables it.
	var cacheService *service.CacheService
	if cfg.Catalog.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Catalog.CacheTTL, logr, true)
		}
	}

	// Services.
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	catalogService := service.NewCatalogService(catalogRepo, cacheService, validate, logr)

	recordsClient := records.NewClient(records.Config{
		BaseURL:      cfg.Records.BaseURL,
		APIToken:     cfg.Records.APIToken,
		Timeout:      cfg.Records.Timeout,
		MaxRetries:   cfg.Records.MaxRetries,
		RetryBackoff: cfg.Records.RetryBackoff,
	}, logr, metrics)

	broker := service.NewPromptBroker(cfg.Pipeline.PromptTimeout, metrics, logr)
	paymentService := service.NewPaymentService(recordsClient, broker, logr)
	careerService := service.NewCareerService(broker, logr)
	allocator := service.NewDiscountAllocator(logr)

	pipelineService := service.NewPipelineService(
		recordsClient, paymentService, careerService, catalogService,
		registryRepo, allocator, validate, metrics, logr,
		cfg.Pipeline.StudentWorkers,
	)
	registryService := service.NewRegistryService(registryRepo, logr)

	var reportService *service.ReportService
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Fatal("failed to init export storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportService := service.NewExportService(registryRepo, store, signer,
			service.ExportConfig{ResultTTL: cfg.Reports.SignedURLTTL}, logr, nil, nil)

		reportQueue = jobs.NewQueue("registry_export", func(ctx context.Context, job jobs.Job) error {
			return reportService.HandleJob(ctx, job)
		}, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportService = service.NewReportService(reportRepo, registryRepo, reportQueue, exportService, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportQueue.Start(ctx)
		defer reportQueue.Stop()
		reportService.StartCleanup(ctx)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	pipelineHandler := handler.NewPipelineHandler(pipelineService, registryService)
	promptHandler := handler.NewPromptHandler(broker)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("", middleware.JWT(authService))
	protected.GET("/auth/me", authHandler.Me)

	protected.POST("/pipeline/individual", pipelineHandler.RunIndividual)
	protected.POST("/pipeline/bulk", pipelineHandler.RunBulk)
	protected.POST("/pipeline/reorder", pipelineHandler.Reorder)

	protected.GET("/prompts", promptHandler.List)
	protected.POST("/prompts/:id/payment", promptHandler.ResolvePayment)
	protected.POST("/prompts/:id/career", promptHandler.ResolveCareer)
	protected.DELETE("/prompts/:id", promptHandler.Cancel)

	protected.GET("/registry/requests", pipelineHandler.ListRequests)
	protected.GET("/registry/requests/:id", pipelineHandler.GetRequest)

	protected.GET("/catalog/careers", catalogHandler.ListCareers)
	protected.GET("/catalog/tiers", catalogHandler.ListTiers)
	admin := protected.Group("", middleware.RBAC("admin"))
	admin.PUT("/catalog/careers", catalogHandler.UpsertCareer)
	admin.PUT("/catalog/tiers", catalogHandler.UpsertTier)
	admin.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Reports.Enabled {
		reportHandler := handler.NewReportHandler(reportService)
		protected.POST("/reports", reportHandler.Create)
		protected.GET("/reports/:id", reportHandler.Status)
		// Download is token-authenticated, not JWT: the signed URL is handed
		// to the browser.
		api.GET("/reports/download/:token", reportHandler.Download)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
