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
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/intervention-insights-api/api/swagger"
	"github.com/noah-isme/intervention-insights-api/internal/handler"
	"github.com/noah-isme/intervention-insights-api/internal/insights"
	internalmiddleware "github.com/noah-isme/intervention-insights-api/internal/middleware"
	"github.com/noah-isme/intervention-insights-api/internal/models"
	"github.com/noah-isme/intervention-insights-api/internal/repository"
	"github.com/noah-isme/intervention-insights-api/internal/service"
	"github.com/noah-isme/intervention-insights-api/pkg/cache"
	"github.com/noah-isme/intervention-insights-api/pkg/config"
	"github.com/noah-isme/intervention-insights-api/pkg/database"
	"github.com/noah-isme/intervention-insights-api/pkg/export"
	"github.com/noah-isme/intervention-insights-api/pkg/jobs"
	"github.com/noah-isme/intervention-insights-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/intervention-insights-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/intervention-insights-api/pkg/middleware/requestid"
	"github.com/noah-isme/intervention-insights-api/pkg/storage"
)

// @title Intervention Insights API
// @version 1.0.0
// @description Behaviour tracking, goal progress and intervention effectiveness analytics
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	dependencies := map[string]handler.Pinger{"postgres": handler.PingFunc(db.PingContext)}

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		redisRepo := repository.NewCacheRepository(redisClient, logr)
		defer redisRepo.Close()
		cacheRepo = redisRepo
		dependencies["redis"] = redisRepo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Analytics.CacheTTL, logr, redisClient != nil)

	settingsSvc := service.NewSettingsService(repository.NewSettingsRepository(db), cacheSvc, validate, logr)
	behaviorRepo := repository.NewBehaviorRepository(db)
	behaviorSvc := service.NewBehaviorService(behaviorRepo, validate, logr)
	goalSvc := service.NewGoalService(repository.NewGoalRepository(db), behaviorRepo, metrics, validate, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	pipeline := insights.NewPipeline(
		insights.NewAggregator(cfg.Analytics.Concurrency),
		significanceTest(cfg.Analytics),
		insights.MatrixOptions{Duplicates: insights.DuplicateAverage},
	)
	analyticsSvc := service.NewAnalyticsService(repository.NewAnalyticsRepository(db), settingsSvc, pipeline, cacheSvc, metrics, logr, cfg.Analytics.LearningProfiles)

	gin.SetMode(gin.DebugMode)
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics.Handler(), dependencies)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	behaviorHandler := handler.NewBehaviorHandler(behaviorSvc)
	secured.GET("/behaviors", behaviorHandler.List)
	secured.POST("/behaviors", behaviorHandler.Create)
	secured.GET("/behaviors/events", behaviorHandler.ListEvents)
	secured.POST("/behaviors/events", behaviorHandler.RecordEvent)
	secured.GET("/behaviors/:id", behaviorHandler.Get)

	goalHandler := handler.NewGoalHandler(goalSvc)
	secured.GET("/goals", goalHandler.List)
	secured.POST("/goals", goalHandler.Create)
	secured.GET("/goals/:id", goalHandler.Get)
	secured.GET("/goals/:id/progress", goalHandler.Progress)
	secured.POST("/goals/:id/evaluate", goalHandler.Evaluate)
	secured.POST("/goals/:id/pause", goalHandler.Pause)
	secured.POST("/goals/:id/resume", goalHandler.Resume)

	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	analyticsGroup := secured.Group("/analytics")
	analyticsGroup.GET("/settings", settingsHandler.Get)
	analyticsGroup.PUT("/settings", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin), settingsHandler.Update)

	if cfg.Analytics.Enabled {
		analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
		interventions := analyticsGroup.Group("/interventions")
		interventions.Use(internalmiddleware.WithResponseMeta())
		interventions.GET("", analyticsHandler.Data)
		interventions.GET("/overview", analyticsHandler.Overview)
		interventions.GET("/matrix", analyticsHandler.Matrix)
		interventions.GET("/significant", analyticsHandler.Significant)
		interventions.GET("/top", analyticsHandler.Top)
		analyticsGroup.GET("/system", analyticsHandler.System)
	}

	var queue *jobs.Queue
	if cfg.Analytics.Enabled && cfg.Reports.Enabled {
		queue, err = mountReports(ctx, cfg, logr, db, analyticsSvc, settingsSvc, metrics, api, analyticsGroup)
		if err != nil {
			return err
		}
		defer queue.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func mountReports(
	ctx context.Context,
	cfg *config.Config,
	logr *zap.Logger,
	db *sqlx.DB,
	analyticsSvc *service.AnalyticsService,
	settingsSvc *service.SettingsService,
	metrics *service.MetricsService,
	api, analyticsGroup *gin.RouterGroup,
) (*jobs.Queue, error) {
	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(analyticsSvc, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, export.NewCSVExporter(), export.NewPDFExporter())

	reportRepo := repository.NewReportRepository(db)
	worker := service.NewReportWorker(reportRepo, exportSvc, metrics, cfg.Reports.WorkerRetries, logr)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	queue.Start(ctx)

	reportSvc := service.NewReportService(reportRepo, settingsSvc, queue, exportSvc, metrics, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
		MaxRetries:      cfg.Reports.WorkerRetries,
		AutoInterval:    cfg.Reports.AutoInterval,
		AutoFormat:      models.ReportFormat(cfg.Reports.AutoFormat),
	})
	reportSvc.RecoverPendingJobs(ctx)
	reportSvc.StartCleanup(ctx)
	reportSvc.StartAutomaticReports(ctx)

	reportHandler := handler.NewReportHandler(reportSvc, logr)
	analyticsGroup.POST("/reports", reportHandler.GenerateReport)
	analyticsGroup.GET("/reports/:id", reportHandler.ReportStatus)
	api.GET("/export/:token", reportHandler.DownloadReport)
	return queue, nil
}

func significanceTest(cfg config.AnalyticsConfig) insights.SignificanceTest {
	if cfg.SignificanceTest == config.SignificanceGrowthWelch {
		return insights.GrowthWelchTest{ControlInterventions: cfg.ControlInterventions}
	}
	return insights.ProportionZTest{ControlRate: cfg.ControlRate, ControlSize: cfg.ControlSize}
}
