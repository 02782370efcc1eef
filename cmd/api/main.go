package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/event-reg-api/api/swagger"
	"github.com/noah-isme/event-reg-api/internal/handler"
	"github.com/noah-isme/event-reg-api/internal/middleware"
	"github.com/noah-isme/event-reg-api/internal/models"
	"github.com/noah-isme/event-reg-api/internal/repository"
	"github.com/noah-isme/event-reg-api/internal/service"
	"github.com/noah-isme/event-reg-api/internal/sheet"
	"github.com/noah-isme/event-reg-api/pkg/cache"
	"github.com/noah-isme/event-reg-api/pkg/config"
	"github.com/noah-isme/event-reg-api/pkg/database"
	"github.com/noah-isme/event-reg-api/pkg/jobs"
	"github.com/noah-isme/event-reg-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/event-reg-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/event-reg-api/pkg/middleware/requestid"
	"github.com/noah-isme/event-reg-api/pkg/storage"
)

// @title Event Registration Admin API
// @version 1.0.0
// @description Spreadsheet-backed event registration administration
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	// Redis is optional: without it the catalog is served straight from
	// the database.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	registrationRepo := repository.NewRegistrationRepository(db)
	attendeeRepo := repository.NewAttendeeRepository(db)
	trainingRepo := repository.NewTrainingRepository(db)
	referenceRepo := repository.NewTrainingReferenceRepository(db)

	metricsSvc := service.NewMetricsService()
	trainingSvc := service.NewTrainingService(trainingRepo, cacheRepo, metricsSvc, cfg.Catalog.CacheTTL, logr)
	strategy := service.NewFullReplaceStrategy(trainingRepo, referenceRepo)
	registrationSvc := service.NewRegistrationService(registrationRepo, attendeeRepo, referenceRepo, strategy, trainingSvc, nil, logr)

	var source *sheet.GoogleSource
	if cfg.Import.SpreadsheetID != "" {
		source, err = sheet.NewGoogleSource(context.Background(), cfg.Import.CredentialsFile, cfg.Import.SpreadsheetID)
		if err != nil {
			logr.Sugar().Warnw("google sheets unavailable, sheet imports disabled", "error", err)
			source = nil
		}
	}
	normalizer := sheet.NewNormalizer(sheet.DefaultLayout())

	var importSvc *service.ImportService
	if source != nil {
		importSvc = service.NewImportService(source, normalizer, registrationSvc, referenceRepo, attendeeRepo, registrationRepo, trainingSvc, metricsSvc, cfg.Import.SheetName, cfg.Import.RowTimeout, logr)
	} else {
		importSvc = service.NewImportService(nil, normalizer, registrationSvc, referenceRepo, attendeeRepo, registrationRepo, trainingSvc, metricsSvc, cfg.Import.SheetName, cfg.Import.RowTimeout, logr)
	}

	importQueue := jobs.NewQueue("imports", importSvc.ProcessJob, jobs.QueueConfig{
		Workers:    cfg.Import.Workers,
		BufferSize: cfg.Import.QueueSize,
		Logger:     logr,
	})
	importQueue.Start(context.Background())
	defer importQueue.Stop()
	importSvc.SetQueue(importQueue)

	exportSvc := service.NewExportService(registrationRepo, attendeeRepo, referenceRepo, exportStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, nil, logr)

	startExportCleanup(exportSvc, cfg.Exports.CleanupInterval, logr)

	registrationHandler := handler.NewRegistrationHandler(registrationSvc)
	importHandler := handler.NewImportHandler(importSvc)
	trainingHandler := handler.NewTrainingHandler(trainingSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Signed download links carry their own authorization.
	api.GET("/export/:token", exportHandler.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(cfg.JWT.Secret))
	authed.GET("/trainings", trainingHandler.List)
	authed.GET("/registrations", registrationHandler.List)
	authed.GET("/registrations/:id", registrationHandler.Get)
	authed.GET("/imports/:id", importHandler.JobStatus)
	authed.GET("/system/metrics", metricsHandler.Snapshot)

	staff := authed.Group("")
	staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleStaff))
	staff.POST("/registrations", registrationHandler.Create)
	staff.PUT("/registrations/:id", registrationHandler.Replace)
	staff.POST("/exports", exportHandler.Create)

	admin := authed.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.DELETE("/registrations/:id", registrationHandler.Delete)
	admin.POST("/imports/sheet", importHandler.ImportSheet)
	admin.POST("/imports/file", importHandler.ImportFile)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func startExportCleanup(exportSvc *service.ExportService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			deleted, err := exportSvc.Cleanup(0)
			if err != nil {
				logr.Sugar().Warnw("export cleanup failed", "error", err)
				continue
			}
			if len(deleted) > 0 {
				logr.Sugar().Infow("export cleanup removed files", "count", len(deleted))
			}
		}
	}()
}
