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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/pacs-worklist-api/api/swagger"
	"github.com/noah-isme/pacs-worklist-api/internal/handler"
	"github.com/noah-isme/pacs-worklist-api/internal/middleware"
	"github.com/noah-isme/pacs-worklist-api/internal/models"
	"github.com/noah-isme/pacs-worklist-api/internal/repository"
	"github.com/noah-isme/pacs-worklist-api/internal/service"
	"github.com/noah-isme/pacs-worklist-api/internal/worklist"
	"github.com/noah-isme/pacs-worklist-api/pkg/cache"
	"github.com/noah-isme/pacs-worklist-api/pkg/config"
	"github.com/noah-isme/pacs-worklist-api/pkg/database"
	"github.com/noah-isme/pacs-worklist-api/pkg/dicomweb"
	"github.com/noah-isme/pacs-worklist-api/pkg/jobs"
	"github.com/noah-isme/pacs-worklist-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/pacs-worklist-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/pacs-worklist-api/pkg/middleware/requestid"
	"github.com/noah-isme/pacs-worklist-api/pkg/storage"
)

// @title PACS Worklist API
// @version 1.0.0
// @description Session-scoped study worklist with filtering, sorting and rolling-window pagination
// @BasePath /api/v1
// @schemes http https

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

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck
	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to prepare schema", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, session filters will not be persisted", zap.Error(err))
		redisClient = nil
	}

	app, err := build(ctx, cfg, db, redisClient, logr)
	if err != nil {
		logr.Fatal("failed to wire services", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown incomplete", zap.Error(err))
	}
	app.close()
}

type application struct {
	router *gin.Engine
	close  func()
}

func build(ctx context.Context, cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) (*application, error) {
	metrics := service.NewMetricsService()
	validate := validator.New()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Worklist.SessionTTL, logr, cacheRepo.Enabled())

	studyRepo := repository.NewStudyRepository(db)
	seriesRepo := repository.NewSeriesRepository(db)
	measurementRepo := repository.NewMeasurementRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	sessions := service.NewSessionManager(
		service.NewSessionStore(cacheSvc, cfg.Worklist.SessionTTL),
		service.SessionManagerConfig{
			SeriesCacheSize: cfg.Worklist.SeriesCacheSize,
			PersistDebounce: cfg.Worklist.PersistDebounce,
			IdleTTL:         cfg.Worklist.SessionTTL,
		},
		metrics, logr,
	)
	seriesSvc := service.NewSeriesService(seriesRepo, cfg.Worklist.SeriesFetchTimeout, metrics, logr)
	worklistSvc := service.NewWorklistService(studyRepo, seriesSvc, sessions, service.WorklistConfig{
		StudiesLimit:          cfg.Worklist.StudiesLimit,
		DefaultResultsPerPage: cfg.Worklist.DefaultResultsPerPage,
		PreservedKeys:         cfg.Worklist.PreservedQueryKeys,
		Mode:                  worklist.NewBasicViewer(cfg.Worklist.ViewerModeName, cfg.Worklist.ViewerModeRoute, cfg.Worklist.ViewerDataPath),
		DataSource: models.DataSourceConfig{
			DICOMUploadEnabled: cfg.DICOM.UploadEnabled,
			ArchiveUIURL:       cfg.DICOM.ArchiveUIURL,
		},
	}, metrics, logr)

	reportFiles, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("report storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	measurementSvc := service.NewMeasurementService(measurementRepo, studyRepo, reportFiles, signer, nil, validate, metrics, logr, service.MeasurementConfig{
		DownloadBasePath: cfg.APIPrefix + "/exports",
		PostURL:          cfg.Measurements.PostURL,
		PostTimeout:      cfg.Measurements.PostTimeout,
	})
	commandSvc := service.NewCommandService(measurementSvc, logr)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, validate, logr)

	var archive *dicomweb.Client
	if cfg.DICOM.StoreURL != "" {
		archive = dicomweb.NewClient(cfg.DICOM.StoreURL, nil, cfg.DICOM.StoreTimeout, logr)
	}
	uploadSvc := service.NewDICOMUploadService(archive, dicomweb.StudyUIDFromPart10, worklistSvc, metrics, logr, service.DICOMUploadConfig{
		Enabled:      cfg.DICOM.UploadEnabled && archive != nil,
		StoreTimeout: cfg.DICOM.StoreTimeout,
	})
	// One worker keeps stores sequential; failed files are reported, not retried.
	storeQueue := jobs.NewQueue("dicom-store", uploadSvc.HandleJob, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 256,
		OnResult:   uploadSvc.OnResult,
		Logger:     logr,
	})
	uploadSvc.SetQueue(storeQueue)

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	bgCtx, cancelBackground := context.WithCancel(context.Background())
	storeQueue.Start(bgCtx)
	go sessions.Run(bgCtx, time.Minute)
	go cleanupReports(bgCtx, reportFiles, cfg.Reports, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	deps := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	metricsHandler := handler.NewMetricsHandler(metrics, deps)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r.Group(cfg.APIPrefix), handler.Handlers{
		Worklist:    handler.NewWorklistHandler(worklistSvc),
		Study:       handler.NewStudyHandler(worklistSvc),
		Command:     handler.NewCommandHandler(commandSvc, measurementSvc),
		Measurement: handler.NewMeasurementHandler(measurementSvc),
		Upload:      handler.NewUploadHandler(uploadSvc, cfg.DICOM.MaxUploadBytes),
		Feedback:    handler.NewFeedbackHandler(feedbackSvc),
	}, authSvc)

	return &application{
		router: r,
		close: func() {
			if n := storeQueue.Pending(); n > 0 {
				logr.Warn("dropping queued dicom stores", zap.Int("pending", n))
			}
			cancelBackground()
			storeQueue.Stop()
			sessions.Shutdown()
			if err := cacheRepo.Close(); err != nil {
				logr.Warn("failed to close redis", zap.Error(err))
			}
		},
	}, nil
}

func cleanupReports(ctx context.Context, files *storage.LocalStorage, cfg config.ReportsConfig, logr *zap.Logger) {
	interval := cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := files.CleanupOlderThan(cfg.SignedURLTTL)
			if err != nil {
				logr.Warn("report cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("removed expired reports", zap.Int("count", len(removed)))
			}
		}
	}
}
