package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ecoleplus/mobile-api/api/swagger"
	"github.com/ecoleplus/mobile-api/internal/handler"
	"github.com/ecoleplus/mobile-api/internal/middleware"
	"github.com/ecoleplus/mobile-api/internal/repository"
	"github.com/ecoleplus/mobile-api/internal/service"
	"github.com/ecoleplus/mobile-api/pkg/cache"
	"github.com/ecoleplus/mobile-api/pkg/config"
	"github.com/ecoleplus/mobile-api/pkg/database"
	"github.com/ecoleplus/mobile-api/pkg/jobs"
	"github.com/ecoleplus/mobile-api/pkg/logger"
	corsmiddleware "github.com/ecoleplus/mobile-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ecoleplus/mobile-api/pkg/middleware/requestid"
	"github.com/ecoleplus/mobile-api/pkg/storage"
	"github.com/ecoleplus/mobile-api/pkg/vision"
)

// @title École Mobile API
// @version 2.0.0
// @description Mobile gateway for the student app (v2 legacy contract)
// @BasePath /api/mobile/v2
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	// Redis is optional; the dashboard degrades to uncached reads.
	var cacheRepo *repository.CacheRepository
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close()
		}
	}
	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, true)
	}

	students := repository.NewStudentRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	payments := repository.NewPaymentRepository(db)
	events := repository.NewEventRepository(db)
	audits := repository.NewAuditRepository(db)

	visionClient := vision.NewClient(cfg.OCR, logr,
		vision.WithObserver(metrics.RecordOCRAttempt))

	studentSvc := service.NewStudentService(students, audits, cacheSvc, cfg.Media, nil, logr)
	dashboardSvc := service.NewDashboardService(students, enrollments, payments, events, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	formationSvc := service.NewFormationService(students, enrollments, payments, cfg.Media, logr)
	paymentSvc := service.NewPaymentService(students, enrollments, payments, logr)
	ocrSvc := service.NewOCRService(visionClient, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var statementSvc *service.StatementService
	var statementQueue *jobs.Queue
	if cfg.Statements.Enabled {
		files, err := storage.NewLocalStorage(cfg.Statements.StorageDir)
		if err != nil {
			logr.Fatal("failed to prepare statements storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Statements.SignedURLSecret, cfg.Statements.SignedURLTTL)
		statementRepo := repository.NewStatementRepository(db)

		statementSvc = service.NewStatementService(statementRepo, paymentSvc, nil, files, signer, logr, service.StatementServiceConfig{
			DownloadPrefix:  cfg.APIPrefix + "/export",
			ResultTTL:       cfg.Statements.SignedURLTTL,
			CleanupInterval: cfg.Statements.CleanupInterval,
		})
		statementQueue = jobs.NewQueue("statements", statementSvc.Process, jobs.QueueConfig{
			Workers:    cfg.Statements.WorkerConcurrency,
			MaxRetries: cfg.Statements.WorkerRetries,
			Logger:     logr,
		})
		statementSvc.SetQueue(statementQueue)
		statementQueue.Start(rootCtx)
		defer statementQueue.Stop()
		statementSvc.StartCleanup(rootCtx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.ResponseMeta())
	r.Use(middleware.Metrics(metrics))

	health := handler.NewHealthHandler(db.DB, metrics)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	studentHandler := handler.NewStudentHandler(studentSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	formationHandler := handler.NewFormationHandler(formationSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	ocrHandler := handler.NewOCRHandler(ocrSvc)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/student/login", studentHandler.Login)
		api.GET("/student/profile", studentHandler.Profile)
		api.POST("/student/profile/update", studentHandler.UpdateProfile)
		api.GET("/student/dashboard", dashboardHandler.Get)
		api.GET("/student/formations", formationHandler.List)
		api.GET("/student/payments", paymentHandler.History)
		api.POST("/ocr/extract-nin", ocrHandler.Extract)

		if statementSvc != nil {
			statementHandler := handler.NewStatementHandler(statementSvc)
			api.POST("/student/statements", statementHandler.Request)
			api.GET("/student/statements/:id", statementHandler.Status)
			api.GET("/export/:token", statementHandler.Download)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("forced shutdown", zap.Error(err))
	}
}
