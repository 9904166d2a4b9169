package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/cleanwave-api/api/swagger"
	"github.com/noah-isme/cleanwave-api/internal/handler"
	"github.com/noah-isme/cleanwave-api/internal/middleware"
	"github.com/noah-isme/cleanwave-api/internal/models"
	"github.com/noah-isme/cleanwave-api/internal/repository"
	"github.com/noah-isme/cleanwave-api/internal/service"
	"github.com/noah-isme/cleanwave-api/pkg/cache"
	"github.com/noah-isme/cleanwave-api/pkg/config"
	"github.com/noah-isme/cleanwave-api/pkg/database"
	"github.com/noah-isme/cleanwave-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/cleanwave-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/cleanwave-api/pkg/middleware/requestid"
	"github.com/noah-isme/cleanwave-api/pkg/storage"
)

// @title CleanWave API
// @version 1.0.0
// @description Community cleanup-event lifecycle, enrollment and scoring API
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, leaderboard caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	eventRepo := repository.NewEventRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	var audience string
	if len(cfg.JWT.Audience) > 0 {
		audience = cfg.JWT.Audience[0]
	}
	authSvc := service.NewAuthService(cfg.JWT.Secret, cfg.JWT.Issuer, audience)
	eventSvc := service.NewEventService(eventRepo, enrollmentRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, eventRepo, logr)
	activitySvc := service.NewActivityService(activityRepo, eventRepo, validate, logr)
	scoringSvc := service.NewScoringService(activityRepo, cacheRepo, cfg.Leaderboard.CacheTTL, cfg.Leaderboard.Size, logr)

	var reportSvc *service.ReportService
	if cfg.Reports.Enabled {
		store, err := storage.NewReportStore(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init report storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportRepo := repository.NewReportRepository(db)
		reportSvc = service.NewReportService(service.ReportServiceConfig{
			Reports:    reportRepo,
			Events:     eventRepo,
			Activities: activityRepo,
			Store:      store,
			Signer:     signer,
			Metrics:    metricsSvc,
			Logger:     logr,
			Workers:    cfg.Reports.WorkerConcurrency,
			Retries:    cfg.Reports.WorkerRetries,
		})
		reportSvc.Start(context.Background())
		defer reportSvc.Stop()
	}

	eventHandler := handler.NewEventHandler(eventSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, metricsSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	scoringHandler := handler.NewScoringHandler(scoringSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	auth := middleware.JWT(authSvc)
	staffOnly := middleware.RequireRoles(models.RoleOrganizer, models.RoleAdmin)

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/events", eventHandler.List)
		api.GET("/events/:id", eventHandler.Get)
		api.POST("/events", auth, staffOnly, eventHandler.Create)
		api.PUT("/events/:id", auth, staffOnly, eventHandler.Update)
		api.POST("/events/:id/cancel", auth, staffOnly, eventHandler.Cancel)
		api.DELETE("/events/:id", auth, staffOnly, eventHandler.Delete)

		api.POST("/events/:id/enroll", auth, enrollmentHandler.Join)
		api.DELETE("/events/:id/enroll", auth, enrollmentHandler.Leave)
		api.GET("/events/:id/participants", auth, staffOnly, enrollmentHandler.Roster)

		api.POST("/events/:id/activities", auth, staffOnly, activityHandler.Record)
		api.GET("/participants/:id/activities", auth, activityHandler.History)

		api.GET("/participants/:id/score", auth, scoringHandler.Score)
		api.GET("/leaderboard", scoringHandler.Leaderboard)

		if reportSvc != nil {
			reportHandler := handler.NewReportHandler(reportSvc)
			api.GET("/events/:id/report", auth, staffOnly, reportHandler.Request)
			api.GET("/reports/:id", auth, staffOnly, reportHandler.Status)
			api.GET("/reports/:id/download", reportHandler.Download)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
