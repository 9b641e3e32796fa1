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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ace-portal/enquiry-api/api/swagger"
	"github.com/ace-portal/enquiry-api/internal/handler"
	"github.com/ace-portal/enquiry-api/internal/middleware"
	"github.com/ace-portal/enquiry-api/internal/repository"
	"github.com/ace-portal/enquiry-api/internal/service"
	"github.com/ace-portal/enquiry-api/pkg/cache"
	"github.com/ace-portal/enquiry-api/pkg/config"
	"github.com/ace-portal/enquiry-api/pkg/database"
	"github.com/ace-portal/enquiry-api/pkg/jobs"
	"github.com/ace-portal/enquiry-api/pkg/logger"
	"github.com/ace-portal/enquiry-api/pkg/mail"
	corsmiddleware "github.com/ace-portal/enquiry-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ace-portal/enquiry-api/pkg/middleware/requestid"
	"github.com/ace-portal/enquiry-api/pkg/storage"
)

// @title Admission Enquiry API
// @version 1.0.0
// @description Intake and dashboard backend for admission enquiries
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", err)
			redisClient = nil
		}
	}

	mailer := mail.NewSMTPMailer(cfg.SMTP, logr)
	if err := mailer.Verify(); err != nil {
		logr.Sugar().Warnw("smtp verification failed, deliveries will retry", "error", err)
	}

	deadLetter, err := storage.NewLocalStorage(cfg.Notifications.DeadLetterDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare dead-letter directory", "error", err)
	}

	validate := validator.New()

	enquiryRepo := repository.NewEnquiryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	metricsSvc := service.NewMetricsService()

	notifySvc := service.NewNotificationService(notificationRepo, enquiryRepo, mailer, deadLetter, metricsSvc, cfg.SMTP, logr)
	queue := jobs.NewQueue("notifications", notifySvc.Deliver, jobs.QueueConfig{
		Workers:     cfg.Notifications.Workers,
		MaxRetries:  cfg.Notifications.MaxRetries,
		RetryDelay:  cfg.Notifications.RetryDelay,
		OnExhausted: notifySvc.Exhausted,
		Logger:      logr,
	})
	notifySvc.AttachQueue(queue)
	queue.Start(ctx)
	defer queue.Stop()

	if err := notifySvc.RecoverUndelivered(ctx, 100); err != nil {
		logr.Sugar().Warnw("failed to requeue undelivered notifications", "error", err)
	}

	authSvc, err := service.NewAuthService(cfg.Admin, cfg.JWT, validate, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init auth service", "error", err)
	}

	enquirySvc := service.NewEnquiryService(enquiryRepo, notifySvc, validate, logr)
	statsSvc := service.NewStatsService(enquiryRepo, redisClient, cfg.Stats.CacheTTL, logr)
	exportSvc := service.NewExportService(enquiryRepo, service.NewDashboardSession(), metricsSvc, logr)

	enquiryHandler := handler.NewEnquiryHandler(enquirySvc, statsSvc, metricsSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
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

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api")
	{
		api.POST("/login", authHandler.Login)
		api.POST("/enquiries", enquiryHandler.Create)

		protected := api.Group("", middleware.JWT(authSvc))
		{
			protected.GET("/enquiries", enquiryHandler.List)
			protected.GET("/enquiries/export", exportHandler.Export)
			protected.GET("/enquiries/stats", enquiryHandler.Stats)
			protected.GET("/enquiries/:id", enquiryHandler.Get)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
