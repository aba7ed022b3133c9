package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/prereg-portal-api/api/swagger"
	"github.com/noah-isme/prereg-portal-api/internal/handler"
	"github.com/noah-isme/prereg-portal-api/internal/middleware"
	"github.com/noah-isme/prereg-portal-api/internal/repository"
	"github.com/noah-isme/prereg-portal-api/internal/service"
	"github.com/noah-isme/prereg-portal-api/internal/upstream"
	"github.com/noah-isme/prereg-portal-api/pkg/cache"
	"github.com/noah-isme/prereg-portal-api/pkg/config"
	"github.com/noah-isme/prereg-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/prereg-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/prereg-portal-api/pkg/middleware/requestid"
)

// @title Pre-Registration Portal API
// @version 0.1.0
// @description Gateway between the student portal and the legacy registrar services
// @BasePath /
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	sessionRepo := repository.NewSessionRepository(redisClient, logr)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	registrar := upstream.NewClient(cfg.Upstream, logr, metricsService)

	authService := service.NewAuthService(registrar, sessionRepo, validate, logr, service.AuthConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Issuer: cfg.Session.Issuer,
	})
	notificationService := service.NewNotificationService(cfg.Notifications.TTL, logr)
	catalogService := service.NewCatalogService(registrar, cacheRepo, cfg.Catalog.CacheTTL, metricsService, logr)
	preRegService := service.NewPreRegService(catalogService, registrar, notificationService, logr)
	dashboardService := service.NewDashboardService(authService, nil, logr)
	exportService := service.NewExportService()

	authHandler := handler.NewAuthHandler(authService, notificationService, preRegService)
	courseHandler := handler.NewCourseHandler(catalogService)
	preRegHandler := handler.NewPreRegHandler(preRegService, notificationService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	exportHandler := handler.NewExportHandler(preRegService, exportService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)

	sessionRequired := middleware.Session(authService)

	auth.POST("/logout", sessionRequired, authHandler.Logout)
	auth.GET("/me", sessionRequired, authHandler.Me)

	api.GET("/courses", sessionRequired, courseHandler.List)

	prereg := api.Group("/prereg", sessionRequired)
	prereg.GET("", preRegHandler.State)
	prereg.POST("/selections/:courseId/toggle", preRegHandler.Toggle)
	prereg.PUT("/selections/:courseId/mode", preRegHandler.SetMode)
	prereg.POST("/submit", preRegHandler.Submit)
	prereg.DELETE("/registrations/:courseId", preRegHandler.Deregister)
	prereg.GET("/registered", preRegHandler.Registered)
	if cfg.Export.Enabled {
		prereg.GET("/export", exportHandler.Download)
	}

	api.GET("/notifications", sessionRequired, preRegHandler.Notifications)
	api.DELETE("/notifications/:id", sessionRequired, preRegHandler.DismissNotification)

	api.GET("/dashboard", sessionRequired, dashboardHandler.Show)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
