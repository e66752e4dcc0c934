package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hexfit/gymops-api/api/swagger"
	"github.com/hexfit/gymops-api/internal/handler"
	"github.com/hexfit/gymops-api/internal/middleware"
	"github.com/hexfit/gymops-api/internal/repository"
	"github.com/hexfit/gymops-api/internal/service"
	"github.com/hexfit/gymops-api/pkg/cache"
	"github.com/hexfit/gymops-api/pkg/config"
	"github.com/hexfit/gymops-api/pkg/database"
	"github.com/hexfit/gymops-api/pkg/logger"
	corsmiddleware "github.com/hexfit/gymops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hexfit/gymops-api/pkg/middleware/requestid"
)

// @title GymOps Scheduling API
// @version 0.1.0
// @description Coach-to-class scheduling and availability resolution service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, availability caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	coachRepo := repository.NewCoachRepository(db)
	templateRepo := repository.NewScheduleTemplateRepository(db)
	scheduleRepo := repository.NewGeneratedScheduleRepository(db)
	slotRepo := repository.NewClassSlotRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	resolver := service.NewAvailabilityResolver()

	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, validate, logr)
	coachSvc := service.NewCoachService(coachRepo, logr)
	generatorSvc := service.NewScheduleGeneratorService(
		templateRepo,
		coachRepo,
		scheduleRepo,
		slotRepo,
		db,
		resolver,
		validate,
		logr,
		service.ScheduleGeneratorConfig{
			MaxTemplateSlots: cfg.Scheduler.MaxTemplateSlots,
			Metrics:          metricsSvc,
		},
	)
	reassignSvc := service.NewReassignmentService(
		slotRepo,
		scheduleRepo,
		coachRepo,
		resolver,
		cacheRepo,
		cfg.Scheduler.AvailabilityCacheTTL,
		validate,
		logr,
	)
	exportSvc := service.NewExportService(generatorSvc, coachRepo, cfg.Exports.Enabled, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	coachHandler := handler.NewCoachHandler(coachSvc)
	scheduleHandler := handler.NewScheduleGeneratorHandler(generatorSvc, exportSvc)
	availabilityHandler := handler.NewAvailabilityHandler(reassignSvc, metricsSvc)

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

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/coaches", coachHandler.List)
	protected.GET("/coaches/:id", coachHandler.Get)

	protected.POST("/schedules/generate", scheduleHandler.Generate)
	protected.GET("/schedules", scheduleHandler.List)
	protected.GET("/schedules/:id/slots", scheduleHandler.Slots)
	protected.GET("/schedules/:id/export", scheduleHandler.Export)
	protected.POST("/schedules/:id/publish", middleware.RequireRoles("admin", "manager"), scheduleHandler.Publish)
	protected.DELETE("/schedules/:id", middleware.RequireRoles("admin", "manager"), scheduleHandler.Delete)

	protected.GET("/slots/:id/availability", availabilityHandler.Availability)
	protected.PATCH("/slots/:id/assignee", availabilityHandler.Reassign)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
