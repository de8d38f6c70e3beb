package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/choxos/robass-backend/internal/config"
	"github.com/choxos/robass-backend/internal/controller"
	"github.com/choxos/robass-backend/internal/repository"
	"github.com/choxos/robass-backend/internal/service"
	"github.com/choxos/robass-backend/pkg/configwatcher"
	"github.com/choxos/robass-backend/pkg/database"
	"github.com/choxos/robass-backend/pkg/logger"
	"github.com/choxos/robass-backend/pkg/monitoring"
	"github.com/choxos/robass-backend/pkg/security"
	"github.com/choxos/robass-backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	tool       *repository.ToolRepository
	project    *repository.ProjectRepository
	study      *repository.StudyRepository
	assessment *repository.AssessmentRepository
	export     *repository.ExportRepository
}

type services struct {
	auth       *service.AuthService
	tool       *service.ToolService
	project    *service.ProjectService
	study      *service.StudyService
	assessment *service.AssessmentService
	response   *service.ResponseService
	export     *service.ExportService
	storage    service.StorageProvider
}

type controllers struct {
	auth       *controller.AuthController
	tool       *controller.ToolController
	project    *controller.ProjectController
	study      *controller.StudyController
	assessment *controller.AssessmentController
	export     *controller.ExportController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		tool:       repository.NewToolRepository(db),
		project:    repository.NewProjectRepository(db),
		study:      repository.NewStudyRepository(db),
		assessment: repository.NewAssessmentRepository(db),
		export:     repository.NewExportRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	storage, err := service.NewStorageProvider(&cfg.Storage)
	if err != nil {
		logger.Log.Fatal("Failed to initialize storage provider", zap.Error(err))
	}
	s.storage = storage

	s.auth = service.NewAuthService(repos.user, cfg)
	s.tool = service.NewToolService(repos.tool, rdb)
	s.project = service.NewProjectService(repos.project)
	s.study = service.NewStudyService(repos.study, repos.project)
	s.assessment = service.NewAssessmentService(repos.assessment, repos.study, repos.project, repos.tool)
	s.response = service.NewResponseService(repos.assessment, repos.tool, s.assessment)
	s.export = service.NewExportService(repos.export, repos.assessment, repos.project, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		tool:       controller.NewToolController(s.tool),
		project:    controller.NewProjectController(s.project, s.assessment),
		study:      controller.NewStudyController(s.study),
		assessment: controller.NewAssessmentController(s.assessment, s.response),
		export:     controller.NewExportController(s.export),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate || cfg.Server.Mode != "release")
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// The catalog cache is an optimisation; the service runs without Redis.
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, catalog caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("robass-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "" || cfg.Storage.Type == "local" {
		router.Static("/exports", cfg.Storage.LocalPath)
	}

	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		logger.Log.Info("Config reloaded")
		for _, callback := range app.configCallbacks {
			callback(newCfg)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
