package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/controller"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/service"
	"lingua_edu_backend/pkg/configwatcher"
	"lingua_edu_backend/pkg/database"
	"lingua_edu_backend/pkg/logger"
	"lingua_edu_backend/pkg/monitoring"
	"lingua_edu_backend/pkg/security"
	"lingua_edu_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user             *repository.UserRepository
	placement        *repository.PlacementRepository
	placementSession *repository.PlacementSessionRepository
	timeSlot         *repository.TimeSlotRepository
	group            *repository.GroupRepository
	booking          *repository.BookingRepository
	instructor       *repository.InstructorRepository
	course           *repository.CourseRepository
}

type services struct {
	auth       *service.AuthService
	storage    *service.StorageService
	placement  *service.PlacementService
	scheduling *service.SchedulingService
	booking    *service.BookingService
	instructor *service.InstructorService
	course     *service.CourseService
}

type controllers struct {
	auth       *controller.AuthController
	placement  *controller.PlacementController
	schedule   *controller.ScheduleController
	booking    *controller.BookingController
	instructor *controller.InstructorController
	course     *controller.CourseController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:             repository.NewUserRepository(db),
		placement:        repository.NewPlacementRepository(db),
		placementSession: repository.NewPlacementSessionRepository(db),
		timeSlot:         repository.NewTimeSlotRepository(db),
		group:            repository.NewGroupRepository(db),
		booking:          repository.NewBookingRepository(db),
		instructor:       repository.NewInstructorRepository(db),
		course:           repository.NewCourseRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	notifier := service.NewLogNotifier()

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.placement = service.NewPlacementService(repos.placement, repos.placementSession, notifier, cfg, db, rdb)
	s.scheduling = service.NewSchedulingService(repos.timeSlot, repos.group, repos.instructor, notifier, cfg, db)
	s.booking = service.NewBookingService(repos.booking, repos.group, notifier, db)
	s.instructor = service.NewInstructorService(repos.instructor, repos.user)
	s.course = service.NewCourseService(repos.course, s.storage, rdb)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		placement:  controller.NewPlacementController(s.placement),
		schedule:   controller.NewScheduleController(s.scheduling),
		booking:    controller.NewBookingController(s.booking),
		instructor: controller.NewInstructorController(s.instructor),
		course:     controller.NewCourseController(s.course),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	// 定期给无教师小组轮转指派
	go func() {
		log := logger.Named("scheduling")
		ticker := time.NewTicker(5 * time.Minute)
		for range ticker.C {
			if _, err := s.scheduling.AutoAssignInstructors(); err != nil {
				log.Warn("auto assign instructors", zap.Error(err))
			}
		}
	}()

	// 配置热更新
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		a.Config = cfg
		logger.Log.Info("config reloaded")
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("lingua-edu", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

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

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
