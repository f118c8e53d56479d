package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dental-clinic-booking/config"
	deliveryHttp "dental-clinic-booking/internal/delivery/http"
	"dental-clinic-booking/internal/delivery/http/handler"
	"dental-clinic-booking/internal/delivery/http/middleware"
	"dental-clinic-booking/internal/infrastructure/cache"
	"dental-clinic-booking/internal/infrastructure/database"
	"dental-clinic-booking/internal/repository"
	"dental-clinic-booking/internal/service"
	"dental-clinic-booking/internal/usecase"
	"dental-clinic-booking/pkg/jwt"
	"dental-clinic-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config       *config.Config
	DB           *gorm.DB
	RedisClient  *redis.Client
	Server       *http.Server
	loginLimiter *middleware.RateLimiter
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	setupLogger(cfg.App.LogLevel)
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	if err := database.Migrate(db); err != nil {
		app.Close()
		return nil, err
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize all layers
	if err := app.initializeServer(cfg, db, redisClient); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", level)
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// initializeServer wires repositories, services, usecases and handlers into the HTTP server
func (app *App) initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) error {
	log := logrus.StandardLogger()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	appointmentTypeRepo := repository.NewCachedAppointmentTypeRepository(
		repository.NewAppointmentTypeRepository(), redisClient, cfg.Cache.AppointmentTypesTTL, log)
	auditLogRepo := repository.NewAuditLogRepository()

	// Seed reference data
	if cfg.Seed.Enabled {
		data, err := database.LoadSeedFile(cfg.Seed.File)
		if err != nil {
			return err
		}
		seeder := database.NewSeeder(db, log, userRepo, appointmentTypeRepo, appointmentRepo)
		if err := seeder.Seed(context.Background(), data); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	// Initialize services
	tokenStore := service.NewRedisTokenStore(redisClient)
	auditService := service.NewAuditService(db, log, auditLogRepo)
	conflictChecker := service.NewConflictChecker(cfg.Clinic)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, jwtService, tokenStore, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, appointmentTypeRepo, userRepo, conflictChecker, auditService)
	appointmentTypeUsecase := usecase.NewAppointmentTypeUsecase(db, log, appointmentTypeRepo)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, userRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	appointmentTypeHandler := handler.NewAppointmentTypeHandler(appointmentTypeUsecase)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.AllowedOrigins)
	app.loginLimiter = middleware.NewRateLimiter(cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst)

	// Initialize router
	router := deliveryHttp.NewRouter(
		log,
		authHandler,
		appointmentHandler,
		appointmentTypeHandler,
		doctorHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		app.loginLimiter,
	)

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close releases the rate limiter, database and Redis connections
func (app *App) Close() {
	if app.loginLimiter != nil {
		app.loginLimiter.Stop()
	}

	// Close database connection
	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logrus.Warnf("Failed to close database: %v", err)
			}
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			logrus.Warnf("Failed to close Redis: %v", err)
		}
	}
}
