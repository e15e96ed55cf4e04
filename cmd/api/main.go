package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/campuslane/learning-service/internal/api/dto"
	httptransport "github.com/campuslane/learning-service/internal/api/http"
	"github.com/campuslane/learning-service/internal/api/http/handlers"
	"github.com/campuslane/learning-service/internal/auth"
	"github.com/campuslane/learning-service/internal/config"
	"github.com/campuslane/learning-service/internal/events"
	"github.com/campuslane/learning-service/internal/observability"
	"github.com/campuslane/learning-service/internal/persistence"
	"github.com/campuslane/learning-service/internal/ratelimit"
	"github.com/campuslane/learning-service/internal/repository"
	"github.com/campuslane/learning-service/internal/repository/memory"
	"github.com/campuslane/learning-service/internal/service"
	"github.com/campuslane/learning-service/internal/worker"
)

type repositories struct {
	users       repository.UserRepository
	courses     repository.CourseRepository
	assignments repository.AssignmentRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if pool != nil && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, persistence.Migrations(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var repos repositories
	if pool != nil {
		repos = repositories{
			users:       repository.NewUserRepository(pool),
			courses:     repository.NewCourseRepository(pool),
			assignments: repository.NewAssignmentRepository(pool),
		}
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore(nil)
		repos = repositories{
			users:       memory.NewUserRepository(store),
			courses:     memory.NewCourseRepository(store),
			assignments: memory.NewAssignmentRepository(store),
		}
	}

	limiter := ratelimit.NewMemoryLimiter(ratelimit.MemoryConfig{})
	if redis.Enabled() {
		limiter, err = ratelimit.NewRedisLimiter(redis.Client, cfg.App.Name+":login", nil)
		if err != nil {
			logger.Fatal("failed to init rate limiter", zap.Error(err))
		}
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	dispatcher := events.NewInMemoryDispatcher()
	notifier := service.NewNotificationService(logger, cfg.Notification)
	notificationWorker := worker.StartNotificationWorker(ctx, dispatcher, notifier, notifier.EventTypes(), logger)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:     repos.users,
		TokenManager: tokens,
		Limiter:      limiter,
		Logger:       logger,
	})
	userService := service.NewUserService(cfg.Auth, service.UserDependencies{
		UserRepo:       repos.users,
		CourseRepo:     repos.courses,
		AssignmentRepo: repos.assignments,
	})
	courseService := service.NewCourseService(service.CourseDependencies{
		CourseRepo:     repos.courses,
		AssignmentRepo: repos.assignments,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		AssignmentRepo: repos.assignments,
		CourseRepo:     repos.courses,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	if cfg.Seed.Enabled() {
		if _, err := authService.SeedAdmin(ctx, cfg.Seed); err != nil {
			logger.Fatal("failed to seed admin", zap.Error(err))
		}
	}

	metrics := observability.NewMetrics()
	validator, err := dto.NewValidator()
	if err != nil {
		logger.Fatal("failed to init validator", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.App.BodyLimitBytes,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:           logger,
		Metrics:          metrics,
		Timeout:          cfg.App.RequestTimeout(),
		CORSAllowOrigins: cfg.App.CORSAllowOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService, validator),
		Users:          handlers.NewUsersHandler(userService, validator),
		Courses:        handlers.NewCoursesHandler(courseService, validator),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService, validator),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, repos.users, logger),
	})

	logger.Info("starting http server",
		zap.String("addr", cfg.App.Addr()),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version))
	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notificationWorker.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
