// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gymrace/internal/bootstrap"
	"gymrace/internal/catalog"
	"gymrace/internal/config"
	"gymrace/internal/database"
	"gymrace/internal/middleware"
	"gymrace/internal/models"
	"gymrace/internal/notifications"
	"gymrace/internal/observability"
	"gymrace/internal/poll"
	"gymrace/internal/repository"
	"gymrace/internal/service"
	"gymrace/internal/session"
	"gymrace/internal/workout"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "gymrace-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	app         *fiber.App
	registry    *prometheus.Registry
	prom        *fiberprometheus.FiberPrometheus
	shutdownCtx context.Context
	shutdownFn  context.CancelFunc

	catalog  *catalog.Catalog
	notifier *notifications.Notifier
	sessions *session.Manager
	auth     *middleware.Auth
	workouts *workout.Manager

	routineService   *service.RoutineService
	challengeService *service.ChallengeService
	socialService    *service.SocialService
	userService      *service.UserService

	pollInterval time.Duration
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedDemo: cfg.SeedDemoData})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.DB, rt.Redis, rt.Exercises)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, exercises *catalog.Catalog) (*Server, error) {
	if exercises == nil {
		return nil, errors.New("exercise catalog is required")
	}

	userRepo := repository.NewUserRepository(db)
	routineRepo := repository.NewRoutineRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	registry := prometheus.NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		registry:    registry,
		prom:        fiberprometheus.NewWithRegistry(registry, serviceName, "http", "", nil),
		shutdownCtx: ctx,
		shutdownFn:  cancel,
		catalog:     exercises,
		notifier:    notifications.NewNotifier(redisClient),
	}

	s.userService = service.NewUserService(userRepo, redisClient)
	s.routineService = service.NewRoutineService(routineRepo, friendRepo, exercises, redisClient)
	s.challengeService = service.NewChallengeService(challengeRepo, notificationRepo, userRepo, exercises)
	s.socialService = service.NewSocialService(friendRepo, notificationRepo, userRepo, cfg.SocialMutualAccept)

	s.sessions = session.NewManager(s.userService, redisClient)
	s.auth = middleware.NewAuth(cfg, s.sessions)

	s.workouts = workout.NewManager(workout.NewRoutineLoader(routineRepo), workout.Config{
		DefaultSeconds: cfg.WorkoutDefaultSeconds,
	})
	go s.workouts.Run(ctx)

	s.pollInterval = time.Duration(cfg.ChallengePollSeconds) * time.Second
	if s.pollInterval <= 0 {
		s.pollInterval = poll.DefaultInterval
	}

	return s, nil
}

// App builds the Fiber app on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:      "GymRace API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	observability.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	app.Use(s.prom.Middleware)
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:8081,http://localhost:19006"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		MaxAge:       86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(
		prometheus.Gatherers{prometheus.DefaultGatherer, s.registry},
		promhttp.HandlerOpts{},
	)))

	api := app.Group("/api")

	// WebSocket routes authenticate with a query token, so they sit outside
	// the bearer-only group.
	ws := api.Group("/ws", s.auth.WebSocketRequired)
	ws.Get("/challenges", s.WebSocketChallengesHandler())

	protected := api.Group("", s.auth.Required)

	protected.Post("/auth/logout", s.Logout)

	exercises := protected.Group("/exercises")
	exercises.Get("/", s.GetExercises)
	exercises.Get("/categories", s.GetExerciseCategories)

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/:id", s.GetUserProfile)

	routines := protected.Group("/routines")
	routines.Get("/", s.GetMyRoutines)
	routines.Post("/", middleware.RateLimit(s.redis, 30, time.Minute, "create_routine"), s.CreateRoutine)
	// Specific routes before generic /:id
	routines.Get("/shared", s.GetSharedRoutines)
	routines.Get("/:id", s.GetRoutine)
	routines.Put("/:id", s.UpdateRoutine)
	routines.Delete("/:id", s.DeleteRoutine)

	workouts := protected.Group("/workouts")
	workouts.Post("/", s.StartWorkout)
	workouts.Get("/:id", s.GetWorkout)
	workouts.Post("/:id/timer/start", s.workoutAction(func(w *workout.Session) error { return w.StartTimer() }))
	workouts.Post("/:id/timer/pause", s.workoutAction(func(w *workout.Session) error { return w.PauseTimer() }))
	workouts.Put("/:id/timer", s.AdjustWorkoutTimer)
	workouts.Post("/:id/complete", s.workoutAction(func(w *workout.Session) error { return w.MarkComplete() }))
	workouts.Post("/:id/series", s.workoutAction(func(w *workout.Session) error { return w.AnotherSeries() }))
	workouts.Post("/:id/next", s.workoutAction(func(w *workout.Session) error { return w.NextExercise() }))
	workouts.Post("/:id/finish", s.workoutAction(func(w *workout.Session) error { return w.Finish() }))
	workouts.Post("/:id/retry", s.RetryWorkout)
	workouts.Delete("/:id", s.CancelWorkout)

	challenges := protected.Group("/challenges")
	challenges.Get("/", s.GetChallenges)
	challenges.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_challenge"), s.CreateChallenge)
	challenges.Get("/:id", s.GetChallenge)
	challenges.Post("/:id/accept", s.AcceptChallenge)
	challenges.Put("/:id/progress", s.UpdateChallengeProgress)
	challenges.Delete("/:id", s.DeleteChallenge)

	friends := protected.Group("/friends")
	friends.Get("/", s.GetFriends)
	// Specific /requests routes before generic /:userId
	friends.Post("/requests/:userId/accept", s.AcceptFriendRequest)
	friends.Post("/:userId", middleware.RateLimit(s.redis, 20, 5*time.Minute, "friend_connect"), s.ConnectFriend)
	friends.Delete("/:userId", s.RemoveFriend)

	notificationsGroup := protected.Group("/notifications")
	notificationsGroup.Get("/", s.GetNotifications)
	notificationsGroup.Delete("/:id", s.DismissNotification)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional; its
// absence is reported but does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database":  dbStatus,
			"redis":     redisStatus,
			"exercises": s.catalog.Len(),
			"workouts":  s.workouts.Len(),
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	observability.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Stops the workout reaper and every open challenge stream.
	s.shutdownFn()

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}
	s.workouts.Close()

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			observability.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			observability.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	observability.Logger.Info("server shutdown complete")
	return nil
}
