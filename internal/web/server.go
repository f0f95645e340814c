// Package web contains the server-rendered HTML frontend: the feed with its
// post form, the trip planner, and the image overlay.
package web

import (
	"context"
	"errors"
	"time"

	"travelshare/internal/client"
	"travelshare/internal/config"
	"travelshare/internal/middleware"
	"travelshare/internal/models"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// ErrorHandler is the app-level Fiber error handler. Handlers render their
// own failure states as HTML; anything that still escapes (unknown routes,
// template failures, recovered panics) gets the standard JSON error body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code == fiber.StatusNotFound {
			return models.RespondWithError(c, fe.Code, models.NewNotFoundError("page", c.Path()))
		}
		return models.RespondWithError(c, fe.Code, err)
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return models.RespondWithError(c, fiber.StatusInternalServerError, appErr)
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// PostAPI is the slice of the backend client the handlers use. The concrete
// implementation is client.Client; tests substitute counting stubs.
type PostAPI interface {
	ListPosts(ctx context.Context, f client.Filter) ([]models.Post, error)
	CreatePost(ctx context.Context, in client.CreatePostInput) (*client.CreatePostResult, error)
	PlanTrip(ctx context.Context, in models.PlanRequest) (string, error)
	ImageURL(id string) string
	ThumbnailURL(id string) string
	Ping(ctx context.Context) error
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	api            PostAPI
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	var opts []client.Option
	if cfg.RequestTimeoutSeconds > 0 {
		opts = append(opts, client.WithTimeout(time.Duration(cfg.RequestTimeoutSeconds)*time.Second))
	}
	api := client.New(cfg.BackendURL, opts...)

	// Redis is optional; without it rate limiting fails open.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			middleware.Logger.Warn("invalid REDIS_URL, continuing without Redis", "error", err)
		} else {
			redisClient = redis.NewClient(redisOpts)
		}
	}

	return NewServerWithDeps(cfg, api, redisClient), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes the API client and Redis.
func NewServerWithDeps(cfg *config.Config, api PostAPI, redisClient *redis.Client) *Server {
	return &Server{
		config:         cfg,
		api:            api,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("travelshare-web"),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Tracing must run before ContextMiddleware so the trace ID local is set
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers. The default COEP require-corp would make browsers
	// refuse the cross-origin backend images the feed embeds.
	app.Use(helmet.New(helmet.Config{
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Feed and post form
	app.Get("/", s.Feed)
	app.Post("/posts", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)

	// Trip planner
	app.Get("/plan", s.PlanForm)
	app.Post("/plan", middleware.RateLimit(
		s.redis, 5, time.Minute, "plan_trip"), s.PlanTrip)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Ready means the backend
// answers its docs endpoint and Redis, when configured, answers PING.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	backendStatus := "healthy"
	if err := s.api.Ping(ctx); err != nil {
		backendStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis is optional for this frontend
		redisStatus = "disabled"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if backendStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"backend": backendStatus,
			"redis":   redisStatus,
		},
		"time": time.Now(),
	})
}
