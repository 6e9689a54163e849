// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/repository"
	"agora/internal/security"
	"agora/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	authService    *service.AuthService
	profileService *service.ProfileService
	postService    *service.PostService
	feedService    *service.FeedService
	searchService  *service.SearchService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// nil when Redis is unreachable; every Redis consumer degrades.
	redisClient := cache.NewRedisClient(context.Background(), cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	store := cache.NewStore(redisClient)
	hasher := security.NewBcryptHasher(cfg.BcryptCost, cfg.HashConcurrency)
	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry())

	mailer := newResetMailer(cfg, redisClient)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("agora-api"),
	}
	s.authService = service.NewAuthService(userRepo, followRepo, hasher, tokens, mailer, store, service.AuthConfig{
		ResetTokenTTL: cfg.ResetTokenTTL(),
		ResetURLBase:  cfg.ResetURLBase,
	})
	s.profileService = service.NewProfileService(userRepo, followRepo)
	s.postService = service.NewPostService(postRepo, commentRepo)
	s.feedService = service.NewFeedService(postRepo, commentRepo, userRepo)
	s.searchService = service.NewSearchService(userRepo, followRepo, postRepo, commentRepo, store)
	return s, nil
}

// newResetMailer picks the reset-link transport. Links carry a live token,
// so production never logs them: without Redis every reset request fails.
func newResetMailer(cfg *config.Config, redisClient *redis.Client) notifications.PasswordResetMailer {
	switch {
	case redisClient != nil:
		return notifications.NewMailOutbox(redisClient)
	case cfg.IsProduction():
		middleware.Logger.Error("redis unavailable: password reset requests will fail until it returns")
		return notifications.NewMailOutbox(nil)
	default:
		return notifications.LogMailer{}
	}
}

// App builds the fiber application on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "Agora API",
		ErrorHandler: s.ErrorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Propagate request ID into the request context for the logger.
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	maxRequests := s.config.RateLimitMax
	if maxRequests <= 0 {
		maxRequests = 100
	}
	window := s.config.RateLimitWindow()
	if window <= 0 {
		window = 15 * time.Minute
	}
	app.Use(limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: window,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithAppError(c,
				models.NewRateLimitedError("Too many requests, please try again later."))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	authRequired := middleware.AuthRequired(s.authService)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/forgot-password", middleware.RateLimit(s.redis, 3, 15*time.Minute, "forgot_password"), s.ForgotPassword)
	auth.Put("/reset-password/:token", s.ResetPassword)
	auth.Get("/me", authRequired, s.GetMe)
	auth.Put("/change-password", authRequired, s.ChangePassword)

	posts := api.Group("/posts", authRequired)
	posts.Get("/", s.GetFeed)
	posts.Post("/", s.CreatePost)
	// Specific routes before the generic /:id routes.
	posts.Get("/feed", s.GetFeed)
	posts.Get("/explore", s.GetExplore)
	posts.Put("/:id/like", s.ToggleLike)
	posts.Post("/:id/comments", s.AddComment)
	posts.Delete("/:id/comments/:commentId", s.DeleteComment)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	profiles := api.Group("/profiles", authRequired)
	profiles.Get("/suggestions", s.SuggestUsers)
	profiles.Get("/search", s.SearchUsers)
	profiles.Put("/me", s.UpdateProfile)
	profiles.Put("/:id/follow", s.ToggleFollow)
	profiles.Get("/:id/posts", s.GetUserPosts)
	profiles.Get("/:id/followers", s.ListFollowers)
	profiles.Get("/:id/following", s.ListFollowing)
	profiles.Get("/:id", s.GetProfile)

	search := api.Group("/search", authRequired)
	search.Get("/users", s.SearchUsers)
	search.Get("/posts", s.SearchPosts)
	search.Get("/trending", s.TrendingTopics)
}

// ErrorHandler turns errors that escape a handler into the error envelope.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.Envelope{
			Success: false,
			Error:   fe.Message,
			Code:    codeForStatus(fe.Code),
		})
	}
	return s.respondError(c, err)
}

func codeForStatus(status int) string {
	switch {
	case status == fiber.StatusNotFound:
		return models.CodeNotFound
	case status == fiber.StatusUnauthorized:
		return models.CodeUnauthorized
	case status == fiber.StatusForbidden:
		return models.CodeForbidden
	case status == fiber.StatusTooManyRequests:
		return models.CodeRateLimited
	case status >= fiber.StatusInternalServerError:
		return models.CodeInternal
	default:
		return models.CodeValidation
	}
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only the database gates readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status, overall := fiber.StatusOK, "healthy"
	if dbStatus != "healthy" {
		status, overall = fiber.StatusServiceUnavailable, "unhealthy"
	}
	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("error closing database", slog.String("error", err.Error()))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
