// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	_ "reelroom/docs" // swagger docs
	"reelroom/internal/assistant"
	"reelroom/internal/cache"
	"reelroom/internal/config"
	"reelroom/internal/database"
	"reelroom/internal/featureflags"
	"reelroom/internal/media"
	"reelroom/internal/middleware"
	"reelroom/internal/models"
	"reelroom/internal/notifications"
	"reelroom/internal/repository"
	"reelroom/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Per-actor limits on the endpoints that write or call out.
const (
	createPostLimit = 20
	commentLimit    = 30
	searchLimit     = 60
	assistantLimit  = 10
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	closers        []func() error

	auth         *middleware.Authenticator
	featureFlags *featureflags.Manager
	media        *media.Store
	assistant    *assistant.Assistant
	notifier     *notifications.Notifier
	hub          *notifications.Hub

	postService         *service.PostService
	feedService         *service.FeedService
	searchService       *service.SearchService
	userService         *service.UserService
	notificationService *service.NotificationService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	store, closeMedia, err := media.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	var gen assistant.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := assistant.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.AIModel)
		if err != nil {
			return nil, fmt.Errorf("assistant client: %w", err)
		}
		gen = g
	}
	ai := assistant.New(gen, assistant.DefaultConfig(cfg.AIRatePerMinute))

	server, err := NewServerWithDeps(cfg, db, redisClient, store, ai)
	if err != nil {
		return nil, err
	}
	if closeMedia != nil {
		server.closers = append(server.closers, closeMedia)
	}
	return server, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis, the media
// store and the assistant. redisClient may be nil.
func NewServerWithDeps(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	store *media.Store,
	ai *assistant.Assistant,
) (*Server, error) {
	if store == nil {
		return nil, errors.New("media store is required")
	}
	if ai == nil {
		ai = assistant.New(nil, assistant.DefaultConfig(cfg.AIRatePerMinute))
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	followRepo := repository.NewFollowRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	notifier := notifications.NewNotifier(redisClient)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("reelroom-api"),
		auth:           middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, redisClient),
		featureFlags:   flags,
		media:          store,
		assistant:      ai,
		notifier:       notifier,
		hub:            notifications.NewHub(),
	}

	server.postService = service.NewPostService(postRepo, userRepo, store, notifier)
	server.feedService = service.NewFeedService(postRepo, userRepo)
	server.searchService = service.NewSearchService(userRepo, flags)
	server.userService = service.NewUserService(userRepo, followRepo, postRepo, store, notifier)
	server.notificationService = service.NewNotificationService(notificationRepo)

	return server, nil
}

// SetupMiddleware configures global middleware
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Images are served from our own origin or the bucket, so the default
	// cross-origin resource policy would block the web client.
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so 429 responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			middleware.RateLimitRejections.WithLabelValues("global").Inc()
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

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if local, ok := s.media.Backend().(*media.LocalBackend); ok {
		app.Static(local.BaseURL(), local.Dir(), fiber.Static{
			MaxAge: 31536000,
		})
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	protected := api.Group("", s.auth.Required())

	posts := protected.Group("/posts")
	posts.Get("/all", s.GetAllPosts)
	posts.Get("/following", s.GetFollowingPosts)
	posts.Get("/likes/:userId", s.GetLikedPosts)
	posts.Get("/user/:username", s.GetUserPosts)
	posts.Post("/create", middleware.RateLimit(s.redis, createPostLimit, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/like/:id", s.LikeUnlikePost)
	posts.Post("/:id/comment", middleware.RateLimit(s.redis, commentLimit, time.Minute, "comment"), s.CommentOnPost)
	posts.Delete("/:id", s.DeletePost)

	users := protected.Group("/users")
	users.Get("/me", s.GetMe)
	users.Get("/profile/:username", s.GetUserProfile)
	users.Get("/suggested", s.GetSuggestedUsers)
	users.Post("/follow/:id", s.FollowUnfollowUser)
	users.Post("/update", s.UpdateProfile)

	protected.Post("/search", middleware.RateLimit(s.redis, searchLimit, time.Minute, "search"), s.SearchUsers)
	protected.Post("/ai", s.AssistantEnabled(), middleware.RateLimit(s.redis, assistantLimit, time.Minute, "ai"), s.AskAssistant)

	notes := protected.Group("/notifications")
	notes.Get("/", s.GetNotifications)
	notes.Delete("/", s.DeleteNotifications)

	protected.Get("/flags", s.GetFeatureFlags)
	protected.Get("/ws", s.WebSocketUpgrade, s.WebsocketHandler())
}

// Start starts the HTTP server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.newApp()
	s.app = app

	// Wiring completes before the first request is accepted.
	if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
		log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

func (s *Server) newApp() *fiber.App {
	limitMB := s.config.ImageMaxUploadSizeMB
	if limitMB <= 0 {
		limitMB = media.DefaultMaxUploadSizeMB
	}
	app := fiber.New(fiber.Config{
		AppName: "reelroom API",
		// base64 inflates images by a third; leave room for the JSON around them.
		BodyLimit: limitMB*2*1024*1024 + 64*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		log.Printf("error shutting down %s: %v", s.hub.Name(), err)
	}

	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			log.Printf("error closing dependency: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
