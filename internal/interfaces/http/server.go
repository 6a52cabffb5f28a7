// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/kupipodariday-backend/internal/config"
	"github.com/your-org/kupipodariday-backend/internal/domain/offer"
	"github.com/your-org/kupipodariday-backend/internal/domain/user"
	"github.com/your-org/kupipodariday-backend/internal/domain/wish"
	"github.com/your-org/kupipodariday-backend/internal/domain/wishlist"
	redisinfra "github.com/your-org/kupipodariday-backend/internal/infrastructure/database/redis"
	"github.com/your-org/kupipodariday-backend/internal/interfaces/http/handlers"
	"github.com/your-org/kupipodariday-backend/internal/interfaces/http/middleware"
	"github.com/your-org/kupipodariday-backend/internal/interfaces/http/routes"
	"github.com/your-org/kupipodariday-backend/internal/pkg/metrics"
)

// Dependencies are the services the HTTP layer exposes
type Dependencies struct {
	Users     *user.Service
	Wishes    *wish.Service
	Offers    *offer.Service
	Wishlists *wishlist.Service

	// Database backs the readiness check
	Database handlers.HealthChecker
	// Cache is optional; without it rate limiting stays in process
	Cache *redisinfra.Client
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	log        *logrus.Logger
	deps       Dependencies
	gin        *gin.Engine
	httpServer *http.Server
}

// NewServer creates a new HTTP server instance with its routes mounted
func NewServer(cfg *config.Config, log *logrus.Logger, deps Dependencies) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: cfg,
		log:    log,
		deps:   deps,
		gin:    gin.New(),
	}

	if len(cfg.Security.TrustedProxies) > 0 {
		if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			log.WithError(err).Warn("invalid trusted proxies, ignoring")
		}
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the configured gin engine
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.log.WithFields(logrus.Fields{
		"port":     s.config.Server.Port,
		"base_url": fmt.Sprintf("http://localhost:%s/api/v1", s.config.Server.Port),
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.log.Info("shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.Metrics())
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config))

	if s.deps.Cache != nil {
		s.gin.Use(middleware.RateLimit(s.config.Security.RateLimitPerMinute, s.deps.Cache, s.log))
	} else {
		s.gin.Use(middleware.NewLocalRateLimiter(s.config.Security.RateLimitPerMinute).Handler())
	}

	s.gin.Use(middleware.RequestSizeLimit(1 << 20))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	checks := map[string]handlers.HealthChecker{}
	if s.deps.Database != nil {
		checks["database"] = s.deps.Database
	}
	if s.deps.Cache != nil {
		checks["redis"] = s.deps.Cache
	}
	health := handlers.NewHealthHandler(s.config, checks)

	s.gin.GET("/health", health.Health)
	s.gin.GET("/ready", health.Ready)
	s.gin.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, &routes.Handlers{
		Auth:     handlers.NewAuthHandler(s.deps.Users, s.log),
		User:     handlers.NewUserHandler(s.deps.Users, s.deps.Wishes, s.deps.Offers, s.deps.Wishlists, s.log),
		Wish:     handlers.NewWishHandler(s.deps.Wishes, s.log),
		Offer:    handlers.NewOfferHandler(s.deps.Offers, s.log),
		Wishlist: handlers.NewWishlistHandler(s.deps.Wishlists, s.log),
	}, s.config)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name + " API",
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"auth":      "/api/v1/auth",
					"users":     "/api/v1/users",
					"wishes":    "/api/v1/wishes",
					"offers":    "/api/v1/offers",
					"wishlists": "/api/v1/wishlistlists",
				},
			})
		})
	}
}
