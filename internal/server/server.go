package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"workdesk/internal/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server represents the HTTP API serving the worklist
type Server struct {
	echo      *echo.Echo
	port      int
	apiKey    string
	startTime time.Time
	server    *http.Server
	handlers  *Handlers
}

// Config contains server configuration
type Config struct {
	Port   int
	APIKey string
}

// NewServer creates a new HTTP API server for the given worklist source
func NewServer(ctx context.Context, source WorklistSource, config Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	server := &Server{
		echo:      e,
		port:      config.Port,
		apiKey:    config.APIKey,
		startTime: time.Now(),
	}

	server.handlers = NewHandlers(source, server.startTime)

	server.setupMiddleware(ctx)
	server.setupRoutes()

	return server
}

// setupMiddleware configures Echo middleware
func (s *Server) setupMiddleware(ctx context.Context) {
	lgr := logger.FromContext(ctx)

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"*"},
	}))

	// Rate limiting middleware (100 requests per minute per IP)
	s.echo.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(100)))

	// Request logging through zap, and the logger made available to handlers
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				lgr.Warn("Request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			lgr.Info("Request", fields...)
			return nil
		},
	}))
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithLogger(req.Context(), lgr)))
			return next(c)
		}
	})

	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// API Key authentication middleware (optional)
	if s.apiKey != "" {
		s.echo.Use(s.apiKeyMiddleware)
	}
}

// apiKeyMiddleware validates API key if configured. Health checks stay open.
func (s *Server) apiKeyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Path() == "/health" {
			return next(c)
		}
		apiKey := c.Request().Header.Get("X-API-Key")
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(s.apiKey)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or missing API key")
		}
		return next(c)
	}
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.handlers.GetHealth)
	s.echo.GET("/worklist", s.handlers.GetWorklist)
	s.echo.POST("/refresh", s.handlers.PostRefresh)
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server in the background
func (s *Server) Start(ctx context.Context) error {
	lgr := logger.FromContext(ctx)

	s.server = &http.Server{
		Addr:         ":" + strconv.Itoa(s.port),
		Handler:      s.echo,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // POST /refresh runs a full cycle
		IdleTimeout:  120 * time.Second,
	}

	lgr.Info("Starting HTTP API server",
		zap.Int("port", s.port),
		zap.String("address", s.server.Addr),
		zap.Bool("api_key", s.apiKey != ""))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lgr.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	lgr := logger.FromContext(ctx)

	if s.server == nil {
		return nil
	}

	lgr.Info("Stopping HTTP API server", zap.Int("port", s.port))

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		lgr.Error("Error during server shutdown", zap.Error(err))
		return err
	}

	lgr.Info("HTTP API server stopped successfully")
	return nil
}

// GetURL returns the base URL for the server
func (s *Server) GetURL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}
