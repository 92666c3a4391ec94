// ABOUTME: HTTP JSON API over the bodycomp storage and scoring core.
// ABOUTME: Echo server with recovery, request IDs, zap request logging, and optional bearer auth.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/harperreed/bodycomp/internal/ai"
	"github.com/harperreed/bodycomp/internal/scoring"
	"github.com/harperreed/bodycomp/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options configures a Server.
type Options struct {
	Repo      storage.Repository
	Evaluator *scoring.Evaluator
	// AI is optional; AI routes answer 503 without it.
	AI     *ai.Service
	Logger *zap.Logger
	Addr   string
	// APIToken enables bearer auth on /api when set.
	APIToken string
}

// Server provides HTTP endpoints for bodycomp.
type Server struct {
	echo      *echo.Echo
	repo      storage.Repository
	evaluator *scoring.Evaluator
	ai        *ai.Service
	logger    *zap.Logger
	metrics   *Metrics
	addr      string
}

// New creates a new HTTP server.
func New(opts Options) (*Server, error) {
	if opts.Repo == nil {
		return nil, fmt.Errorf("repository cannot be nil")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if opts.Evaluator == nil {
		opts.Evaluator = scoring.NewEvaluator(scoring.WorstCase)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		repo:      opts.Repo,
		evaluator: opts.Evaluator,
		ai:        opts.AI,
		logger:    opts.Logger,
		metrics:   NewMetrics(),
		addr:      opts.Addr,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.metrics.Middleware())
	e.Use(s.requestLogger())

	s.registerRoutes(opts.APIToken)
	return s, nil
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			s.logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	}
}

func (s *Server) registerRoutes(token string) {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	if token != "" {
		v1.Use(middleware.KeyAuth(func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		}))
	}

	v1.GET("/subjects", s.handleListSubjects)
	v1.POST("/subjects", s.handleCreateSubject)
	v1.GET("/subjects/:subject", s.handleGetSubject)
	v1.DELETE("/subjects/:subject", s.handleDeleteSubject)

	v1.GET("/subjects/:subject/measurements", s.handleListMeasurements)
	v1.POST("/subjects/:subject/measurements", s.handleCreateMeasurement)
	v1.DELETE("/measurements/:id", s.handleDeleteMeasurement)

	v1.GET("/subjects/:subject/card", s.handleCard)
	v1.GET("/subjects/:subject/trend", s.handleTrend)
	v1.GET("/subjects/:subject/protein", s.handleProtein)
	v1.POST("/evaluate", s.handleEvaluate)

	v1.POST("/subjects/:subject/extract", s.handleExtract)
	v1.GET("/insights/comparison", s.handleComparison)
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// storageError maps repository errors to HTTP errors.
func storageError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
