package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jakechorley/calibration-allocator/internal/config"
	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/core/services"
)

// Store defines the database operations the API needs
type Store interface {
	services.OptimizeStore
	services.ViewAssignmentsStore
}

// Server serves the allocation API
type Server struct {
	store    Store
	cfg      *config.Config
	logger   *zap.Logger
	scorer   *allocator.Scorer
	registry *prometheus.Registry
	locks    *services.RunLocks
}

// NewServer builds the scorer from cfg and returns a Server ready to route.
// locks must be the registry shared with every other optimizer in the process, such as the scheduler.
func NewServer(store Store, cfg *config.Config, logger *zap.Logger, registry *prometheus.Registry, locks *services.RunLocks) (*Server, error) {
	if locks == nil {
		return nil, fmt.Errorf("run lock registry is required")
	}
	scorerCfg, err := services.BuildScorerConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid optimizer configuration: %w", err)
	}
	scorer, err := allocator.NewScorer(scorerCfg)
	if err != nil {
		return nil, err
	}

	return &Server{
		store:    store,
		cfg:      cfg,
		logger:   logger,
		scorer:   scorer,
		registry: registry,
		locks:    locks,
	}, nil
}

// Router returns the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.POST("/api/score", s.Score)
	r.POST("/api/materialize", s.Materialize)
	r.POST("/api/optimize", s.Optimize)
	r.GET("/api/equipment", s.ListEquipment)
	r.GET("/api/runs", s.ListRuns)
	r.GET("/api/runs/:id/assignments", s.RunAssignments)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("address", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}
