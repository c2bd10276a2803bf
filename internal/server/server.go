// Package server exposes datasets and simulations over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"coverage-sim/internal/config"
	"coverage-sim/internal/metrics"
	"coverage-sim/internal/simulator"
)

// Server wires the dataset store, the simulation engine and metrics into a
// gin router.
type Server struct {
	cfg     *config.Config
	store   *Store
	jobs    *Jobs
	engine  *simulator.Engine
	metrics *metrics.Manager
}

// New builds a Server. m may be nil, which disables /metrics and
// instrumentation.
func New(cfg *config.Config, m *metrics.Manager) *Server {
	opts := []simulator.Option{
		simulator.WithWorkers(cfg.Simulation.Workers),
		simulator.WithTimeout(cfg.Simulation.Timeout()),
	}
	if m != nil {
		opts = append(opts, simulator.WithRecorder(m))
	}
	return &Server{
		cfg:     cfg,
		store:   NewStore(),
		jobs:    NewJobs(),
		engine:  simulator.NewEngine(opts...),
		metrics: m,
	}
}

// Router returns the HTTP handler.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "datasets": s.store.Len()})
	})
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	r.POST("/datasets", s.handleUpload)
	ds := r.Group("/datasets/:id")
	{
		ds.DELETE("", s.handleDelete)
		ds.GET("/providers", s.handleProviders)
		ds.POST("/options", s.handleOptions)
		ds.POST("/simulate", s.handleSimulate)
		ds.POST("/runs", s.handleStartRun)
		ds.POST("/export/customers.csv", s.handleExport(exportCustomersCSV))
		ds.POST("/export/providers.csv", s.handleExport(exportProvidersCSV))
		ds.POST("/export/layers.geojson", s.handleExport(exportGeoJSON))
		ds.POST("/export/report.xlsx", s.handleExport(exportReport))
	}
	r.GET("/runs/:id", s.handleRunStatus)
	r.POST("/runs/:id/cancel", s.handleRunCancel)

	return r
}

// ListenAndServe runs the API until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server: listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if eris.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "server: listen")
	case <-ctx.Done():
		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "server: shutdown")
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.ObserveRequest(route, c.Request.Method, c.Writer.Status(), elapsed)
		zap.L().Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", elapsed),
		)
	}
}

// fail writes err as a JSON error with a status derived from its kind.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case eris.Is(err, simulator.ErrInvalidParams), eris.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case eris.Is(err, errNotFound):
		status = http.StatusNotFound
	case eris.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("server: request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
