// Package api provides the netsight console server: a REST view over the
// scan session, the device query engine and the statistics aggregator, plus
// a WebSocket stream of session updates.
//
// @title netsight console API
// @version 1.0
// @description Drives network scans against a scanning service and serves the
// @description resulting device inventory with filtering, sorting, statistics and export.
//
// @contact.name netsight
// @contact.url https://github.com/anstrom/netsight
//
// @license.name MIT
//
// @host localhost:8090
// @BasePath /api/v1
//
//go:generate swag init -g server.go -d ./,./handlers,../session,../query,../stats,../models -o ../../docs/swagger --parseInternal
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/anstrom/netsight/docs/swagger" // registers the OpenAPI document
	apihandlers "github.com/anstrom/netsight/internal/api/handlers"
	"github.com/anstrom/netsight/internal/api/middleware"
	"github.com/anstrom/netsight/internal/client"
	"github.com/anstrom/netsight/internal/config"
	"github.com/anstrom/netsight/internal/logging"
	"github.com/anstrom/netsight/internal/metrics"
	"github.com/anstrom/netsight/internal/session"
)

// Server timeout constants.
const (
	readTimeout           = 10 * time.Second
	idleTimeout           = 60 * time.Second
	maxHeaderBytes        = 1 << 20
	systemMetricsInterval = 15 * time.Second
)

// Server represents the console server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	handler    http.Handler
	config     *config.Config
	runner     *session.Runner
	hub        *apihandlers.SessionHub
	view       *apihandlers.ViewState
	logger     *logging.Logger
	metrics    *metrics.PrometheusMetrics
	recorder   metrics.Recorder

	baseCtx     context.Context
	cancel      context.CancelFunc
	unsubscribe []func()
	stopOnce    sync.Once
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics exposes pm on the configured metrics path and records HTTP
// metrics into it.
func WithMetrics(pm *metrics.PrometheusMetrics) Option {
	return func(s *Server) {
		s.metrics = pm
		s.recorder = pm
	}
}

// New creates a console server driving runner. service answers the
// auxiliary quick scan and validation calls.
func New(cfg *config.Config, runner *session.Runner, service client.Service, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		router:   mux.NewRouter(),
		config:   cfg,
		runner:   runner,
		logger:   logging.Default(),
		recorder: metrics.Noop{},
		baseCtx:  baseCtx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("api")

	controller := runner.Controller()
	s.view = apihandlers.NewViewState(cfg.Query.ResetOnNewResult)
	s.hub = apihandlers.NewSessionHub(controller.Snapshot, s.logger, s.recorder)
	s.unsubscribe = append(s.unsubscribe,
		controller.Subscribe(s.view.Observe),
		controller.Subscribe(s.hub.Publish),
	)

	s.setupRoutes(
		apihandlers.NewHealthHandler(controller, s.hub, cfg.Metrics.Enabled && s.metrics != nil),
		apihandlers.NewSessionHandler(baseCtx, runner, service, cfg.NetworkForm(), s.logger),
		apihandlers.NewDeviceHandler(controller, s.view),
		apihandlers.NewStatisticsHandler(controller, s.view),
	)
	s.setupMiddleware()

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Console.Host, strconv.Itoa(cfg.Console.Port)),
		Handler:           s.handler,
		ReadHeaderTimeout: readTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}

	return s, nil
}

// setupRoutes configures all console routes.
func (s *Server) setupRoutes(
	health *apihandlers.HealthHandler,
	sessions *apihandlers.SessionHandler,
	devices *apihandlers.DeviceHandler,
	statistics *apihandlers.StatisticsHandler,
) {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// System
	api.HandleFunc("/health", health.Liveness).Methods(http.MethodGet)
	api.HandleFunc("/status", health.Status).Methods(http.MethodGet)
	api.HandleFunc("/version", health.Version).Methods(http.MethodGet)

	// Session
	api.HandleFunc("/session", sessions.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/session", sessions.ResetSession).Methods(http.MethodDelete)
	api.HandleFunc("/scans/network", sessions.StartNetworkScan).Methods(http.MethodPost)
	api.HandleFunc("/scans/device", sessions.StartDeviceScan).Methods(http.MethodPost)
	api.HandleFunc("/ws", s.hub.ServeWS).Methods(http.MethodGet)

	// Scanning service passthrough
	api.HandleFunc("/network/quick-scan", sessions.QuickScan).Methods(http.MethodGet)
	api.HandleFunc("/network/validate", sessions.ValidateNetwork).Methods(http.MethodGet)

	// Devices and query state
	api.HandleFunc("/devices", devices.ListDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices/facets", devices.Facets).Methods(http.MethodGet)
	api.HandleFunc("/devices/{ip}/expand", devices.ToggleExpanded).Methods(http.MethodPost)
	api.HandleFunc("/query", devices.GetQuery).Methods(http.MethodGet)
	api.HandleFunc("/query", devices.UpdateQuery).Methods(http.MethodPatch)
	api.HandleFunc("/query", devices.ResetQuery).Methods(http.MethodDelete)
	api.HandleFunc("/query/sort/{field}", devices.SelectSort).Methods(http.MethodPost)

	// Statistics and export
	api.HandleFunc("/statistics", statistics.GetStatistics).Methods(http.MethodGet)
	api.HandleFunc("/export", statistics.Export).Methods(http.MethodGet)

	if s.config.Metrics.Enabled && s.metrics != nil {
		s.router.Handle(s.config.GetMetricsPath(), s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
	))
	s.router.HandleFunc("/docs", s.redirectToSwagger).Methods(http.MethodGet)

	s.router.HandleFunc("/", s.indexHandler).Methods(http.MethodGet)
}

// setupMiddleware configures middleware for the console server.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recovery(s.logger))
	if s.config.Logging.RequestLogging {
		s.router.Use(middleware.Logging(s.logger))
	}
	s.router.Use(middleware.Metrics(s.recorder))

	s.handler = s.router
	if cors := s.config.Console.CORS; cors.Enabled {
		// Preflight requests match no route, so CORS wraps the router.
		s.handler = handlers.CORS(
			handlers.AllowedOrigins(cors.AllowedOrigins),
			handlers.AllowedMethods(cors.AllowedMethods),
			handlers.AllowedHeaders(cors.AllowedHeaders),
		)(s.router)
	}
}

// Start serves until ctx is done or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting console server",
		"address", s.httpServer.Addr,
		"metrics", s.config.Metrics.Enabled)

	if s.metrics != nil {
		go s.metrics.StartPeriodicUpdates(s.baseCtx, systemMetricsInterval)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("console server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errChan:
		s.release()
		return err
	}
}

// Stop gracefully stops the server. In-flight scans are canceled.
func (s *Server) Stop() error {
	s.logger.Info("Stopping console server")

	timeout := s.config.Console.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.release()
	if err != nil {
		s.logger.Error("Console server shutdown error", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("Console server stopped")
	return nil
}

// release cancels background scans and detaches from the session.
func (s *Server) release() {
	s.stopOnce.Do(func() {
		s.cancel()
		for _, unsubscribe := range s.unsubscribe {
			unsubscribe()
		}
		s.hub.Close()
	})
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// GetAddress returns the server address.
func (s *Server) GetAddress() string {
	return s.httpServer.Addr
}

// Runner returns the session runner driven by the server.
func (s *Server) Runner() *session.Runner {
	return s.runner
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "netsight console",
		"version": "v1",
		"endpoints": map[string]string{
			"health":     "/api/v1/health",
			"status":     "/api/v1/status",
			"session":    "/api/v1/session",
			"devices":    "/api/v1/devices",
			"statistics": "/api/v1/statistics",
			"websocket":  "/api/v1/ws",
			"docs":       "/swagger/",
		},
	})
}

func (s *Server) redirectToSwagger(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
