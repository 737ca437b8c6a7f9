package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-netbuilder/pkg/api/middleware"
	"github.com/dd0wney/cluso-netbuilder/pkg/auth"
	"github.com/dd0wney/cluso-netbuilder/pkg/graphql"
	"github.com/dd0wney/cluso-netbuilder/pkg/health"
	"github.com/dd0wney/cluso-netbuilder/pkg/logging"
	"github.com/dd0wney/cluso-netbuilder/pkg/metrics"
)

const (
	shutdownTimeout       = 10 * time.Second
	systemMetricsInterval = 15 * time.Second
	defaultMaxBodyBytes   = 1 << 20
)

// NewServer creates a new API server over opts.Sessions.
func NewServer(opts Options) (*Server, error) {
	if opts.Sessions == nil {
		return nil, errors.New("api: session manager is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRegistry()
	}
	if opts.Config.MaxBodyBytes <= 0 {
		opts.Config.MaxBodyBytes = defaultMaxBodyBytes
	}

	s := &Server{
		sessions:        opts.Sessions,
		metricsRegistry: opts.Metrics,
		healthChecker:   opts.Health,
		corsConfig:      middleware.NewCORSConfig(opts.Config.CORSOrigins),
		logger:          opts.Logger.With(logging.Component("api")),
		config:          opts.Config,
		startTime:       time.Now(),
		version:         opts.Version,
	}

	gqlConfig := graphql.Config{Sessions: opts.Sessions}
	if opts.Config.SessionSecret != "" {
		tokens, err := auth.NewTokenManager(opts.Config.SessionSecret, opts.Config.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("session tokens: %w", err)
		}
		s.tokens = tokens
		gqlConfig.Tokens = tokens
	}

	schema, err := graphql.NewSchema(gqlConfig)
	if err != nil {
		return nil, err
	}
	s.graphqlHandler = graphql.NewHandler(schema, graphql.DefaultMaxDepth, s.logger)

	if s.healthChecker == nil {
		s.healthChecker = health.NewChecker(opts.Version)
		s.healthChecker.RegisterCheck("sessions", health.SessionsCheck(opts.Sessions.Len, 0))
		s.healthChecker.RegisterCheck("memory", health.MemoryCheck(health.RuntimeMemory))
		s.healthChecker.RegisterLivenessCheck("api", health.SimpleCheck("api"))
		s.healthChecker.RegisterReadinessCheck("sessions", health.SessionsCheck(opts.Sessions.Len, 0))
	}

	return s, nil
}

// routes registers every endpoint on a Go 1.22 pattern mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("GET /health", s.healthChecker.HTTPHandler())
	mux.HandleFunc("GET /health/live", s.healthChecker.LivenessHandler())
	mux.HandleFunc("GET /health/ready", s.healthChecker.ReadinessHandler())
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metricsRegistry.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /info", s.handleInfo)

	// GraphQL endpoint
	mux.Handle("POST /graphql", s.graphqlHandler)

	// Sessions
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	mux.HandleFunc("GET /sessions/{id}", s.withSession(s.handleGetSession))
	mux.HandleFunc("DELETE /sessions/{id}", s.requireOwner(s.handleDeleteSession))
	mux.HandleFunc("GET /sessions/{id}/specification", s.withSession(s.handleSpecification))

	// Network edits
	mux.HandleFunc("POST /sessions/{id}/nodes", s.requireOwner(s.handleAddNode))
	mux.HandleFunc("DELETE /sessions/{id}/nodes/{node}", s.requireOwner(s.handleRemoveNode))
	mux.HandleFunc("POST /sessions/{id}/links", s.requireOwner(s.handleAddLink))
	mux.HandleFunc("DELETE /sessions/{id}/links/{source}/{target}", s.requireOwner(s.handleRemoveLink))
	mux.HandleFunc("POST /sessions/{id}/links/{source}/{target}/toggle", s.requireOwner(s.handleToggleLink))
	mux.HandleFunc("POST /sessions/{id}/logic/merge", s.requireOwner(s.handleMerge))
	mux.HandleFunc("POST /sessions/{id}/logic/detach", s.requireOwner(s.handleDetach))

	// Command language
	mux.HandleFunc("POST /sessions/{id}/commands", s.requireOwner(s.handleCommand))
	mux.HandleFunc("POST /sessions/{id}/script", s.requireOwner(s.handleScript))

	return mux
}

// Handler returns the complete middleware chain around the routes.
// Metrics wraps the mux directly so that it sees the matched pattern.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.routes()
	h = middleware.Metrics(s.metricsRegistry)(h)
	h = middleware.BodySizeLimit(s.config.MaxBodyBytes)(h)
	h = middleware.CORS(s.corsConfig)(h)
	h = middleware.Logging(s.logger)(h)
	h = middleware.RequestID()(h)
	h = middleware.PanicRecovery(s.logger)(h)
	return h
}

// Start serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info("api server starting",
		logging.String("addr", ln.Addr().String()),
		logging.Bool("tokens", s.tokens != nil),
		logging.String("version", s.version))

	go s.updateSystemMetrics(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}

func (s *Server) updateSystemMetrics(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	s.metricsRegistry.UpdateSystemMetrics(s.startTime)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.metricsRegistry.UpdateSystemMetrics(s.startTime)
		}
	}
}
