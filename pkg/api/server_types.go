package api

import (
	"time"

	"github.com/dd0wney/cluso-netbuilder/pkg/api/middleware"
	"github.com/dd0wney/cluso-netbuilder/pkg/auth"
	"github.com/dd0wney/cluso-netbuilder/pkg/config"
	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
	"github.com/dd0wney/cluso-netbuilder/pkg/graphql"
	"github.com/dd0wney/cluso-netbuilder/pkg/health"
	"github.com/dd0wney/cluso-netbuilder/pkg/logging"
	"github.com/dd0wney/cluso-netbuilder/pkg/metrics"
)

// Server represents the HTTP API server
type Server struct {
	sessions        *editor.Manager
	tokens          *auth.TokenManager // nil when no session secret is configured
	graphqlHandler  *graphql.Handler
	metricsRegistry *metrics.Registry
	healthChecker   *health.Checker
	corsConfig      *middleware.CORSConfig
	logger          logging.Logger
	config          config.ServerConfig
	startTime       time.Time
	version         string
}

// Options wires a Server to the rest of the process.
type Options struct {
	Config   config.ServerConfig
	Sessions *editor.Manager
	// Metrics is optional; a private registry is created when nil.
	Metrics *metrics.Registry
	// Health is optional; a checker with session and memory checks is built
	// when nil.
	Health  *health.Checker
	Logger  logging.Logger
	Version string
}
