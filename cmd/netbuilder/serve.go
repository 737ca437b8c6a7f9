package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netbuilder/pkg/api"
	"github.com/dd0wney/cluso-netbuilder/pkg/broadcast"
	"github.com/dd0wney/cluso-netbuilder/pkg/config"
	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
	"github.com/dd0wney/cluso-netbuilder/pkg/health"
	"github.com/dd0wney/cluso-netbuilder/pkg/logging"
	"github.com/dd0wney/cluso-netbuilder/pkg/metrics"
	"github.com/dd0wney/cluso-netbuilder/pkg/pubsub"
	"github.com/dd0wney/cluso-netbuilder/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve editing sessions over HTTP and GraphQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger := cfg.Logger()
			logging.SetDefaultLogger(logger)

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.close()
			return a.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

// app is the wired server process: sessions publish reports on an
// in-process bus, which is forwarded to the broadcast socket when enabled.
type app struct {
	cfg       *config.Config
	logger    logging.Logger
	metrics   *metrics.Registry
	tracer    *tracing.Provider
	reports   *pubsub.PubSub[editor.Report]
	sessions  *editor.Manager
	publisher *broadcast.Publisher
	server    *api.Server
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewRegistry(),
		reports: pubsub.New[editor.Report](pubsub.DefaultBuffer),
	}

	tracer, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		Endpoint:       cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	a.tracer = tracer

	if cfg.Broadcast.Enabled {
		a.publisher, err = broadcast.Listen(cfg.Broadcast.Addr, cfg.Broadcast.Compress,
			broadcast.WithLogger(logger),
			broadcast.WithMetrics(a.metrics))
		if err != nil {
			a.close()
			return nil, fmt.Errorf("broadcast: %w", err)
		}
	}

	opts := sessionOptions(cfg)
	opts.Logger = logger
	opts.Metrics = a.metrics
	opts.Tracer = a.tracer
	opts.Reports = a.reports
	a.sessions = editor.NewManager(opts)

	a.server, err = api.NewServer(api.Options{
		Config:   cfg.Server,
		Sessions: a.sessions,
		Metrics:  a.metrics,
		Health:   a.healthChecker(),
		Logger:   logger,
		Version:  version,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) healthChecker() *health.Checker {
	c := health.NewChecker(version)
	c.RegisterCheck("sessions", health.SessionsCheck(a.sessions.Len, 0))
	c.RegisterCheck("memory", health.MemoryCheck(health.RuntimeMemory))
	c.RegisterLivenessCheck("api", health.SimpleCheck("api"))
	c.RegisterReadinessCheck("sessions", health.SessionsCheck(a.sessions.Len, 0))

	var ping func() error
	if a.publisher != nil {
		ping = a.publisher.Ping
	}
	c.RegisterCheck("broadcast", health.BroadcastCheck(a.cfg.Broadcast.Addr, ping))
	if a.publisher != nil {
		c.RegisterReadinessCheck("broadcast", health.BroadcastCheck(a.cfg.Broadcast.Addr, ping))
	}
	return c
}

// forward starts relaying every session's reports to the broadcast socket.
func (a *app) forward(ctx context.Context) error {
	if a.publisher == nil {
		return nil
	}
	sub, err := a.reports.Subscribe(ctx, pubsub.TopicAll)
	if err != nil {
		return fmt.Errorf("subscribe to reports: %w", err)
	}
	go broadcast.Forward(ctx, a.publisher, sub.Channel())
	a.logger.Info("broadcasting reports",
		logging.String("addr", a.publisher.Addr()),
		logging.Bool("compress", a.cfg.Broadcast.Compress))
	return nil
}

func (a *app) run(ctx context.Context) error {
	if err := a.forward(ctx); err != nil {
		return err
	}
	err := a.server.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// close releases everything newApp acquired. It is safe on a partly built app.
func (a *app) close() {
	if a.sessions != nil {
		a.sessions.Close()
	}
	if a.reports != nil {
		a.reports.Shutdown()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("closing broadcast socket", logging.Error(err))
		}
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.logger.Warn("flushing traces", logging.Error(err))
		}
	}
	a.logger.Info("netbuilder stopped")
}
