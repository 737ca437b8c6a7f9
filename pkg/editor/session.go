// Package editor runs interactive editing sessions over a regulatory
// network. A Session owns one network, applies discrete commands to it one
// at a time and, after each accepted command, recomputes the specification
// and the parameter graph figures and hands the resulting Report to its
// subscribers.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-netbuilder/pkg/combinatorics"
	"github.com/dd0wney/cluso-netbuilder/pkg/logging"
	"github.com/dd0wney/cluso-netbuilder/pkg/metrics"
	"github.com/dd0wney/cluso-netbuilder/pkg/network"
	"github.com/dd0wney/cluso-netbuilder/pkg/pubsub"
	"github.com/dd0wney/cluso-netbuilder/pkg/specification"
	"github.com/dd0wney/cluso-netbuilder/pkg/tracing"
)

const (
	statusApplied  = "applied"
	statusRejected = "rejected"
)

// Options configures new sessions. Zero values are usable: an empty
// network, the canonical format and no logging, metrics or publishing.
type Options struct {
	// Seed starts the session from X0 -> X1 -> X2.
	Seed bool
	// Format selects the specification syntax.
	Format specification.Format
	// VerifyInvariants re-checks the model after every accepted command.
	VerifyInvariants bool

	Logger  logging.Logger
	Metrics *metrics.Registry
	Tracer  *tracing.Provider
	// Reports receives every report, published on the session id.
	Reports *pubsub.PubSub[Report]
}

// Session is one user's editing session. All methods are safe for
// concurrent use; commands are applied strictly one after another.
type Session struct {
	id      string
	created time.Time

	mu       sync.Mutex
	net      *network.Network
	engine   *combinatorics.Engine
	renderer *specification.Renderer
	sel      selection
	revision uint64
	report   Report
	closed   bool

	verify  bool
	logger  logging.Logger
	metrics *metrics.Registry
	tracer  *tracing.Provider
	reports *pubsub.PubSub[Report]
}

// NewSession creates a session with a fresh id and computes its first report
// at revision 0.
func NewSession(opts Options) *Session {
	net := network.New()
	if opts.Seed {
		net = network.NewSeeded()
	}
	format := opts.Format
	if format == "" {
		format = specification.FormatCanonical
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	id := uuid.New().String()
	s := &Session{
		id:       id,
		created:  time.Now(),
		net:      net,
		engine:   combinatorics.NewEngine(),
		renderer: specification.NewRenderer(format),
		verify:   opts.VerifyInvariants,
		logger:   logger.With(logging.Session(id)),
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		reports:  opts.Reports,
	}

	s.report = s.derive(context.Background())
	if s.metrics != nil {
		s.metrics.SessionOpened(net.NodeCount(), net.LinkCount())
	}
	s.logger.Info("session opened",
		logging.Int("nodes", net.NodeCount()),
		logging.Int("links", net.LinkCount()),
		logging.String("format", string(format)))
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Created returns when the session was opened.
func (s *Session) Created() time.Time { return s.created }

// Report returns the report of the current revision.
func (s *Session) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Revision returns the number of accepted commands.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Snapshot returns a copy of the current network.
func (s *Session) Snapshot() network.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.Snapshot()
}

// Execute applies cmd. On success the revision advances and the new report
// is returned and published. A rejected command changes nothing and
// publishes nothing.
func (s *Session) Execute(ctx context.Context, cmd Command) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := cmd.Name()
	ctx, span := s.tracer.StartCommandSpan(ctx, s.id, name)
	defer span.End()

	if s.closed {
		tracing.RecordError(span, ErrSessionClosed)
		return Report{}, ErrSessionClosed
	}

	timer := logging.StartTimer(s.logger, "command", logging.Command(name), logging.String("args", cmd.String()))
	nodes, links := s.net.NodeCount(), s.net.LinkCount()

	if err := cmd.apply(s); err != nil {
		elapsed := timer.EndWarn(err, logging.String("status", statusRejected))
		s.recordCommand(name, statusRejected, elapsed)
		tracing.RecordError(span, err)
		return Report{}, err
	}

	if s.verify {
		if err := s.net.CheckInvariants(); err != nil {
			err = fmt.Errorf("after %s: %w", name, err)
			timer.EndError(err)
			tracing.RecordError(span, err)
			return Report{}, err
		}
	}

	s.sel.prune(s.net)
	s.revision++
	s.report = s.derive(ctx)

	elapsed := timer.End(logging.String("status", statusApplied), logging.Revision(s.revision))
	s.recordCommand(name, statusApplied, elapsed)
	if s.metrics != nil {
		s.metrics.AddNetworkSize(s.net.NodeCount()-nodes, s.net.LinkCount()-links)
	}
	tracing.RecordRevision(span, s.revision)

	if s.reports != nil {
		s.reports.Publish(s.id, s.report)
	}
	return s.report, nil
}

// Run executes commands in order and stops at the first rejection, which is
// returned together with the last accepted report.
func (s *Session) Run(ctx context.Context, cmds []Command) (Report, error) {
	report := s.Report()
	for _, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		next, err := s.Execute(ctx, cmd)
		if err != nil {
			return report, err
		}
		report = next
	}
	return report, nil
}

// Close ends the session. Later commands fail with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.metrics != nil {
		s.metrics.SessionClosed(s.id, s.net.NodeCount(), s.net.LinkCount())
	}
	s.logger.Info("session closed", logging.Revision(s.revision))
}

// derive recomputes the report from the current state. Callers hold mu
// (or own the session exclusively, as NewSession does).
func (s *Session) derive(ctx context.Context) Report {
	_, span := s.tracer.StartDerivationSpan(ctx, s.net.NodeCount(), s.net.LinkCount())
	defer span.End()

	start := time.Now()
	snap := s.net.Snapshot()
	res := s.engine.Compute(snap)
	spec := s.renderer.Render(snap)
	report := newReport(s.id, s.revision, snap, res, spec, s.sel.view(s.net))
	elapsed := time.Since(start)

	unsupported := report.UnsupportedKeys()
	if len(unsupported) > 0 {
		s.logger.Info("unsupported logic shape",
			logging.Revision(s.revision),
			logging.Any("keys", unsupported),
			logging.Any("nodes", report.Unclassified))
	}
	if s.metrics != nil {
		s.metrics.RecordDerivation(s.id, elapsed, res.ParameterGraphSize, unsupported)
	}
	tracing.RecordDerivation(span, report.ParameterGraphSize, len(res.Unclassified))
	return report
}

func (s *Session) recordCommand(name, status string, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordCommand(name, status, elapsed)
	}
}
