package editor

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dd0wney/cluso-netbuilder/pkg/logging"
	"github.com/dd0wney/cluso-netbuilder/pkg/metrics"
	"github.com/dd0wney/cluso-netbuilder/pkg/network"
	"github.com/dd0wney/cluso-netbuilder/pkg/pubsub"
	"github.com/dd0wney/cluso-netbuilder/pkg/specification"
	"github.com/dd0wney/cluso-netbuilder/pkg/tracing"
	"github.com/dd0wney/cluso-netbuilder/pkg/validation"
)

func seeded(t *testing.T) *Session {
	t.Helper()
	s := NewSession(Options{Seed: true, VerifyInvariants: true})
	t.Cleanup(s.Close)
	return s
}

func exec(t *testing.T, s *Session, cmds ...Command) Report {
	t.Helper()
	var r Report
	for _, cmd := range cmds {
		var err error
		r, err = s.Execute(context.Background(), cmd)
		require.NoError(t, err, "command %s", cmd)
	}
	return r
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.Gauge.GetValue()
}

func TestNewSessionSeeded(t *testing.T) {
	s := seeded(t)

	assert.NoError(t, validation.ValidateSessionID(s.ID()))
	r := s.Report()
	assert.Equal(t, s.ID(), r.Session)
	assert.Equal(t, uint64(0), r.Revision)
	assert.Equal(t, []string{"X0 : ()", "X1 : (X0)", "X2 : (X1)"}, r.Specification)
	assert.Equal(t, "6", r.ParameterGraphSize)
	assert.Equal(t, "1", r.Reorderings)
	assert.Equal(t, "6", r.AllOrderings)
	assert.True(t, r.Supported)
	require.Len(t, r.Figures, 3)
	assert.Equal(t, "Parameter Graph Size for fixed threshold ordering = 6", r.Figures[0].String())
}

func TestNewSessionEmpty(t *testing.T) {
	s := NewSession(Options{})
	defer s.Close()

	r := s.Report()
	assert.Empty(t, r.Network.Nodes)
	assert.Empty(t, r.Specification)
	assert.Equal(t, "1", r.ParameterGraphSize)
	assert.Nil(t, r.Selection.Inspected)
}

func TestExecuteAdvancesRevision(t *testing.T) {
	s := seeded(t)

	r := exec(t, s, AddNode{Position: &network.Point{X: 10, Y: 20}}, AddLink{Source: 2, Target: 3})
	assert.Equal(t, uint64(2), r.Revision)
	assert.Equal(t, uint64(2), s.Revision())

	node, ok := r.Network.Node(3)
	require.True(t, ok)
	assert.Equal(t, "X3", node.Name)
	assert.Equal(t, &network.Point{X: 10, Y: 20}, node.Position)
	assert.Equal(t, "X3 : (X2)", r.Specification[3])
}

func TestRedundantRemovalsAreAccepted(t *testing.T) {
	s := seeded(t)

	before := s.Snapshot()
	r := exec(t, s, RemoveLink{Source: 2, Target: 0}, RemoveNode{Node: 42})
	assert.Equal(t, uint64(2), r.Revision)
	assert.Equal(t, before, r.Network)
}

func TestRejectedCommandsChangeNothing(t *testing.T) {
	s := seeded(t)
	exec(t, s, AddLink{Source: 0, Target: 2})

	before := s.Report()
	rejected := []Command{
		AddLink{Source: 0, Target: 9},
		ToggleLinkSign{Source: 2, Target: 0},
		MergeLogicInput{Input: 2, Representative: 1, Target: 2},
		MergeLogicInput{Input: 0, Representative: 2, Target: 2},
		DetachLogicInput{Input: 1, Target: 9},
		SelectNode{Node: 9},
		SelectLink{Source: 1, Target: 0},
		DeleteSelected{},
		AddSelfLoop{},
		ConnectSelected{Target: 1},
		ToggleSelectedLink{},
		PickRoot{},
		PickInput{Input: 2},
	}
	for _, cmd := range rejected {
		_, err := s.Execute(context.Background(), cmd)
		assert.Error(t, err, "command %s", cmd)
	}

	assert.Equal(t, before, s.Report())
	assert.Equal(t, before.Network, s.Snapshot())
}

func TestRejectedErrorsClassify(t *testing.T) {
	s := seeded(t)

	_, err := s.Execute(context.Background(), ToggleLinkSign{Source: 2, Target: 0})
	assert.ErrorIs(t, err, network.ErrLinkNotFound)
	assert.True(t, network.IsMalformed(err))

	_, err = s.Execute(context.Background(), MergeLogicInput{Input: 0, Representative: 2, Target: 1})
	assert.ErrorIs(t, err, network.ErrRepresentativeNotInLogic)

	_, err = s.Execute(context.Background(), DeleteSelected{})
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestSelectLinkTwiceTogglesSign(t *testing.T) {
	s := seeded(t)

	r := exec(t, s, SelectLink{Source: 0, Target: 1})
	require.NotNil(t, r.Selection.Link)
	assert.True(t, r.Selection.Link.Sign)
	assert.Equal(t, 1, *r.Selection.Inspected)

	r = exec(t, s, SelectLink{Source: 0, Target: 1})
	assert.False(t, r.Selection.Link.Sign)
	assert.Equal(t, "X1 : (~X0)", r.Specification[1])

	r = exec(t, s, ToggleSelectedLink{})
	assert.Equal(t, "X1 : (X0)", r.Specification[1])
}

func TestDeleteSelected(t *testing.T) {
	s := seeded(t)

	r := exec(t, s, SelectLink{Source: 1, Target: 2}, DeleteSelected{})
	_, ok := r.Network.Link(1, 2)
	assert.False(t, ok)
	assert.Nil(t, r.Selection.Link)
	assert.Equal(t, "X2 : ()", r.Specification[2])

	r = exec(t, s, SelectNode{Node: 1}, DeleteSelected{})
	_, ok = r.Network.Node(1)
	assert.False(t, ok)
	assert.Empty(t, r.Network.Links)
	assert.Nil(t, r.Selection.Node)
}

func TestSelfLoopAndConnect(t *testing.T) {
	s := seeded(t)

	r := exec(t, s, SelectNode{Node: 1}, AddSelfLoop{}, AddSelfLoop{})
	assert.Len(t, r.Network.Links, 3)
	assert.Equal(t, "X1 : (X0)+(X1)", r.Specification[1])

	r = exec(t, s, ConnectSelected{Target: 1})
	assert.Len(t, r.Network.Links, 3)

	r = exec(t, s, ConnectSelected{Target: 0})
	_, ok := r.Network.Link(1, 0)
	assert.True(t, ok)
	assert.Equal(t, "X0 : (X1)", r.Specification[0])
}

func TestPickInputMergesAndDetaches(t *testing.T) {
	s := seeded(t)
	exec(t, s, AddLink{Source: 0, Target: 2}, SelectNode{Node: 2})

	r := exec(t, s, PickInput{Input: 0})
	require.NotNil(t, r.Selection.Input)
	assert.Equal(t, 0, *r.Selection.Input)

	r = exec(t, s, PickInput{Input: 0})
	assert.Nil(t, r.Selection.Input)

	r = exec(t, s, PickInput{Input: 0}, PickInput{Input: 1})
	assert.Equal(t, "X2 : (X1+X0)", r.Specification[2])
	assert.Nil(t, r.Selection.Input)

	r = exec(t, s, PickInput{Input: 0}, PickRoot{})
	assert.Equal(t, "X2 : (X1)+(X0)", r.Specification[2])
	assert.Nil(t, r.Selection.Input)
}

func TestInspectedDefaultsToFirstNode(t *testing.T) {
	s := seeded(t)

	r := s.Report()
	require.NotNil(t, r.Selection.Inspected)
	assert.Equal(t, 0, *r.Selection.Inspected)

	// X0 has no inputs, so nothing can be picked.
	_, err := s.Execute(context.Background(), PickInput{Input: 1})
	assert.ErrorIs(t, err, network.ErrInputNotInLogic)
}

func TestSelectionPrunedAfterEdits(t *testing.T) {
	s := seeded(t)

	r := exec(t, s, SelectNode{Node: 2}, PickInput{Input: 1}, RemoveLink{Source: 1, Target: 2})
	assert.Nil(t, r.Selection.Input)
	require.NotNil(t, r.Selection.Node)

	r = exec(t, s, RemoveNode{Node: 2})
	assert.Nil(t, r.Selection.Node)
	assert.Equal(t, 0, *r.Selection.Inspected)

	r = exec(t, s, SelectLink{Source: 0, Target: 1}, RemoveNode{Node: 0})
	assert.Nil(t, r.Selection.Link)
}

func TestUnsupportedShape(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewTextLogger(&buf, logging.InfoLevel)
	reg := metrics.NewRegistry()

	s := NewSession(Options{Logger: logger, Metrics: reg})
	defer s.Close()

	hub := 6
	cmds := []Command{}
	for i := 0; i < 8; i++ {
		cmds = append(cmds, AddNode{})
	}
	for i := 0; i < 6; i++ {
		cmds = append(cmds, AddLink{Source: i, Target: hub})
	}
	cmds = append(cmds, AddLink{Source: hub, Target: 7})
	r := exec(t, s, cmds...)

	assert.Equal(t, "0", r.ParameterGraphSize)
	assert.Equal(t, "0", r.AllOrderings)
	assert.False(t, r.Supported)
	assert.Equal(t, []int{hub}, r.Unclassified)
	assert.Equal(t, []string{"6 1 1 1 1 1 1 1"}, r.UnsupportedKeys())
	assert.Contains(t, buf.String(), "unsupported logic shape")

	c, err := reg.UnsupportedShapesTotal.GetMetricWithLabelValues("6 1 1 1 1 1 1 1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, counterValue(t, c))
}

func TestCommandLoggingAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewTextLogger(&buf, logging.DebugLevel)
	reg := metrics.NewRegistry()

	s := NewSession(Options{Seed: true, Logger: logger, Metrics: reg})
	assert.Equal(t, 1.0, gaugeValue(t, reg.SessionsActive))
	assert.Equal(t, 3.0, gaugeValue(t, reg.NetworkNodes))
	assert.Equal(t, 2.0, gaugeValue(t, reg.NetworkLinks))

	exec(t, s, AddNode{}, AddLink{Source: 2, Target: 3})
	_, err := s.Execute(context.Background(), ToggleLinkSign{Source: 3, Target: 0})
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "DEBUG command")
	assert.Contains(t, out, "status=applied")
	assert.Contains(t, out, "WARN  command")
	assert.Contains(t, out, "status=rejected")
	assert.Contains(t, out, "session="+s.ID())

	applied, err := reg.CommandsTotal.GetMetricWithLabelValues("AddLink", "applied")
	require.NoError(t, err)
	assert.Equal(t, 1.0, counterValue(t, applied))
	rejected, err := reg.CommandsTotal.GetMetricWithLabelValues("ToggleLinkSign", "rejected")
	require.NoError(t, err)
	assert.Equal(t, 1.0, counterValue(t, rejected))

	assert.Equal(t, 4.0, gaugeValue(t, reg.NetworkNodes))
	assert.Equal(t, 3.0, gaugeValue(t, reg.NetworkLinks))
	size, err := reg.ParameterGraphSize.GetMetricWithLabelValues(s.ID())
	require.NoError(t, err)
	// X0: 2, X1 "1 1 1": 3, X2 "1 1 1": 3, X3 sink.
	assert.Equal(t, 18.0, gaugeValue(t, size))

	s.Close()
	assert.Equal(t, 0.0, gaugeValue(t, reg.SessionsActive))
	assert.Equal(t, 0.0, gaugeValue(t, reg.NetworkNodes))
	assert.Equal(t, 0.0, gaugeValue(t, reg.NetworkLinks))
}

func TestReportsPublished(t *testing.T) {
	ps := pubsub.New[Report](0)
	defer ps.Shutdown()

	s := NewSession(Options{Seed: true, Reports: ps})
	defer s.Close()

	sub, err := ps.Subscribe(context.Background(), s.ID())
	require.NoError(t, err)
	defer sub.Unsubscribe()

	exec(t, s, AddNode{})
	select {
	case r := <-sub.Channel():
		assert.Equal(t, uint64(1), r.Revision)
		assert.Len(t, r.Network.Nodes, 4)
	case <-time.After(time.Second):
		t.Fatal("no report published")
	}

	_, err = s.Execute(context.Background(), RemoveLink{Source: 0, Target: 1})
	require.NoError(t, err)
	<-sub.Channel()

	_, err = s.Execute(context.Background(), ToggleLinkSign{Source: 0, Target: 1})
	require.Error(t, err)
	select {
	case r := <-sub.Channel():
		t.Fatalf("rejected command published revision %d", r.Revision)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCommandSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := tracing.NewProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))

	s := NewSession(Options{Seed: true, Tracer: tp})
	defer s.Close()

	exec(t, s, AddNode{})
	_, err := s.Execute(context.Background(), ToggleLinkSign{Source: 2, Target: 0})
	require.Error(t, err)

	var names []string
	for _, span := range rec.Ended() {
		names = append(names, span.Name())
	}
	assert.Equal(t, []string{"derive", "derive", "command.AddNode", "command.ToggleLinkSign"}, names)
}

func TestDSGRNFormat(t *testing.T) {
	s := NewSession(Options{Seed: true, Format: specification.FormatDSGRN})
	defer s.Close()

	r := exec(t, s, AddLink{Source: 0, Target: 2})
	assert.Equal(t, "X2 : (X1)(X0)", r.Specification[2])
	assert.Equal(t, "X0 : ", r.Specification[0])
}

func TestClosedSession(t *testing.T) {
	s := NewSession(Options{})
	s.Close()
	s.Close()

	_, err := s.Execute(context.Background(), AddNode{})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestRunStopsAtFirstRejection(t *testing.T) {
	s := seeded(t)

	r, err := s.Run(context.Background(), []Command{
		AddNode{},
		AddLink{Source: 3, Target: 99},
		AddNode{},
	})
	assert.ErrorIs(t, err, network.ErrNodeNotFound)
	assert.Equal(t, uint64(1), r.Revision)
	assert.Equal(t, uint64(1), s.Revision())
}

func TestReportText(t *testing.T) {
	s := seeded(t)

	want := "X0 : ()\nX1 : (X0)\nX2 : (X1)\n\n" +
		"Parameter Graph Size for fixed threshold ordering = 6\n" +
		"Number of threshold reorderings = 1\n" +
		"Parameter Graph Size including all threshold orderings = 6\n"
	assert.Equal(t, want, s.Report().Text())
}
