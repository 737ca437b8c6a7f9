package main

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	session := editor.NewSession(editor.Options{Seed: true})
	t.Cleanup(session.Close)
	return newModel(context.Background(), session)
}

func press(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelInitialState(t *testing.T) {
	m := newTestModel(t)

	assert.Equal(t, dashboardView, m.currentView)
	assert.Len(t, m.nodeTable.Rows(), 3)
	assert.Equal(t, "Initializing...", m.View())

	m = press(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	out := m.View()
	assert.Contains(t, out, "Parameter Graph Size for fixed threshold ordering")
	assert.Contains(t, out, "Revision   0")
}

func TestModelTabsCycle(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, networkView, m.currentView)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, commandView, m.currentView)
	assert.True(t, m.input.Focused())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, dashboardView, m.currentView)
	assert.False(t, m.input.Focused())
}

func TestModelCommandInput(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, commandView, m.currentView)

	// Key bindings such as "n" are plain text while typing.
	m = press(t, m, runes("link 0 2"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.messageErr, m.message)
	assert.Equal(t, uint64(1), m.report.Revision)
	assert.Equal(t, "X2 : (X1)+(X0)", m.report.Specification[2])
	assert.Empty(t, m.input.Value())

	m = press(t, m, runes("toggle 2 0"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.messageErr)
	assert.Contains(t, m.message, "ToggleLinkSign rejected")
	assert.Equal(t, "toggle 2 0", m.input.Value())

	m.input.Reset()
	m = press(t, m, runes("bogus"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.messageErr)
	assert.Equal(t, uint64(1), m.report.Revision)
}

func TestModelSelectionKeys(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, networkView, m.currentView)

	// Select X1 from the table, give it a self loop, then delete it.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.report.Selection.Node)
	assert.Equal(t, 1, *m.report.Selection.Node)

	m = press(t, m, runes("s"))
	assert.Equal(t, "X1 : (X0)+(X1)", m.report.Specification[1])

	m = press(t, m, runes("d"))
	assert.Len(t, m.report.Network.Nodes, 2)
	assert.Len(t, m.nodeTable.Rows(), 2)
	assert.Nil(t, m.report.Selection.Node)

	m = press(t, m, runes("n"))
	assert.Len(t, m.report.Network.Nodes, 3)
	assert.Equal(t, uint64(4), m.report.Revision)

	m = press(t, m, runes("f"))
	assert.True(t, m.messageErr)
	assert.True(t, strings.HasPrefix(m.message, "ToggleSelectedLink rejected"))
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
