package editor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netbuilder/pkg/network"
)

func TestParseCommandRoundTrip(t *testing.T) {
	cmds := []Command{
		AddNode{},
		AddNode{Position: &network.Point{X: 12.5, Y: -3}},
		AddLink{Source: 0, Target: 1},
		RemoveLink{Source: 1, Target: 2},
		RemoveNode{Node: 4},
		ToggleLinkSign{Source: 2, Target: 2},
		MergeLogicInput{Input: 0, Representative: 1, Target: 2},
		DetachLogicInput{Input: 0, Target: 2},
		SelectNode{Node: 3},
		SelectLink{Source: 3, Target: 1},
		ClearSelection{},
		ToggleSelectedLink{},
		DeleteSelected{},
		AddSelfLoop{},
		ConnectSelected{Target: 7},
		PickInput{Input: 5},
		PickRoot{},
	}

	for _, cmd := range cmds {
		t.Run(cmd.Name(), func(t *testing.T) {
			parsed, err := ParseCommand(cmd.String())
			require.NoError(t, err)
			assert.Equal(t, cmd, parsed)
			assert.Equal(t, cmd.Name(), parsed.Name())
		})
	}
}

func TestParseCommandAcceptsNodeNames(t *testing.T) {
	cmd, err := ParseCommand("LINK X0 x2")
	require.NoError(t, err)
	assert.Equal(t, AddLink{Source: 0, Target: 2}, cmd)
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"frobnicate 1", ErrUnknownCommand},
		{"link 1", ErrBadArguments},
		{"link 1 2 3", ErrBadArguments},
		{"link a b", ErrBadArguments},
		{"remove -1", ErrBadArguments},
		{"remove 2147483647", ErrBadArguments},
		{"node 1", ErrBadArguments},
		{"node 1 y", ErrBadArguments},
		{"node NaN 0", ErrBadArguments},
		{"node 1e9 0", ErrBadArguments},
		{"select", ErrBadArguments},
		{"select 1 2 3", ErrBadArguments},
		{"delete now", ErrBadArguments},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := ParseCommand(tt.line)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseScript(t *testing.T) {
	script := `
# start from the seed network
node 10 20
link 2 3

select 3
selfloop
`
	stmts, err := ParseScript(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, stmts, 4)

	assert.Equal(t, 3, stmts[0].Line)
	assert.Equal(t, 4, stmts[1].Line)
	assert.Equal(t, 6, stmts[2].Line)
	assert.Equal(t, "selfloop", stmts[3].Text)
	assert.Equal(t, AddSelfLoop{}, stmts[3].Command)
}

func TestParseScriptReportsLine(t *testing.T) {
	_, err := ParseScript(strings.NewReader("node\nnode\n\nlink 0\n"))
	require.Error(t, err)

	var se *ScriptError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 4, se.Line)
	assert.Equal(t, "link 0", se.Text)
	assert.ErrorIs(t, err, ErrBadArguments)
	assert.Contains(t, err.Error(), "line 4")
}

func TestRunScript(t *testing.T) {
	s := seeded(t)

	stmts, err := ParseScript(strings.NewReader("link 0 2\nselect 2\npick 0\npick 1\n"))
	require.NoError(t, err)

	r, err := RunScript(context.Background(), s, stmts)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), r.Revision)
	assert.Equal(t, "X2 : (X1+X0)", r.Specification[2])
}

func TestRunScriptStopsWithLine(t *testing.T) {
	s := seeded(t)

	stmts, err := ParseScript(strings.NewReader("node\n# comment\ntoggle 3 0\nnode\n"))
	require.NoError(t, err)

	r, err := RunScript(context.Background(), s, stmts)
	var se *ScriptError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Line)
	assert.ErrorIs(t, err, network.ErrLinkNotFound)
	assert.Equal(t, uint64(1), r.Revision)
}

func TestRunScriptHonoursContext(t *testing.T) {
	s := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stmts, err := ParseScript(strings.NewReader("node\n"))
	require.NoError(t, err)

	_, err = RunScript(ctx, s, stmts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), s.Revision())
}
