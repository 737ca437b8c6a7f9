package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netbuilder/pkg/network"
)

func TestRenderSeeded(t *testing.T) {
	lines := NewRenderer(FormatCanonical).Render(network.NewSeeded().Snapshot())

	assert.Equal(t, []string{
		"X0 : ()",
		"X1 : (X0)",
		"X2 : (X1)",
	}, lines)
}

func buildMixed(t *testing.T) *network.Network {
	t.Helper()
	n := network.New()
	for i := 0; i < 4; i++ {
		n.AddNode(nil)
	}
	for _, src := range []int{0, 1, 2, 3} {
		_, err := n.AddLink(src, 3)
		require.NoError(t, err)
	}
	require.NoError(t, n.MergeLogicInput(1, 0, 3))
	_, err := n.ToggleLinkSign(3, 3)
	require.NoError(t, err)
	_, err = n.ToggleLinkSign(1, 3)
	require.NoError(t, err)
	return n
}

func TestRenderSignsAndGroups(t *testing.T) {
	snap := buildMixed(t).Snapshot()

	canonical := NewRenderer(FormatCanonical).Render(snap)
	assert.Equal(t, "X3 : (X0+~X1)+(X2)+(~X3)", canonical[3])

	dsgrn := NewRenderer(FormatDSGRN).Render(snap)
	assert.Equal(t, "X3 : (X0+~X1)(X2)(~X3)", dsgrn[3])
	assert.Equal(t, "X0 : ", dsgrn[0])
}

func TestRenderFollowsEdits(t *testing.T) {
	n := network.NewSeeded()
	r := NewRenderer("")

	_, err := n.ToggleLinkSign(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "X1 : (~X0)", r.Render(n.Snapshot())[1])

	n.RemoveNode(0)
	assert.Equal(t, []string{"X1 : ()", "X2 : (X1)"}, r.Render(n.Snapshot()))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCanonical, f)

	f, err = ParseFormat(" DSGRN ")
	require.NoError(t, err)
	assert.Equal(t, FormatDSGRN, f)

	_, err = ParseFormat("latex")
	assert.Error(t, err)
}

func TestExpressionUnknownName(t *testing.T) {
	groups := []network.OrGroup{{Inputs: []network.SignedInput{{Source: 9, Sign: false}}}}
	assert.Equal(t, "(~X9)", NewRenderer(FormatCanonical).Expression(groups, nil))
}
