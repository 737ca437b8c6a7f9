// Package specification renders the logic of a network as one Boolean
// expression per node.
package specification

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-netbuilder/pkg/network"
)

// Format selects how OR-groups are joined.
type Format string

const (
	// FormatCanonical parenthesises every group and joins groups with "+":
	// "X2 : (X0+X1)+(~X2)". A node without logic renders as "()".
	FormatCanonical Format = "canonical"
	// FormatDSGRN juxtaposes parenthesised groups: "X2 : (X0+X1)(~X2)".
	// A node without logic renders with an empty expression.
	FormatDSGRN Format = "dsgrn"
)

// ParseFormat accepts "canonical", "dsgrn" or "" (canonical).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatCanonical):
		return FormatCanonical, nil
	case string(FormatDSGRN):
		return FormatDSGRN, nil
	default:
		return "", fmt.Errorf("unknown specification format %q", s)
	}
}

// Renderer turns snapshots into specification lines.
type Renderer struct {
	format Format
}

// NewRenderer creates a renderer; an empty format means canonical.
func NewRenderer(format Format) *Renderer {
	if format == "" {
		format = FormatCanonical
	}
	return &Renderer{format: format}
}

// Format returns the renderer's output format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render returns one "<name> : <expression>" line per node, in node order.
func (r *Renderer) Render(s network.Snapshot) []string {
	names := make(map[int]string, len(s.Nodes))
	for _, node := range s.Nodes {
		names[node.ID] = node.Name
	}

	lines := make([]string, 0, len(s.Nodes))
	for _, node := range s.Nodes {
		lines = append(lines, node.Name+" : "+r.Expression(s.Logic[node.ID], names))
	}
	return lines
}

// Expression renders a single node's logic. names resolves source ids; ids
// missing from it fall back to network.NodeName.
func (r *Renderer) Expression(groups []network.OrGroup, names map[int]string) string {
	if len(groups) == 0 {
		if r.format == FormatDSGRN {
			return ""
		}
		return "()"
	}

	terms := make([]string, len(groups))
	for i, g := range groups {
		terms[i] = "(" + renderGroup(g, names) + ")"
	}
	if r.format == FormatDSGRN {
		return strings.Join(terms, "")
	}
	return strings.Join(terms, "+")
}

func renderGroup(g network.OrGroup, names map[int]string) string {
	inputs := make([]string, len(g.Inputs))
	for i, in := range g.Inputs {
		name, ok := names[in.Source]
		if !ok {
			name = network.NodeName(in.Source)
		}
		if !in.Sign {
			name = "~" + name
		}
		inputs[i] = name
	}
	return strings.Join(inputs, "+")
}
