package editor

import (
	"strings"

	"github.com/dd0wney/cluso-netbuilder/pkg/combinatorics"
	"github.com/dd0wney/cluso-netbuilder/pkg/network"
)

// Report is everything the display layer shows after an edit.
// Big figures are decimal strings so that JSON consumers never lose precision.
type Report struct {
	Session  string `json:"session" yaml:"session"`
	Revision uint64 `json:"revision" yaml:"revision"`

	Network       network.Snapshot `json:"network" yaml:"network"`
	Specification []string         `json:"specification" yaml:"specification"`

	ParameterGraphSize string                 `json:"parameter_graph_size" yaml:"parameter_graph_size"`
	Reorderings        string                 `json:"reorderings" yaml:"reorderings"`
	AllOrderings       string                 `json:"all_orderings" yaml:"all_orderings"`
	Figures            []combinatorics.Figure `json:"figures" yaml:"figures"`

	Components   []combinatorics.Component `json:"components" yaml:"components"`
	Unclassified []int                     `json:"unclassified,omitempty" yaml:"unclassified,omitempty"`
	Supported    bool                      `json:"supported" yaml:"supported"`

	Selection Selection `json:"selection" yaml:"selection"`
}

func newReport(session string, revision uint64, snap network.Snapshot, res combinatorics.Result, spec []string, sel Selection) Report {
	return Report{
		Session:            session,
		Revision:           revision,
		Network:            snap,
		Specification:      spec,
		ParameterGraphSize: res.ParameterGraphSize.String(),
		Reorderings:        res.Reorderings.String(),
		AllOrderings:       res.AllOrderings.String(),
		Figures:            res.Figures(),
		Components:         res.Components,
		Unclassified:       res.Unclassified,
		Supported:          res.Supported(),
		Selection:          sel,
	}
}

// SpecificationText joins the specification lines, one per line.
func (r Report) SpecificationText() string {
	if len(r.Specification) == 0 {
		return ""
	}
	return strings.Join(r.Specification, "\n") + "\n"
}

// Text renders the specification followed by the labelled figures.
func (r Report) Text() string {
	var b strings.Builder
	b.WriteString(r.SpecificationText())
	b.WriteString("\n")
	for _, f := range r.Figures {
		b.WriteString(f.String())
		b.WriteString("\n")
	}
	return b.String()
}

// UnsupportedKeys lists the component keys of the unclassified nodes.
func (r Report) UnsupportedKeys() []string {
	if len(r.Unclassified) == 0 {
		return nil
	}
	wanted := make(map[int]bool, len(r.Unclassified))
	for _, id := range r.Unclassified {
		wanted[id] = true
	}
	keys := make([]string, 0, len(r.Unclassified))
	for _, c := range r.Components {
		if wanted[c.NodeID] {
			keys = append(keys, c.Key)
		}
	}
	return keys
}
