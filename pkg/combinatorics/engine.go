// Package combinatorics counts the parameter graph of a regulatory network.
//
// For every node it derives the component key (in-degree, out-degree and the
// sorted OR-group sizes of its logic), looks the key up in a fixed table of
// local factors, and folds the factors, the out-degree factorials and the
// source-node fan-out counts into three aggregate figures.
package combinatorics

import (
	"math/big"

	"github.com/dd0wney/cluso-netbuilder/pkg/network"
)

// Role classifies a node by its degrees.
type Role string

const (
	// RoleSource has no regulators and contributes out-degree + 1.
	RoleSource Role = "source"
	// RoleSink is regulated but regulates nothing; it contributes no factor.
	RoleSink Role = "sink"
	// RoleRegulated has both in- and out-links and is classified by table lookup.
	RoleRegulated Role = "regulated"
)

// Component is the classification of a single node.
type Component struct {
	NodeID     int    `json:"node_id" yaml:"node_id"`
	Name       string `json:"name" yaml:"name"`
	In         int    `json:"in" yaml:"in"`
	Out        int    `json:"out" yaml:"out"`
	Shape      []int  `json:"shape" yaml:"shape"`
	Key        string `json:"key" yaml:"key"`
	Role       Role   `json:"role" yaml:"role"`
	Factor     int64  `json:"factor" yaml:"factor"`
	Classified bool   `json:"classified" yaml:"classified"`
}

// Result is the outcome of one derivation.
type Result struct {
	ParameterGraphSize *big.Int
	Reorderings        *big.Int
	AllOrderings       *big.Int

	// Components lists every node in snapshot order.
	Components []Component
	// Unclassified lists the regulated nodes whose key has no table entry.
	// When non-empty ParameterGraphSize is zero.
	Unclassified []int
}

// Supported reports whether every regulated node was classified.
func (r Result) Supported() bool {
	return len(r.Unclassified) == 0
}

// Engine computes parameter graph sizes. An Engine keeps its own factorial
// memo, so it must not be shared between goroutines.
type Engine struct {
	factorials Factorials
}

// NewEngine creates an engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Compute derives the parameter graph figures of a snapshot.
func (e *Engine) Compute(s network.Snapshot) Result {
	degrees := s.Degrees()

	size := big.NewInt(1)
	reorderings := big.NewInt(1)
	poisoned := false

	res := Result{
		Components: make([]Component, 0, len(s.Nodes)),
	}

	for _, node := range s.Nodes {
		d := degrees[node.ID]
		shape := s.GroupSizes(node.ID)
		c := Component{
			NodeID: node.ID,
			Name:   node.Name,
			In:     d.In,
			Out:    d.Out,
			Shape:  shape,
			Key:    ComponentKey(d.In, d.Out, shape),
		}

		switch {
		case d.In == 0:
			c.Role = RoleSource
			c.Factor = int64(d.Out + 1)
			c.Classified = true
			size.Mul(size, big.NewInt(c.Factor))
		case d.Out == 0:
			c.Role = RoleSink
			c.Factor = 1
			c.Classified = true
		default:
			c.Role = RoleRegulated
			if factor, ok := Lookup(c.Key); ok {
				c.Factor = factor
				c.Classified = true
				size.Mul(size, big.NewInt(factor))
			} else {
				poisoned = true
				res.Unclassified = append(res.Unclassified, node.ID)
			}
		}

		reorderings.Mul(reorderings, e.factorials.Of(d.Out))
		res.Components = append(res.Components, c)
	}

	if poisoned {
		size.SetInt64(0)
	}

	res.ParameterGraphSize = size
	res.Reorderings = reorderings
	res.AllOrderings = new(big.Int).Mul(size, reorderings)
	return res
}
