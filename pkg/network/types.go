package network

import "fmt"

// Point is an opaque 2D position handed in by the display layer.
// The model stores it verbatim and never interprets it.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a network variable. Name is always "X" followed by the id.
type Node struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Position *Point `json:"position,omitempty" yaml:"position,omitempty"`
}

// Clone returns a copy of the node that shares no memory with the original.
func (n *Node) Clone() Node {
	out := Node{ID: n.ID, Name: n.Name}
	if n.Position != nil {
		p := *n.Position
		out.Position = &p
	}
	return out
}

// NodeName derives the display name of a node id.
func NodeName(id int) string {
	return fmt.Sprintf("X%d", id)
}

// Link is a directed, signed regulation Source -> Target.
// Sign is true for activation and false for repression.
type Link struct {
	Source int  `json:"source" yaml:"source"`
	Target int  `json:"target" yaml:"target"`
	Sign   bool `json:"sign" yaml:"sign"`
}

// SelfLoop reports whether the link models autoregulation.
func (l Link) SelfLoop() bool {
	return l.Source == l.Target
}

func (l Link) String() string {
	arrow := "->"
	if !l.Sign {
		arrow = "-|"
	}
	return fmt.Sprintf("%s %s %s", NodeName(l.Source), arrow, NodeName(l.Target))
}

func (l Link) key() linkKey {
	return linkKey{source: l.Source, target: l.Target}
}

// linkKey is the ordered (source, target) pair; at most one link exists per key.
type linkKey struct {
	source int
	target int
}

// SignedInput is one regulator inside an OrGroup. The sign is resolved from
// the link when a snapshot is taken; the model itself stores only source ids.
type SignedInput struct {
	Source int  `json:"source" yaml:"source"`
	Sign   bool `json:"sign" yaml:"sign"`
}

// OrGroup is one term of a node's sum-of-products logic.
type OrGroup struct {
	Inputs []SignedInput `json:"inputs" yaml:"inputs"`
}

// Sources returns the source ids of the group in order.
func (g OrGroup) Sources() []int {
	out := make([]int, len(g.Inputs))
	for i, in := range g.Inputs {
		out[i] = in.Source
	}
	return out
}
