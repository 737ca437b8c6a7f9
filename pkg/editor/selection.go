package editor

import "github.com/dd0wney/cluso-netbuilder/pkg/network"

// selection mirrors what a user has highlighted on screen. A node and a link
// are never selected at the same time. The picked input belongs to the
// inspector panel and is only meaningful for the node it was picked on.
type selection struct {
	node    int
	hasNode bool

	link    [2]int
	hasLink bool

	input       int
	inputTarget int
	hasInput    bool
}

func (s *selection) selectNode(id int) {
	s.node, s.hasNode = id, true
	s.hasLink = false
}

func (s *selection) selectLink(source, target int) {
	s.link, s.hasLink = [2]int{source, target}, true
	s.hasNode = false
}

func (s *selection) clear() {
	*s = selection{}
}

func (s *selection) linkSelected(source, target int) bool {
	return s.hasLink && s.link == [2]int{source, target}
}

// inspected is the node whose logic the inspector shows: the selected node,
// else the selected link's target, else the first node.
func (s *selection) inspected(net *network.Network) (int, bool) {
	switch {
	case s.hasNode:
		return s.node, true
	case s.hasLink:
		return s.link[1], true
	}
	nodes := net.Nodes()
	if len(nodes) == 0 {
		return 0, false
	}
	return nodes[0].ID, true
}

// prune drops selections that an edit invalidated.
func (s *selection) prune(net *network.Network) {
	if s.hasNode && !net.HasNode(s.node) {
		s.hasNode = false
	}
	if s.hasLink {
		if _, ok := net.Link(s.link[0], s.link[1]); !ok {
			s.hasLink = false
		}
	}
	if s.hasInput {
		k, ok := s.inspected(net)
		if !ok || k != s.inputTarget || !net.InLogic(s.input, k) {
			s.hasInput = false
		}
	}
}

// Selection is the externally visible selection state.
type Selection struct {
	Node      *int          `json:"node,omitempty" yaml:"node,omitempty"`
	Link      *network.Link `json:"link,omitempty" yaml:"link,omitempty"`
	Inspected *int          `json:"inspected,omitempty" yaml:"inspected,omitempty"`
	Input     *int          `json:"input,omitempty" yaml:"input,omitempty"`
}

func (s *selection) view(net *network.Network) Selection {
	var out Selection
	if s.hasNode {
		id := s.node
		out.Node = &id
	}
	if s.hasLink {
		if l, ok := net.Link(s.link[0], s.link[1]); ok {
			out.Link = &l
		}
	}
	if k, ok := s.inspected(net); ok {
		out.Inspected = &k
	}
	if s.hasInput {
		in := s.input
		out.Input = &in
	}
	return out
}
