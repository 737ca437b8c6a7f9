package network

import "sort"

// Snapshot is a deep, read-only copy of the network. It is stable until the
// next mutating call on the Network it came from and is the unit handed to
// the derivations and to the display layer.
type Snapshot struct {
	Nodes []Node            `json:"nodes" yaml:"nodes"`
	Links []Link            `json:"links" yaml:"links"`
	Logic map[int][]OrGroup `json:"logic" yaml:"logic"`
}

// Degree is the in- and out-degree of a node.
type Degree struct {
	In  int
	Out int
}

// Snapshot copies the current state.
func (n *Network) Snapshot() Snapshot {
	s := Snapshot{
		Nodes: n.Nodes(),
		Links: n.Links(),
		Logic: make(map[int][]OrGroup, len(n.logic)),
	}
	for id, groups := range n.logic {
		s.Logic[id] = n.resolveGroups(id, groups)
	}
	return s
}

// Node looks a node up by id.
func (s Snapshot) Node(id int) (Node, bool) {
	for _, node := range s.Nodes {
		if node.ID == id {
			return node, true
		}
	}
	return Node{}, false
}

// Link looks a link up by its endpoints.
func (s Snapshot) Link(source, target int) (Link, bool) {
	for _, l := range s.Links {
		if l.Source == source && l.Target == target {
			return l, true
		}
	}
	return Link{}, false
}

// Degrees counts, in one pass over the links, how many links enter and leave
// each node. A self-loop counts once in each direction.
func (s Snapshot) Degrees() map[int]Degree {
	out := make(map[int]Degree, len(s.Nodes))
	for _, node := range s.Nodes {
		out[node.ID] = Degree{}
	}
	for _, l := range s.Links {
		src := out[l.Source]
		src.Out++
		out[l.Source] = src

		dst := out[l.Target]
		dst.In++
		out[l.Target] = dst
	}
	return out
}

// GroupSizes returns the cardinality of each of id's groups, sorted ascending.
func (s Snapshot) GroupSizes(id int) []int {
	groups := s.Logic[id]
	sizes := make([]int, len(groups))
	for i, g := range groups {
		sizes[i] = len(g.Inputs)
	}
	sort.Ints(sizes)
	return sizes
}
