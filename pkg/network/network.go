package network

// Network owns the node set, the signed link set and the logic table of a
// regulatory network. Graph and logic are only ever mutated together, through
// the methods below, so every invariant holds between calls.
//
// A Network is not safe for concurrent use; an editing session serialises
// access to it.
type Network struct {
	ids *IdentityAllocator

	// Core data structures, in insertion order
	nodes []*Node
	links []*Link

	// Indexes for fast lookups
	nodeIndex map[int]*Node
	linkIndex map[linkKey]*Link

	// node id -> or-groups of source ids
	logic map[int][][]int
}

// New creates an empty network whose first node will be X0.
func New() *Network {
	return &Network{
		ids:       NewIdentityAllocator(0),
		nodeIndex: make(map[int]*Node),
		linkIndex: make(map[linkKey]*Link),
		logic:     make(map[int][][]int),
	}
}

// NewSeeded creates the start-up network of the builder: X0 -> X1 -> X2,
// both links activating, with logic X0: (), X1: (X0), X2: (X1).
func NewSeeded() *Network {
	n := New()
	x0 := n.AddNode(nil)
	x1 := n.AddNode(nil)
	x2 := n.AddNode(nil)
	// Endpoints exist, so these cannot fail.
	_, _ = n.AddLink(x0.ID, x1.ID)
	_, _ = n.AddLink(x1.ID, x2.ID)
	return n
}

// AddNode allocates the next id, creates node "X<id>" at pos and gives it an
// empty logic entry.
func (n *Network) AddNode(pos *Point) Node {
	id := n.ids.Next()
	node := &Node{ID: id, Name: NodeName(id)}
	if pos != nil {
		p := *pos
		node.Position = &p
	}

	n.nodes = append(n.nodes, node)
	n.nodeIndex[id] = node
	n.logic[id] = nil

	return node.Clone()
}

// AddLink creates the activating link source -> target and appends the
// singleton group [source] to target's logic. It reports false without
// changing anything if the link already exists. Self-links are allowed.
func (n *Network) AddLink(source, target int) (bool, error) {
	if err := n.verifyNodeExists("AddLink", source); err != nil {
		return false, err
	}
	if err := n.verifyNodeExists("AddLink", target); err != nil {
		return false, err
	}

	key := linkKey{source: source, target: target}
	if _, exists := n.linkIndex[key]; exists {
		return false, nil
	}

	link := &Link{Source: source, Target: target, Sign: true}
	n.links = append(n.links, link)
	n.linkIndex[key] = link
	n.logic[target] = append(n.logic[target], []int{source})

	return true, nil
}

// RemoveLink deletes source -> target if present and strips source from every
// group of target's logic, dropping groups left empty. Absent links and nodes
// are a no-op. It reports whether a link was deleted.
func (n *Network) RemoveLink(source, target int) bool {
	removed := n.deleteLink(linkKey{source: source, target: target})
	if _, ok := n.logic[target]; ok {
		n.logic[target] = removeInput(n.logic[target], source)
	}
	return removed
}

// RemoveNode removes every link touching id, in either direction, through
// RemoveLink so neighbour logic stays consistent, then drops the node's logic
// entry and the node. A self-loop is removed exactly once. Removing an absent
// node is a no-op; the result reports whether a node was removed.
func (n *Network) RemoveNode(id int) bool {
	if _, exists := n.nodeIndex[id]; !exists {
		return false
	}

	touching := make([]linkKey, 0)
	for _, l := range n.links {
		if l.Source == id || l.Target == id {
			touching = append(touching, l.key())
		}
	}
	for _, k := range touching {
		n.RemoveLink(k.source, k.target)
	}

	delete(n.logic, id)
	delete(n.nodeIndex, id)
	for i, node := range n.nodes {
		if node.ID == id {
			n.nodes = append(n.nodes[:i], n.nodes[i+1:]...)
			break
		}
	}

	return true
}

// ToggleLinkSign flips the sign of source -> target and returns the updated
// link. Logic membership is unaffected.
func (n *Network) ToggleLinkSign(source, target int) (Link, error) {
	link, exists := n.linkIndex[linkKey{source: source, target: target}]
	if !exists {
		return Link{}, NewError("ToggleLinkSign").Link(source, target).Cause(ErrLinkNotFound).Err()
	}
	link.Sign = !link.Sign
	return *link, nil
}

// Node returns a copy of the node with the given id.
func (n *Network) Node(id int) (Node, bool) {
	node, ok := n.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return node.Clone(), true
}

// HasNode reports whether id names a live node.
func (n *Network) HasNode(id int) bool {
	_, ok := n.nodeIndex[id]
	return ok
}

// Link returns a copy of the link source -> target.
func (n *Network) Link(source, target int) (Link, bool) {
	l, ok := n.linkIndex[linkKey{source: source, target: target}]
	if !ok {
		return Link{}, false
	}
	return *l, true
}

// Nodes returns the nodes in insertion order.
func (n *Network) Nodes() []Node {
	out := make([]Node, len(n.nodes))
	for i, node := range n.nodes {
		out[i] = node.Clone()
	}
	return out
}

// Links returns the links in insertion order.
func (n *Network) Links() []Link {
	out := make([]Link, len(n.links))
	for i, l := range n.links {
		out[i] = *l
	}
	return out
}

// NodeCount returns the number of nodes.
func (n *Network) NodeCount() int {
	return len(n.nodes)
}

// LinkCount returns the number of links.
func (n *Network) LinkCount() int {
	return len(n.links)
}

// NextID returns the id the next AddNode will allocate.
func (n *Network) NextID() int {
	return n.ids.Peek()
}

func (n *Network) verifyNodeExists(op string, id int) error {
	if _, exists := n.nodeIndex[id]; !exists {
		return NewError(op).Node(id).Cause(ErrNodeNotFound).Err()
	}
	return nil
}

func (n *Network) deleteLink(key linkKey) bool {
	if _, exists := n.linkIndex[key]; !exists {
		return false
	}
	delete(n.linkIndex, key)
	for i, l := range n.links {
		if l.key() == key {
			n.links = append(n.links[:i], n.links[i+1:]...)
			break
		}
	}
	return true
}
