package network

import (
	"errors"
	"fmt"
)

// CheckInvariants verifies the structural invariants of the model and returns
// every violation found, joined, or nil:
//
//  1. each input in k's logic names a source with a link into k;
//  2. no group is empty;
//  3. every node has exactly one logic entry and no entry outlives its node;
//  4. no link references a missing node.
//
// It also checks that each link into k appears exactly once in k's logic,
// which the operations maintain as a consequence of the above.
func (n *Network) CheckInvariants() error {
	var errs []error
	violation := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvariantViolated, fmt.Sprintf(format, args...)))
	}

	if len(n.nodes) != len(n.nodeIndex) {
		violation("node list has %d entries, index has %d", len(n.nodes), len(n.nodeIndex))
	}
	if len(n.links) != len(n.linkIndex) {
		violation("link list has %d entries, index has %d", len(n.links), len(n.linkIndex))
	}

	for _, node := range n.nodes {
		if _, ok := n.logic[node.ID]; !ok {
			violation("node %s has no logic entry", node.Name)
		}
	}
	for id := range n.logic {
		if _, ok := n.nodeIndex[id]; !ok {
			violation("logic entry for removed node %s", NodeName(id))
		}
	}

	for _, l := range n.links {
		if _, ok := n.nodeIndex[l.Source]; !ok {
			violation("link %s has missing source", l)
		}
		if _, ok := n.nodeIndex[l.Target]; !ok {
			violation("link %s has missing target", l)
		}
	}

	for target, groups := range n.logic {
		seen := make(map[int]int)
		for gi, g := range groups {
			if len(g) == 0 {
				violation("%s group %d is empty", NodeName(target), gi)
			}
			for _, src := range g {
				seen[src]++
				if _, ok := n.linkIndex[linkKey{source: src, target: target}]; !ok {
					violation("%s logic names %s without a link", NodeName(target), NodeName(src))
				}
			}
		}
		for src, count := range seen {
			if count > 1 {
				violation("%s logic names %s %d times", NodeName(target), NodeName(src), count)
			}
		}
	}
	for _, l := range n.links {
		if findGroup(n.logic[l.Target], l.Source) < 0 {
			violation("link %s missing from logic", l)
		}
	}

	return errors.Join(errs...)
}
