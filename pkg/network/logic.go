package network

// MergeLogicInput reclassifies input's contribution to target's logic.
//
// If input == representative the input is detached into its own singleton
// group. Otherwise it is AND-combined into the group that currently holds
// representative. Either way input is first removed from every group of
// target, and groups left empty are dropped.
//
// The command is rejected without touching the model when target does not
// exist, input is not in target's logic, or representative is not in
// target's logic.
func (n *Network) MergeLogicInput(input, representative, target int) error {
	const op = "MergeLogicInput"

	if err := n.verifyNodeExists(op, target); err != nil {
		return err
	}
	groups := n.logic[target]
	if findGroup(groups, input) < 0 {
		return NewError(op).Logic(target).
			Context(NodeName(input)).
			Cause(ErrInputNotInLogic).Err()
	}
	if input != representative && findGroup(groups, representative) < 0 {
		return NewError(op).Logic(target).
			Context(NodeName(representative)).
			Cause(ErrRepresentativeNotInLogic).Err()
	}

	groups = removeInput(groups, input)
	if input == representative {
		groups = append(groups, []int{input})
	} else {
		// representative shares no group with input, so its group survived.
		idx := findGroup(groups, representative)
		groups[idx] = append(groups[idx], input)
	}
	n.logic[target] = groups

	return nil
}

// DetachLogicInput moves input into its own OR-term of target's logic.
func (n *Network) DetachLogicInput(input, target int) error {
	return n.MergeLogicInput(input, input, target)
}

// Logic returns target's logic with signs resolved from the link set.
// The second result is false if target does not exist.
func (n *Network) Logic(target int) ([]OrGroup, bool) {
	groups, ok := n.logic[target]
	if !ok {
		return nil, false
	}
	return n.resolveGroups(target, groups), true
}

// InLogic reports whether source currently appears in target's logic.
func (n *Network) InLogic(source, target int) bool {
	return findGroup(n.logic[target], source) >= 0
}

func (n *Network) resolveGroups(target int, groups [][]int) []OrGroup {
	out := make([]OrGroup, len(groups))
	for i, g := range groups {
		inputs := make([]SignedInput, len(g))
		for j, src := range g {
			sign := true
			if l, ok := n.linkIndex[linkKey{source: src, target: target}]; ok {
				sign = l.Sign
			}
			inputs[j] = SignedInput{Source: src, Sign: sign}
		}
		out[i] = OrGroup{Inputs: inputs}
	}
	return out
}

// removeInput strips source from every group and drops groups left empty.
// It never aliases the caller's inner slices.
func removeInput(groups [][]int, source int) [][]int {
	if len(groups) == 0 {
		return groups
	}
	out := make([][]int, 0, len(groups))
	for _, g := range groups {
		kept := make([]int, 0, len(g))
		for _, s := range g {
			if s != source {
				kept = append(kept, s)
			}
		}
		if len(kept) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

// findGroup returns the index of the first group holding source, or -1.
func findGroup(groups [][]int, source int) int {
	for i, g := range groups {
		for _, s := range g {
			if s == source {
				return i
			}
		}
	}
	return -1
}
