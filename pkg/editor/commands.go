package editor

import (
	"fmt"
	"strconv"

	"github.com/dd0wney/cluso-netbuilder/pkg/network"
)

// Command is one discrete editing signal. Commands are applied by
// Session.Execute, which serialises them and recomputes the report after
// each one that succeeds. String renders the command in script syntax.
type Command interface {
	Name() string
	String() string
	apply(s *Session) error
}

// Model commands

type AddNode struct {
	Position *network.Point
}

func (AddNode) Name() string { return "AddNode" }

func (c AddNode) String() string {
	if c.Position == nil {
		return "node"
	}
	return "node " + formatCoord(c.Position.X) + " " + formatCoord(c.Position.Y)
}

func (c AddNode) apply(s *Session) error {
	s.net.AddNode(c.Position)
	return nil
}

type AddLink struct {
	Source, Target int
}

func (AddLink) Name() string { return "AddLink" }

func (c AddLink) String() string { return fmt.Sprintf("link %d %d", c.Source, c.Target) }

func (c AddLink) apply(s *Session) error {
	_, err := s.net.AddLink(c.Source, c.Target)
	return err
}

type RemoveLink struct {
	Source, Target int
}

func (RemoveLink) Name() string { return "RemoveLink" }

func (c RemoveLink) String() string { return fmt.Sprintf("unlink %d %d", c.Source, c.Target) }

func (c RemoveLink) apply(s *Session) error {
	s.net.RemoveLink(c.Source, c.Target)
	return nil
}

type RemoveNode struct {
	Node int
}

func (RemoveNode) Name() string { return "RemoveNode" }

func (c RemoveNode) String() string { return fmt.Sprintf("remove %d", c.Node) }

func (c RemoveNode) apply(s *Session) error {
	s.net.RemoveNode(c.Node)
	return nil
}

type ToggleLinkSign struct {
	Source, Target int
}

func (ToggleLinkSign) Name() string { return "ToggleLinkSign" }

func (c ToggleLinkSign) String() string { return fmt.Sprintf("toggle %d %d", c.Source, c.Target) }

func (c ToggleLinkSign) apply(s *Session) error {
	_, err := s.net.ToggleLinkSign(c.Source, c.Target)
	return err
}

type MergeLogicInput struct {
	Input, Representative, Target int
}

func (MergeLogicInput) Name() string { return "MergeLogicInput" }

func (c MergeLogicInput) String() string {
	return fmt.Sprintf("merge %d %d %d", c.Input, c.Representative, c.Target)
}

func (c MergeLogicInput) apply(s *Session) error {
	return s.net.MergeLogicInput(c.Input, c.Representative, c.Target)
}

type DetachLogicInput struct {
	Input, Target int
}

func (DetachLogicInput) Name() string { return "DetachLogicInput" }

func (c DetachLogicInput) String() string { return fmt.Sprintf("detach %d %d", c.Input, c.Target) }

func (c DetachLogicInput) apply(s *Session) error {
	return s.net.DetachLogicInput(c.Input, c.Target)
}

// Selection commands

type SelectNode struct {
	Node int
}

func (SelectNode) Name() string { return "SelectNode" }

func (c SelectNode) String() string { return fmt.Sprintf("select %d", c.Node) }

func (c SelectNode) apply(s *Session) error {
	if !s.net.HasNode(c.Node) {
		return network.NewError("SelectNode").Node(c.Node).Cause(network.ErrNodeNotFound).Err()
	}
	s.sel.selectNode(c.Node)
	return nil
}

// SelectLink selects a link. Selecting the link that is already selected
// flips its sign.
type SelectLink struct {
	Source, Target int
}

func (SelectLink) Name() string { return "SelectLink" }

func (c SelectLink) String() string { return fmt.Sprintf("select %d %d", c.Source, c.Target) }

func (c SelectLink) apply(s *Session) error {
	if _, ok := s.net.Link(c.Source, c.Target); !ok {
		return network.NewError("SelectLink").Link(c.Source, c.Target).Cause(network.ErrLinkNotFound).Err()
	}
	if s.sel.linkSelected(c.Source, c.Target) {
		_, err := s.net.ToggleLinkSign(c.Source, c.Target)
		return err
	}
	s.sel.selectLink(c.Source, c.Target)
	return nil
}

type ClearSelection struct{}

func (ClearSelection) Name() string   { return "ClearSelection" }
func (ClearSelection) String() string { return "clear" }

func (ClearSelection) apply(s *Session) error {
	s.sel.clear()
	return nil
}

type ToggleSelectedLink struct{}

func (ToggleSelectedLink) Name() string   { return "ToggleSelectedLink" }
func (ToggleSelectedLink) String() string { return "flip" }

func (ToggleSelectedLink) apply(s *Session) error {
	if !s.sel.hasLink {
		return ErrNoSelection
	}
	_, err := s.net.ToggleLinkSign(s.sel.link[0], s.sel.link[1])
	return err
}

// DeleteSelected removes the selected link, or else the selected node, and
// clears the selection.
type DeleteSelected struct{}

func (DeleteSelected) Name() string   { return "DeleteSelected" }
func (DeleteSelected) String() string { return "delete" }

func (DeleteSelected) apply(s *Session) error {
	switch {
	case s.sel.hasLink:
		s.net.RemoveLink(s.sel.link[0], s.sel.link[1])
	case s.sel.hasNode:
		s.net.RemoveNode(s.sel.node)
	default:
		return ErrNoSelection
	}
	s.sel.clear()
	return nil
}

type AddSelfLoop struct{}

func (AddSelfLoop) Name() string   { return "AddSelfLoop" }
func (AddSelfLoop) String() string { return "selfloop" }

func (AddSelfLoop) apply(s *Session) error {
	if !s.sel.hasNode {
		return ErrNoSelection
	}
	_, err := s.net.AddLink(s.sel.node, s.sel.node)
	return err
}

// ConnectSelected links the selected node to Target. Dropping a drag back
// onto the node it started from does nothing; self-loops use AddSelfLoop.
type ConnectSelected struct {
	Target int
}

func (ConnectSelected) Name() string { return "ConnectSelected" }

func (c ConnectSelected) String() string { return fmt.Sprintf("connect %d", c.Target) }

func (c ConnectSelected) apply(s *Session) error {
	if !s.sel.hasNode {
		return ErrNoSelection
	}
	if c.Target == s.sel.node {
		return nil
	}
	_, err := s.net.AddLink(s.sel.node, c.Target)
	return err
}

// PickInput picks a regulator in the inspected node's logic. Picking the
// same input again drops the pick; picking a different one AND-combines the
// first pick into the second one's group.
type PickInput struct {
	Input int
}

func (PickInput) Name() string { return "PickInput" }

func (c PickInput) String() string { return fmt.Sprintf("pick %d", c.Input) }

func (c PickInput) apply(s *Session) error {
	k, ok := s.sel.inspected(s.net)
	if !ok {
		return ErrNoInspectedNode
	}
	if !s.net.InLogic(c.Input, k) {
		return network.NewError("PickInput").Logic(k).
			Context(network.NodeName(c.Input)).
			Cause(network.ErrInputNotInLogic).Err()
	}

	switch {
	case !s.sel.hasInput || s.sel.inputTarget != k:
		s.sel.input, s.sel.inputTarget, s.sel.hasInput = c.Input, k, true
	case s.sel.input == c.Input:
		s.sel.hasInput = false
	default:
		if err := s.net.MergeLogicInput(s.sel.input, c.Input, k); err != nil {
			return err
		}
		s.sel.hasInput = false
	}
	return nil
}

// PickRoot moves the picked input into its own OR-term.
type PickRoot struct{}

func (PickRoot) Name() string   { return "PickRoot" }
func (PickRoot) String() string { return "root" }

func (PickRoot) apply(s *Session) error {
	if !s.sel.hasInput {
		return ErrNoSelection
	}
	if err := s.net.DetachLogicInput(s.sel.input, s.sel.inputTarget); err != nil {
		return err
	}
	s.sel.hasInput = false
	return nil
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
