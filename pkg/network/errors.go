package network

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound             = errors.New("node not found")
	ErrLinkNotFound             = errors.New("link not found")
	ErrInputNotInLogic          = errors.New("input is not part of the node's logic")
	ErrRepresentativeNotInLogic = errors.New("representative is not part of the node's logic")
	ErrInvariantViolated        = errors.New("model invariant violated")
)

// ModelError provides structured error information for network operations.
type ModelError struct {
	Op      string // Operation that failed (e.g., "AddLink", "MergeLogicInput")
	Entity  string // Entity type ("node", "link", "logic")
	ID      int    // Node id for node and logic errors
	Source  int    // Link source for link errors
	Target  int    // Link target for link errors
	Cause   error  // Underlying error
	Context string // Additional context
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	var subject string
	switch e.Entity {
	case "link":
		subject = fmt.Sprintf("link %s->%s", NodeName(e.Source), NodeName(e.Target))
	case "":
		subject = "network"
	default:
		subject = fmt.Sprintf("%s %s", e.Entity, NodeName(e.ID))
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, subject, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, subject, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ModelError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *ModelError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building ModelErrors.
type ErrorBuilder struct {
	err ModelError
}

// NewError creates a new error builder for the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: ModelError{Op: op}}
}

// Node sets the entity to "node" with the given id.
func (b *ErrorBuilder) Node(id int) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.ID = id
	return b
}

// Link sets the entity to "link" with the given endpoints.
func (b *ErrorBuilder) Link(source, target int) *ErrorBuilder {
	b.err.Entity = "link"
	b.err.Source = source
	b.err.Target = target
	return b
}

// Logic sets the entity to "logic" of the given node.
func (b *ErrorBuilder) Logic(id int) *ErrorBuilder {
	b.err.Entity = "logic"
	b.err.ID = id
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	e := b.err
	return &e
}

// IsNotFound returns true if the error names a missing node or link.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) || errors.Is(err, ErrLinkNotFound)
}

// IsMalformed returns true if the error is a rejected user command: the model
// was left untouched and the caller should report it as bad input.
func IsMalformed(err error) bool {
	return IsNotFound(err) ||
		errors.Is(err, ErrInputNotInLogic) ||
		errors.Is(err, ErrRepresentativeNotInLogic)
}
