package editor

import (
	"errors"
	"fmt"
)

var (
	ErrNoSelection     = errors.New("nothing selected")
	ErrNoInspectedNode = errors.New("no node to inspect")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrBadArguments    = errors.New("bad arguments")
)

// ScriptError locates a parse or execution failure inside a command script.
type ScriptError struct {
	Line int
	Text string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
