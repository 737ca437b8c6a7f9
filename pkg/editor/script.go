package editor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-netbuilder/pkg/network"
	"github.com/dd0wney/cluso-netbuilder/pkg/validation"
)

// Statement is one parsed script line.
type Statement struct {
	Line    int
	Text    string
	Command Command
}

// ParseScript reads one command per line. Blank lines and lines starting
// with '#' are skipped. The first malformed line aborts parsing with a
// *ScriptError.
func ParseScript(r io.Reader) ([]Statement, error) {
	var stmts []Statement
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cmd, err := ParseCommand(text)
		if err != nil {
			return nil, &ScriptError{Line: line, Text: text, Err: err}
		}
		stmts = append(stmts, Statement{Line: line, Text: text, Command: cmd})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return stmts, nil
}

// ParseCommand parses a single command line. Node ids may be written as
// "3" or "X3".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty line", ErrUnknownCommand)
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "node":
		return parseAddNode(args)
	case "link":
		ids, err := parseIDs(args, 2)
		if err != nil {
			return nil, err
		}
		return AddLink{Source: ids[0], Target: ids[1]}, nil
	case "unlink":
		ids, err := parseIDs(args, 2)
		if err != nil {
			return nil, err
		}
		return RemoveLink{Source: ids[0], Target: ids[1]}, nil
	case "remove":
		ids, err := parseIDs(args, 1)
		if err != nil {
			return nil, err
		}
		return RemoveNode{Node: ids[0]}, nil
	case "toggle":
		ids, err := parseIDs(args, 2)
		if err != nil {
			return nil, err
		}
		return ToggleLinkSign{Source: ids[0], Target: ids[1]}, nil
	case "merge":
		ids, err := parseIDs(args, 3)
		if err != nil {
			return nil, err
		}
		return MergeLogicInput{Input: ids[0], Representative: ids[1], Target: ids[2]}, nil
	case "detach":
		ids, err := parseIDs(args, 2)
		if err != nil {
			return nil, err
		}
		return DetachLogicInput{Input: ids[0], Target: ids[1]}, nil
	case "select":
		if len(args) == 1 {
			ids, err := parseIDs(args, 1)
			if err != nil {
				return nil, err
			}
			return SelectNode{Node: ids[0]}, nil
		}
		ids, err := parseIDs(args, 2)
		if err != nil {
			return nil, err
		}
		return SelectLink{Source: ids[0], Target: ids[1]}, nil
	case "connect":
		ids, err := parseIDs(args, 1)
		if err != nil {
			return nil, err
		}
		return ConnectSelected{Target: ids[0]}, nil
	case "pick":
		ids, err := parseIDs(args, 1)
		if err != nil {
			return nil, err
		}
		return PickInput{Input: ids[0]}, nil
	case "clear", "flip", "delete", "selfloop", "root":
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: %s takes no arguments", ErrBadArguments, verb)
		}
		return bareCommands[verb], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
}

var bareCommands = map[string]Command{
	"clear":    ClearSelection{},
	"flip":     ToggleSelectedLink{},
	"delete":   DeleteSelected{},
	"selfloop": AddSelfLoop{},
	"root":     PickRoot{},
}

func parseAddNode(args []string) (Command, error) {
	switch len(args) {
	case 0:
		return AddNode{}, nil
	case 2:
	default:
		return nil, fmt.Errorf("%w: node takes no arguments or x y", ErrBadArguments)
	}

	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: x %q is not a number", ErrBadArguments, args[0])
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: y %q is not a number", ErrBadArguments, args[1])
	}
	if err := validation.ValidateNodeRequest(&validation.NodeRequest{X: &x, Y: &y}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArguments, err)
	}
	return AddNode{Position: &network.Point{X: x, Y: y}}, nil
}

func parseIDs(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: want %d node ids, got %d", ErrBadArguments, n, len(args))
	}
	ids := make([]int, n)
	for i, a := range args {
		id, err := ParseNodeID(a)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// ParseNodeID accepts "3", "X3" or "x3".
func ParseNodeID(s string) (int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "X"), "x")
	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a node id", ErrBadArguments, s)
	}
	if err := validation.ValidateNodeID(id); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadArguments, err)
	}
	return id, nil
}

// RunScript executes statements against s in order. A rejected command stops
// the run; the error is a *ScriptError naming its line, and the returned
// report is the last one accepted.
func RunScript(ctx context.Context, s *Session, stmts []Statement) (Report, error) {
	report := s.Report()
	for _, st := range stmts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		next, err := s.Execute(ctx, st.Command)
		if err != nil {
			return report, &ScriptError{Line: st.Line, Text: st.Text, Err: err}
		}
		report = next
	}
	return report, nil
}
