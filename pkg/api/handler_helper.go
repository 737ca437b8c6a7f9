package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
	"github.com/dd0wney/cluso-netbuilder/pkg/validation"
)

// requestDecoder decodes and validates request bodies.
// Check RespondError after the last step.
type requestDecoder struct {
	r          *http.Request
	w          http.ResponseWriter
	server     *Server
	err        error
	statusCode int
}

// NewRequestDecoder creates a new request decoder for the given request.
func (s *Server) NewRequestDecoder(w http.ResponseWriter, r *http.Request) *requestDecoder {
	return &requestDecoder{
		r:      r,
		w:      w,
		server: s,
	}
}

// DecodeJSON decodes the request body into v. An empty body leaves v as is.
func (rd *requestDecoder) DecodeJSON(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	dec := json.NewDecoder(rd.r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		rd.fail(http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rd.statusCode = http.StatusRequestEntityTooLarge
		}
	}
	return rd
}

// ValidateNode validates a node request.
func (rd *requestDecoder) ValidateNode(req *NodeRequest) *requestDecoder {
	return rd.validate(func() error {
		return validation.ValidateNodeRequest(&validation.NodeRequest{X: req.X, Y: req.Y})
	})
}

// ValidateLink validates a link request.
func (rd *requestDecoder) ValidateLink(req *LinkRequest) *requestDecoder {
	return rd.validate(func() error {
		return validation.ValidateLinkRequest(&validation.LinkRequest{Source: req.Source, Target: req.Target})
	})
}

// ValidateMerge validates a merge request.
func (rd *requestDecoder) ValidateMerge(req *MergeRequest) *requestDecoder {
	return rd.validate(func() error {
		return validation.ValidateMergeRequest(&validation.MergeRequest{
			Input:          req.Input,
			Representative: req.Representative,
			Target:         req.Target,
		})
	})
}

// ValidateDetach validates a detach request.
func (rd *requestDecoder) ValidateDetach(req *DetachRequest) *requestDecoder {
	return rd.validate(func() error {
		return validation.ValidateDetachRequest(&validation.DetachRequest{Input: req.Input, Target: req.Target})
	})
}

// ValidateCommand validates a command request.
func (rd *requestDecoder) ValidateCommand(req *CommandRequest) *requestDecoder {
	return rd.validate(func() error {
		return validation.ValidateCommandRequest(&validation.CommandRequest{Command: req.Command})
	})
}

// ValidateScript validates a script request.
func (rd *requestDecoder) ValidateScript(req *ScriptRequest) *requestDecoder {
	return rd.validate(func() error {
		return validation.ValidateScriptRequest(&validation.ScriptRequest{Script: req.Script})
	})
}

func (rd *requestDecoder) validate(fn func() error) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := fn(); err != nil {
		rd.fail(http.StatusBadRequest, err)
	}
	return rd
}

func (rd *requestDecoder) fail(status int, err error) {
	rd.err = err
	rd.statusCode = status
}

// RespondError sends the error response and returns true if there was an error.
func (rd *requestDecoder) RespondError() bool {
	if rd.err == nil {
		return false
	}
	rd.server.respondError(rd.w, rd.statusCode, rd.err.Error())
	return true
}

// pathNodeIDs parses node id path values such as {node} or {source}, writing
// a 400 response and returning false on the first bad one.
func (s *Server) pathNodeIDs(w http.ResponseWriter, r *http.Request, names ...string) ([]int, bool) {
	ids := make([]int, len(names))
	for i, name := range names {
		id, err := editor.ParseNodeID(r.PathValue(name))
		if err != nil {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("%s: %v", name, err))
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}
