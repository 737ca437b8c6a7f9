package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dd0wney/cluso-netbuilder/pkg/auth"
	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
	"github.com/dd0wney/cluso-netbuilder/pkg/logging"
	"github.com/dd0wney/cluso-netbuilder/pkg/network"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", logging.Error(err))
	}
}

func (s *Server) respondText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(text)); err != nil {
		s.logger.Warn("failed to write text response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// respondCommandError reports a rejected command. Rejections caused by the
// caller keep their message; anything else is logged and answered with 500.
func (s *Server) respondCommandError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("command failed", logging.Error(err))
		s.respondError(w, status, "internal error")
		return
	}

	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	}
	var se *editor.ScriptError
	if errors.As(err, &se) {
		resp.Line = se.Line
	}
	s.respondJSON(w, status, resp)
}

// statusFor maps editor, model and token errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, editor.ErrSessionNotFound),
		errors.Is(err, editor.ErrSessionClosed),
		network.IsNotFound(err):
		return http.StatusNotFound
	case network.IsMalformed(err),
		errors.Is(err, editor.ErrUnknownCommand),
		errors.Is(err, editor.ErrBadArguments),
		errors.Is(err, editor.ErrNoSelection),
		errors.Is(err, editor.ErrNoInspectedNode):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrSessionMismatch):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidClaims):
		return http.StatusUnauthorized
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
