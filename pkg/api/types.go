package api

import (
	"time"

	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
)

// API Request/Response Types

// NodeRequest adds a node, optionally at a display position.
type NodeRequest struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// LinkRequest adds a link.
type LinkRequest struct {
	Source *int `json:"source"`
	Target *int `json:"target"`
}

// MergeRequest reclassifies Input in Target's logic next to Representative.
type MergeRequest struct {
	Input          *int `json:"input"`
	Representative *int `json:"representative"`
	Target         *int `json:"target"`
}

// DetachRequest moves Input of Target's logic into a group of its own.
type DetachRequest struct {
	Input  *int `json:"input"`
	Target *int `json:"target"`
}

// CommandRequest runs one line of the command language.
type CommandRequest struct {
	Command string `json:"command"`
}

// ScriptRequest runs a command script.
type ScriptRequest struct {
	Script string `json:"script"`
}

// SessionResponse is returned when a session is created. Token is empty when
// the server runs without a session secret.
type SessionResponse struct {
	ID     string        `json:"id"`
	Token  string        `json:"token,omitempty"`
	Report editor.Report `json:"report"`
}

// SessionListResponse lists the open sessions, oldest first.
type SessionListResponse struct {
	Sessions []string `json:"sessions"`
	Count    int      `json:"count"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	// Line is the failing script line, for script requests.
	Line int `json:"line,omitempty"`
}

// InfoResponse describes the running server.
type InfoResponse struct {
	Version  string    `json:"version"`
	Started  time.Time `json:"started"`
	Sessions int       `json:"sessions"`
	Tokens   bool      `json:"tokens"`
}
