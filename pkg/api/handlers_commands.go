package api

import (
	"net/http"
	"strings"

	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
)

// handleCommand runs one line of the command language, which reaches the
// selection commands the REST routes do not name.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var req CommandRequest
	if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateCommand(&req).RespondError() {
		return
	}
	cmd, err := editor.ParseCommand(req.Command)
	if err != nil {
		s.respondCommandError(w, err)
		return
	}
	s.execute(w, r, session, cmd)
}

// handleScript runs a script. Statements before a rejected line stay
// applied; the error names the line.
func (s *Server) handleScript(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var req ScriptRequest
	if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateScript(&req).RespondError() {
		return
	}
	stmts, err := editor.ParseScript(strings.NewReader(req.Script))
	if err != nil {
		s.respondCommandError(w, err)
		return
	}
	report, err := editor.RunScript(r.Context(), session, stmts)
	if err != nil {
		s.respondCommandError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}
