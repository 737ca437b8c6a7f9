package api

import (
	"net/http"

	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
	"github.com/dd0wney/cluso-netbuilder/pkg/logging"
)

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, InfoResponse{
		Version:  s.version,
		Started:  s.startTime,
		Sessions: s.sessions.Len(),
		Tokens:   s.tokens != nil,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.Create()
	resp := SessionResponse{
		ID:     session.ID(),
		Report: session.Report(),
	}

	if s.tokens != nil {
		token, err := s.tokens.GenerateToken(session.ID())
		if err != nil {
			_ = s.sessions.Delete(session.ID())
			s.logger.Error("failed to issue session token", logging.Error(err))
			s.respondError(w, http.StatusInternalServerError, "failed to issue session token")
			return
		}
		resp.Token = token
	}

	w.Header().Set("Location", "/sessions/"+session.ID())
	s.respondJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.List()
	s.respondJSON(w, http.StatusOK, SessionListResponse{Sessions: ids, Count: len(ids)})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	s.respondJSON(w, http.StatusOK, session.Report())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	if err := s.sessions.Delete(session.ID()); err != nil {
		s.respondCommandError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSpecification serves the specification as text/plain, one line per
// node.
func (s *Server) handleSpecification(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	s.respondText(w, http.StatusOK, session.Report().SpecificationText())
}
