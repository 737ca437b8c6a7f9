package api

import (
	"net/http"

	"github.com/dd0wney/cluso-netbuilder/pkg/api/middleware"
	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
	"github.com/dd0wney/cluso-netbuilder/pkg/graphql"
	"github.com/dd0wney/cluso-netbuilder/pkg/logging"
	"github.com/dd0wney/cluso-netbuilder/pkg/validation"
)

// sessionHandler serves a request addressed to one editing session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, session *editor.Session)

// withSession resolves the {id} path value to an open session.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := validation.ValidateSessionID(id); err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		session, err := s.sessions.Get(id)
		if err != nil {
			s.respondCommandError(w, err)
			return
		}
		next(w, r, session)
	}
}

// requireOwner is withSession plus, when session tokens are enabled, a check
// that the bearer token was issued for that session.
func (s *Server) requireOwner(next sessionHandler) http.HandlerFunc {
	return s.withSession(func(w http.ResponseWriter, r *http.Request, session *editor.Session) {
		if s.tokens == nil {
			next(w, r, session)
			return
		}

		token := graphql.BearerToken(r)
		if token == "" {
			s.respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if err := s.tokens.Authorize(token, session.ID()); err != nil {
			s.logger.Warn("session token rejected",
				logging.Session(session.ID()),
				logging.String("request_id", middleware.GetRequestID(r)),
				logging.Error(err))
			s.respondCommandError(w, err)
			return
		}
		next(w, r, session)
	})
}
