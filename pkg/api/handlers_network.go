package api

import (
	"net/http"

	"github.com/dd0wney/cluso-netbuilder/pkg/editor"
	"github.com/dd0wney/cluso-netbuilder/pkg/network"
)

// execute runs cmd and answers with the new report.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, session *editor.Session, cmd editor.Command) {
	report, err := session.Execute(r.Context(), cmd)
	if err != nil {
		s.respondCommandError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var req NodeRequest
	if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateNode(&req).RespondError() {
		return
	}

	cmd := editor.AddNode{}
	if req.X != nil {
		cmd.Position = &network.Point{X: *req.X, Y: *req.Y}
	}
	s.execute(w, r, session, cmd)
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	ids, ok := s.pathNodeIDs(w, r, "node")
	if !ok {
		return
	}
	s.execute(w, r, session, editor.RemoveNode{Node: ids[0]})
}

func (s *Server) handleAddLink(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var req LinkRequest
	if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateLink(&req).RespondError() {
		return
	}
	s.execute(w, r, session, editor.AddLink{Source: *req.Source, Target: *req.Target})
}

func (s *Server) handleRemoveLink(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	ids, ok := s.pathNodeIDs(w, r, "source", "target")
	if !ok {
		return
	}
	s.execute(w, r, session, editor.RemoveLink{Source: ids[0], Target: ids[1]})
}

func (s *Server) handleToggleLink(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	ids, ok := s.pathNodeIDs(w, r, "source", "target")
	if !ok {
		return
	}
	s.execute(w, r, session, editor.ToggleLinkSign{Source: ids[0], Target: ids[1]})
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var req MergeRequest
	if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateMerge(&req).RespondError() {
		return
	}
	s.execute(w, r, session, editor.MergeLogicInput{
		Input:          *req.Input,
		Representative: *req.Representative,
		Target:         *req.Target,
	})
}

func (s *Server) handleDetach(w http.ResponseWriter, r *http.Request, session *editor.Session) {
	var req DetachRequest
	if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateDetach(&req).RespondError() {
		return
	}
	s.execute(w, r, session, editor.DetachLogicInput{Input: *req.Input, Target: *req.Target})
}
