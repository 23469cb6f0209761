package server

import (
	"net/http"

	"github.com/hirely/hirely/internal/db"
	"github.com/hirely/hirely/internal/types"
)

// ---------------------------------------------------------------------
// Application Handlers
// ---------------------------------------------------------------------

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, db.RoleCandidate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jobID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.ApplyRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	app, err := s.hiring.Apply(r.Context(), user, jobID, req.CoverLetter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

func (s *Server) handleListJobApplications(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, db.RoleEmployer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jobID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	apps, err := s.hiring.ListForJob(r.Context(), user, jobID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"applications": apps, "total": len(apps)})
}

func (s *Server) handleListMyApplications(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, db.RoleCandidate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	apps, err := s.hiring.ListForCandidate(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"applications": apps, "total": len(apps)})
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.hiring.Get(r.Context(), user, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.StatusUpdateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.hiring.ChangeStatus(r.Context(), user, id, req.Status, req.Note)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}
