package server

import (
	"fmt"
	"net/http"

	"github.com/hirely/hirely/internal/db"
	"github.com/hirely/hirely/internal/storage"
	"github.com/hirely/hirely/internal/types"
)

// ---------------------------------------------------------------------
// Profile and Dashboard Handlers
// ---------------------------------------------------------------------

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.profiles.Load(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var view *ProfileView
	if user.IsCandidate() {
		var req types.CandidateProfileRequest
		if err := s.decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		view, err = s.profiles.UpdateCandidate(r.Context(), user, &req)
	} else {
		var req types.EmployerProfileRequest
		if err := s.decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		view, err = s.profiles.UpdateEmployer(r.Context(), user, &req)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, db.RoleCandidate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	upload, err := s.readUpload(w, r, storage.KindResume)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	previous, err := s.store.GetCandidateProfile(ctx, user.ID)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to load profile: %w", err))
		return
	}

	key := upload.Key(user.ID)
	url, err := s.blobs.Put(ctx, key, upload.ContentType, upload.Data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.SetCandidateResume(ctx, user.ID, key, url); err != nil {
		s.writeError(w, r, err)
		return
	}

	if previous != nil && previous.ResumeKey != "" && previous.ResumeKey != key {
		if err := s.blobs.Delete(ctx, previous.ResumeKey); err != nil {
			s.logger.WithError(err).WithField("key", previous.ResumeKey).Warn("failed to delete replaced resume")
		}
	}

	view, err := s.profiles.Load(ctx, user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	dash, err := s.profiles.Dashboard(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, dash)
}
