package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/hirely/hirely/internal/db"
	"github.com/hirely/hirely/internal/server/middleware"
	"github.com/hirely/hirely/internal/types"
)

// ---------------------------------------------------------------------
// Saved Job Handlers
// ---------------------------------------------------------------------

func (s *Server) handleListSavedJobs(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, db.RoleCandidate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	jobs, err := s.store.ListSavedJobs(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []db.Job{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs, "total": len(jobs)})
}

func (s *Server) handleSaveJob(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, db.RoleCandidate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jobID, err := pathUUID(r, "job_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if _, err := s.jobs.GetJob(ctx, jobID); err != nil {
		s.writeError(w, r, err)
		return
	}
	// Saving twice is not an error
	if err := s.store.SaveJob(ctx, user.ID, jobID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnsaveJob(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, db.RoleCandidate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jobID, err := pathUUID(r, "job_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.UnsaveJob(r.Context(), user.ID, jobID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.writeError(w, r, &ErrNotFound{Resource: "saved job"})
			return
		}
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------
// Notification Handlers
// ---------------------------------------------------------------------

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit = db.NormalizeNotificationLimit(limit)
	unreadOnly := strings.EqualFold(r.URL.Query().Get("unread"), "true")

	ctx := r.Context()
	notifications, err := s.store.ListNotifications(ctx, user.ID, unreadOnly, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	unread, err := s.store.CountUnreadNotifications(ctx, user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if notifications == nil {
		notifications = []db.Notification{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"unread":        unread,
	})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
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

	// Another user's notification looks the same as a missing one
	if err := s.store.MarkNotificationRead(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.writeError(w, r, &ErrNotFound{Resource: "notification"})
			return
		}
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	n, err := s.store.MarkAllNotificationsRead(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]int64{"marked": n})
}

// ---------------------------------------------------------------------
// Feedback
// ---------------------------------------------------------------------

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req types.FeedbackRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	fb := &db.Feedback{
		Rating:  req.Rating,
		Message: strings.TrimSpace(req.Message),
		Page:    strings.TrimSpace(req.Page),
	}
	if userID, err := middleware.GetUserID(r); err == nil {
		fb.UserID = &userID
	}

	if err := s.store.CreateFeedback(r.Context(), fb); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.WithField("rating", fb.Rating).Info("feedback received")
	s.jsonResponse(w, http.StatusCreated, fb)
}
