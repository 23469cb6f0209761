package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hirely/hirely/internal/db"
	"github.com/hirely/hirely/internal/seo"
	"github.com/hirely/hirely/internal/types"
)

// MetaResponse is the JSON form of a page's head metadata
type MetaResponse struct {
	seo.Meta
	Tags []seo.Tag `json:"tags"`
}

// parseJobFilters reads listing filters from the query string
func parseJobFilters(r *http.Request) (db.JobFilters, error) {
	q := r.URL.Query()
	f := db.JobFilters{
		Query:          strings.TrimSpace(q.Get("q")),
		Location:       strings.TrimSpace(q.Get("location")),
		EmploymentType: q.Get("employment_type"),
		WorkMode:       q.Get("work_mode"),
	}

	if v := q.Get("company_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, &ErrValidation{Field: "company_id", Message: "invalid id"}
		}
		f.CompanyID = &id
	}

	var err error
	if f.MinSalary, err = queryInt(r, "min_salary"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(r, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

// writeJobPage writes a listing page, marking whether it came from the cache
func (s *Server) writeJobPage(w http.ResponseWriter, r *http.Request, filters db.JobFilters) {
	page, hit, err := s.jobs.ListOpenJobs(r.Context(), filters)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		s.logger.WithError(err).Debug("failed to write job page")
	}
}

// writeMeta serves metadata as JSON, or as a head snippet with ?format=html
func (s *Server) writeMeta(w http.ResponseWriter, r *http.Request, meta seo.Meta) {
	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(meta.HTML()))
		return
	}
	s.jsonResponse(w, http.StatusOK, MetaResponse{Meta: meta, Tags: meta.Tags()})
}

// ---------------------------------------------------------------------
// Public Job Handlers
// ---------------------------------------------------------------------

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filters, err := parseJobFilters(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJobPage(w, r, filters)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	job, err := s.jobs.GetJob(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleJobMeta(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// The job already carries the company name, so a missing company is not fatal
	company, err := s.store.GetCompanyByID(ctx, job.CompanyID)
	if err != nil {
		s.logger.WithError(err).WithField("company_id", job.CompanyID).Warn("failed to load company for meta")
		company = nil
	}
	s.writeMeta(w, r, seo.ForJob(job, company, s.publicBaseURL))
}

// ---------------------------------------------------------------------
// Employer Job Handlers
// ---------------------------------------------------------------------

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, db.RoleEmployer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.JobRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	job, err := s.jobs.CreateJob(r.Context(), user, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, db.RoleEmployer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.JobRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	job, err := s.jobs.UpdateJob(r.Context(), user, id, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleCloseJob(w http.ResponseWriter, r *http.Request) {
	s.setJobStatus(w, r, db.JobStatusClosed)
}

func (s *Server) handleReopenJob(w http.ResponseWriter, r *http.Request) {
	s.setJobStatus(w, r, db.JobStatusOpen)
}

func (s *Server) setJobStatus(w http.ResponseWriter, r *http.Request, status string) {
	user, err := s.requireRole(r, db.RoleEmployer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	job, err := s.jobs.SetJobStatus(r.Context(), user, id, status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, db.RoleEmployer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.jobs.DeleteJob(r.Context(), user, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListEmployerJobs(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, db.RoleEmployer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	jobs, err := s.jobs.ListEmployerJobs(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"jobs": jobs, "total": len(jobs)})
}
