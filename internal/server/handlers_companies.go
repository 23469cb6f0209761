package server

import (
	"net/http"

	"github.com/hirely/hirely/internal/db"
	"github.com/hirely/hirely/internal/seo"
	"github.com/hirely/hirely/internal/storage"
	"github.com/hirely/hirely/internal/types"
)

// ---------------------------------------------------------------------
// Company Handlers
// ---------------------------------------------------------------------

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, db.RoleEmployer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.CompanyRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	company, err := s.jobs.CreateCompany(r.Context(), user, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, company)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	company, err := s.jobs.GetCompany(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, company)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
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

	var req types.CompanyRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	company, err := s.jobs.UpdateCompany(r.Context(), user, id, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, company)
}

func (s *Server) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
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

	ctx := r.Context()
	company, err := s.jobs.OwnedCompany(ctx, user, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	upload, err := s.readUpload(w, r, storage.KindLogo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	url, err := s.blobs.Put(ctx, upload.Key(company.ID), upload.ContentType, upload.Data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.jobs.SetCompanyLogo(ctx, company, url)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

func (s *Server) handleListCompanyJobs(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.jobs.GetCompany(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	filters, err := parseJobFilters(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filters.CompanyID = &id

	s.writeJobPage(w, r, filters)
}

func (s *Server) handleCompanyMeta(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	company, err := s.jobs.GetCompany(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMeta(w, r, seo.ForCompany(company, s.publicBaseURL))
}
