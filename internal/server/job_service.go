package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hirely/hirely/internal/cache"
	"github.com/hirely/hirely/internal/db"
	"github.com/hirely/hirely/internal/types"
	"github.com/sirupsen/logrus"
)

// JobListResponse is a page of job listings
type JobListResponse struct {
	Jobs   []db.Job `json:"jobs"`
	Total  int      `json:"total"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}

// JobService manages companies and job postings and keeps the listing cache
// consistent with them
type JobService struct {
	store    Store
	cache    cache.JobListCache
	profiles *ProfileService
	logger   *logrus.Entry
}

// NewJobService creates a JobService
func NewJobService(store Store, jobCache cache.JobListCache, profiles *ProfileService, logger *logrus.Entry) *JobService {
	return &JobService{store: store, cache: jobCache, profiles: profiles, logger: logger}
}

// invalidate drops every cached listing page. Failures only delay freshness
// until the entry TTL, so they are logged.
func (j *JobService) invalidate(ctx context.Context) {
	if err := j.cache.Invalidate(ctx); err != nil {
		j.logger.WithError(err).Warn("failed to invalidate job cache")
	}
}

// -----------------------------------------------------------------------------
// Companies
// -----------------------------------------------------------------------------

// CreateCompany creates a company owned by employer and links it to the
// employer's profile. An employer has at most one company.
func (j *JobService) CreateCompany(ctx context.Context, employer *db.User, req *types.CompanyRequest) (*db.Company, error) {
	ep, err := j.store.GetEmployerProfile(ctx, employer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employer profile: %w", err)
	}
	if ep != nil && ep.CompanyID != nil {
		return nil, &ErrValidation{Field: "company", Message: "employer already has a company"}
	}
	if db.NormalizeName(req.Name) == "" {
		return nil, &ErrValidation{Field: "name", Message: "must contain letters or digits"}
	}

	company, err := j.store.CreateCompany(ctx, &db.Company{
		OwnerID:     employer.ID,
		Name:        strings.TrimSpace(req.Name),
		Website:     strings.TrimSpace(req.Website),
		Industry:    strings.TrimSpace(req.Industry),
		Size:        req.Size,
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	if ep == nil {
		ep = &db.EmployerProfile{UserID: employer.ID}
	}
	ep.CompanyID = &company.ID
	if err := j.store.UpsertEmployerProfile(ctx, ep); err != nil {
		return nil, fmt.Errorf("failed to link company: %w", err)
	}

	j.logger.WithFields(logrus.Fields{"company_id": company.ID, "owner_id": employer.ID}).Info("company created")
	return company, nil
}

// GetCompany returns a company or ErrNotFound
func (j *JobService) GetCompany(ctx context.Context, id uuid.UUID) (*db.Company, error) {
	company, err := j.store.GetCompanyByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	if company == nil {
		return nil, &ErrNotFound{Resource: "company"}
	}
	return company, nil
}

// OwnedCompany returns a company owned by user
func (j *JobService) OwnedCompany(ctx context.Context, user *db.User, id uuid.UUID) (*db.Company, error) {
	company, err := j.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.OwnerID != user.ID {
		return nil, &ErrForbidden{Reason: "not the owner of this company"}
	}
	return company, nil
}

// UpdateCompany writes the editable fields of a company owned by user
func (j *JobService) UpdateCompany(ctx context.Context, user *db.User, id uuid.UUID, req *types.CompanyRequest) (*db.Company, error) {
	company, err := j.OwnedCompany(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if db.NormalizeName(req.Name) == "" {
		return nil, &ErrValidation{Field: "name", Message: "must contain letters or digits"}
	}

	company.Name = strings.TrimSpace(req.Name)
	company.Website = strings.TrimSpace(req.Website)
	company.Industry = strings.TrimSpace(req.Industry)
	company.Size = req.Size
	company.Location = strings.TrimSpace(req.Location)
	company.Description = strings.TrimSpace(req.Description)
	if err := j.store.UpdateCompany(ctx, company); err != nil {
		return nil, j.mapNotFound(err, "company")
	}
	// Listings embed the company name
	j.invalidate(ctx)
	return j.GetCompany(ctx, id)
}

// SetCompanyLogo records the URL of an uploaded logo
func (j *JobService) SetCompanyLogo(ctx context.Context, company *db.Company, logoURL string) (*db.Company, error) {
	if err := j.store.SetCompanyLogo(ctx, company.ID, logoURL); err != nil {
		return nil, j.mapNotFound(err, "company")
	}
	j.invalidate(ctx)
	return j.GetCompany(ctx, company.ID)
}

// -----------------------------------------------------------------------------
// Jobs
// -----------------------------------------------------------------------------

func jobFromRequest(req *types.JobRequest) (*db.Job, error) {
	if req.SalaryMin != nil && req.SalaryMax != nil && *req.SalaryMin > *req.SalaryMax {
		return nil, &ErrValidation{Field: "salary_max", Message: "must be at least salary_min"}
	}
	currency := req.SalaryCurrency
	if currency == "" && (req.SalaryMin != nil || req.SalaryMax != nil) {
		currency = "USD"
	}
	return &db.Job{
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Location:        strings.TrimSpace(req.Location),
		EmploymentType:  req.EmploymentType,
		WorkMode:        req.WorkMode,
		ExperienceLevel: req.ExperienceLevel,
		Skills:          normalizeSkills(req.Skills),
		SalaryMin:       req.SalaryMin,
		SalaryMax:       req.SalaryMax,
		SalaryCurrency:  currency,
	}, nil
}

// CreateJob posts a job under the employer's company. The employer's
// profile must be complete.
func (j *JobService) CreateJob(ctx context.Context, employer *db.User, req *types.JobRequest) (*db.Job, error) {
	view, err := j.profiles.RequireComplete(ctx, employer)
	if err != nil {
		return nil, err
	}
	if view.Company == nil {
		return nil, &ErrProfileIncomplete{Missing: []string{"company"}}
	}

	job, err := jobFromRequest(req)
	if err != nil {
		return nil, err
	}
	job.CompanyID = view.Company.ID
	job.EmployerID = employer.ID
	job.Status = db.JobStatusOpen

	created, err := j.store.CreateJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	j.invalidate(ctx)

	j.logger.WithFields(logrus.Fields{
		"job_id":      created.ID,
		"company_id":  created.CompanyID,
		"employer_id": employer.ID,
	}).Info("job posted")
	return created, nil
}

// GetJob returns a job or ErrNotFound
func (j *JobService) GetJob(ctx context.Context, id uuid.UUID) (*db.Job, error) {
	job, err := j.store.GetJobByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, &ErrNotFound{Resource: "job"}
	}
	return job, nil
}

// OwnedJob returns a job posted by user
func (j *JobService) OwnedJob(ctx context.Context, user *db.User, id uuid.UUID) (*db.Job, error) {
	job, err := j.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != user.ID {
		return nil, &ErrForbidden{Reason: "not the owner of this job"}
	}
	return job, nil
}

// UpdateJob writes the editable fields of a job posted by user
func (j *JobService) UpdateJob(ctx context.Context, user *db.User, id uuid.UUID, req *types.JobRequest) (*db.Job, error) {
	if _, err := j.OwnedJob(ctx, user, id); err != nil {
		return nil, err
	}
	job, err := jobFromRequest(req)
	if err != nil {
		return nil, err
	}
	job.ID = id
	if err := j.store.UpdateJob(ctx, job); err != nil {
		return nil, j.mapNotFound(err, "job")
	}
	j.invalidate(ctx)
	return j.GetJob(ctx, id)
}

// SetJobStatus closes or reopens a job posted by user. Setting the current
// status again is a no-op.
func (j *JobService) SetJobStatus(ctx context.Context, user *db.User, id uuid.UUID, status string) (*db.Job, error) {
	job, err := j.OwnedJob(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if job.Status == status {
		return job, nil
	}
	if err := j.store.SetJobStatus(ctx, id, status); err != nil {
		return nil, j.mapNotFound(err, "job")
	}
	j.invalidate(ctx)

	j.logger.WithFields(logrus.Fields{"job_id": id, "status": status}).Info("job status changed")
	return j.GetJob(ctx, id)
}

// DeleteJob removes a job posted by user along with its applications
func (j *JobService) DeleteJob(ctx context.Context, user *db.User, id uuid.UUID) error {
	if _, err := j.OwnedJob(ctx, user, id); err != nil {
		return err
	}
	if err := j.store.DeleteJob(ctx, id); err != nil {
		return j.mapNotFound(err, "job")
	}
	j.invalidate(ctx)
	j.logger.WithField("job_id", id).Info("job deleted")
	return nil
}

// ListOpenJobs returns the serialized listing page for filters, reading
// through the cache. Only open jobs are listed. hit reports whether the
// page came from the cache.
func (j *JobService) ListOpenJobs(ctx context.Context, filters db.JobFilters) (page []byte, hit bool, err error) {
	filters = db.NormalizeJobFilters(filters)
	filters.Status = db.JobStatusOpen
	key := cache.KeyFor(filters)

	data, ok, err := j.cache.Get(ctx, key)
	if err != nil {
		j.logger.WithError(err).Warn("job cache read failed")
	} else if ok {
		return data, true, nil
	}

	jobs, total, err := j.store.ListJobs(ctx, filters)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list jobs: %w", err)
	}
	data, err = json.Marshal(JobListResponse{
		Jobs:   jobs,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode jobs: %w", err)
	}

	if err := j.cache.Set(ctx, key, data); err != nil {
		j.logger.WithError(err).Warn("job cache write failed")
	}
	return data, false, nil
}

// ListEmployerJobs returns every job posted by employer, open or closed
func (j *JobService) ListEmployerJobs(ctx context.Context, employer *db.User) ([]db.Job, error) {
	jobs, err := j.store.ListJobsByEmployer(ctx, employer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employer jobs: %w", err)
	}
	return jobs, nil
}

// mapNotFound converts db.ErrNotFound from a mutation into ErrNotFound
func (j *JobService) mapNotFound(err error, resource string) error {
	if errors.Is(err, db.ErrNotFound) {
		return &ErrNotFound{Resource: resource}
	}
	return fmt.Errorf("failed to update %s: %w", resource, err)
}
