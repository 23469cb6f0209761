package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hirely/hirely/internal/db"
	"github.com/hirely/hirely/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJob_RequiresCompleteEmployer(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "Eve", "eve@example.com", "employer")

	w := env.do(t, http.MethodPost, "/v1/jobs", token, jobRequest("Backend Engineer"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	body := decodeBody[map[string]any](t, w)
	assert.ElementsMatch(t, []any{"position", "company"}, body["missing"])
}

func TestCreateJob_CandidateForbidden(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.readyCandidate(t, "Cara", "cara@example.com")

	w := env.do(t, http.MethodPost, "/v1/jobs", token, jobRequest("Backend Engineer"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decodeBody[map[string]string](t, w)["error"], "employer account required")
}

func TestCreateJob(t *testing.T) {
	env := newTestEnv(t)
	employerID, companyID, token := env.readyEmployer(t, "Ed", "ed@example.com", "Acme")

	w := env.do(t, http.MethodPost, "/v1/jobs", token, jobRequest("Backend Engineer"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	job := decodeBody[db.Job](t, w)
	assert.Equal(t, companyID, job.CompanyID)
	assert.Equal(t, employerID, job.EmployerID)
	assert.Equal(t, db.JobStatusOpen, job.Status)
	assert.Equal(t, []string{"go", "kubernetes"}, job.Skills)
	assert.Equal(t, "Acme", job.CompanyName)
	assert.Equal(t, "EUR", job.SalaryCurrency)
	assert.Equal(t, 1, env.cache.invalidations)
}

func TestCreateJob_Validation(t *testing.T) {
	env := newTestEnv(t)
	_, _, token := env.readyEmployer(t, "Ed", "ed@example.com", "Acme")

	tests := []struct {
		name   string
		mutate func(*types.JobRequest)
		field  string
	}{
		{"missing title", func(r *types.JobRequest) { r.Title = "" }, "title"},
		{"bad employment type", func(r *types.JobRequest) { r.EmploymentType = "gig" }, "employment_type"},
		{"bad work mode", func(r *types.JobRequest) { r.WorkMode = "moon" }, "work_mode"},
		{"lowercase currency", func(r *types.JobRequest) { r.SalaryCurrency = "eur" }, "salary_currency"},
		{"inverted salary", func(r *types.JobRequest) {
			lo, hi := 90000, 60000
			r.SalaryMin, r.SalaryMax = &lo, &hi
		}, "salary_max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jobRequest("Backend Engineer")
			tt.mutate(&req)
			w := env.do(t, http.MethodPost, "/v1/jobs", token, req)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, decodeBody[map[string]string](t, w)["error"], tt.field)
		})
	}
}

func TestCreateJob_DefaultsCurrency(t *testing.T) {
	env := newTestEnv(t)
	_, _, token := env.readyEmployer(t, "Ed", "ed@example.com", "Acme")

	req := jobRequest("Backend Engineer")
	req.SalaryCurrency = ""
	w := env.do(t, http.MethodPost, "/v1/jobs", token, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "USD", decodeBody[db.Job](t, w).SalaryCurrency)
}

func TestJobOwnership(t *testing.T) {
	env := newTestEnv(t)
	_, _, owner := env.readyEmployer(t, "Owner", "owner@example.com", "Acme")
	_, _, other := env.readyEmployer(t, "Other", "other@example.com", "Globex")
	jobID := env.postJob(t, owner, "Backend Engineer")
	path := "/v1/jobs/" + jobID.String()

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPut, path, other, jobRequest("Hijacked")).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, path+"/close", other, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodDelete, path, other, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, path+"/applications", other, nil).Code)

	w := env.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Backend Engineer", decodeBody[db.Job](t, w).Title)
}

func TestUpdateJob(t *testing.T) {
	env := newTestEnv(t)
	_, _, token := env.readyEmployer(t, "Ed", "ed@example.com", "Acme")
	jobID := env.postJob(t, token, "Backend Engineer")
	before := env.cache.invalidations

	req := jobRequest("Senior Backend Engineer")
	req.WorkMode = "remote"
	w := env.do(t, http.MethodPut, "/v1/jobs/"+jobID.String(), token, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	job := decodeBody[db.Job](t, w)
	assert.Equal(t, "Senior Backend Engineer", job.Title)
	assert.Equal(t, "remote", job.WorkMode)
	assert.Equal(t, db.JobStatusOpen, job.Status)
	assert.Greater(t, env.cache.invalidations, before)
}

func TestCloseAndReopenJob(t *testing.T) {
	env := newTestEnv(t)
	_, _, token := env.readyEmployer(t, "Ed", "ed@example.com", "Acme")
	jobID := env.postJob(t, token, "Backend Engineer")
	path := "/v1/jobs/" + jobID.String()

	w := env.do(t, http.MethodPost, path+"/close", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, db.JobStatusClosed, decodeBody[db.Job](t, w).Status)

	// Closed jobs drop out of the public listing
	list := decodeBody[JobListResponse](t, env.do(t, http.MethodGet, "/v1/jobs", "", nil))
	assert.Equal(t, 0, list.Total)

	// Closing twice is a no-op
	invalidations := env.cache.invalidations
	w = env.do(t, http.MethodPost, path+"/close", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, invalidations, env.cache.invalidations)

	w = env.do(t, http.MethodPost, path+"/reopen", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, db.JobStatusOpen, decodeBody[db.Job](t, w).Status)

	list = decodeBody[JobListResponse](t, env.do(t, http.MethodGet, "/v1/jobs", "", nil))
	assert.Equal(t, 1, list.Total)
}

func TestDeleteJob(t *testing.T) {
	env := newTestEnv(t)
	_, _, token := env.readyEmployer(t, "Ed", "ed@example.com", "Acme")
	jobID := env.postJob(t, token, "Backend Engineer")
	path := "/v1/jobs/" + jobID.String()

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, token, nil).Code)
}

func TestGetJob_BadID(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/v1/jobs/not-a-uuid", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/v1/jobs/"+uuid.NewString(), "", nil).Code)
}

func TestListJobs_Filters(t *testing.T) {
	env := newTestEnv(t)
	_, acmeID, acme := env.readyEmployer(t, "A", "a@example.com", "Acme")
	_, _, globex := env.readyEmployer(t, "G", "g@example.com", "Globex")

	env.postJob(t, acme, "Backend Engineer")

	remote := jobRequest("Data Scientist")
	remote.WorkMode = "remote"
	remote.Location = "Lisbon"
	remote.Skills = []string{"Python"}
	lo, hi := 120000, 150000
	remote.SalaryMin, remote.SalaryMax = &lo, &hi
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/v1/jobs", globex, remote).Code)

	contract := jobRequest("Frontend Contractor")
	contract.EmploymentType = "contract"
	contract.SalaryMin, contract.SalaryMax = nil, nil
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/v1/jobs", acme, contract).Code)

	tests := []struct {
		name   string
		query  string
		titles []string
	}{
		{"all, newest first", "", []string{"Frontend Contractor", "Data Scientist", "Backend Engineer"}},
		{"text query on title", "?q=backend", []string{"Backend Engineer"}},
		{"text query on company", "?q=globex", []string{"Data Scientist"}},
		{"skill query", "?q=python", []string{"Data Scientist"}},
		{"location", "?location=lisbon", []string{"Data Scientist"}},
		{"work mode", "?work_mode=remote", []string{"Data Scientist"}},
		{"employment type", "?employment_type=contract", []string{"Frontend Contractor"}},
		{"company", "?company_id=" + acmeID.String(), []string{"Frontend Contractor", "Backend Engineer"}},
		{"min salary", "?min_salary=100000", []string{"Data Scientist"}},
		{"pagination", "?limit=1&offset=1", []string{"Data Scientist"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/v1/jobs"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			page := decodeBody[JobListResponse](t, w)

			titles := make([]string, 0, len(page.Jobs))
			for _, j := range page.Jobs {
				titles = append(titles, j.Title)
			}
			assert.Equal(t, tt.titles, titles)
		})
	}

	t.Run("pagination reports the full total", func(t *testing.T) {
		page := decodeBody[JobListResponse](t, env.do(t, http.MethodGet, "/v1/jobs?limit=1", "", nil))
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 1, page.Limit)
	})

	t.Run("bad filters", func(t *testing.T) {
		for _, q := range []string{"?limit=-1", "?offset=x", "?min_salary=lots", "?company_id=nope"} {
			assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/v1/jobs"+q, "", nil).Code, q)
		}
	})
}

func TestListJobs_Cache(t *testing.T) {
	env := newTestEnv(t)
	_, _, token := env.readyEmployer(t, "Ed", "ed@example.com", "Acme")
	env.postJob(t, token, "Backend Engineer")

	first := env.do(t, http.MethodGet, "/v1/jobs?q=engineer", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := env.do(t, http.MethodGet, "/v1/jobs?q=engineer", "", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	// Equivalent filters share an entry
	third := env.do(t, http.MethodGet, "/v1/jobs?q=%20engineer%20&limit=0", "", nil)
	assert.Equal(t, "HIT", third.Header().Get("X-Cache"))

	// A new posting invalidates every page
	env.postJob(t, token, "Platform Engineer")
	fresh := env.do(t, http.MethodGet, "/v1/jobs?q=engineer", "", nil)
	assert.Equal(t, "MISS", fresh.Header().Get("X-Cache"))
	assert.Equal(t, 2, decodeBody[JobListResponse](t, fresh).Total)
}

func TestListEmployerJobs(t *testing.T) {
	env := newTestEnv(t)
	_, _, token := env.readyEmployer(t, "Ed", "ed@example.com", "Acme")
	open := env.postJob(t, token, "Open Role")
	closed := env.postJob(t, token, "Closed Role")
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/v1/jobs/"+closed.String()+"/close", token, nil).Code)

	w := env.do(t, http.MethodGet, "/v1/employer/jobs", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[struct {
		Jobs  []db.Job `json:"jobs"`
		Total int      `json:"total"`
	}](t, w)
	assert.Equal(t, 2, body.Total)

	ids := []uuid.UUID{body.Jobs[0].ID, body.Jobs[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{open, closed}, ids)
}

func TestJobMeta(t *testing.T) {
	env := newTestEnv(t)
	_, _, token := env.readyEmployer(t, "Ed", "ed@example.com", "Acme <Labs>")
	jobID := env.postJob(t, token, "Backend Engineer")
	path := "/v1/jobs/" + jobID.String() + "/meta"

	t.Run("json", func(t *testing.T) {
		w := env.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		meta := decodeBody[map[string]any](t, w)
		assert.Equal(t, "Backend Engineer at Acme <Labs> | Hirely", meta["title"])
		assert.Equal(t, "Build and run services.", meta["description"])
		assert.Equal(t, "https://hirely.test/jobs/"+jobID.String(), meta["canonical"])
		assert.NotEmpty(t, meta["tags"])

		ld := meta["json_ld"].(map[string]any)
		assert.Equal(t, "JobPosting", ld["@type"])
		assert.Equal(t, "FULL_TIME", ld["employmentType"])
	})

	t.Run("html", func(t *testing.T) {
		w := env.do(t, http.MethodGet, path+"?format=html", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))

		out := w.Body.String()
		assert.Contains(t, out, "<title>Backend Engineer at Acme &lt;Labs&gt; | Hirely</title>")
		assert.Contains(t, out, `<meta property="og:title"`)
		assert.Contains(t, out, `<script type="application/ld+json">`)
		assert.NotContains(t, out, "<Labs>")
	})
}
