package server

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hirely/hirely/internal/db"
)

// fakeStore is an in-memory Store. It mirrors the constraints of the
// Postgres schema the handlers rely on: unique emails, one application per
// candidate and job, optimistic status updates.
type fakeStore struct {
	mu sync.Mutex

	users         map[uuid.UUID]*db.User
	candidates    map[uuid.UUID]*db.CandidateProfile
	employers     map[uuid.UUID]*db.EmployerProfile
	companies     map[uuid.UUID]*db.Company
	jobs          map[uuid.UUID]*db.Job
	applications  map[uuid.UUID]*db.Application
	notifications map[uuid.UUID]*db.Notification
	saved         map[uuid.UUID][]uuid.UUID
	feedback      []db.Feedback

	// notificationLimit is the last page size ListNotifications received
	notificationLimit int

	pingErr error
	clock   time.Time
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         map[uuid.UUID]*db.User{},
		candidates:    map[uuid.UUID]*db.CandidateProfile{},
		employers:     map[uuid.UUID]*db.EmployerProfile{},
		companies:     map[uuid.UUID]*db.Company{},
		jobs:          map[uuid.UUID]*db.Job{},
		applications:  map[uuid.UUID]*db.Application{},
		notifications: map[uuid.UUID]*db.Notification{},
		saved:         map[uuid.UUID][]uuid.UUID{},
		clock:         time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering is deterministic
func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, db.ErrNotFound)
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

func (f *fakeStore) CreateUser(_ context.Context, name, email, role string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return uuid.Nil, fmt.Errorf("email %s: %w", email, db.ErrDuplicate)
		}
	}
	now := f.tick()
	u := &db.User{ID: uuid.New(), Name: name, Email: email, Role: role, CreatedAt: now, UpdatedAt: now}
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	u, err := f.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (f *fakeStore) UpdateUserName(_ context.Context, id uuid.UUID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return notFound("user " + id.String())
	}
	u.Name = name
	u.UpdatedAt = f.tick()
	return nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return notFound("user " + id.String())
	}
	u.PasswordHash = passwordHash
	u.PasswordSet = true
	u.UpdatedAt = f.tick()
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return notFound("user " + id.String())
	}
	delete(f.users, id)
	delete(f.candidates, id)
	delete(f.employers, id)
	return nil
}

// -----------------------------------------------------------------------------
// Profiles
// -----------------------------------------------------------------------------

func (f *fakeStore) GetCandidateProfile(_ context.Context, userID uuid.UUID) (*db.CandidateProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.candidates[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Skills = slices.Clone(p.Skills)
	return &cp, nil
}

func (f *fakeStore) UpsertCandidateProfile(_ context.Context, p *db.CandidateProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	cp.Skills = slices.Clone(p.Skills)
	if existing, ok := f.candidates[p.UserID]; ok {
		cp.ResumeKey, cp.ResumeURL = existing.ResumeKey, existing.ResumeURL
	}
	cp.UpdatedAt = f.tick()
	f.candidates[p.UserID] = &cp
	return nil
}

func (f *fakeStore) SetCandidateResume(_ context.Context, userID uuid.UUID, key, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.candidates[userID]
	if !ok {
		p = &db.CandidateProfile{UserID: userID}
		f.candidates[userID] = p
	}
	p.ResumeKey, p.ResumeURL = key, url
	p.UpdatedAt = f.tick()
	return nil
}

func (f *fakeStore) GetEmployerProfile(_ context.Context, userID uuid.UUID) (*db.EmployerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.employers[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) UpsertEmployerProfile(_ context.Context, p *db.EmployerProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	cp.UpdatedAt = f.tick()
	f.employers[p.UserID] = &cp
	return nil
}

// -----------------------------------------------------------------------------
// Companies
// -----------------------------------------------------------------------------

func (f *fakeStore) CreateCompany(_ context.Context, c *db.Company) (*db.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	cp.ID = uuid.New()
	cp.NameNormalized = db.NormalizeName(c.Name)
	cp.CreatedAt = f.tick()
	cp.UpdatedAt = cp.CreatedAt
	f.companies[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) GetCompanyByID(_ context.Context, id uuid.UUID) (*db.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) UpdateCompany(_ context.Context, c *db.Company) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.companies[c.ID]
	if !ok {
		return notFound("company " + c.ID.String())
	}
	cp := *c
	cp.LogoURL = existing.LogoURL
	cp.NameNormalized = db.NormalizeName(c.Name)
	cp.UpdatedAt = f.tick()
	f.companies[c.ID] = &cp
	return nil
}

func (f *fakeStore) SetCompanyLogo(_ context.Context, id uuid.UUID, logoURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[id]
	if !ok {
		return notFound("company " + id.String())
	}
	c.LogoURL = logoURL
	c.UpdatedAt = f.tick()
	return nil
}

// -----------------------------------------------------------------------------
// Jobs
// -----------------------------------------------------------------------------

// withCompany copies a job and fills the joined company columns
func (f *fakeStore) withCompany(j *db.Job) db.Job {
	out := *j
	out.Skills = slices.Clone(j.Skills)
	if c, ok := f.companies[j.CompanyID]; ok {
		out.CompanyName = c.Name
		out.CompanyLogo = c.LogoURL
	}
	return out
}

// newestFirst sorts jobs by creation time, newest first
func newestFirst(jobs []db.Job) {
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].CreatedAt.After(jobs[b].CreatedAt) })
}

func (f *fakeStore) CreateJob(_ context.Context, j *db.Job) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.companies[j.CompanyID]; !ok {
		return nil, fmt.Errorf("company %s does not exist", j.CompanyID)
	}
	cp := *j
	cp.ID = uuid.New()
	cp.Skills = slices.Clone(j.Skills)
	if cp.Status == "" {
		cp.Status = db.JobStatusOpen
	}
	cp.CreatedAt = f.tick()
	cp.UpdatedAt = cp.CreatedAt
	f.jobs[cp.ID] = &cp
	out := f.withCompany(&cp)
	return &out, nil
}

func (f *fakeStore) GetJobByID(_ context.Context, id uuid.UUID) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	out := f.withCompany(j)
	return &out, nil
}

func (f *fakeStore) UpdateJob(_ context.Context, j *db.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.jobs[j.ID]
	if !ok {
		return notFound("job " + j.ID.String())
	}
	existing.Title = j.Title
	existing.Description = j.Description
	existing.Location = j.Location
	existing.EmploymentType = j.EmploymentType
	existing.WorkMode = j.WorkMode
	existing.ExperienceLevel = j.ExperienceLevel
	existing.Skills = slices.Clone(j.Skills)
	existing.SalaryMin = j.SalaryMin
	existing.SalaryMax = j.SalaryMax
	existing.SalaryCurrency = j.SalaryCurrency
	existing.UpdatedAt = f.tick()
	return nil
}

func (f *fakeStore) SetJobStatus(_ context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return notFound("job " + id.String())
	}
	j.Status = status
	j.UpdatedAt = f.tick()
	return nil
}

func (f *fakeStore) DeleteJob(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[id]; !ok {
		return notFound("job " + id.String())
	}
	delete(f.jobs, id)
	for appID, a := range f.applications {
		if a.JobID == id {
			delete(f.applications, appID)
		}
	}
	for user, ids := range f.saved {
		f.saved[user] = slices.DeleteFunc(ids, func(j uuid.UUID) bool { return j == id })
	}
	return nil
}

// matches mirrors the WHERE clause built for ListJobs
func (f *fakeStore) matches(j *db.Job, filters db.JobFilters) bool {
	if filters.Status != "" && j.Status != filters.Status {
		return false
	}
	if filters.Query != "" {
		q := strings.ToLower(filters.Query)
		company := ""
		if c, ok := f.companies[j.CompanyID]; ok {
			company = c.Name
		}
		if !strings.Contains(strings.ToLower(j.Title), q) &&
			!strings.Contains(strings.ToLower(j.Description), q) &&
			!strings.Contains(strings.ToLower(company), q) &&
			!slices.Contains(j.Skills, q) {
			return false
		}
	}
	if filters.Location != "" && !strings.Contains(strings.ToLower(j.Location), strings.ToLower(filters.Location)) {
		return false
	}
	if filters.EmploymentType != "" && j.EmploymentType != filters.EmploymentType {
		return false
	}
	if filters.WorkMode != "" && j.WorkMode != filters.WorkMode {
		return false
	}
	if filters.CompanyID != nil && j.CompanyID != *filters.CompanyID {
		return false
	}
	if filters.EmployerID != nil && j.EmployerID != *filters.EmployerID {
		return false
	}
	if filters.MinSalary > 0 {
		top := j.SalaryMax
		if top == nil {
			top = j.SalaryMin
		}
		if top == nil || *top < filters.MinSalary {
			return false
		}
	}
	return true
}

func (f *fakeStore) ListJobs(_ context.Context, filters db.JobFilters) ([]db.Job, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	filters = db.NormalizeJobFilters(filters)

	all := []db.Job{}
	for _, j := range f.jobs {
		if f.matches(j, filters) {
			all = append(all, f.withCompany(j))
		}
	}
	newestFirst(all)

	total := len(all)
	start := min(filters.Offset, total)
	end := min(start+filters.Limit, total)
	return all[start:end], total, nil
}

func (f *fakeStore) ListJobsByEmployer(_ context.Context, employerID uuid.UUID) ([]db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	jobs := []db.Job{}
	for _, j := range f.jobs {
		if j.EmployerID == employerID {
			jobs = append(jobs, f.withCompany(j))
		}
	}
	newestFirst(jobs)
	return jobs, nil
}

// -----------------------------------------------------------------------------
// Applications
// -----------------------------------------------------------------------------

// decorated copies an application and fills the joined columns
func (f *fakeStore) decorated(a *db.Application) db.Application {
	out := *a
	if j, ok := f.jobs[a.JobID]; ok {
		out.JobTitle = j.Title
		if c, ok := f.companies[j.CompanyID]; ok {
			out.CompanyName = c.Name
		}
	}
	if u, ok := f.users[a.CandidateID]; ok {
		out.CandidateName = u.Name
		out.CandidateEmail = u.Email
	}
	return out
}

func (f *fakeStore) sortedApplications(keep func(*db.Application) bool) []db.Application {
	apps := []db.Application{}
	for _, a := range f.applications {
		if keep(a) {
			apps = append(apps, f.decorated(a))
		}
	}
	sort.Slice(apps, func(i, k int) bool { return apps[i].CreatedAt.After(apps[k].CreatedAt) })
	return apps
}

func (f *fakeStore) CreateApplication(_ context.Context, a *db.Application) (*db.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.applications {
		if existing.JobID == a.JobID && existing.CandidateID == a.CandidateID {
			return nil, fmt.Errorf("application for job %s: %w", a.JobID, db.ErrDuplicate)
		}
	}
	cp := *a
	cp.ID = uuid.New()
	if cp.Status == "" {
		cp.Status = "applied"
	}
	cp.CreatedAt = f.tick()
	cp.UpdatedAt = cp.CreatedAt
	f.applications[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) GetApplicationByID(_ context.Context, id uuid.UUID) (*db.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.applications[id]
	if !ok {
		return nil, nil
	}
	out := f.decorated(a)
	return &out, nil
}

func (f *fakeStore) ListApplicationsByCandidate(_ context.Context, candidateID uuid.UUID) ([]db.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedApplications(func(a *db.Application) bool { return a.CandidateID == candidateID }), nil
}

func (f *fakeStore) ListApplicationsByJob(_ context.Context, jobID uuid.UUID) ([]db.Application, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedApplications(func(a *db.Application) bool { return a.JobID == jobID }), nil
}

func (f *fakeStore) UpdateApplicationStatus(_ context.Context, id uuid.UUID, from, to, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.applications[id]
	if !ok || a.Status != from {
		return notFound("application " + id.String() + " in status " + from)
	}
	a.Status = to
	if note != "" {
		a.Note = note
	}
	a.UpdatedAt = f.tick()
	return nil
}

func (f *fakeStore) CountApplicationsByCandidate(_ context.Context, candidateID uuid.UUID) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, a := range f.applications {
		if a.CandidateID == candidateID {
			counts[a.Status]++
		}
	}
	return counts, nil
}

func (f *fakeStore) CountApplicationsByEmployer(_ context.Context, employerID uuid.UUID) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, a := range f.applications {
		if j, ok := f.jobs[a.JobID]; ok && j.EmployerID == employerID {
			counts[a.Status]++
		}
	}
	return counts, nil
}

// -----------------------------------------------------------------------------
// Notifications, saved jobs, feedback
// -----------------------------------------------------------------------------

func (f *fakeStore) CreateNotification(_ context.Context, n *db.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = f.tick()
	cp := *n
	f.notifications[n.ID] = &cp
	return nil
}

func (f *fakeStore) ListNotifications(_ context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]db.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notificationLimit = limit
	list := []db.Notification{}
	for _, n := range f.notifications {
		if n.UserID != userID || (unreadOnly && n.ReadAt != nil) {
			continue
		}
		list = append(list, *n)
	}
	sort.Slice(list, func(i, k int) bool { return list[i].CreatedAt.After(list[k].CreatedAt) })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeStore) MarkNotificationRead(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok || n.UserID != userID {
		return notFound("notification " + id.String())
	}
	if n.ReadAt == nil {
		now := f.tick()
		n.ReadAt = &now
	}
	return nil
}

func (f *fakeStore) MarkAllNotificationsRead(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var changed int64
	now := f.tick()
	for _, n := range f.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &now
			changed++
		}
	}
	return changed, nil
}

func (f *fakeStore) CountUnreadNotifications(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) SaveJob(_ context.Context, userID, jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !slices.Contains(f.saved[userID], jobID) {
		f.saved[userID] = append(f.saved[userID], jobID)
	}
	return nil
}

func (f *fakeStore) UnsaveJob(_ context.Context, userID, jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.saved[userID]
	i := slices.Index(ids, jobID)
	if i < 0 {
		return notFound("saved job " + jobID.String())
	}
	f.saved[userID] = slices.Delete(ids, i, i+1)
	return nil
}

func (f *fakeStore) ListSavedJobs(_ context.Context, userID uuid.UUID) ([]db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	jobs := []db.Job{}
	ids := f.saved[userID]
	// Most recently saved first
	for i := len(ids) - 1; i >= 0; i-- {
		if j, ok := f.jobs[ids[i]]; ok {
			jobs = append(jobs, f.withCompany(j))
		}
	}
	return jobs, nil
}

func (f *fakeStore) CountSavedJobs(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved[userID]), nil
}

func (f *fakeStore) CreateFeedback(_ context.Context, fb *db.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fb.ID = uuid.New()
	fb.CreatedAt = f.tick()
	f.feedback = append(f.feedback, *fb)
	return nil
}

func (f *fakeStore) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeStore) Close() {}

// notificationsFor returns the notifications of a user, oldest first
func (f *fakeStore) notificationsFor(userID uuid.UUID) []db.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []db.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			list = append(list, *n)
		}
	}
	sort.Slice(list, func(i, k int) bool { return list[i].CreatedAt.Before(list[k].CreatedAt) })
	return list
}
