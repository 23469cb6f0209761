package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/hirely/hirely/internal/db"
)

// Store is the persistence the API needs. *db.DB implements it; tests use
// an in-memory fake.
type Store interface {
	// Users
	CreateUser(ctx context.Context, name, email, role string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdateUserName(ctx context.Context, id uuid.UUID, name string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// Profiles
	GetCandidateProfile(ctx context.Context, userID uuid.UUID) (*db.CandidateProfile, error)
	UpsertCandidateProfile(ctx context.Context, p *db.CandidateProfile) error
	SetCandidateResume(ctx context.Context, userID uuid.UUID, key, url string) error
	GetEmployerProfile(ctx context.Context, userID uuid.UUID) (*db.EmployerProfile, error)
	UpsertEmployerProfile(ctx context.Context, p *db.EmployerProfile) error

	// Companies
	CreateCompany(ctx context.Context, c *db.Company) (*db.Company, error)
	GetCompanyByID(ctx context.Context, id uuid.UUID) (*db.Company, error)
	UpdateCompany(ctx context.Context, c *db.Company) error
	SetCompanyLogo(ctx context.Context, id uuid.UUID, logoURL string) error

	// Jobs
	CreateJob(ctx context.Context, j *db.Job) (*db.Job, error)
	GetJobByID(ctx context.Context, id uuid.UUID) (*db.Job, error)
	UpdateJob(ctx context.Context, j *db.Job) error
	SetJobStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteJob(ctx context.Context, id uuid.UUID) error
	ListJobs(ctx context.Context, filters db.JobFilters) ([]db.Job, int, error)
	ListJobsByEmployer(ctx context.Context, employerID uuid.UUID) ([]db.Job, error)

	// Applications
	CreateApplication(ctx context.Context, a *db.Application) (*db.Application, error)
	GetApplicationByID(ctx context.Context, id uuid.UUID) (*db.Application, error)
	ListApplicationsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]db.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]db.Application, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, from, to, note string) error
	CountApplicationsByCandidate(ctx context.Context, candidateID uuid.UUID) (map[string]int, error)
	CountApplicationsByEmployer(ctx context.Context, employerID uuid.UUID) (map[string]int, error)

	// Notifications, saved jobs, feedback
	CreateNotification(ctx context.Context, n *db.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]db.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int, error)
	SaveJob(ctx context.Context, userID, jobID uuid.UUID) error
	UnsaveJob(ctx context.Context, userID, jobID uuid.UUID) error
	ListSavedJobs(ctx context.Context, userID uuid.UUID) ([]db.Job, error)
	CountSavedJobs(ctx context.Context, userID uuid.UUID) (int, error)
	CreateFeedback(ctx context.Context, f *db.Feedback) error

	Ping(ctx context.Context) error
	Close()
}

var _ Store = (*db.DB)(nil)
