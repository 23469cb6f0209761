package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hirely/hirely/internal/db"
	"github.com/hirely/hirely/internal/hiring"
	"github.com/hirely/hirely/internal/notify"
	"github.com/sirupsen/logrus"
)

// ApplicationView is an application with the statuses the caller may move it to
type ApplicationView struct {
	db.Application
	NextStatuses []string `json:"next_statuses"`
}

// HiringService runs the application lifecycle: applying, reviewing and
// withdrawing, with notifications to the other party
type HiringService struct {
	store    Store
	profiles *ProfileService
	notifier *notify.Dispatcher
	logger   *logrus.Entry
}

// NewHiringService creates a HiringService
func NewHiringService(store Store, profiles *ProfileService, notifier *notify.Dispatcher, logger *logrus.Entry) *HiringService {
	return &HiringService{store: store, profiles: profiles, notifier: notifier, logger: logger}
}

func applicationLink(id uuid.UUID) string {
	return "/applications/" + id.String()
}

// notify delivers content to userID. Delivery problems never fail the
// request that triggered them.
func (h *HiringService) notify(ctx context.Context, userID uuid.UUID, content hiring.Content, link string) {
	if h.notifier == nil {
		return
	}
	if _, err := h.notifier.Notify(ctx, userID, content, link); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"kind":    content.Kind,
		}).Warn("failed to deliver notification")
	}
}

// Apply submits the candidate's application to an open job. The
// candidate's profile must be complete, and the current resume is attached.
func (h *HiringService) Apply(ctx context.Context, candidate *db.User, jobID uuid.UUID, coverLetter string) (*db.Application, error) {
	view, err := h.profiles.RequireComplete(ctx, candidate)
	if err != nil {
		return nil, err
	}

	job, err := h.store.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, &ErrNotFound{Resource: "job"}
	}
	if !job.IsOpen() {
		return nil, &ErrJobClosed{JobID: jobID}
	}

	app := &db.Application{
		JobID:       jobID,
		CandidateID: candidate.ID,
		CoverLetter: strings.TrimSpace(coverLetter),
		Status:      hiring.StatusApplied,
	}
	if view.Candidate != nil {
		app.ResumeURL = view.Candidate.ResumeURL
	}

	created, err := h.store.CreateApplication(ctx, app)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ErrAlreadyApplied{JobID: jobID}
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	created.JobTitle = job.Title
	created.CompanyName = job.CompanyName

	h.logger.WithFields(logrus.Fields{
		"application_id": created.ID,
		"job_id":         jobID,
		"candidate_id":   candidate.ID,
	}).Info("application submitted")

	h.notify(ctx, job.EmployerID, hiring.NotificationFor(hiring.Event{
		Type:          hiring.EventReceived,
		JobTitle:      job.Title,
		CompanyName:   job.CompanyName,
		CandidateName: candidate.Name,
	}), applicationLink(created.ID))

	return created, nil
}

// authorize loads an application and its job and decides which side user is on
func (h *HiringService) authorize(ctx context.Context, user *db.User, id uuid.UUID) (*db.Application, *db.Job, hiring.Actor, error) {
	app, err := h.store.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to get application: %w", err)
	}
	if app == nil {
		return nil, nil, "", &ErrNotFound{Resource: "application"}
	}
	job, err := h.store.GetJobByID(ctx, app.JobID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, nil, "", &ErrNotFound{Resource: "job"}
	}

	switch user.ID {
	case app.CandidateID:
		return app, job, hiring.ActorCandidate, nil
	case job.EmployerID:
		return app, job, hiring.ActorEmployer, nil
	}
	return nil, nil, "", &ErrForbidden{Reason: "not a party to this application"}
}

// Get returns an application visible to user: its candidate or the owner
// of its job
func (h *HiringService) Get(ctx context.Context, user *db.User, id uuid.UUID) (*ApplicationView, error) {
	app, _, actor, err := h.authorize(ctx, user, id)
	if err != nil {
		return nil, err
	}
	return &ApplicationView{Application: *app, NextStatuses: hiring.NextStatuses(actor, app.Status)}, nil
}

// ListForCandidate returns the applications of a candidate
func (h *HiringService) ListForCandidate(ctx context.Context, candidate *db.User) ([]db.Application, error) {
	apps, err := h.store.ListApplicationsByCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// ListForJob returns the applicants of a job posted by employer
func (h *HiringService) ListForJob(ctx context.Context, employer *db.User, jobID uuid.UUID) ([]db.Application, error) {
	job, err := h.store.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, &ErrNotFound{Resource: "job"}
	}
	if job.EmployerID != employer.ID {
		return nil, &ErrForbidden{Reason: "not the owner of this job"}
	}

	apps, err := h.store.ListApplicationsByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	return apps, nil
}

// ChangeStatus moves an application to status to. The caller's side decides
// which transitions are allowed: employers advance or reject, candidates
// withdraw. The other party is notified.
func (h *HiringService) ChangeStatus(ctx context.Context, user *db.User, id uuid.UUID, to, note string) (*ApplicationView, error) {
	app, job, actor, err := h.authorize(ctx, user, id)
	if err != nil {
		return nil, err
	}

	to = strings.ToLower(strings.TrimSpace(to))
	if !hiring.ValidStatus(to) {
		return nil, &ErrValidation{Field: "status", Message: "unknown status " + to}
	}

	if err := hiring.CanTransition(actor, app.Status, to); err != nil {
		var te *hiring.TransitionError
		if errors.As(err, &te) {
			return nil, newInvalidTransition(te)
		}
		return nil, err
	}

	// Only employers leave notes
	note = strings.TrimSpace(note)
	if actor == hiring.ActorCandidate {
		note = ""
	}

	from := app.Status
	if err := h.store.UpdateApplicationStatus(ctx, id, from, to, note); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// Another request moved the application first
			return nil, &ErrInvalidTransition{From: from, To: to, err: fmt.Errorf("application is no longer %s", from)}
		}
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"application_id": id,
		"from":           from,
		"to":             to,
		"actor":          actor,
	}).Info("application status changed")

	if actor == hiring.ActorCandidate {
		h.notify(ctx, job.EmployerID, hiring.NotificationFor(hiring.Event{
			Type:          hiring.EventWithdrawn,
			JobTitle:      job.Title,
			CompanyName:   job.CompanyName,
			CandidateName: user.Name,
		}), applicationLink(id))
	} else {
		h.notify(ctx, app.CandidateID, hiring.NotificationFor(hiring.Event{
			Type:        hiring.EventStatusChanged,
			JobTitle:    job.Title,
			CompanyName: job.CompanyName,
			Status:      to,
			Note:        note,
		}), applicationLink(id))
	}

	return h.Get(ctx, user, id)
}
