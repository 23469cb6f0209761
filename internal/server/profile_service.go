package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/hirely/hirely/internal/dashboard"
	"github.com/hirely/hirely/internal/db"
	"github.com/hirely/hirely/internal/profile"
	"github.com/hirely/hirely/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ProfileView is a user together with the profile of their role and its
// completion score
type ProfileView struct {
	User       *types.User          `json:"user"`
	Candidate  *db.CandidateProfile `json:"candidate,omitempty"`
	Employer   *db.EmployerProfile  `json:"employer,omitempty"`
	Company    *db.Company          `json:"company,omitempty"`
	Completion profile.Completion   `json:"completion"`
}

// ProfileService loads and edits profiles and gates actions on completion
type ProfileService struct {
	store  Store
	logger *logrus.Entry
}

// NewProfileService creates a ProfileService
func NewProfileService(store Store, logger *logrus.Entry) *ProfileService {
	return &ProfileService{store: store, logger: logger}
}

// Load returns the profile view of user
func (p *ProfileService) Load(ctx context.Context, user *db.User) (*ProfileView, error) {
	view := &ProfileView{User: convertDBUserToTypesUser(user)}

	switch user.Role {
	case db.RoleCandidate:
		cp, err := p.store.GetCandidateProfile(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load candidate profile: %w", err)
		}
		view.Candidate = cp
		view.Completion = profile.CandidateCompletion(user, cp)

	case db.RoleEmployer:
		ep, err := p.store.GetEmployerProfile(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load employer profile: %w", err)
		}
		view.Employer = ep
		if ep != nil && ep.CompanyID != nil {
			company, err := p.store.GetCompanyByID(ctx, *ep.CompanyID)
			if err != nil {
				return nil, fmt.Errorf("failed to load company: %w", err)
			}
			view.Company = company
		}
		view.Completion = profile.EmployerCompletion(user, ep, view.Company)

	default:
		return nil, fmt.Errorf("user %s has unknown role %q", user.ID, user.Role)
	}
	return view, nil
}

// RequireComplete returns ErrProfileIncomplete unless every required field
// of the user's profile is filled
func (p *ProfileService) RequireComplete(ctx context.Context, user *db.User) (*ProfileView, error) {
	view, err := p.Load(ctx, user)
	if err != nil {
		return nil, err
	}
	if !view.Completion.Complete {
		return nil, &ErrProfileIncomplete{Missing: view.Completion.Missing}
	}
	return view, nil
}

// UpdateCandidate writes the editable candidate fields
func (p *ProfileService) UpdateCandidate(ctx context.Context, user *db.User, req *types.CandidateProfileRequest) (*ProfileView, error) {
	cp := &db.CandidateProfile{
		UserID:          user.ID,
		Headline:        strings.TrimSpace(req.Headline),
		Bio:             strings.TrimSpace(req.Bio),
		Location:        strings.TrimSpace(req.Location),
		Phone:           strings.TrimSpace(req.Phone),
		Website:         strings.TrimSpace(req.Website),
		Skills:          normalizeSkills(req.Skills),
		ExperienceYears: req.ExperienceYears,
	}
	if err := p.store.UpsertCandidateProfile(ctx, cp); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p.Load(ctx, user)
}

// UpdateEmployer writes the editable employer fields. The company link is
// left as it is.
func (p *ProfileService) UpdateEmployer(ctx context.Context, user *db.User, req *types.EmployerProfileRequest) (*ProfileView, error) {
	existing, err := p.store.GetEmployerProfile(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employer profile: %w", err)
	}
	ep := &db.EmployerProfile{
		UserID:   user.ID,
		Position: strings.TrimSpace(req.Position),
		Phone:    strings.TrimSpace(req.Phone),
	}
	if existing != nil {
		ep.CompanyID = existing.CompanyID
	}
	if err := p.store.UpsertEmployerProfile(ctx, ep); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p.Load(ctx, user)
}

// Dashboard gathers the dashboard inputs of user concurrently and builds
// the dashboard of its role
func (p *ProfileService) Dashboard(ctx context.Context, user *db.User) (any, error) {
	g, gctx := errgroup.WithContext(ctx)

	var view *ProfileView
	var unread int
	g.Go(func() error {
		var err error
		view, err = p.Load(gctx, user)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = p.store.CountUnreadNotifications(gctx, user.ID)
		return err
	})

	if user.IsCandidate() {
		var counts map[string]int
		var saved int
		g.Go(func() error {
			var err error
			counts, err = p.store.CountApplicationsByCandidate(gctx, user.ID)
			return err
		})
		g.Go(func() error {
			var err error
			saved, err = p.store.CountSavedJobs(gctx, user.ID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("failed to build dashboard: %w", err)
		}
		return dashboard.Candidate(dashboard.CandidateInput{
			Completion:          view.Completion,
			ApplicationsByState: counts,
			SavedJobs:           saved,
			UnreadNotifications: unread,
		}), nil
	}

	var jobs []db.Job
	var applicants map[string]int
	g.Go(func() error {
		var err error
		jobs, err = p.store.ListJobsByEmployer(gctx, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		applicants, err = p.store.CountApplicationsByEmployer(gctx, user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	open, closed := 0, 0
	for i := range jobs {
		if jobs[i].IsOpen() {
			open++
		} else {
			closed++
		}
	}
	return dashboard.Employer(dashboard.EmployerInput{
		Completion:          view.Completion,
		HasCompany:          view.Company != nil,
		OpenJobs:            open,
		ClosedJobs:          closed,
		ApplicantsByState:   applicants,
		UnreadNotifications: unread,
	}), nil
}

// normalizeSkills trims, lowercases and dedupes skills keeping first-seen order
func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
