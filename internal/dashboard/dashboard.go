// Package dashboard builds the per-role dashboard state shown after login.
package dashboard

import (
	"github.com/hirely/hirely/internal/hiring"
	"github.com/hirely/hirely/internal/profile"
)

// Action identifiers in NextActions
const (
	ActionCompleteProfile  = "complete_profile"
	ActionUploadResume     = "upload_resume"
	ActionBrowseJobs       = "browse_jobs"
	ActionReviewOffers     = "review_offers"
	ActionCreateCompany    = "create_company"
	ActionPostJob          = "post_job"
	ActionReviewApplicants = "review_applicants"
)

// Action is a suggested next step
type Action struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Missing []string `json:"missing,omitempty"`
	Count   int      `json:"count,omitempty"`
}

// CandidateInput is everything the candidate dashboard is built from
type CandidateInput struct {
	Completion          profile.Completion
	ApplicationsByState map[string]int
	SavedJobs           int
	UnreadNotifications int
}

// CandidateDashboard is the state of a candidate's dashboard
type CandidateDashboard struct {
	Role                string             `json:"role"`
	Completion          profile.Completion `json:"completion"`
	CanApply            bool               `json:"can_apply"`
	Applications        map[string]int     `json:"applications"`
	TotalApplications   int                `json:"total_applications"`
	ActiveApplications  int                `json:"active_applications"`
	SavedJobs           int                `json:"saved_jobs"`
	UnreadNotifications int                `json:"unread_notifications"`
	NextActions         []Action           `json:"next_actions"`
}

// EmployerInput is everything the employer dashboard is built from
type EmployerInput struct {
	Completion          profile.Completion
	HasCompany          bool
	OpenJobs            int
	ClosedJobs          int
	ApplicantsByState   map[string]int
	UnreadNotifications int
}

// EmployerDashboard is the state of an employer's dashboard
type EmployerDashboard struct {
	Role                string             `json:"role"`
	Completion          profile.Completion `json:"completion"`
	HasCompany          bool               `json:"has_company"`
	CanPostJob          bool               `json:"can_post_job"`
	OpenJobs            int                `json:"open_jobs"`
	ClosedJobs          int                `json:"closed_jobs"`
	Applicants          map[string]int     `json:"applicants"`
	TotalApplicants     int                `json:"total_applicants"`
	PendingReview       int                `json:"pending_review"`
	UnreadNotifications int                `json:"unread_notifications"`
	NextActions         []Action           `json:"next_actions"`
}

// countsByStatus fills every known status so clients see zeros
func countsByStatus(in map[string]int) (map[string]int, int, int) {
	out := make(map[string]int, len(hiring.Statuses))
	var total, active int
	for _, s := range hiring.Statuses {
		n := in[s]
		out[s] = n
		total += n
		if hiring.IsActive(s) {
			active += n
		}
	}
	return out, total, active
}

func missingExcept(missing []string, drop string) []string {
	out := make([]string, 0, len(missing))
	for _, m := range missing {
		if m != drop {
			out = append(out, m)
		}
	}
	return out
}

// Candidate builds the candidate dashboard
func Candidate(in CandidateInput) CandidateDashboard {
	apps, total, active := countsByStatus(in.ApplicationsByState)

	d := CandidateDashboard{
		Role:                "candidate",
		Completion:          in.Completion,
		CanApply:            in.Completion.Complete,
		Applications:        apps,
		TotalApplications:   total,
		ActiveApplications:  active,
		SavedJobs:           in.SavedJobs,
		UnreadNotifications: in.UnreadNotifications,
		NextActions:         []Action{},
	}

	// The resume gets its own action, so it is not repeated under complete_profile.
	if rest := missingExcept(in.Completion.Missing, profile.FieldResume); len(rest) > 0 {
		d.NextActions = append(d.NextActions, Action{
			ID:      ActionCompleteProfile,
			Label:   "Complete your profile",
			Missing: rest,
		})
	}
	if !filled(in.Completion, profile.FieldResume) {
		d.NextActions = append(d.NextActions, Action{ID: ActionUploadResume, Label: "Upload your resume"})
	}
	if d.CanApply && active == 0 {
		d.NextActions = append(d.NextActions, Action{ID: ActionBrowseJobs, Label: "Browse open jobs"})
	}
	if n := apps[hiring.StatusOffered]; n > 0 {
		d.NextActions = append(d.NextActions, Action{ID: ActionReviewOffers, Label: "Review your offers", Count: n})
	}
	return d
}

// Employer builds the employer dashboard
func Employer(in EmployerInput) EmployerDashboard {
	apps, total, _ := countsByStatus(in.ApplicantsByState)

	d := EmployerDashboard{
		Role:                "employer",
		Completion:          in.Completion,
		HasCompany:          in.HasCompany,
		CanPostJob:          in.Completion.Complete && in.HasCompany,
		OpenJobs:            in.OpenJobs,
		ClosedJobs:          in.ClosedJobs,
		Applicants:          apps,
		TotalApplicants:     total,
		PendingReview:       apps[hiring.StatusApplied],
		UnreadNotifications: in.UnreadNotifications,
		NextActions:         []Action{},
	}

	if rest := missingExcept(in.Completion.Missing, profile.FieldCompany); len(rest) > 0 {
		d.NextActions = append(d.NextActions, Action{
			ID:      ActionCompleteProfile,
			Label:   "Complete your profile",
			Missing: rest,
		})
	}
	if !in.HasCompany {
		d.NextActions = append(d.NextActions, Action{ID: ActionCreateCompany, Label: "Create your company page"})
	}
	if d.CanPostJob && in.OpenJobs == 0 {
		d.NextActions = append(d.NextActions, Action{ID: ActionPostJob, Label: "Post your first job"})
	}
	if d.PendingReview > 0 {
		d.NextActions = append(d.NextActions, Action{
			ID:    ActionReviewApplicants,
			Label: "Review new applicants",
			Count: d.PendingReview,
		})
	}
	return d
}

func filled(c profile.Completion, field string) bool {
	for _, f := range c.Fields {
		if f.Name == field {
			return f.Filled
		}
	}
	return false
}
