// Package profile scores how complete a user's profile is and decides which
// actions a profile unlocks.
package profile

import (
	"strings"

	"github.com/hirely/hirely/internal/db"
)

// Field names reported in Completion.Missing and Completion.Fields
const (
	FieldName               = "name"
	FieldHeadline           = "headline"
	FieldBio                = "bio"
	FieldLocation           = "location"
	FieldPhone              = "phone"
	FieldSkills             = "skills"
	FieldExperienceYears    = "experience_years"
	FieldResume             = "resume"
	FieldPosition           = "position"
	FieldCompany            = "company"
	FieldCompanyDescription = "company_description"
	FieldCompanyWebsite     = "company_website"
	FieldCompanyLogo        = "company_logo"
)

// FieldStatus reports one scored field
type FieldStatus struct {
	Name     string `json:"name"`
	Weight   int    `json:"weight"`
	Required bool   `json:"required"`
	Filled   bool   `json:"filled"`
}

// Completion is the result of scoring a profile
type Completion struct {
	Score    int           `json:"score"`
	Complete bool          `json:"complete"`
	Missing  []string      `json:"missing"`
	Fields   []FieldStatus `json:"fields"`
}

type rule struct {
	name     string
	weight   int
	required bool
	filled   bool
}

func score(rules []rule) Completion {
	c := Completion{Missing: []string{}, Fields: make([]FieldStatus, 0, len(rules))}
	for _, r := range rules {
		c.Fields = append(c.Fields, FieldStatus{Name: r.name, Weight: r.weight, Required: r.required, Filled: r.filled})
		if r.filled {
			c.Score += r.weight
			continue
		}
		if r.required {
			c.Missing = append(c.Missing, r.name)
		}
	}
	c.Complete = len(c.Missing) == 0
	return c
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

func hasSkills(skills []string) bool {
	for _, s := range skills {
		if present(s) {
			return true
		}
	}
	return false
}

// CandidateCompletion scores a candidate. A nil profile scores only the name.
// Weights sum to 100.
func CandidateCompletion(user *db.User, p *db.CandidateProfile) Completion {
	if p == nil {
		p = &db.CandidateProfile{}
	}
	name := user != nil && present(user.Name)

	return score([]rule{
		{FieldName, 10, true, name},
		{FieldHeadline, 15, true, present(p.Headline)},
		{FieldBio, 10, false, present(p.Bio)},
		{FieldLocation, 10, true, present(p.Location)},
		{FieldPhone, 5, false, present(p.Phone)},
		{FieldSkills, 20, true, hasSkills(p.Skills)},
		{FieldExperienceYears, 5, false, p.ExperienceYears != nil},
		{FieldResume, 25, true, present(p.ResumeURL)},
	})
}

// EmployerCompletion scores an employer together with the company their
// profile links to. Weights sum to 100.
func EmployerCompletion(user *db.User, p *db.EmployerProfile, company *db.Company) Completion {
	if p == nil {
		p = &db.EmployerProfile{}
	}
	name := user != nil && present(user.Name)
	linked := p.CompanyID != nil && company != nil && company.ID == *p.CompanyID

	var description, website, logo bool
	if linked {
		description = present(company.Description)
		website = present(company.Website)
		logo = present(company.LogoURL)
	}

	return score([]rule{
		{FieldName, 15, true, name},
		{FieldPosition, 15, true, present(p.Position)},
		{FieldPhone, 10, false, present(p.Phone)},
		{FieldCompany, 30, true, linked},
		{FieldCompanyDescription, 15, false, description},
		{FieldCompanyWebsite, 5, false, website},
		{FieldCompanyLogo, 10, false, logo},
	})
}
