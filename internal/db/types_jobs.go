package db

import (
	"time"

	"github.com/google/uuid"
)

// Job statuses
const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

// Job represents a posted position
type Job struct {
	ID              uuid.UUID `json:"id"`
	CompanyID       uuid.UUID `json:"company_id"`
	EmployerID      uuid.UUID `json:"employer_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	EmploymentType  string    `json:"employment_type"` // full-time, part-time, contract, internship, temporary
	WorkMode        string    `json:"work_mode"`       // onsite, remote, hybrid
	ExperienceLevel string    `json:"experience_level,omitempty"`
	Skills          []string  `json:"skills"`
	SalaryMin       *int      `json:"salary_min,omitempty"`
	SalaryMax       *int      `json:"salary_max,omitempty"`
	SalaryCurrency  string    `json:"salary_currency,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Populated by list queries
	CompanyName string `json:"company_name,omitempty"`
	CompanyLogo string `json:"company_logo,omitempty"`
}

// IsOpen reports whether the job accepts applications.
func (j *Job) IsOpen() bool {
	return j != nil && j.Status == JobStatusOpen
}

// JobFilters holds optional filters for listing jobs
type JobFilters struct {
	Query          string     `json:"q,omitempty"`
	Location       string     `json:"location,omitempty"`
	EmploymentType string     `json:"employment_type,omitempty"`
	WorkMode       string     `json:"work_mode,omitempty"`
	CompanyID      *uuid.UUID `json:"company_id,omitempty"`
	EmployerID     *uuid.UUID `json:"employer_id,omitempty"`
	MinSalary      int        `json:"min_salary,omitempty"`
	Status         string     `json:"status,omitempty"`
	Limit          int        `json:"limit"`
	Offset         int        `json:"offset"`
}
