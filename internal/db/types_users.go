package db

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleCandidate = "candidate"
	RoleEmployer  = "employer"
)

// User represents an account on the board
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	PasswordSet  bool      `json:"password_set" db:"password_set"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsCandidate reports whether the user browses and applies to jobs.
func (u *User) IsCandidate() bool {
	return u != nil && u.Role == RoleCandidate
}

// IsEmployer reports whether the user posts jobs.
func (u *User) IsEmployer() bool {
	return u != nil && u.Role == RoleEmployer
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleCandidate || role == RoleEmployer
}

// CandidateProfile holds the job-seeker side of a user
type CandidateProfile struct {
	UserID          uuid.UUID `json:"user_id"`
	Headline        string    `json:"headline"`
	Bio             string    `json:"bio"`
	Location        string    `json:"location"`
	Phone           string    `json:"phone,omitempty"`
	Website         string    `json:"website,omitempty"`
	Skills          []string  `json:"skills"`
	ExperienceYears *int      `json:"experience_years,omitempty"`
	ResumeKey       string    `json:"-"`
	ResumeURL       string    `json:"resume_url,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EmployerProfile holds the hiring side of a user
type EmployerProfile struct {
	UserID    uuid.UUID  `json:"user_id"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
	Position  string     `json:"position"`
	Phone     string     `json:"phone,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}
