package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Candidate Profile Methods
// -----------------------------------------------------------------------------

// GetCandidateProfile retrieves the candidate profile of a user, or nil if
// the user has not filled one in yet.
func (db *DB) GetCandidateProfile(ctx context.Context, userID uuid.UUID) (*CandidateProfile, error) {
	var p CandidateProfile
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, headline, bio, location, phone, website, skills, experience_years,
		        resume_key, resume_url, updated_at
		 FROM candidate_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.Headline, &p.Bio, &p.Location, &p.Phone, &p.Website, &p.Skills,
		&p.ExperienceYears, &p.ResumeKey, &p.ResumeURL, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate profile: %w", err)
	}
	return &p, nil
}

// UpsertCandidateProfile writes the editable profile fields. The resume is
// managed separately by SetCandidateResume and is left untouched.
func (db *DB) UpsertCandidateProfile(ctx context.Context, p *CandidateProfile) error {
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO candidate_profiles (user_id, headline, bio, location, phone, website, skills, experience_years)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id) DO UPDATE SET
		   headline = $2, bio = $3, location = $4, phone = $5, website = $6,
		   skills = $7, experience_years = $8, updated_at = NOW()`,
		p.UserID, p.Headline, p.Bio, p.Location, p.Phone, p.Website, skills, p.ExperienceYears,
	)
	if err != nil {
		return fmt.Errorf("failed to save candidate profile: %w", err)
	}
	return nil
}

// SetCandidateResume records the uploaded resume object for a user,
// creating an empty profile if needed.
func (db *DB) SetCandidateResume(ctx context.Context, userID uuid.UUID, key, url string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO candidate_profiles (user_id, resume_key, resume_url)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET resume_key = $2, resume_url = $3, updated_at = NOW()`,
		userID, key, url,
	)
	if err != nil {
		return fmt.Errorf("failed to save resume: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Employer Profile Methods
// -----------------------------------------------------------------------------

// GetEmployerProfile retrieves the employer profile of a user, or nil.
func (db *DB) GetEmployerProfile(ctx context.Context, userID uuid.UUID) (*EmployerProfile, error) {
	var p EmployerProfile
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, company_id, position, phone, updated_at
		 FROM employer_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.CompanyID, &p.Position, &p.Phone, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employer profile: %w", err)
	}
	return &p, nil
}

// UpsertEmployerProfile writes all employer profile fields.
func (db *DB) UpsertEmployerProfile(ctx context.Context, p *EmployerProfile) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO employer_profiles (user_id, company_id, position, phone)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		   company_id = $2, position = $3, phone = $4, updated_at = NOW()`,
		p.UserID, p.CompanyID, p.Position, p.Phone,
	)
	if err != nil {
		return fmt.Errorf("failed to save employer profile: %w", err)
	}
	return nil
}
