package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Application Methods
// -----------------------------------------------------------------------------

const applicationColumns = `a.id, a.job_id, a.candidate_id, a.cover_letter, a.resume_url, a.status,
	a.note, a.created_at, a.updated_at`

func scanApplication(row interface{ Scan(...any) error }, extra ...any) (*Application, error) {
	var a Application
	dest := []any{&a.ID, &a.JobID, &a.CandidateID, &a.CoverLetter, &a.ResumeURL, &a.Status,
		&a.Note, &a.CreatedAt, &a.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateApplication inserts an application. A second application by the same
// candidate to the same job returns ErrDuplicate.
func (db *DB) CreateApplication(ctx context.Context, a *Application) (*Application, error) {
	status := a.Status
	if status == "" {
		status = "applied"
	}
	created, err := scanApplication(db.pool.QueryRow(ctx,
		`INSERT INTO applications AS a (job_id, candidate_id, cover_letter, resume_url, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+applicationColumns,
		a.JobID, a.CandidateID, a.CoverLetter, a.ResumeURL, status,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("application for job %s: %w", a.JobID, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return created, nil
}

// GetApplicationByID retrieves an application with its job title and
// candidate name filled in.
func (db *DB) GetApplicationByID(ctx context.Context, id uuid.UUID) (*Application, error) {
	var jobTitle, companyName, candidateName, candidateEmail string
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+`, j.title, c.name, u.name, u.email
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 JOIN companies c ON c.id = j.company_id
		 JOIN users u ON u.id = a.candidate_id
		 WHERE a.id = $1`, id),
		&jobTitle, &companyName, &candidateName, &candidateEmail)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	a.JobTitle, a.CompanyName = jobTitle, companyName
	a.CandidateName, a.CandidateEmail = candidateName, candidateEmail
	return a, nil
}

// ListApplicationsByCandidate returns a candidate's applications, newest first
func (db *DB) ListApplicationsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]Application, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+`, j.title, c.name
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 JOIN companies c ON c.id = j.company_id
		 WHERE a.candidate_id = $1
		 ORDER BY a.created_at DESC`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		var jobTitle, companyName string
		a, err := scanApplication(rows, &jobTitle, &companyName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		a.JobTitle, a.CompanyName = jobTitle, companyName
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// ListApplicationsByJob returns the applicants of a job, oldest first
func (db *DB) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]Application, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+`, u.name, u.email
		 FROM applications a
		 JOIN users u ON u.id = a.candidate_id
		 WHERE a.job_id = $1
		 ORDER BY a.created_at ASC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applicants: %w", err)
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		var name, email string
		a, err := scanApplication(rows, &name, &email)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		a.CandidateName, a.CandidateEmail = name, email
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// UpdateApplicationStatus moves an application from one status to another.
// The update only applies while the stored status still equals from, so two
// concurrent transitions cannot both succeed; the loser gets ErrNotFound.
func (db *DB) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, from, to, note string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE applications
		 SET status = $1, note = CASE WHEN $2 = '' THEN note ELSE $2 END, updated_at = NOW()
		 WHERE id = $3 AND status = $4`,
		to, note, id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	return expectOne(tag, "application "+id.String()+" in status "+from)
}

// CountApplicationsByCandidate returns the number of applications per status
func (db *DB) CountApplicationsByCandidate(ctx context.Context, candidateID uuid.UUID) (map[string]int, error) {
	return db.countByStatus(ctx,
		`SELECT status, COUNT(*) FROM applications WHERE candidate_id = $1 GROUP BY status`,
		candidateID)
}

// CountApplicationsByEmployer returns the number of applications per status
// across every job of an employer.
func (db *DB) CountApplicationsByEmployer(ctx context.Context, employerID uuid.UUID) (map[string]int, error) {
	return db.countByStatus(ctx,
		`SELECT a.status, COUNT(*)
		 FROM applications a JOIN jobs j ON j.id = a.job_id
		 WHERE j.employer_id = $1
		 GROUP BY a.status`,
		employerID)
}

func (db *DB) countByStatus(ctx context.Context, query string, id uuid.UUID) (map[string]int, error) {
	rows, err := db.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
