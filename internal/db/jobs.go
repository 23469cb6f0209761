package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Pagination bounds for job listings
const (
	DefaultJobLimit = 20
	MaxJobLimit     = 100
)

const jobColumns = `j.id, j.company_id, j.employer_id, j.title, j.description, j.location,
	j.employment_type, j.work_mode, j.experience_level, j.skills, j.salary_min, j.salary_max,
	j.salary_currency, j.status, j.created_at, j.updated_at, c.name, c.logo_url`

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var j Job
	if err := row.Scan(&j.ID, &j.CompanyID, &j.EmployerID, &j.Title, &j.Description, &j.Location,
		&j.EmploymentType, &j.WorkMode, &j.ExperienceLevel, &j.Skills, &j.SalaryMin, &j.SalaryMax,
		&j.SalaryCurrency, &j.Status, &j.CreatedAt, &j.UpdatedAt, &j.CompanyName, &j.CompanyLogo); err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJob inserts a job posting and returns it with generated fields set
func (db *DB) CreateJob(ctx context.Context, j *Job) (*Job, error) {
	skills := j.Skills
	if skills == nil {
		skills = []string{}
	}
	status := j.Status
	if status == "" {
		status = JobStatusOpen
	}

	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (company_id, employer_id, title, description, location, employment_type,
		                   work_mode, experience_level, skills, salary_min, salary_max, salary_currency, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id`,
		j.CompanyID, j.EmployerID, j.Title, j.Description, j.Location, j.EmploymentType,
		j.WorkMode, j.ExperienceLevel, skills, j.SalaryMin, j.SalaryMax, j.SalaryCurrency, status,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return db.GetJobByID(ctx, id)
}

// GetJobByID retrieves a job with its company name and logo
func (db *DB) GetJobByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	j, err := scanJob(db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+`
		 FROM jobs j JOIN companies c ON c.id = j.company_id
		 WHERE j.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

// UpdateJob writes the editable job fields. Status is changed by SetJobStatus.
func (db *DB) UpdateJob(ctx context.Context, j *Job) error {
	skills := j.Skills
	if skills == nil {
		skills = []string{}
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET title = $1, description = $2, location = $3, employment_type = $4,
		        work_mode = $5, experience_level = $6, skills = $7, salary_min = $8, salary_max = $9,
		        salary_currency = $10, updated_at = NOW()
		 WHERE id = $11`,
		j.Title, j.Description, j.Location, j.EmploymentType, j.WorkMode, j.ExperienceLevel,
		skills, j.SalaryMin, j.SalaryMax, j.SalaryCurrency, j.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return expectOne(tag, "job "+j.ID.String())
}

// SetJobStatus opens or closes a job
func (db *DB) SetJobStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to set job status: %w", err)
	}
	return expectOne(tag, "job "+id.String())
}

// DeleteJob removes a job and its applications (via cascade)
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return expectOne(tag, "job "+id.String())
}

// NormalizeJobFilters clamps pagination to the allowed range.
func NormalizeJobFilters(f JobFilters) JobFilters {
	f.Query = strings.TrimSpace(f.Query)
	f.Location = strings.TrimSpace(f.Location)
	if f.Limit <= 0 {
		f.Limit = DefaultJobLimit
	}
	if f.Limit > MaxJobLimit {
		f.Limit = MaxJobLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// buildJobWhere renders the WHERE clause and its arguments for JobFilters.
func buildJobWhere(f JobFilters) (string, []any) {
	var conditions []string
	var args []any
	argIndex := 1

	if f.Status != "" {
		conditions = append(conditions, fmt.Sprintf("j.status = $%d", argIndex))
		args = append(args, f.Status)
		argIndex++
	}
	if f.Query != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(j.title ILIKE $%d OR j.description ILIKE $%d OR c.name ILIKE $%d OR $%d = ANY(j.skills))",
			argIndex, argIndex, argIndex, argIndex+1))
		args = append(args, "%"+f.Query+"%", strings.ToLower(f.Query))
		argIndex += 2
	}
	if f.Location != "" {
		conditions = append(conditions, fmt.Sprintf("j.location ILIKE $%d", argIndex))
		args = append(args, "%"+f.Location+"%")
		argIndex++
	}
	if f.EmploymentType != "" {
		conditions = append(conditions, fmt.Sprintf("j.employment_type = $%d", argIndex))
		args = append(args, f.EmploymentType)
		argIndex++
	}
	if f.WorkMode != "" {
		conditions = append(conditions, fmt.Sprintf("j.work_mode = $%d", argIndex))
		args = append(args, f.WorkMode)
		argIndex++
	}
	if f.CompanyID != nil {
		conditions = append(conditions, fmt.Sprintf("j.company_id = $%d", argIndex))
		args = append(args, *f.CompanyID)
		argIndex++
	}
	if f.EmployerID != nil {
		conditions = append(conditions, fmt.Sprintf("j.employer_id = $%d", argIndex))
		args = append(args, *f.EmployerID)
		argIndex++
	}
	if f.MinSalary > 0 {
		conditions = append(conditions, fmt.Sprintf("COALESCE(j.salary_max, j.salary_min) >= $%d", argIndex))
		args = append(args, f.MinSalary)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// ListJobs lists jobs matching the filters, newest first, and returns the
// total number of matches ignoring pagination.
func (db *DB) ListJobs(ctx context.Context, filters JobFilters) ([]Job, int, error) {
	filters = NormalizeJobFilters(filters)
	whereClause, args := buildJobWhere(filters)

	var total int
	countQuery := `SELECT COUNT(*) FROM jobs j JOIN companies c ON c.id = j.company_id ` + whereClause
	if err := db.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	argIndex := len(args) + 1
	args = append(args, filters.Limit, filters.Offset)
	query := fmt.Sprintf(
		`SELECT %s
		 FROM jobs j JOIN companies c ON c.id = j.company_id
		 %s
		 ORDER BY j.created_at DESC
		 LIMIT $%d OFFSET $%d`,
		jobColumns, whereClause, argIndex, argIndex+1,
	)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, total, nil
}

// ListJobsByEmployer returns every job posted by an employer, newest first
func (db *DB) ListJobsByEmployer(ctx context.Context, employerID uuid.UUID) ([]Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+`
		 FROM jobs j JOIN companies c ON c.id = j.company_id
		 WHERE j.employer_id = $1
		 ORDER BY j.created_at DESC`,
		employerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employer jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}
