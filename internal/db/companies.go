package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Company Methods
// -----------------------------------------------------------------------------

const companyColumns = `id, owner_id, name, name_normalized, website, logo_url, industry, size,
	location, description, created_at, updated_at`

func scanCompany(row interface{ Scan(...any) error }) (*Company, error) {
	var c Company
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.NameNormalized, &c.Website, &c.LogoURL,
		&c.Industry, &c.Size, &c.Location, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCompany inserts a company owned by c.OwnerID
func (db *DB) CreateCompany(ctx context.Context, c *Company) (*Company, error) {
	name := strings.TrimSpace(c.Name)
	normalized := NormalizeName(name)
	if normalized == "" {
		return nil, fmt.Errorf("company name cannot be empty")
	}

	created, err := scanCompany(db.pool.QueryRow(ctx,
		`INSERT INTO companies (owner_id, name, name_normalized, website, industry, size, location, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+companyColumns,
		c.OwnerID, name, normalized, c.Website, c.Industry, c.Size, c.Location, c.Description,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return created, nil
}

// GetCompanyByID retrieves a company by its UUID
func (db *DB) GetCompanyByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	c, err := scanCompany(db.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return c, nil
}

// UpdateCompany writes the editable company fields
func (db *DB) UpdateCompany(ctx context.Context, c *Company) error {
	name := strings.TrimSpace(c.Name)
	tag, err := db.pool.Exec(ctx,
		`UPDATE companies SET name = $1, name_normalized = $2, website = $3, industry = $4,
		        size = $5, location = $6, description = $7, updated_at = NOW()
		 WHERE id = $8`,
		name, NormalizeName(name), c.Website, c.Industry, c.Size, c.Location, c.Description, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	return expectOne(tag, "company "+c.ID.String())
}

// SetCompanyLogo stores the public URL of an uploaded logo
func (db *DB) SetCompanyLogo(ctx context.Context, id uuid.UUID, logoURL string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE companies SET logo_url = $1, updated_at = NOW() WHERE id = $2`, logoURL, id)
	if err != nil {
		return fmt.Errorf("failed to update company logo: %w", err)
	}
	return expectOne(tag, "company "+id.String())
}
