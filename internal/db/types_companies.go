package db

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Company represents an employer organisation
type Company struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Name           string    `json:"name"`
	NameNormalized string    `json:"-"`
	Website        string    `json:"website,omitempty"`
	LogoURL        string    `json:"logo_url,omitempty"`
	Industry       string    `json:"industry,omitempty"`
	Size           string    `json:"size,omitempty"`
	Location       string    `json:"location,omitempty"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// NormalizeName normalizes a company name for matching
// Removes spaces, punctuation, and converts to lowercase
func NormalizeName(name string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "")
}
