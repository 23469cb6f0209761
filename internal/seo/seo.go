// Package seo builds the meta tags and structured data served for public job
// and company pages.
package seo

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/hirely/hirely/internal/db"
)

const (
	// SiteName is appended to every title
	SiteName = "Hirely"

	// MaxDescriptionRunes bounds meta descriptions
	MaxDescriptionRunes = 160
)

// Tag is a single <meta> element. Exactly one of Name or Property is set.
type Tag struct {
	Name     string `json:"name,omitempty"`
	Property string `json:"property,omitempty"`
	Content  string `json:"content"`
}

// Meta is the head metadata of one public page
type Meta struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Canonical   string         `json:"canonical"`
	Image       string         `json:"image,omitempty"`
	Type        string         `json:"type"`
	JSONLD      map[string]any `json:"json_ld,omitempty"`
}

// ForJob builds metadata for a job page. company may be nil, in which case
// the company name is taken from the job.
func ForJob(job *db.Job, company *db.Company, baseURL string) Meta {
	companyName := job.CompanyName
	logo := job.CompanyLogo
	if company != nil {
		companyName = company.Name
		logo = company.LogoURL
	}

	title := job.Title
	if companyName != "" {
		title += " at " + companyName
	}

	m := Meta{
		Title:       title + " | " + SiteName,
		Description: Description(job.Description),
		Canonical:   canonical(baseURL, "jobs", job.ID.String()),
		Image:       logo,
		Type:        "website",
	}
	m.JSONLD = jobPosting(job, companyName, logo, m)
	return m
}

// ForCompany builds metadata for a company page
func ForCompany(company *db.Company, baseURL string) Meta {
	desc := Description(company.Description)
	if desc == "" {
		desc = fmt.Sprintf("Open positions at %s on %s.", company.Name, SiteName)
	}

	m := Meta{
		Title:       company.Name + " | " + SiteName,
		Description: desc,
		Canonical:   canonical(baseURL, "companies", company.ID.String()),
		Image:       company.LogoURL,
		Type:        "profile",
	}

	org := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     company.Name,
		"url":      m.Canonical,
	}
	if company.Website != "" {
		org["sameAs"] = company.Website
	}
	if company.LogoURL != "" {
		org["logo"] = company.LogoURL
	}
	if desc != "" {
		org["description"] = desc
	}
	m.JSONLD = org
	return m
}

// Description turns HTML or plain text into a single-line summary no longer
// than MaxDescriptionRunes.
func Description(s string) string {
	return truncate(PlainText(s), MaxDescriptionRunes)
}

// PlainText strips markup and collapses whitespace
func PlainText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	text := s
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err == nil {
		doc.Find("script, style, noscript").Remove()
		// Block elements would otherwise run their text together.
		doc.Find("p, br, li, div, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, sel *goquery.Selection) {
			sel.AppendHtml(" ")
		})
		text = doc.Text()
	}
	return strings.Join(strings.Fields(text), " ")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := strings.TrimRight(string(runes[:limit-1]), " ,.;:")
	return cut + "…"
}

func canonical(baseURL, kind, id string) string {
	return strings.TrimRight(baseURL, "/") + "/" + kind + "/" + id
}

var employmentTypes = map[string]string{
	"full-time":  "FULL_TIME",
	"part-time":  "PART_TIME",
	"contract":   "CONTRACTOR",
	"internship": "INTERN",
	"temporary":  "TEMPORARY",
}

func jobPosting(job *db.Job, companyName, logo string, m Meta) map[string]any {
	org := map[string]any{"@type": "Organization", "name": companyName}
	if logo != "" {
		org["logo"] = logo
	}

	ld := map[string]any{
		"@context":           "https://schema.org",
		"@type":              "JobPosting",
		"title":              job.Title,
		"description":        PlainText(job.Description),
		"datePosted":         job.CreatedAt.Format("2006-01-02"),
		"hiringOrganization": org,
		"url":                m.Canonical,
	}
	if t, ok := employmentTypes[strings.ToLower(job.EmploymentType)]; ok {
		ld["employmentType"] = t
	}
	if job.WorkMode == "remote" {
		ld["jobLocationType"] = "TELECOMMUTE"
	}
	if job.Location != "" {
		ld["jobLocation"] = map[string]any{
			"@type": "Place",
			"address": map[string]any{
				"@type":           "PostalAddress",
				"addressLocality": job.Location,
			},
		}
	}
	if job.SalaryMin != nil || job.SalaryMax != nil {
		value := map[string]any{"@type": "QuantitativeValue", "unitText": "YEAR"}
		if job.SalaryMin != nil {
			value["minValue"] = *job.SalaryMin
		}
		if job.SalaryMax != nil {
			value["maxValue"] = *job.SalaryMax
		}
		currency := job.SalaryCurrency
		if currency == "" {
			currency = "USD"
		}
		ld["baseSalary"] = map[string]any{
			"@type":    "MonetaryAmount",
			"currency": currency,
			"value":    value,
		}
	}
	if job.Status == db.JobStatusClosed {
		ld["validThrough"] = job.UpdatedAt.Format("2006-01-02")
	}
	return ld
}

// Tags returns the <meta> elements in render order
func (m Meta) Tags() []Tag {
	tags := []Tag{
		{Name: "description", Content: m.Description},
		{Property: "og:site_name", Content: SiteName},
		{Property: "og:type", Content: m.Type},
		{Property: "og:title", Content: m.Title},
		{Property: "og:description", Content: m.Description},
		{Property: "og:url", Content: m.Canonical},
	}
	if m.Image != "" {
		tags = append(tags, Tag{Property: "og:image", Content: m.Image})
	}

	card := "summary"
	if m.Image != "" {
		card = "summary_large_image"
	}
	tags = append(tags,
		Tag{Name: "twitter:card", Content: card},
		Tag{Name: "twitter:title", Content: m.Title},
		Tag{Name: "twitter:description", Content: m.Description},
	)
	if m.Image != "" {
		tags = append(tags, Tag{Name: "twitter:image", Content: m.Image})
	}
	return tags
}

// HTML renders the head snippet with every value escaped
func (m Meta) HTML() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(m.Title))
	fmt.Fprintf(&b, "<link rel=\"canonical\" href=\"%s\">\n", html.EscapeString(m.Canonical))
	for _, t := range m.Tags() {
		attr, key := "name", t.Name
		if t.Property != "" {
			attr, key = "property", t.Property
		}
		fmt.Fprintf(&b, "<meta %s=\"%s\" content=\"%s\">\n", attr, html.EscapeString(key), html.EscapeString(t.Content))
	}
	if len(m.JSONLD) > 0 {
		// json.Marshal escapes <, > and &, so the payload cannot close the script tag.
		if data, err := json.Marshal(m.JSONLD); err == nil {
			fmt.Fprintf(&b, "<script type=\"application/ld+json\">%s</script>\n", data)
		}
	}
	return b.String()
}
