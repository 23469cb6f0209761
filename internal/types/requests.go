package types

// CandidateProfileRequest updates the candidate side of the current user
type CandidateProfileRequest struct {
	Headline        string   `json:"headline" validate:"max=200"`
	Bio             string   `json:"bio" validate:"max=5000"`
	Location        string   `json:"location" validate:"max=200"`
	Phone           string   `json:"phone" validate:"max=50"`
	Website         string   `json:"website" validate:"omitempty,url,max=500"`
	Skills          []string `json:"skills" validate:"max=50,dive,required,max=60"`
	ExperienceYears *int     `json:"experience_years" validate:"omitempty,min=0,max=70"`
}

// EmployerProfileRequest updates the employer side of the current user.
// The company link is managed through POST /v1/companies.
type EmployerProfileRequest struct {
	Position string `json:"position" validate:"max=200"`
	Phone    string `json:"phone" validate:"max=50"`
}

// CompanyRequest creates or updates a company
type CompanyRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Website     string `json:"website" validate:"omitempty,url,max=500"`
	Industry    string `json:"industry" validate:"max=100"`
	Size        string `json:"size" validate:"omitempty,oneof=1-10 11-50 51-200 201-500 501-1000 1000+"`
	Location    string `json:"location" validate:"max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// JobRequest creates or updates a job posting
type JobRequest struct {
	Title           string   `json:"title" validate:"required,min=3,max=200"`
	Description     string   `json:"description" validate:"required,max=20000"`
	Location        string   `json:"location" validate:"required,max=200"`
	EmploymentType  string   `json:"employment_type" validate:"required,oneof=full-time part-time contract internship temporary"`
	WorkMode        string   `json:"work_mode" validate:"required,oneof=onsite remote hybrid"`
	ExperienceLevel string   `json:"experience_level" validate:"omitempty,oneof=entry mid senior lead executive"`
	Skills          []string `json:"skills" validate:"max=30,dive,required,max=60"`
	SalaryMin       *int     `json:"salary_min" validate:"omitempty,min=0"`
	SalaryMax       *int     `json:"salary_max" validate:"omitempty,min=0"`
	SalaryCurrency  string   `json:"salary_currency" validate:"omitempty,len=3,uppercase"`
}

// ApplyRequest submits an application to a job
type ApplyRequest struct {
	CoverLetter string `json:"cover_letter" validate:"max=10000"`
}

// StatusUpdateRequest moves an application to a new status
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=2000"`
}

// FeedbackRequest is submitted from the feedback popup
type FeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Message string `json:"message" validate:"max=2000"`
	Page    string `json:"page" validate:"max=500"`
}
