// Package leads provides domain entities for captured leads.
package leads

import (
	"strings"
	"time"
)

// CompanySizes enumerates the accepted company-size selections.
var CompanySizes = []string{"1-10", "11-50", "51-200", "201-1000", "1000+"}

// Submission holds the contact fields a visitor submits through the capture
// form. Only FullName, WorkEmail, and Company are required.
type Submission struct {
	FullName    string `json:"fullName"`
	WorkEmail   string `json:"workEmail"`
	Company     string `json:"company"`
	JobTitle    string `json:"jobTitle,omitempty"`
	CompanySize string `json:"companySize,omitempty"`
	Phone       string `json:"phone,omitempty"`
	UseCase     string `json:"useCase,omitempty"`
}

// Trim removes surrounding whitespace from every field in place.
func (s *Submission) Trim() {
	s.FullName = strings.TrimSpace(s.FullName)
	s.WorkEmail = strings.TrimSpace(s.WorkEmail)
	s.Company = strings.TrimSpace(s.Company)
	s.JobTitle = strings.TrimSpace(s.JobTitle)
	s.CompanySize = strings.TrimSpace(s.CompanySize)
	s.Phone = strings.TrimSpace(s.Phone)
	s.UseCase = strings.TrimSpace(s.UseCase)
}

// Validate checks the submission and returns field-level errors keyed by the
// JSON field name. An empty map means the submission is valid.
func (s *Submission) Validate() map[string]string {
	errs := make(map[string]string)

	if s.FullName == "" {
		errs["fullName"] = "Full Name is required"
	}
	if s.Company == "" {
		errs["company"] = "Company is required"
	}
	if s.WorkEmail == "" {
		errs["workEmail"] = "Work Email is required"
	} else if !validWorkEmail(s.WorkEmail) {
		errs["workEmail"] = "Please enter a valid work email address"
	}
	if s.CompanySize != "" && !validCompanySize(s.CompanySize) {
		errs["companySize"] = "Company Size must be one of the listed ranges"
	}

	return errs
}

// validWorkEmail requires exactly one @ and a dot somewhere in the domain.
func validWorkEmail(email string) bool {
	if strings.Count(email, "@") != 1 {
		return false
	}
	domain := email[strings.Index(email, "@")+1:]
	return domain != "" && strings.Contains(domain, ".")
}

func validCompanySize(size string) bool {
	for _, s := range CompanySizes {
		if s == size {
			return true
		}
	}
	return false
}

// Record is the persisted outcome of a successful capture, including the
// behavioral metadata the persistence sink expects.
type Record struct {
	ID                   string    `json:"id"`
	CaptureTimestamp     time.Time `json:"captureTimestamp"`
	SessionID            string    `json:"sessionId"`
	FullName             string    `json:"fullName"`
	WorkEmail            string    `json:"workEmail"`
	Company              string    `json:"company"`
	JobTitle             string    `json:"jobTitle,omitempty"`
	CompanySize          string    `json:"companySize,omitempty"`
	Phone                string    `json:"phone,omitempty"`
	UseCase              string    `json:"useCase,omitempty"`
	QualificationScore   int       `json:"qualificationScore"`
	LeadQuality          string    `json:"leadQuality"`
	PagesVisited         string    `json:"pagesVisited"` // joined with ", "
	QuestionsAsked       int       `json:"questionsAsked"`
	TimeToCaptureSeconds int       `json:"timeToCaptureSeconds"`
	ScrollPercentage     int       `json:"scrollPercentage"`
}
