package types

import "strings"

// StatusSectionAll is the section that shows every record
const StatusSectionAll = "all"

// ApplicantFilter narrows the applicant list. Every populated field is ANDed.
type ApplicantFilter struct {
	// Section is either StatusSectionAll or an ApplicationStatus value
	Section           string            `json:"section,omitempty" form:"section"`
	Search            string            `json:"search,omitempty" form:"search"`
	OnboardingStatus  OnboardingStatus  `json:"onboarding_status,omitempty" form:"onboarding_status"`
	ApplicationStatus ApplicationStatus `json:"application_status,omitempty" form:"application_status"`
}

// NewDefaultApplicantFilter returns a filter that matches everything
func NewDefaultApplicantFilter() *ApplicantFilter {
	return &ApplicantFilter{Section: StatusSectionAll}
}

// Normalize canonicalizes user input so legacy spellings keep working
func (f *ApplicantFilter) Normalize() {
	f.Search = strings.TrimSpace(f.Search)
	if f.Section == "" {
		f.Section = StatusSectionAll
	}
	if f.Section != StatusSectionAll {
		if s, ok := ParseApplicationStatus(f.Section); ok {
			f.Section = string(s)
		}
	}
	if f.ApplicationStatus != "" {
		if s, ok := ParseApplicationStatus(string(f.ApplicationStatus)); ok {
			f.ApplicationStatus = s
		}
	}
}
