package applicant

import (
	"time"

	"github.com/hiretrack/hiretrack/internal/types"
)

// Record is one tracked job application as seen by HR
type Record struct {
	ID                int64                   `json:"id"`
	ApplicationID     int64                   `json:"application_id"`
	EmployeeName      string                  `json:"employee_name"`
	EmployeeEmail     string                  `json:"employee_email"`
	Position          string                  `json:"position"`
	Department        string                  `json:"department"`
	AppliedAt         *time.Time              `json:"applied_at,omitempty"`
	StartDate         *time.Time              `json:"start_date,omitempty"`
	ApplicationStatus types.ApplicationStatus `json:"application_status"`
	OnboardingStatus  types.OnboardingStatus  `json:"onboarding_status"`
	ResumePath        string                  `json:"resume_path,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// HasResume reports whether the backend holds a resume for this application
func (r *Record) HasResume() bool {
	return r.ResumePath != ""
}

// Clone returns a deep copy so callers can't alias collection internals
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.AppliedAt != nil {
		t := *r.AppliedAt
		c.AppliedAt = &t
	}
	if r.StartDate != nil {
		t := *r.StartDate
		c.StartDate = &t
	}
	return &c
}

// Counts holds one counter per ApplicationStatus plus the total.
// Total always equals the sum of ByStatus.
type Counts struct {
	Total    int                             `json:"total"`
	ByStatus map[types.ApplicationStatus]int `json:"by_status"`
}

// NewCounts returns zeroed counters for every status
func NewCounts() Counts {
	c := Counts{ByStatus: make(map[types.ApplicationStatus]int, len(types.ApplicationStatuses))}
	for _, s := range types.ApplicationStatuses {
		c.ByStatus[s] = 0
	}
	return c
}

// CountRecords computes the aggregate counters of a record set
func CountRecords(records []*Record) Counts {
	c := NewCounts()
	for _, r := range records {
		c.ByStatus[r.ApplicationStatus]++
		c.Total++
	}
	return c
}
