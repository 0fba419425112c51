package notification

import (
	"time"

	"github.com/hiretrack/hiretrack/internal/types"
)

// Interview holds the parameters of one scheduled interview
type Interview struct {
	ApplicationID int64               `json:"application_id"`
	Date          string              `json:"interview_date"`
	Time          string              `json:"interview_time"`
	Type          types.InterviewType `json:"interview_type"`
	Venue         string              `json:"venue,omitempty"`
	MeetingLink   string              `json:"meeting_link,omitempty"`
	Interviewer   string              `json:"interviewer"`
	Notes         string              `json:"notes,omitempty"`
}

// Location returns the venue or meeting link depending on the interview type
func (i Interview) Location() string {
	if i.Type == types.InterviewTypeOnline {
		return i.MeetingLink
	}
	return i.Venue
}

// Notification is an applicant facing message in the local feed.
// Interview notifications carry an immutable snapshot of what was announced
// and reference the canonical InterviewDetail through InterviewKey.
type Notification struct {
	ID             int64                  `json:"id"`
	Type           types.NotificationType `json:"type"`
	ApplicantEmail string                 `json:"applicant_email"`
	ApplicantName  string                 `json:"applicant_name"`
	Position       string                 `json:"position"`
	Department     string                 `json:"department"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	// Status is set for status_update notifications
	Status types.ApplicationStatus `json:"status,omitempty"`
	// InterviewKey and Interview are set for interview_scheduled notifications
	InterviewKey string     `json:"interview_key,omitempty"`
	Interview    *Interview `json:"interview,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	Read         bool       `json:"read"`
}

// InterviewDetail is the canonical description of an applicant's scheduled
// interview. There is at most one per applicant email.
type InterviewDetail struct {
	Interview
	ApplicantEmail string                      `json:"applicant_email"`
	ApplicantName  string                      `json:"applicant_name"`
	Position       string                      `json:"position"`
	Department     string                      `json:"department"`
	Status         types.InterviewDetailStatus `json:"status"`
	ScheduledAt    time.Time                   `json:"scheduled_at"`
}

// Key is the dedup key of an interview detail
func (d *InterviewDetail) Key() string {
	return KeyFor(d.ApplicantEmail)
}
