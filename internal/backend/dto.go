package backend

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	"github.com/hiretrack/hiretrack/internal/domain/notification"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/types"
)

// FlexInt64 accepts both JSON numbers and numeric strings
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = FlexInt64(n)
	return nil
}

// RecordDTO is the wire shape of one onboarding record. Status and date
// fields stay raw here and are normalized in ToDomain.
type RecordDTO struct {
	ID                FlexInt64 `json:"id"`
	ApplicationID     FlexInt64 `json:"application_id"`
	EmployeeName      string    `json:"employee_name"`
	EmployeeEmail     string    `json:"employee_email"`
	Position          string    `json:"position"`
	Department        string    `json:"department"`
	AppliedAt         string    `json:"applied_at"`
	StartDate         string    `json:"start_date"`
	ApplicationStatus string    `json:"application_status"`
	OnboardingStatus  string    `json:"onboarding_status"`
	ResumePath        string    `json:"resume_path"`
	CreatedAt         string    `json:"created_at"`
	UpdatedAt         string    `json:"updated_at"`
}

// listEnvelope covers backends that wrap collections in {"data": [...]}
type listEnvelope struct {
	Data []RecordDTO `json:"data"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseOptionalTime(raw string) *time.Time {
	t, ok := parseTime(raw)
	if !ok {
		return nil
	}
	return &t
}

// ToDomain converts the wire record into the closed domain model. Unknown
// statuses fall back to their safe defaults and are logged once here so the
// rest of the system never sees them.
func (d RecordDTO) ToDomain(log *logger.Logger) *applicant.Record {
	appStatus, ok := types.ParseApplicationStatus(d.ApplicationStatus)
	if !ok {
		log.Warnw("unrecognized application status, using default",
			"record_id", int64(d.ID), "raw_status", d.ApplicationStatus, "default", appStatus)
	}
	onbStatus, ok := types.ParseOnboardingStatus(d.OnboardingStatus)
	if !ok && d.OnboardingStatus != "" {
		log.Warnw("unrecognized onboarding status, using default",
			"record_id", int64(d.ID), "raw_status", d.OnboardingStatus, "default", onbStatus)
	}

	r := &applicant.Record{
		ID:                int64(d.ID),
		ApplicationID:     int64(d.ApplicationID),
		EmployeeName:      strings.TrimSpace(d.EmployeeName),
		EmployeeEmail:     strings.TrimSpace(d.EmployeeEmail),
		Position:          d.Position,
		Department:        d.Department,
		AppliedAt:         parseOptionalTime(d.AppliedAt),
		StartDate:         parseOptionalTime(d.StartDate),
		ApplicationStatus: appStatus,
		OnboardingStatus:  onbStatus,
		ResumePath:        d.ResumePath,
	}
	if t, ok := parseTime(d.CreatedAt); ok {
		r.CreatedAt = t
	}
	if t, ok := parseTime(d.UpdatedAt); ok {
		r.UpdatedAt = t
	}
	return r
}

type statusRequest struct {
	Status string `json:"status"`
}

// CreateInterviewRequest is the payload of POST /interviews
type CreateInterviewRequest struct {
	ApplicationID int64               `json:"application_id"`
	InterviewDate string              `json:"interview_date"`
	InterviewTime string              `json:"interview_time"`
	InterviewType types.InterviewType `json:"interview_type"`
	Venue         string              `json:"venue,omitempty"`
	MeetingLink   string              `json:"meeting_link,omitempty"`
	Interviewer   string              `json:"interviewer"`
	Notes         string              `json:"notes,omitempty"`
}

// NewCreateInterviewRequest scopes an interview to one application
func NewCreateInterviewRequest(applicationID int64, i notification.Interview) *CreateInterviewRequest {
	req := &CreateInterviewRequest{
		ApplicationID: applicationID,
		InterviewDate: i.Date,
		InterviewTime: i.Time,
		InterviewType: i.Type,
		Interviewer:   i.Interviewer,
		Notes:         i.Notes,
	}
	// only the location matching the interview type is sent
	if i.Type == types.InterviewTypeOnline {
		req.MeetingLink = i.MeetingLink
	} else {
		req.Venue = i.Venue
	}
	return req
}

// InterviewResponse is the created interview as echoed by the backend
type InterviewResponse struct {
	ID            FlexInt64 `json:"id"`
	ApplicationID FlexInt64 `json:"application_id"`
	Status        string    `json:"status"`
}

// ResumeFile is a downloaded resume
type ResumeFile struct {
	ContentType        string
	ContentDisposition string
	Data               []byte
}

// serverError is the error body the backend returns
type serverError struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}
