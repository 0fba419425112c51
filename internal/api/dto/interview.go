package dto

import (
	"strings"

	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	"github.com/hiretrack/hiretrack/internal/domain/notification"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/hiretrack/hiretrack/internal/validator"
)

// InterviewForm is the transient input of a scheduling session. Venue is
// required for in-person interviews and MeetingLink for online ones.
type InterviewForm struct {
	InterviewDate string              `json:"interview_date" validate:"required"`
	InterviewTime string              `json:"interview_time" validate:"required"`
	InterviewType types.InterviewType `json:"interview_type" validate:"required,oneof=in-person online"`
	Venue         string              `json:"venue" validate:"required_if=InterviewType in-person"`
	MeetingLink   string              `json:"meeting_link" validate:"required_if=InterviewType online"`
	Interviewer   string              `json:"interviewer" validate:"required"`
	Notes         string              `json:"notes"`
}

// NewInterviewForm returns an empty in-person form
func NewInterviewForm() InterviewForm {
	return InterviewForm{InterviewType: types.InterviewTypeInPerson}
}

// Trimmed returns a copy with surrounding whitespace removed, so blank
// input never satisfies a requirement
func (f InterviewForm) Trimmed() InterviewForm {
	f.InterviewDate = strings.TrimSpace(f.InterviewDate)
	f.InterviewTime = strings.TrimSpace(f.InterviewTime)
	f.InterviewType = types.InterviewType(strings.TrimSpace(string(f.InterviewType)))
	f.Venue = strings.TrimSpace(f.Venue)
	f.MeetingLink = strings.TrimSpace(f.MeetingLink)
	f.Interviewer = strings.TrimSpace(f.Interviewer)
	f.Notes = strings.TrimSpace(f.Notes)
	return f
}

func (f InterviewForm) Validate() error {
	t := f.Trimmed()
	return validator.ValidateRequest(&t)
}

// ToInterview converts the form into the interview parameters of one applicant
func (f InterviewForm) ToInterview(applicationID int64) notification.Interview {
	t := f.Trimmed()
	i := notification.Interview{
		ApplicationID: applicationID,
		Date:          t.InterviewDate,
		Time:          t.InterviewTime,
		Type:          t.InterviewType,
		Interviewer:   t.Interviewer,
		Notes:         t.Notes,
	}
	if t.InterviewType == types.InterviewTypeOnline {
		i.MeetingLink = t.MeetingLink
	} else {
		i.Venue = t.Venue
	}
	return i
}

// OpenSessionRequest starts a scheduling session, optionally seeded with one
// applicant
type OpenSessionRequest struct {
	ApplicantID *int64 `json:"applicant_id,omitempty"`
}

type ToggleSelectionRequest struct {
	ApplicantID int64 `json:"applicant_id" validate:"required"`
}

// SchedulerSessionResponse is a snapshot of the scheduling session
type SchedulerSessionResponse struct {
	State     types.SchedulerState `json:"state"`
	Selection []*applicant.Record  `json:"selection"`
	Primary   *applicant.Record    `json:"primary,omitempty"`
	Form      InterviewForm        `json:"form"`
	CanSubmit bool                 `json:"can_submit"`
}

// ApplicantOutcome is the result of scheduling one applicant
type ApplicantOutcome struct {
	ApplicantID   int64  `json:"applicant_id"`
	ApplicationID int64  `json:"application_id"`
	ApplicantName string `json:"applicant_name"`
	Error         string `json:"error,omitempty"`
}

// InterviewBatchResult summarizes one submission. Toast is the single
// aggregate message shown to the user.
type InterviewBatchResult struct {
	SuccessCount int                 `json:"success_count"`
	FailCount    int                 `json:"fail_count"`
	Succeeded    []*ApplicantOutcome `json:"succeeded"`
	Failed       []*ApplicantOutcome `json:"failed"`
	Toast        types.Toast         `json:"toast"`
	// Cancelled is set when the session was closed while the batch ran; the
	// remaining applicants were not processed
	Cancelled bool `json:"cancelled"`
}

// DecisionRequest records the outcome of an interview
type DecisionRequest struct {
	ApplicantID int64                   `json:"applicant_id" validate:"required"`
	Decision    types.InterviewDecision `json:"decision" validate:"required,oneof=accepted rejected"`
}

// InterviewDetailResponse answers viewInterview. Found is false when the
// applicant has no scheduled interview on record.
type InterviewDetailResponse struct {
	Found  bool                          `json:"found"`
	Detail *notification.InterviewDetail `json:"detail,omitempty"`
}
