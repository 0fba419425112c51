package types

import (
	"github.com/hiretrack/hiretrack/internal/errors"
	"github.com/samber/lo"
)

type InterviewType string

const (
	InterviewTypeInPerson InterviewType = "in-person"
	InterviewTypeOnline   InterviewType = "online"
)

func (t InterviewType) String() string {
	return string(t)
}

func (t InterviewType) Validate() error {
	allowed := []InterviewType{
		InterviewTypeInPerson,
		InterviewTypeOnline,
	}
	if !lo.Contains(allowed, t) {
		return errors.New(errors.ErrCodeValidation, "invalid interview type")
	}
	return nil
}

// InterviewDecision is the outcome HR records after an interview
type InterviewDecision string

const (
	InterviewDecisionAccepted InterviewDecision = "accepted"
	InterviewDecisionRejected InterviewDecision = "rejected"
)

func (d InterviewDecision) Validate() error {
	allowed := []InterviewDecision{
		InterviewDecisionAccepted,
		InterviewDecisionRejected,
	}
	if !lo.Contains(allowed, d) {
		return errors.New(errors.ErrCodeValidation, "invalid interview decision")
	}
	return nil
}

// TargetStatus maps a decision onto the application status it produces
func (d InterviewDecision) TargetStatus() ApplicationStatus {
	if d == InterviewDecisionAccepted {
		return ApplicationStatusOffered
	}
	return ApplicationStatusRejected
}

// InterviewDetailStatus is the lifecycle of a stored interview detail record
type InterviewDetailStatus string

const (
	InterviewDetailStatusScheduled InterviewDetailStatus = "scheduled"
)

// SchedulerState is the phase of the single interview scheduling session
type SchedulerState string

const (
	SchedulerStateIdle                SchedulerState = "idle"
	SchedulerStateSelectingApplicants SchedulerState = "selecting_applicants"
	SchedulerStateFormEditing         SchedulerState = "form_editing"
	SchedulerStateSubmitting          SchedulerState = "submitting"
)
