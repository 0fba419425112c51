package dto

import (
	"time"

	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/samber/lo"
)

// ApplicantResponse is one record plus the affordances its status allows
type ApplicantResponse struct {
	*applicant.Record
	AllowedTransitions   []types.ApplicationStatus `json:"allowed_transitions"`
	CanScheduleInterview bool                      `json:"can_schedule_interview"`
}

// ListApplicantsResponse is the filtered view over the local collection.
// Counts always describe the whole collection, not the filtered items.
type ListApplicantsResponse struct {
	Items     []*ApplicantResponse `json:"items"`
	Counts    applicant.Counts     `json:"counts"`
	FetchedAt *time.Time           `json:"fetched_at,omitempty"`
}

// TransitionRequest asks for a new application status
type TransitionRequest struct {
	Status types.ApplicationStatus `json:"status" validate:"required"`
}

// UpdateOnboardingRequest asks for a new onboarding status
type UpdateOnboardingRequest struct {
	Status types.OnboardingStatus `json:"status" validate:"required"`
}

// SyncResponse reports the outcome of an explicit refresh
type SyncResponse struct {
	Refreshed bool         `json:"refreshed"`
	Total     int          `json:"total"`
	Toast     *types.Toast `json:"toast,omitempty"`
}

func FetchedAtPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return lo.ToPtr(t)
}
