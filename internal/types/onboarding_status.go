package types

import (
	"strings"

	"github.com/hiretrack/hiretrack/internal/errors"
	"github.com/samber/lo"
)

// OnboardingStatus tracks post-hire paperwork, independent of ApplicationStatus
type OnboardingStatus string

const (
	OnboardingStatusPendingDocuments     OnboardingStatus = "pending_documents"
	OnboardingStatusDocumentsApproved    OnboardingStatus = "documents_approved"
	OnboardingStatusOrientationScheduled OnboardingStatus = "orientation_scheduled"
	OnboardingStatusCompleted            OnboardingStatus = "completed"
)

var OnboardingStatuses = []OnboardingStatus{
	OnboardingStatusPendingDocuments,
	OnboardingStatusDocumentsApproved,
	OnboardingStatusOrientationScheduled,
	OnboardingStatusCompleted,
}

func (s OnboardingStatus) String() string {
	return string(s)
}

func (s OnboardingStatus) Validate() error {
	if !lo.Contains(OnboardingStatuses, s) {
		return errors.New(errors.ErrCodeValidation, "invalid onboarding status")
	}
	return nil
}

// ParseOnboardingStatus normalizes a raw onboarding status, defaulting to
// pending_documents when the value is unknown
func ParseOnboardingStatus(raw string) (OnboardingStatus, bool) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
	s := OnboardingStatus(key)
	if lo.Contains(OnboardingStatuses, s) {
		return s, true
	}
	return OnboardingStatusPendingDocuments, false
}
