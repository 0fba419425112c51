package types

import (
	"strings"

	"github.com/hiretrack/hiretrack/internal/errors"
	"github.com/samber/lo"
)

// ApplicationStatus is the hiring pipeline stage of an application.
// The set is closed: anything coming from the backend is normalized through
// ParseApplicationStatus before it reaches the rest of the system.
type ApplicationStatus string

const (
	ApplicationStatusPending          ApplicationStatus = "Pending"
	ApplicationStatusShortListed      ApplicationStatus = "ShortListed"
	ApplicationStatusInterview        ApplicationStatus = "Interview"
	ApplicationStatusOnGoingInterview ApplicationStatus = "On going Interview"
	ApplicationStatusOffered          ApplicationStatus = "Offered"
	ApplicationStatusOfferedAccepted  ApplicationStatus = "Offered Accepted"
	ApplicationStatusOnboarding       ApplicationStatus = "Onboarding"
	ApplicationStatusHired            ApplicationStatus = "Hired"
	ApplicationStatusRejected         ApplicationStatus = "Rejected"
)

// ApplicationStatuses lists every status in pipeline order
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusShortListed,
	ApplicationStatusInterview,
	ApplicationStatusOnGoingInterview,
	ApplicationStatusOffered,
	ApplicationStatusOfferedAccepted,
	ApplicationStatusOnboarding,
	ApplicationStatusHired,
	ApplicationStatusRejected,
}

// legacy spellings seen in older records and filters
var applicationStatusAliases = map[string]ApplicationStatus{
	"on interview": ApplicationStatusOnGoingInterview,
	"shortlisted":  ApplicationStatusShortListed,
	"short listed": ApplicationStatusShortListed,
}

func (s ApplicationStatus) String() string {
	return string(s)
}

func (s ApplicationStatus) Validate() error {
	if !lo.Contains(ApplicationStatuses, s) {
		return errors.New(errors.ErrCodeValidation, "invalid application status")
	}
	return nil
}

// IsTerminal reports whether no further pipeline movement is possible
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusRejected || s == ApplicationStatusHired
}

// ParseApplicationStatus normalizes a raw status string. The second return
// value is false when the input was not recognized and the safe default
// (Pending) was substituted.
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	key := normalizeStatusKey(raw)
	if key == "" {
		return ApplicationStatusPending, false
	}
	for _, s := range ApplicationStatuses {
		if normalizeStatusKey(string(s)) == key {
			return s, true
		}
	}
	if s, ok := applicationStatusAliases[key]; ok {
		return s, true
	}
	return ApplicationStatusPending, false
}

func normalizeStatusKey(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}
