package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	"github.com/hiretrack/hiretrack/internal/domain/notification"
	"github.com/hiretrack/hiretrack/internal/domain/signal"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/pubsub"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/samber/lo"
)

// legalTransitions lists the status changes HR may request per current status.
// Rejected is reachable from every non-terminal status. Hired and Rejected are
// terminal: a hired employee leaves through offboarding, not a rejection, so
// neither has an entry. ShortListed applicants move on through interview
// scheduling, not through a direct status change.
var legalTransitions = map[types.ApplicationStatus][]types.ApplicationStatus{
	types.ApplicationStatusPending:          {types.ApplicationStatusShortListed, types.ApplicationStatusRejected},
	types.ApplicationStatusShortListed:      {types.ApplicationStatusRejected},
	types.ApplicationStatusInterview:        {types.ApplicationStatusOffered, types.ApplicationStatusRejected},
	types.ApplicationStatusOnGoingInterview: {types.ApplicationStatusOffered, types.ApplicationStatusRejected},
	types.ApplicationStatusOffered:          {types.ApplicationStatusOfferedAccepted, types.ApplicationStatusRejected},
	types.ApplicationStatusOfferedAccepted:  {types.ApplicationStatusOnboarding, types.ApplicationStatusRejected},
	types.ApplicationStatusOnboarding:       {types.ApplicationStatusHired, types.ApplicationStatusRejected},
}

// AllowedTransitions returns the targets reachable from status, in pipeline order
func AllowedTransitions(status types.ApplicationStatus) []types.ApplicationStatus {
	return append([]types.ApplicationStatus{}, legalTransitions[status]...)
}

// IsTransitionAllowed reports whether from -> to is an offered affordance
func IsTransitionAllowed(from, to types.ApplicationStatus) bool {
	return lo.Contains(legalTransitions[from], to)
}

// CanScheduleInterview reports whether an applicant in status may be put into
// an interview scheduling session
func CanScheduleInterview(status types.ApplicationStatus) bool {
	return status == types.ApplicationStatusShortListed
}

// StatusNotificationCopy returns the applicant facing title and message for a
// status change
func StatusNotificationCopy(status types.ApplicationStatus, position string) (string, string) {
	switch status {
	case types.ApplicationStatusOffered:
		return "Job Offer Extended",
			fmt.Sprintf("Congratulations! We are pleased to offer you the position of %s. Please respond within 5 business days.", position)
	case types.ApplicationStatusRejected:
		return "Application Update",
			fmt.Sprintf("Thank you for your interest in the %s position. After careful consideration, we have decided to move forward with other candidates.", position)
	case types.ApplicationStatusHired:
		return "Congratulations! You're Hired",
			fmt.Sprintf("Welcome to the team! You have been hired for the %s position.", position)
	case types.ApplicationStatusShortListed:
		return "Application Shortlisted",
			"Your application has been shortlisted. We will contact you soon with next steps."
	case types.ApplicationStatusInterview:
		return "Interview Scheduled",
			"Your interview has been scheduled. Please check your interview details."
	default:
		return "Application Status Update",
			fmt.Sprintf("Your application status has been updated to: %s", status)
	}
}

type WorkflowService interface {
	// Transition moves an applicant to target: optimistic local update, remote
	// confirmation, then a status notification. A remote failure reverts local
	// state through a full resynchronization and is returned.
	Transition(ctx context.Context, recordID int64, target types.ApplicationStatus) (*applicant.Record, error)
	UpdateOnboardingStatus(ctx context.Context, recordID int64, status types.OnboardingStatus) (*applicant.Record, error)
	AllowedTransitions(status types.ApplicationStatus) []types.ApplicationStatus
	CanScheduleInterview(status types.ApplicationStatus) bool
}

type workflowService struct {
	ServiceParams
	sync ApplicantSyncService
	now  func() time.Time
}

func NewWorkflowService(params ServiceParams, sync ApplicantSyncService) WorkflowService {
	return &workflowService{
		ServiceParams: params,
		sync:          sync,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *workflowService) AllowedTransitions(status types.ApplicationStatus) []types.ApplicationStatus {
	return AllowedTransitions(status)
}

func (s *workflowService) CanScheduleInterview(status types.ApplicationStatus) bool {
	return CanScheduleInterview(status)
}

func (s *workflowService) Transition(ctx context.Context, recordID int64, target types.ApplicationStatus) (*applicant.Record, error) {
	if err := target.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Unknown application status %q", target).
			Mark(ierr.ErrValidation)
	}

	current, err := s.Applicants.Get(recordID)
	if err != nil {
		return nil, err
	}

	if !IsTransitionAllowed(current.ApplicationStatus, target) {
		return nil, ierr.NewErrorf("transition %s -> %s not allowed", current.ApplicationStatus, target).
			WithHintf("%s cannot be moved from %s to %s", current.EmployeeName, current.ApplicationStatus, target).
			WithReportableDetails(map[string]any{
				"record_id": recordID,
				"from":      current.ApplicationStatus,
				"to":        target,
				"allowed":   AllowedTransitions(current.ApplicationStatus),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	// phase one: speculative local apply
	updated, err := s.Applicants.Patch(recordID, func(r *applicant.Record) {
		r.ApplicationStatus = target
		r.UpdatedAt = s.now()
	})
	if err != nil {
		return nil, err
	}

	// phase two: remote confirm or deny
	if err := s.Backend.UpdateApplicationStatus(ctx, ApplicationIDOf(current), target); err != nil {
		s.Logger.Errorw("application status update failed, reverting",
			"record_id", recordID,
			"application_id", ApplicationIDOf(current),
			"from", current.ApplicationStatus,
			"to", target,
			"error", err)
		s.reconcile(ctx)
		return nil, err
	}

	s.Logger.Infow("application status updated",
		"record_id", recordID,
		"application_id", ApplicationIDOf(current),
		"from", current.ApplicationStatus,
		"to", target)

	// the change is committed remotely, record it even if the caller went away
	committed := context.WithoutCancel(ctx)
	s.notifyStatusChange(committed, updated)
	s.announce(committed, updated)
	return updated, nil
}

func (s *workflowService) UpdateOnboardingStatus(ctx context.Context, recordID int64, status types.OnboardingStatus) (*applicant.Record, error) {
	if err := status.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Unknown onboarding status %q", status).
			Mark(ierr.ErrValidation)
	}

	updated, err := s.Applicants.Patch(recordID, func(r *applicant.Record) {
		r.OnboardingStatus = status
		r.UpdatedAt = s.now()
	})
	if err != nil {
		return nil, err
	}

	if err := s.Backend.UpdateOnboardingStatus(ctx, recordID, status); err != nil {
		s.Logger.Errorw("onboarding status update failed, reverting",
			"record_id", recordID, "status", status, "error", err)
		s.reconcile(ctx)
		return nil, err
	}

	s.announce(ctx, updated)
	return updated, nil
}

// reconcile replaces local state with the authoritative list. It outlives the
// caller's context: a disconnected client must not leave the revert undone.
// Its own failure leaves the collection empty, which is still consistent.
func (s *workflowService) reconcile(ctx context.Context) {
	if _, err := s.sync.FetchAll(context.WithoutCancel(ctx), types.SyncTriggerReconcile); err != nil {
		s.Logger.Warnw("resynchronization after failed mutation failed", "error", err)
	}
}

func (s *workflowService) notifyStatusChange(ctx context.Context, r *applicant.Record) {
	title, message := StatusNotificationCopy(r.ApplicationStatus, r.Position)
	n := &notification.Notification{
		Type:           types.NotificationTypeStatusUpdate,
		ApplicantEmail: r.EmployeeEmail,
		ApplicantName:  r.EmployeeName,
		Position:       r.Position,
		Department:     r.Department,
		Title:          title,
		Message:        message,
		Status:         r.ApplicationStatus,
	}
	// the remote change is committed; a local feed failure must not undo it
	if err := s.NotificationRepo.Append(ctx, n); err != nil {
		s.Logger.Errorw("failed to record status notification",
			"record_id", r.ID, "status", r.ApplicationStatus, "error", err)
	}
}

// announce tells in-process listeners and other processes that applicant
// data changed
func (s *workflowService) announce(ctx context.Context, r *applicant.Record) {
	announceChange(ctx, s.ServiceParams, ApplicationIDOf(r), r.ApplicationStatus)
}

func announceChange(ctx context.Context, p ServiceParams, applicationID int64, status types.ApplicationStatus) {
	now := time.Now().UTC()
	if err := p.SignalRepo.Mark(ctx, &signal.Flag{
		Source:        p.InstanceID,
		ApplicationID: applicationID,
		Status:        status,
		Timestamp:     now,
	}); err != nil {
		p.Logger.Warnw("failed to write change flag", "error", err)
	}

	msg, err := pubsub.NewMessage(pubsub.ChangeEvent{
		Source:        p.InstanceID,
		ApplicationID: applicationID,
		Status:        status,
		OccurredAt:    now,
	})
	if err != nil {
		p.Logger.Warnw("failed to encode change event", "error", err)
		return
	}
	if err := p.PubSub.Publish(ctx, pubsub.TopicApplicationsChanged, msg); err != nil {
		p.Logger.Warnw("failed to publish change event", "error", err)
	}
}

// ApplicationIDOf is the id used against the applications endpoints. Records
// without an application id fall back to their own id.
func ApplicationIDOf(r *applicant.Record) int64 {
	if r.ApplicationID != 0 {
		return r.ApplicationID
	}
	return r.ID
}
