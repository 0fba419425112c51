package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hiretrack/hiretrack/internal/api/dto"
	"github.com/hiretrack/hiretrack/internal/backend"
	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	"github.com/hiretrack/hiretrack/internal/domain/notification"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/panics"
)

// SchedulerService owns the single interview scheduling session:
// Idle -> SelectingApplicants -> FormEditing -> Submitting -> Idle
type SchedulerService interface {
	// OpenForApplicant starts a session. With an applicant the selection is
	// seeded with it and the form notes are prefilled; without one the session
	// starts in applicant selection.
	OpenForApplicant(ctx context.Context, applicantID *int64) (*dto.SchedulerSessionResponse, error)
	ToggleSelection(ctx context.Context, applicantID int64) (*dto.SchedulerSessionResponse, error)
	ConfirmSelection(ctx context.Context) (*dto.SchedulerSessionResponse, error)
	UpdateForm(ctx context.Context, form dto.InterviewForm) (*dto.SchedulerSessionResponse, error)
	// Submit schedules every selected applicant independently and closes the
	// session. Per-applicant failures are reported in the result, not as error.
	Submit(ctx context.Context) (*dto.InterviewBatchResult, error)
	// Cancel discards the session without any remote effect
	Cancel(ctx context.Context) *dto.SchedulerSessionResponse
	Session(ctx context.Context) *dto.SchedulerSessionResponse

	ViewInterview(ctx context.Context, applicantID int64) (*dto.InterviewDetailResponse, error)
	Decide(ctx context.Context, applicantID int64, decision types.InterviewDecision) (*applicant.Record, error)
}

type schedulerService struct {
	ServiceParams
	workflow WorkflowService
	sync     ApplicantSyncService
	now      func() time.Time

	mu        sync.Mutex
	state     types.SchedulerState
	selection []*applicant.Record
	primary   *applicant.Record
	form      dto.InterviewForm
	// generation changes whenever a session opens or closes; a batch that
	// finds a different generation was cancelled underneath it
	generation uint64
}

func NewSchedulerService(params ServiceParams, workflow WorkflowService, sync ApplicantSyncService) SchedulerService {
	return &schedulerService{
		ServiceParams: params,
		workflow:      workflow,
		sync:          sync,
		now:           func() time.Time { return time.Now().UTC() },
		state:         types.SchedulerStateIdle,
		form:          dto.NewInterviewForm(),
	}
}

func (s *schedulerService) OpenForApplicant(ctx context.Context, applicantID *int64) (*dto.SchedulerSessionResponse, error) {
	var seed *applicant.Record
	if applicantID != nil {
		r, err := s.Applicants.Get(*applicantID)
		if err != nil {
			return nil, err
		}
		if !CanScheduleInterview(r.ApplicationStatus) {
			return nil, ierr.NewErrorf("applicant %d is %s", r.ID, r.ApplicationStatus).
				WithHintf("Interviews can only be scheduled for shortlisted applicants; %s is %s", r.EmployeeName, r.ApplicationStatus).
				Mark(ierr.ErrInvalidOperation)
		}
		seed = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == types.SchedulerStateSubmitting {
		return nil, errSubmissionInProgress()
	}

	s.resetLocked()
	if seed != nil {
		s.selection = []*applicant.Record{seed}
		s.primary = seed
		s.form.Notes = fmt.Sprintf("Interview for %s position", seed.Position)
		s.state = types.SchedulerStateFormEditing
	} else {
		s.state = types.SchedulerStateSelectingApplicants
	}
	return s.snapshotLocked(), nil
}

func (s *schedulerService) ToggleSelection(ctx context.Context, applicantID int64) (*dto.SchedulerSessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpenLocked(); err != nil {
		return nil, err
	}

	if _, idx, found := lo.FindIndexOf(s.selection, func(r *applicant.Record) bool { return r.ID == applicantID }); found {
		s.selection = append(s.selection[:idx:idx], s.selection[idx+1:]...)
		if s.primary != nil && s.primary.ID == applicantID {
			s.primary = nil
			if len(s.selection) > 0 {
				s.primary = s.selection[0]
			}
		}
		return s.snapshotLocked(), nil
	}

	r, err := s.Applicants.Get(applicantID)
	if err != nil {
		return nil, err
	}
	if !CanScheduleInterview(r.ApplicationStatus) {
		return nil, ierr.NewErrorf("applicant %d is %s", r.ID, r.ApplicationStatus).
			WithHintf("%s is not shortlisted and cannot be selected", r.EmployeeName).
			Mark(ierr.ErrInvalidOperation)
	}
	s.selection = append(s.selection, r)
	return s.snapshotLocked(), nil
}

func (s *schedulerService) ConfirmSelection(ctx context.Context) (*dto.SchedulerSessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpenLocked(); err != nil {
		return nil, err
	}
	if len(s.selection) == 0 {
		return nil, ierr.NewError("empty selection").
			WithHint("Please select at least one applicant").
			Mark(ierr.ErrValidation)
	}

	s.primary = s.selection[0]
	if s.form.Notes == "" {
		s.form.Notes = fmt.Sprintf("Interview for %s position", s.primary.Position)
	}
	s.state = types.SchedulerStateFormEditing
	return s.snapshotLocked(), nil
}

func (s *schedulerService) UpdateForm(ctx context.Context, form dto.InterviewForm) (*dto.SchedulerSessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpenLocked(); err != nil {
		return nil, err
	}
	if form.InterviewType == "" {
		form.InterviewType = types.InterviewTypeInPerson
	}
	if err := form.InterviewType.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Interview type must be in-person or online").
			Mark(ierr.ErrValidation)
	}
	s.form = form
	return s.snapshotLocked(), nil
}

func (s *schedulerService) Cancel(ctx context.Context) *dto.SchedulerSessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != types.SchedulerStateIdle {
		s.Logger.Debugw("interview session cancelled", "state", s.state, "selected", len(s.selection))
	}
	s.resetLocked()
	return s.snapshotLocked()
}

func (s *schedulerService) Session(ctx context.Context) *dto.SchedulerSessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *schedulerService) Submit(ctx context.Context) (*dto.InterviewBatchResult, error) {
	s.mu.Lock()
	if err := s.requireOpenLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.state != types.SchedulerStateFormEditing {
		s.mu.Unlock()
		return nil, ierr.NewErrorf("cannot submit in state %s", s.state).
			WithHint("Please confirm the applicant selection first").
			Mark(ierr.ErrInvalidOperation)
	}
	if len(s.selection) == 0 {
		s.mu.Unlock()
		return nil, ierr.NewError("empty selection").
			WithHint("Please select at least one applicant").
			Mark(ierr.ErrValidation)
	}
	if err := s.form.Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	batch := append([]*applicant.Record{}, s.selection...)
	form := s.form.Trimmed()
	generation := s.generation
	s.state = types.SchedulerStateSubmitting
	s.mu.Unlock()

	// once started the batch runs to completion: only Cancel stops it, and
	// work already sent is recorded locally regardless of the caller
	work := context.WithoutCancel(ctx)

	result := &dto.InterviewBatchResult{
		Succeeded: []*dto.ApplicantOutcome{},
		Failed:    []*dto.ApplicantOutcome{},
	}

	// sequential so counts are deterministic and errors attributable
	for _, r := range batch {
		if s.cancelled(generation) {
			result.Cancelled = true
			break
		}

		outcome := &dto.ApplicantOutcome{
			ApplicantID:   r.ID,
			ApplicationID: ApplicationIDOf(r),
			ApplicantName: r.EmployeeName,
		}

		var err error
		var catcher panics.Catcher
		catcher.Try(func() {
			err = s.scheduleOne(work, r, form)
		})
		if recovered := catcher.Recovered(); recovered != nil {
			err = ierr.WithError(recovered.AsError()).Mark(ierr.ErrSystem)
		}

		if err != nil {
			outcome.Error = fmt.Sprintf("%s: %s", r.EmployeeName, interviewFailureMessage(err))
			result.Failed = append(result.Failed, outcome)
			s.Logger.Errorw("failed to schedule interview",
				"applicant_name", r.EmployeeName,
				"application_id", ApplicationIDOf(r),
				"status_code", backend.StatusCode(err),
				"error", err)
			continue
		}
		result.Succeeded = append(result.Succeeded, outcome)
	}

	result.SuccessCount = len(result.Succeeded)
	result.FailCount = len(result.Failed)
	result.Toast = batchSummary(result.SuccessCount, result.FailCount)

	s.mu.Lock()
	stillOpen := s.generation == generation
	if stillOpen {
		s.resetLocked()
	}
	s.mu.Unlock()

	// committed side effects stand even if the session was cancelled
	if result.SuccessCount > 0 {
		announceChange(work, s.ServiceParams, 0, types.ApplicationStatusOnGoingInterview)
	}
	if _, err := s.sync.FetchAll(work, types.SyncTriggerReconcile); err != nil {
		s.Logger.Warnw("refresh after interview batch failed", "error", err)
	}

	if stillOpen && s.Toasts != nil {
		s.Toasts.Show(work, result.Toast)
	}
	if !stillOpen {
		result.Cancelled = true
	}
	return result, nil
}

// scheduleOne creates the interview, moves the applicant to the interview
// stage and records the notification and interview detail
func (s *schedulerService) scheduleOne(ctx context.Context, r *applicant.Record, form dto.InterviewForm) error {
	applicationID := ApplicationIDOf(r)
	interview := form.ToInterview(applicationID)

	if _, err := s.Backend.CreateInterview(ctx, backend.NewCreateInterviewRequest(applicationID, interview)); err != nil {
		return err
	}
	if err := s.Backend.UpdateApplicationStatus(ctx, applicationID, types.ApplicationStatusOnGoingInterview); err != nil {
		return err
	}

	now := s.now()
	if _, err := s.Applicants.Patch(r.ID, func(rec *applicant.Record) {
		rec.ApplicationStatus = types.ApplicationStatusOnGoingInterview
		rec.UpdatedAt = now
	}); err != nil {
		// the record may have left the collection meanwhile; the refresh after
		// the batch settles it
		s.Logger.Debugw("scheduled applicant not in local collection", "record_id", r.ID)
	}

	snapshot := interview
	n := &notification.Notification{
		Type:           types.NotificationTypeInterviewScheduled,
		ApplicantEmail: r.EmployeeEmail,
		ApplicantName:  r.EmployeeName,
		Position:       r.Position,
		Department:     r.Department,
		Title:          "Interview Scheduled",
		Message: fmt.Sprintf("Your interview for %s has been scheduled on %s at %s.",
			r.Position, interview.Date, interview.Time),
		InterviewKey: notification.KeyFor(r.EmployeeEmail),
		Interview:    &snapshot,
	}
	if err := s.NotificationRepo.Append(ctx, n); err != nil {
		s.Logger.Errorw("failed to record interview notification", "record_id", r.ID, "error", err)
	}

	detail := &notification.InterviewDetail{
		Interview:      interview,
		ApplicantEmail: r.EmployeeEmail,
		ApplicantName:  r.EmployeeName,
		Position:       r.Position,
		Department:     r.Department,
		Status:         types.InterviewDetailStatusScheduled,
		ScheduledAt:    now,
	}
	if err := s.NotificationRepo.UpsertInterviewDetail(ctx, detail); err != nil {
		s.Logger.Errorw("failed to record interview detail", "record_id", r.ID, "error", err)
	}
	return nil
}

func (s *schedulerService) ViewInterview(ctx context.Context, applicantID int64) (*dto.InterviewDetailResponse, error) {
	r, err := s.Applicants.Get(applicantID)
	if err != nil {
		return nil, err
	}

	detail, err := s.NotificationRepo.FindInterviewDetail(ctx, r.EmployeeEmail)
	if err != nil {
		return nil, err
	}
	if detail != nil {
		return &dto.InterviewDetailResponse{Found: true, Detail: detail}, nil
	}

	// older feeds only kept the interview inside its notification
	feed, err := s.NotificationRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	key := notification.KeyFor(r.EmployeeEmail)
	n, ok := lo.Find(feed, func(n *notification.Notification) bool {
		return n.Type == types.NotificationTypeInterviewScheduled &&
			n.Interview != nil &&
			notification.KeyFor(n.ApplicantEmail) == key
	})
	if !ok {
		return &dto.InterviewDetailResponse{Found: false}, nil
	}

	return &dto.InterviewDetailResponse{
		Found: true,
		Detail: &notification.InterviewDetail{
			Interview:      *n.Interview,
			ApplicantEmail: n.ApplicantEmail,
			ApplicantName:  n.ApplicantName,
			Position:       n.Position,
			Department:     n.Department,
			Status:         types.InterviewDetailStatusScheduled,
			ScheduledAt:    n.CreatedAt,
		},
	}, nil
}

// Decide records the interview outcome as a status transition. The status
// notification is emitted by the transition itself.
func (s *schedulerService) Decide(ctx context.Context, applicantID int64, decision types.InterviewDecision) (*applicant.Record, error) {
	if err := decision.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Decision must be accepted or rejected").
			Mark(ierr.ErrValidation)
	}
	return s.workflow.Transition(ctx, applicantID, decision.TargetStatus())
}

func (s *schedulerService) cancelled(generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation != generation
}

func (s *schedulerService) requireOpenLocked() error {
	switch s.state {
	case types.SchedulerStateIdle:
		return ierr.NewError("no interview session").
			WithHint("No interview scheduling session is open").
			Mark(ierr.ErrInvalidOperation)
	case types.SchedulerStateSubmitting:
		return errSubmissionInProgress()
	}
	return nil
}

func (s *schedulerService) resetLocked() {
	s.generation++
	s.state = types.SchedulerStateIdle
	s.selection = nil
	s.primary = nil
	s.form = dto.NewInterviewForm()
}

func (s *schedulerService) snapshotLocked() *dto.SchedulerSessionResponse {
	resp := &dto.SchedulerSessionResponse{
		State: s.state,
		Selection: lo.Map(s.selection, func(r *applicant.Record, _ int) *applicant.Record {
			return r.Clone()
		}),
		Primary: s.primary.Clone(),
		Form:    s.form,
	}
	resp.CanSubmit = s.state == types.SchedulerStateFormEditing &&
		len(s.selection) > 0 &&
		s.form.Validate() == nil
	return resp
}

func errSubmissionInProgress() error {
	return ierr.NewError("submission in progress").
		WithHint("Interviews are being scheduled, please wait").
		Mark(ierr.ErrInvalidOperation)
}

// interviewFailureMessage renders one applicant's failure
func interviewFailureMessage(err error) string {
	switch backend.StatusCode(err) {
	case http.StatusUnprocessableEntity, http.StatusBadRequest,
		http.StatusUnauthorized, http.StatusForbidden:
		return ierr.DisplayMessage(err)
	case http.StatusNotFound:
		return "Application not found"
	}
	if ierr.IsNetwork(err) || ierr.IsUnauthenticated(err) {
		return ierr.DisplayMessage(err)
	}
	return "Failed to schedule interview"
}

// batchSummary is the single aggregate message of a submission
func batchSummary(succeeded, failed int) types.Toast {
	switch {
	case failed == 0:
		return types.Toast{
			Kind:    types.ToastKindSuccess,
			Message: fmt.Sprintf("Interview scheduled successfully for %d applicant(s)", succeeded),
		}
	case succeeded > 0:
		return types.Toast{
			Kind:    types.ToastKindWarning,
			Message: fmt.Sprintf("Interview scheduled for %d applicant(s). Failed for %d applicant(s).", succeeded, failed),
		}
	default:
		return types.Toast{
			Kind:    types.ToastKindError,
			Message: "Failed to schedule interviews for all selected applicants.",
		}
	}
}
