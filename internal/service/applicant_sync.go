package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hiretrack/hiretrack/internal/api/dto"
	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

const fetchAllKey = "onboarding_records"

// ApplicantSyncService keeps the local applicant collection in line with the
// backend. Every fetch is a full replacement; a failed fetch empties the
// collection.
type ApplicantSyncService interface {
	FetchAll(ctx context.Context, trigger types.SyncTrigger) ([]*applicant.Record, error)
	ListApplicants(ctx context.Context, filter *types.ApplicantFilter) (*dto.ListApplicantsResponse, error)
	GetApplicant(ctx context.Context, id int64) (*dto.ApplicantResponse, error)
	Counts() applicant.Counts
}

type applicantSyncService struct {
	ServiceParams

	group singleflight.Group
	// started numbers fetches in start order; only an outcome newer than the
	// last applied one may touch the collection
	started atomic.Uint64
	mu      sync.Mutex
	applied uint64
}

func NewApplicantSyncService(params ServiceParams) ApplicantSyncService {
	return &applicantSyncService{ServiceParams: params}
}

func (s *applicantSyncService) FetchAll(ctx context.Context, trigger types.SyncTrigger) ([]*applicant.Record, error) {
	var (
		records []*applicant.Record
		err     error
	)

	if trigger.Coalescable() {
		// overlapping passive triggers share one request
		v, doErr, shared := s.group.Do(fetchAllKey, func() (interface{}, error) {
			return s.fetch(context.WithoutCancel(ctx), trigger)
		})
		if shared {
			s.Logger.Debugw("joined in-flight applicant fetch", "trigger", trigger)
		}
		err = doErr
		if v != nil {
			records = v.([]*applicant.Record)
		}
	} else {
		records, err = s.fetch(ctx, trigger)
	}

	if trigger.IsManual() && s.Toasts != nil {
		if err != nil {
			s.Toasts.Show(ctx, types.Toast{Kind: types.ToastKindError, Message: ierr.DisplayMessage(err)})
		} else {
			s.Toasts.Show(ctx, types.Toast{Kind: types.ToastKindSuccess, Message: msgRecordsRefreshed})
		}
	}

	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *applicantSyncService) fetch(ctx context.Context, trigger types.SyncTrigger) ([]*applicant.Record, error) {
	seq := s.started.Add(1)

	span, ctx := s.Sentry.StartSyncSpan(ctx, trigger.String())
	if span != nil {
		defer span.Finish()
	}

	records, err := s.Backend.ListOnboardingRecords(ctx)
	if err != nil && ctx.Err() != nil {
		// the caller gave up; that says nothing about the backend
		s.Logger.Debugw("applicant fetch abandoned by caller", "trigger", trigger, "error", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Results land in start order: a fetch that started earlier carries older
	// data, so once a later one has been applied it is dropped even if it
	// completes last.
	if seq < s.applied {
		s.Logger.Debugw("discarding stale applicant fetch", "trigger", trigger, "seq", seq, "applied", s.applied)
		if err != nil {
			return nil, err
		}
		return s.Applicants.List(), nil
	}
	s.applied = seq

	if err != nil {
		s.Applicants.Clear()
		s.Logger.Warnw("failed to fetch onboarding records",
			"trigger", trigger,
			"error", err,
			"message", ierr.DisplayMessage(err))
		if !ierr.IsUnauthenticated(err) && !ierr.IsPermissionDenied(err) {
			s.Sentry.CaptureException(err)
		}
		return nil, err
	}

	s.Applicants.Replace(records)
	counts := s.Applicants.Counts()
	s.Logger.Debugw("onboarding records synchronized",
		"trigger", trigger,
		"total", counts.Total)
	return s.Applicants.List(), nil
}

func (s *applicantSyncService) ListApplicants(ctx context.Context, filter *types.ApplicantFilter) (*dto.ListApplicantsResponse, error) {
	if filter == nil {
		filter = types.NewDefaultApplicantFilter()
	}
	if filter.OnboardingStatus != "" {
		if err := filter.OnboardingStatus.Validate(); err != nil {
			return nil, ierr.WithError(err).
				WithHintf("Unknown onboarding status %q", filter.OnboardingStatus).
				Mark(ierr.ErrValidation)
		}
	}

	items := lo.Map(s.Applicants.Filter(filter), func(r *applicant.Record, _ int) *dto.ApplicantResponse {
		return toApplicantResponse(r)
	})

	return &dto.ListApplicantsResponse{
		Items:     items,
		Counts:    s.Applicants.Counts(),
		FetchedAt: dto.FetchedAtPtr(s.Applicants.FetchedAt()),
	}, nil
}

func (s *applicantSyncService) GetApplicant(ctx context.Context, id int64) (*dto.ApplicantResponse, error) {
	r, err := s.Applicants.Get(id)
	if err != nil {
		return nil, err
	}
	return toApplicantResponse(r), nil
}

func (s *applicantSyncService) Counts() applicant.Counts {
	return s.Applicants.Counts()
}

func toApplicantResponse(r *applicant.Record) *dto.ApplicantResponse {
	return &dto.ApplicantResponse{
		Record:               r,
		AllowedTransitions:   AllowedTransitions(r.ApplicationStatus),
		CanScheduleInterview: CanScheduleInterview(r.ApplicationStatus),
	}
}
