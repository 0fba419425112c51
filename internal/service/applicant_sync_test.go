package service

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/hiretrack/hiretrack/internal/backend"
	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/httpclient"
	"github.com/hiretrack/hiretrack/internal/pubsub"
	"github.com/hiretrack/hiretrack/internal/testutil"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/stretchr/testify/suite"
)

type ApplicantSyncServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ApplicantSyncService
}

func TestApplicantSyncService(t *testing.T) {
	suite.Run(t, new(ApplicantSyncServiceSuite))
}

func (s *ApplicantSyncServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewApplicantSyncService(newTestParams(&s.BaseServiceTestSuite))

	fake := s.GetFakeBackend()
	fake.AddApplicant(1, 101, "Jane Doe", "jane@example.com", "Backend Engineer", types.ApplicationStatusPending)
	fake.AddApplicant(2, 102, "John Roe", "john@example.com", "Designer", types.ApplicationStatusShortListed)
	fake.AddApplicant(3, 103, "Ada King", "ada@example.com", "Data Analyst", types.ApplicationStatusOnGoingInterview)
	fake.AddApplicant(4, 104, "Alan Poe", "alan@example.com", "Backend Engineer", types.ApplicationStatusRejected)
}

func (s *ApplicantSyncServiceSuite) assertAggregateInvariant(c applicant.Counts) {
	sum := 0
	for _, status := range types.ApplicationStatuses {
		n, ok := c.ByStatus[status]
		s.True(ok, "missing counter for %s", status)
		sum += n
	}
	s.Equal(c.Total, sum)
}

func (s *ApplicantSyncServiceSuite) TestFetchAllReplacesCollection() {
	records, err := s.service.FetchAll(s.GetContext(), types.SyncTriggerInterval)
	s.NoError(err)
	s.Len(records, 4)

	counts := s.service.Counts()
	s.Equal(4, counts.Total)
	s.Equal(1, counts.ByStatus[types.ApplicationStatusPending])
	s.Equal(1, counts.ByStatus[types.ApplicationStatusShortListed])
	s.Equal(1, counts.ByStatus[types.ApplicationStatusOnGoingInterview])
	s.Equal(1, counts.ByStatus[types.ApplicationStatusRejected])
	s.Equal(0, counts.ByStatus[types.ApplicationStatusHired])
	s.assertAggregateInvariant(counts)

	req := s.GetHTTPClient().CallsTo(http.MethodGet, "/onboarding-records")
	s.Require().Len(req, 1)
	s.Equal("Bearer "+testutil.TestToken, req[0].Headers["Authorization"])
}

func (s *ApplicantSyncServiceSuite) TestIdempotentRefresh() {
	first, err := s.service.FetchAll(s.GetContext(), types.SyncTriggerInterval)
	s.Require().NoError(err)
	firstCounts := s.service.Counts()

	second, err := s.service.FetchAll(s.GetContext(), types.SyncTriggerInterval)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Equal(firstCounts, s.service.Counts())
}

func (s *ApplicantSyncServiceSuite) TestNormalizesStatusesAtIngestion() {
	s.GetFakeBackend().SetRawStatus(1, "Archived")
	s.GetFakeBackend().SetRawStatus(2, "On Interview")

	_, err := s.service.FetchAll(s.GetContext(), types.SyncTriggerInterval)
	s.Require().NoError(err)

	jane, err := s.GetStores().Applicants.Get(1)
	s.Require().NoError(err)
	s.Equal(types.ApplicationStatusPending, jane.ApplicationStatus)

	john, err := s.GetStores().Applicants.Get(2)
	s.Require().NoError(err)
	s.Equal(types.ApplicationStatusOnGoingInterview, john.ApplicationStatus)

	s.assertAggregateInvariant(s.service.Counts())
}

func (s *ApplicantSyncServiceSuite) TestFetchFailureClearsCollection() {
	tests := []struct {
		name    string
		resp    testutil.MockResponse
		check   func(error) bool
		message string
	}{
		{
			name:    "endpoint missing",
			resp:    testutil.JSONResponse(http.StatusNotFound, map[string]string{"message": "nope"}),
			check:   ierr.IsNotFound,
			message: "Onboarding endpoint not found. Please check the API configuration.",
		},
		{
			name:    "forbidden",
			resp:    testutil.JSONResponse(http.StatusForbidden, map[string]string{"message": "nope"}),
			check:   ierr.IsPermissionDenied,
			message: "You do not have permission to view onboarding records.",
		},
		{
			name:    "server error with message",
			resp:    testutil.JSONResponse(http.StatusInternalServerError, map[string]string{"message": "Database unavailable"}),
			check:   ierr.IsServer,
			message: "Database unavailable",
		},
		{
			name:    "server error without message",
			resp:    testutil.MockResponse{StatusCode: http.StatusBadGateway},
			check:   ierr.IsServer,
			message: "Failed to load onboarding records.",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.GetFakeBackend().ClearFailures()
			_, err := s.service.FetchAll(s.GetContext(), types.SyncTriggerInterval)
			s.Require().NoError(err)
			s.Equal(4, s.service.Counts().Total)

			s.GetFakeBackend().FailList(tt.resp)
			_, err = s.service.FetchAll(s.GetContext(), types.SyncTriggerInterval)
			s.Require().Error(err)
			s.True(tt.check(err))
			s.Equal(tt.message, ierr.DisplayMessage(err))

			s.Empty(s.GetStores().Applicants.List())
			counts := s.service.Counts()
			s.Equal(0, counts.Total)
			s.assertAggregateInvariant(counts)
			s.True(s.GetStores().Applicants.FetchedAt().IsZero())
		})
	}
}

func (s *ApplicantSyncServiceSuite) TestAbandonedFetchKeepsCollection() {
	_, err := s.service.FetchAll(s.GetContext(), types.SyncTriggerInterval)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.GetContext())
	cancel()
	_, err = s.service.FetchAll(ctx, types.SyncTriggerManual)
	s.Require().Error(err)

	s.Len(s.GetStores().Applicants.List(), 4)
	s.Equal(4, s.service.Counts().Total)

	// the next fetch is not mistaken for a stale one
	s.GetFakeBackend().AddApplicant(5, 105, "Grace Hill", "grace@example.com", "Designer", types.ApplicationStatusPending)
	_, err = s.service.FetchAll(s.GetContext(), types.SyncTriggerInterval)
	s.Require().NoError(err)
	s.Equal(5, s.service.Counts().Total)
}

// heldClient answers the first request immediately from the wrapped client
// but delivers the answer only after release is closed
type heldClient struct {
	httpclient.Client
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (c *heldClient) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	resp, err := c.Client.Send(ctx, req)
	c.once.Do(func() {
		close(c.entered)
		<-c.release
	})
	return resp, err
}

func (s *ApplicantSyncServiceSuite) TestEarlierFetchCompletingLastIsDropped() {
	held := &heldClient{
		Client:  s.GetHTTPClient(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	params := newTestParams(&s.BaseServiceTestSuite)
	params.Backend = backend.NewClient(held, s.GetSession(), s.GetConfig(), s.GetLogger())
	svc := NewApplicantSyncService(params)

	done := make(chan error, 1)
	go func() {
		_, err := svc.FetchAll(s.GetContext(), types.SyncTriggerManual)
		done <- err
	}()
	<-held.entered

	s.GetFakeBackend().AddApplicant(5, 105, "Grace Hill", "grace@example.com", "Designer", types.ApplicationStatusPending)
	_, err := svc.FetchAll(s.GetContext(), types.SyncTriggerManual)
	s.Require().NoError(err)
	s.Equal(5, svc.Counts().Total)

	close(held.release)
	s.Require().NoError(<-done)
	s.Equal(5, svc.Counts().Total)
}

func (s *ApplicantSyncServiceSuite) TestUnauthenticatedExpiresSession() {
	s.GetFakeBackend().FailList(testutil.MockResponse{StatusCode: http.StatusUnauthorized})

	_, err := s.service.FetchAll(s.GetContext(), types.SyncTriggerInterval)
	s.Require().Error(err)
	s.True(ierr.IsUnauthenticated(err))
	s.Equal("Session expired. Please log in again.", ierr.DisplayMessage(err))

	_, err = s.GetSession().Token(s.GetContext())
	s.True(ierr.IsUnauthenticated(err))
	s.Len(s.GetPubSub().GetMessages(pubsub.TopicSessionExpired), 1)

	// without a credential nothing is sent at all
	s.GetHTTPClient().ResetCalls()
	_, err = s.service.FetchAll(s.GetContext(), types.SyncTriggerInterval)
	s.True(ierr.IsUnauthenticated(err))
	s.Empty(s.GetHTTPClient().Calls())
}

func (s *ApplicantSyncServiceSuite) TestManualRefreshToasts() {
	_, err := s.service.FetchAll(s.GetContext(), types.SyncTriggerManual)
	s.Require().NoError(err)

	s.GetFakeBackend().FailList(testutil.MockResponse{StatusCode: http.StatusForbidden})
	_, err = s.service.FetchAll(s.GetContext(), types.SyncTriggerManual)
	s.Require().Error(err)

	toasts := s.GetToasts().Toasts()
	s.Require().Len(toasts, 2)
	s.Equal(types.Toast{Kind: types.ToastKindSuccess, Message: "Records refreshed successfully"}, toasts[0])
	s.Equal(types.ToastKindError, toasts[1].Kind)
	s.Equal("You do not have permission to view onboarding records.", toasts[1].Message)
}

func (s *ApplicantSyncServiceSuite) TestPassiveTriggersAreSilent() {
	for _, trigger := range []types.SyncTrigger{
		types.SyncTriggerInterval,
		types.SyncTriggerEvent,
		types.SyncTriggerFocus,
		types.SyncTriggerReconcile,
	} {
		_, err := s.service.FetchAll(s.GetContext(), trigger)
		s.NoError(err)
	}
	s.Empty(s.GetToasts().Toasts())
}

func (s *ApplicantSyncServiceSuite) TestListApplicants() {
	_, err := s.service.FetchAll(s.GetContext(), types.SyncTriggerInterval)
	s.Require().NoError(err)

	tests := []struct {
		name   string
		filter *types.ApplicantFilter
		want   []int64
	}{
		{name: "default", filter: nil, want: []int64{1, 2, 3, 4}},
		{name: "section", filter: &types.ApplicantFilter{Section: "ShortListed"}, want: []int64{2}},
		{name: "legacy section alias", filter: &types.ApplicantFilter{Section: "On Interview"}, want: []int64{3}},
		{name: "search position", filter: &types.ApplicantFilter{Search: "backend"}, want: []int64{1, 4}},
		{name: "search email", filter: &types.ApplicantFilter{Search: "ADA@"}, want: []int64{3}},
		{
			name: "anded",
			filter: &types.ApplicantFilter{
				Search:            "backend",
				ApplicationStatus: types.ApplicationStatusRejected,
				OnboardingStatus:  types.OnboardingStatusPendingDocuments,
			},
			want: []int64{4},
		},
		{name: "no match", filter: &types.ApplicantFilter{Search: "nobody"}, want: []int64{}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.ListApplicants(s.GetContext(), tt.filter)
			s.Require().NoError(err)

			ids := make([]int64, 0, len(resp.Items))
			for _, item := range resp.Items {
				ids = append(ids, item.ID)
			}
			s.Equal(tt.want, ids)
			// counts always describe the whole collection
			s.Equal(4, resp.Counts.Total)
			s.NotNil(resp.FetchedAt)
		})
	}
}

func (s *ApplicantSyncServiceSuite) TestListApplicantsAffordances() {
	_, err := s.service.FetchAll(s.GetContext(), types.SyncTriggerInterval)
	s.Require().NoError(err)

	resp, err := s.service.GetApplicant(s.GetContext(), 1)
	s.Require().NoError(err)
	s.Equal([]types.ApplicationStatus{types.ApplicationStatusShortListed, types.ApplicationStatusRejected}, resp.AllowedTransitions)
	s.False(resp.CanScheduleInterview)

	resp, err = s.service.GetApplicant(s.GetContext(), 2)
	s.Require().NoError(err)
	s.True(resp.CanScheduleInterview)

	resp, err = s.service.GetApplicant(s.GetContext(), 4)
	s.Require().NoError(err)
	s.Empty(resp.AllowedTransitions)
}

func (s *ApplicantSyncServiceSuite) TestListApplicantsRejectsUnknownOnboardingStatus() {
	_, err := s.service.ListApplicants(s.GetContext(), &types.ApplicantFilter{OnboardingStatus: "lost"})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
