package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/hiretrack/hiretrack/internal/domain/signal"
	"github.com/hiretrack/hiretrack/internal/httpclient"
	"github.com/hiretrack/hiretrack/internal/kvstore"
	"github.com/hiretrack/hiretrack/internal/pubsub"
	"github.com/hiretrack/hiretrack/internal/testutil"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/stretchr/testify/suite"
)

type SyncControllerSuite struct {
	testutil.BaseServiceTestSuite
	sync       ApplicantSyncService
	controller SyncController
}

func TestSyncController(t *testing.T) {
	suite.Run(t, new(SyncControllerSuite))
}

func (s *SyncControllerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.GetFakeBackend().AddApplicant(1, 101, "Jane Doe", "jane@example.com", "Backend Engineer", types.ApplicationStatusPending)
	s.GetFakeBackend().AddApplicant(2, 102, "John Roe", "john@example.com", "Designer", types.ApplicationStatusShortListed)
	s.newController(time.Hour)
}

func (s *SyncControllerSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.NoError(s.controller.Stop(ctx))
	s.BaseServiceTestSuite.TearDownTest()
}

func (s *SyncControllerSuite) newController(interval time.Duration) {
	cfg := *s.GetConfig()
	cfg.Sync.Interval = interval
	params := newTestParams(&s.BaseServiceTestSuite)
	params.Config = &cfg
	s.sync = NewApplicantSyncService(params)
	s.controller = NewSyncController(params, s.sync)
}

func (s *SyncControllerSuite) listCalls() int {
	return s.GetHTTPClient().CallCount(http.MethodGet, "/onboarding-records")
}

func (s *SyncControllerSuite) markFlag(source string) {
	err := s.GetStores().SignalRepo.Mark(s.GetContext(), &signal.Flag{
		Source:        source,
		ApplicationID: 101,
		Status:        types.ApplicationStatusShortListed,
		Timestamp:     s.GetNow(),
	})
	s.Require().NoError(err)
}

func (s *SyncControllerSuite) TestFocusWithForeignFlagFetchesOnce() {
	s.markFlag("inst_other")

	var wg sync.WaitGroup
	fetched := make([]bool, 3)
	for i := range fetched {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := s.controller.Focus(s.GetContext())
			s.NoError(err)
			fetched[i] = ok
		}(i)
	}
	wg.Wait()

	s.Equal(1, s.listCalls())
	s.Equal(1, countTrue(fetched))
	s.Equal(2, s.sync.Counts().Total)

	flag, err := s.GetStores().SignalRepo.Peek(s.GetContext())
	s.NoError(err)
	s.Nil(flag)
}

func (s *SyncControllerSuite) TestFocusIgnoresOwnFlag() {
	s.markFlag(testInstanceID)

	fetched, err := s.controller.Focus(s.GetContext())
	s.NoError(err)
	s.False(fetched)
	s.Equal(0, s.listCalls())

	flag, err := s.GetStores().SignalRepo.Peek(s.GetContext())
	s.NoError(err)
	s.NotNil(flag)
}

func (s *SyncControllerSuite) TestFocusWithoutFlag() {
	fetched, err := s.controller.Focus(s.GetContext())
	s.NoError(err)
	s.False(fetched)
	s.Equal(0, s.listCalls())
}

func (s *SyncControllerSuite) TestFocusIgnoresMalformedFlag() {
	err := s.GetStores().KV.Set(s.GetContext(), kvstore.KeyApplicationsFlag, []byte("{not json"))
	s.Require().NoError(err)

	fetched, err := s.controller.Focus(s.GetContext())
	s.NoError(err)
	s.False(fetched)
	s.Equal(0, s.listCalls())
}

func (s *SyncControllerSuite) TestFocusReportsFetchFailure() {
	s.markFlag("inst_other")
	s.GetFakeBackend().FailList(testutil.MockResponse{StatusCode: http.StatusInternalServerError})

	fetched, err := s.controller.Focus(s.GetContext())
	s.True(fetched)
	s.Error(err)

	// the flag is consumed even when the fetch failed
	flag, err := s.GetStores().SignalRepo.Peek(s.GetContext())
	s.NoError(err)
	s.Nil(flag)
}

func (s *SyncControllerSuite) TestFocusKeepsFlagWrittenDuringFetch() {
	s.markFlag("inst_other")
	newer := &signal.Flag{
		Source:        "inst_third",
		ApplicationID: 102,
		Status:        types.ApplicationStatusRejected,
		Timestamp:     s.GetNow().Add(time.Second),
	}
	var once sync.Once
	s.GetFakeBackend().OnRequest(func(req *httpclient.Request) {
		if req.Method == http.MethodGet {
			once.Do(func() {
				s.Require().NoError(s.GetStores().SignalRepo.Mark(s.GetContext(), newer))
			})
		}
	})

	fetched, err := s.controller.Focus(s.GetContext())
	s.NoError(err)
	s.True(fetched)

	flag, err := s.GetStores().SignalRepo.Peek(s.GetContext())
	s.Require().NoError(err)
	s.True(newer.Same(flag))

	// the next focus picks it up
	fetched, err = s.controller.Focus(s.GetContext())
	s.NoError(err)
	s.True(fetched)
	s.Equal(2, s.listCalls())
}

func (s *SyncControllerSuite) TestStartFetchesAndReactsToEvents() {
	s.Require().NoError(s.controller.Start(s.GetContext()))
	s.True(s.controller.Running())
	// a second start is a no-op
	s.Require().NoError(s.controller.Start(s.GetContext()))

	s.Eventually(func() bool { return s.listCalls() == 1 }, time.Second, 10*time.Millisecond)
	s.Equal(2, s.sync.Counts().Total)

	s.GetFakeBackend().AddApplicant(3, 103, "Ada King", "ada@example.com", "Data Analyst", types.ApplicationStatusPending)
	s.Require().NoError(s.controller.NotifyChanged(s.GetContext(), pubsub.ChangeEvent{ApplicationID: 103}))

	s.Eventually(func() bool { return s.sync.Counts().Total == 3 }, time.Second, 10*time.Millisecond)

	events := s.GetPubSub().ChangeEvents()
	s.Require().Len(events, 1)
	s.Equal(testInstanceID, events[0].Source)
	s.False(events[0].OccurredAt.IsZero())
}

func (s *SyncControllerSuite) TestIntervalPolling() {
	s.newController(20 * time.Millisecond)
	s.Require().NoError(s.controller.Start(s.GetContext()))

	s.Eventually(func() bool { return s.listCalls() >= 3 }, 2*time.Second, 10*time.Millisecond)
	// interval refreshes never toast
	s.Empty(s.GetToasts().Toasts())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Require().NoError(s.controller.Stop(ctx))
	s.False(s.controller.Running())

	settled := s.listCalls()
	time.Sleep(60 * time.Millisecond)
	s.Equal(settled, s.listCalls())
}

func (s *SyncControllerSuite) TestSessionExpiryToast() {
	s.Require().NoError(s.controller.Start(s.GetContext()))
	s.Eventually(func() bool { return s.listCalls() == 1 }, time.Second, 10*time.Millisecond)

	s.Require().NoError(s.GetSession().Expire(s.GetContext(), "test"))

	s.Eventually(func() bool {
		for _, t := range s.GetToasts().Toasts() {
			if t.Kind == types.ToastKindError && t.Message == "Session expired. Please log in again." {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func (s *SyncControllerSuite) TestRefresh() {
	resp, err := s.controller.Refresh(s.GetContext())
	s.Require().NoError(err)
	s.True(resp.Refreshed)
	s.Equal(2, resp.Total)
	s.Require().NotNil(resp.Toast)
	s.Equal("Records refreshed successfully", resp.Toast.Message)
	s.Equal([]types.Toast{{Kind: types.ToastKindSuccess, Message: "Records refreshed successfully"}}, s.GetToasts().Toasts())
}

func (s *SyncControllerSuite) TestRefreshFailure() {
	s.GetFakeBackend().FailList(testutil.MockResponse{StatusCode: http.StatusNotFound})

	_, err := s.controller.Refresh(s.GetContext())
	s.Require().Error(err)

	toasts := s.GetToasts().Toasts()
	s.Require().Len(toasts, 1)
	s.Equal(types.Toast{
		Kind:    types.ToastKindError,
		Message: "Onboarding endpoint not found. Please check the API configuration.",
	}, toasts[0])
}

func countTrue(values []bool) int {
	n := 0
	for _, v := range values {
		if v {
			n++
		}
	}
	return n
}
