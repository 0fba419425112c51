package service

import (
	"github.com/hiretrack/hiretrack/internal/testutil"
)

const testInstanceID = "inst_test"

func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		InstanceID:       testInstanceID,
		Applicants:       stores.Applicants,
		NotificationRepo: stores.NotificationRepo,
		SignalRepo:       stores.SignalRepo,
		Backend:          s.GetBackend(),
		Session:          s.GetSession(),
		PubSub:           s.GetPubSub(),
		Toasts:           s.GetToasts(),
	}
}
