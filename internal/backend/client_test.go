package backend_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/hiretrack/hiretrack/internal/backend"
	"github.com/hiretrack/hiretrack/internal/config"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/kvstore"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/pubsub"
	"github.com/hiretrack/hiretrack/internal/session"
	"github.com/hiretrack/hiretrack/internal/testutil"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/stretchr/testify/suite"
)

type ClientSuite struct {
	suite.Suite
	ctx     context.Context
	http    *testutil.MockHTTPClient
	pubsub  *testutil.InMemoryPubSub
	session session.Store
	client  backend.Client
}

func TestClient(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	cfg := config.GetDefaultConfig()
	cfg.Backend.BaseURL = testutil.TestBackendURL + "/"
	cfg.Backend.Token = testutil.TestToken
	log := logger.NewNoopLogger()

	s.ctx = types.WithRequestID(context.Background(), "req-1")
	s.http = testutil.NewMockHTTPClient()
	s.pubsub = testutil.NewInMemoryPubSub()

	var err error
	s.session, err = session.NewStore(kvstore.NewMemoryStore(), s.pubsub, cfg, log)
	s.Require().NoError(err)
	s.client = backend.NewClient(s.http, s.session, cfg, log)
}

func (s *ClientSuite) TestListAcceptsBareArray() {
	s.http.RegisterResponse(http.MethodGet, "/onboarding-records", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body: []byte(`[
			{"id": 1, "application_id": "11", "employee_name": " Jane Doe ", "application_status": "shortlisted",
			 "onboarding_status": "Documents Approved", "applied_at": "2024-03-01 09:30:00", "start_date": "2024-04-01"},
			{"id": "2", "application_id": null, "employee_name": "John Roe", "application_status": "Archived",
			 "onboarding_status": "", "created_at": "2024-03-01T09:30:00.123Z"}
		]`),
	})

	records, err := s.client.ListOnboardingRecords(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 2)

	jane := records[0]
	s.Equal(int64(1), jane.ID)
	s.Equal(int64(11), jane.ApplicationID)
	s.Equal("Jane Doe", jane.EmployeeName)
	s.Equal(types.ApplicationStatusShortListed, jane.ApplicationStatus)
	s.Equal(types.OnboardingStatusDocumentsApproved, jane.OnboardingStatus)
	s.Require().NotNil(jane.AppliedAt)
	s.Equal(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), *jane.AppliedAt)
	s.Require().NotNil(jane.StartDate)

	john := records[1]
	s.Equal(int64(2), john.ID)
	s.Equal(int64(0), john.ApplicationID)
	s.Equal(types.ApplicationStatusPending, john.ApplicationStatus)
	s.Equal(types.OnboardingStatusPendingDocuments, john.OnboardingStatus)
	s.Nil(john.AppliedAt)
	s.False(john.CreatedAt.IsZero())

	calls := s.http.Calls()
	s.Require().Len(calls, 1)
	s.Equal(testutil.TestBackendURL+"/onboarding-records", calls[0].URL)
	s.Equal("Bearer "+testutil.TestToken, calls[0].Headers["Authorization"])
	s.Equal("application/json", calls[0].Headers["Accept"])
	s.Equal("req-1", calls[0].Headers[types.HeaderRequestID])
}

func (s *ClientSuite) TestListAcceptsEnvelope() {
	s.http.RegisterResponse(http.MethodGet, "/onboarding-records",
		testutil.JSONResponse(http.StatusOK, map[string]interface{}{
			"data": []map[string]interface{}{{"id": 7, "application_status": "Hired"}},
		}))

	records, err := s.client.ListOnboardingRecords(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(types.ApplicationStatusHired, records[0].ApplicationStatus)
}

func (s *ClientSuite) TestListEmptyAndMalformed() {
	s.http.QueueResponse(http.MethodGet, "/onboarding-records",
		testutil.MockResponse{StatusCode: http.StatusOK, Body: []byte("null")},
		testutil.MockResponse{StatusCode: http.StatusOK, Body: []byte("<html>")},
	)

	records, err := s.client.ListOnboardingRecords(s.ctx)
	s.Require().NoError(err)
	s.Empty(records)

	_, err = s.client.ListOnboardingRecords(s.ctx)
	s.Require().Error(err)
	s.True(ierr.IsServer(err))
	s.Equal("Failed to load onboarding records.", ierr.DisplayMessage(err))
}

func (s *ClientSuite) TestErrorClassification() {
	tests := []struct {
		name    string
		resp    testutil.MockResponse
		check   func(error) bool
		message string
		status  int
	}{
		{
			name:    "unauthorized",
			resp:    testutil.MockResponse{StatusCode: http.StatusUnauthorized},
			check:   ierr.IsUnauthenticated,
			message: "Session expired. Please log in again.",
			status:  http.StatusUnauthorized,
		},
		{
			name:    "forbidden",
			resp:    testutil.MockResponse{StatusCode: http.StatusForbidden},
			check:   ierr.IsPermissionDenied,
			message: "You do not have permission to update this application.",
			status:  http.StatusForbidden,
		},
		{
			name:    "not found",
			resp:    testutil.JSONResponse(http.StatusNotFound, map[string]string{"message": "No query results for model"}),
			check:   ierr.IsNotFound,
			message: "Application not found",
			status:  http.StatusNotFound,
		},
		{
			name: "field errors",
			resp: testutil.JSONResponse(http.StatusUnprocessableEntity, map[string]interface{}{
				"message": "The given data was invalid.",
				"errors": map[string][]string{
					"status": {"The selected status is invalid."},
					"notes":  {"Notes are too long."},
				},
			}),
			check:   ierr.IsValidation,
			message: "Notes are too long., The selected status is invalid.",
			status:  http.StatusUnprocessableEntity,
		},
		{
			name:    "bad request",
			resp:    testutil.JSONResponse(http.StatusBadRequest, map[string]string{"error": "status missing"}),
			check:   ierr.IsValidation,
			message: "Bad request: status missing",
			status:  http.StatusBadRequest,
		},
		{
			name:    "server message",
			resp:    testutil.JSONResponse(http.StatusInternalServerError, map[string]string{"message": "Database unavailable"}),
			check:   ierr.IsServer,
			message: "Database unavailable",
			status:  http.StatusInternalServerError,
		},
		{
			name:    "server fallback",
			resp:    testutil.MockResponse{StatusCode: http.StatusBadGateway, Body: []byte("<html>bad gateway</html>")},
			check:   ierr.IsServer,
			message: "Failed to update application status.",
			status:  http.StatusBadGateway,
		},
		{
			name:    "unreachable",
			resp:    testutil.MockResponse{Err: errors.New("dial tcp: connection refused")},
			check:   ierr.IsNetwork,
			message: "Unable to reach the server. Please check your connection.",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Require().NoError(s.session.Set(s.ctx, testutil.TestToken))
			s.http.RegisterResponse(http.MethodPut, "/applications/5/status", tt.resp)

			err := s.client.UpdateApplicationStatus(s.ctx, 5, types.ApplicationStatusOffered)
			s.Require().Error(err)
			s.True(tt.check(err))
			s.Equal(tt.message, ierr.DisplayMessage(err))
			s.Equal(tt.status, backend.StatusCode(err))
		})
	}
}

func (s *ClientSuite) TestUnauthorizedExpiresSession() {
	s.http.RegisterResponse(http.MethodGet, "/onboarding-records", testutil.MockResponse{StatusCode: http.StatusUnauthorized})

	_, err := s.client.ListOnboardingRecords(s.ctx)
	s.Require().Error(err)
	s.Len(s.pubsub.GetMessages(pubsub.TopicSessionExpired), 1)

	_, err = s.session.Token(s.ctx)
	s.True(ierr.IsUnauthenticated(err))

	s.http.ResetCalls()
	_, err = s.client.ListOnboardingRecords(s.ctx)
	s.True(ierr.IsUnauthenticated(err))
	s.Empty(s.http.Calls())
}

func (s *ClientSuite) TestCreateInterview() {
	s.http.RegisterResponse(http.MethodPost, "/interviews", testutil.JSONResponse(http.StatusCreated, map[string]interface{}{
		"data": map[string]interface{}{"id": "9", "application_id": 11, "status": "scheduled"},
	}))

	resp, err := s.client.CreateInterview(s.ctx, &backend.CreateInterviewRequest{
		ApplicationID: 11,
		InterviewDate: "2030-01-01",
		InterviewTime: "09:00",
		InterviewType: types.InterviewTypeOnline,
		MeetingLink:   "https://meet.example.com/a",
		Interviewer:   "Sam",
	})
	s.Require().NoError(err)
	s.Equal(backend.FlexInt64(9), resp.ID)

	calls := s.http.CallsTo(http.MethodPost, "/interviews")
	s.Require().Len(calls, 1)
	s.JSONEq(`{
		"application_id": 11,
		"interview_date": "2030-01-01",
		"interview_time": "09:00",
		"interview_type": "online",
		"meeting_link": "https://meet.example.com/a",
		"interviewer": "Sam"
	}`, string(calls[0].Body))
}

func (s *ClientSuite) TestCreateInterviewToleratesOpaqueBody() {
	s.http.RegisterResponse(http.MethodPost, "/interviews", testutil.MockResponse{StatusCode: http.StatusCreated, Body: []byte("created")})

	resp, err := s.client.CreateInterview(s.ctx, &backend.CreateInterviewRequest{ApplicationID: 1})
	s.Require().NoError(err)
	s.NotNil(resp)
}

func (s *ClientSuite) TestDownloadResume() {
	s.http.RegisterResponse(http.MethodGet, "/applications/11/resume", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       []byte("%PDF-1.4"),
		Headers: map[string]string{
			"content-type":        "application/pdf",
			"Content-Disposition": `attachment; filename="cv.pdf"`,
		},
	})

	file, err := s.client.DownloadResume(s.ctx, 11)
	s.Require().NoError(err)
	s.Equal("application/pdf", file.ContentType)
	s.Equal(`attachment; filename="cv.pdf"`, file.ContentDisposition)
	s.Equal([]byte("%PDF-1.4"), file.Data)
}

func (s *ClientSuite) TestUpdateOnboardingStatusNotFound() {
	s.http.RegisterResponse(http.MethodPut, "/onboarding-records/3", testutil.MockResponse{StatusCode: http.StatusNotFound})

	err := s.client.UpdateOnboardingStatus(s.ctx, 3, types.OnboardingStatusCompleted)
	s.Require().Error(err)
	s.Equal("Onboarding record not found", ierr.DisplayMessage(err))

	calls := s.http.CallsTo(http.MethodPut, "/onboarding-records/3")
	s.Require().Len(calls, 1)
	s.JSONEq(`{"status":"completed"}`, string(calls[0].Body))
}
