package testutil

import (
	"context"
	"time"

	"github.com/hiretrack/hiretrack/internal/backend"
	"github.com/hiretrack/hiretrack/internal/config"
	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	"github.com/hiretrack/hiretrack/internal/domain/notification"
	"github.com/hiretrack/hiretrack/internal/domain/signal"
	"github.com/hiretrack/hiretrack/internal/kvstore"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/repository"
	"github.com/hiretrack/hiretrack/internal/session"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/hiretrack/hiretrack/internal/validator"
	"github.com/stretchr/testify/suite"
)

const (
	TestBackendURL = "http://backend.test/api"
	TestToken      = "test-token"
)

// Stores holds the local state shared by the services under test
type Stores struct {
	KV               kvstore.Store
	Applicants       *applicant.Collection
	NotificationRepo notification.Repository
	SignalRepo       signal.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	stores     Stores
	pubsub     *InMemoryPubSub
	session    session.Store
	httpClient *MockHTTPClient
	fake       *FakeHRBackend
	backend    backend.Client
	toasts     *RecordingToastSink
	logger     *logger.Logger
	config     *config.Configuration
	now        time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Backend.BaseURL = TestBackendURL
	cfg.Backend.Token = TestToken

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	kv := kvstore.NewMemoryStore()
	s.stores = Stores{
		KV:               kv,
		Applicants:       applicant.NewCollection(),
		NotificationRepo: repository.NewNotificationRepository(kv, s.config, s.logger),
		SignalRepo:       repository.NewSignalRepository(kv, s.logger),
	}

	s.pubsub = NewInMemoryPubSub()
	s.toasts = NewRecordingToastSink()

	var err error
	s.session, err = session.NewStore(kv, s.pubsub, s.config, s.logger)
	if err != nil {
		s.T().Fatalf("failed to create session store: %v", err)
	}

	s.httpClient = NewMockHTTPClient()
	s.fake = NewFakeHRBackend(s.httpClient)
	s.backend = backend.NewClient(s.httpClient, s.session, s.config, s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.Applicants.Clear()
	s.httpClient.Clear()
	s.pubsub.ClearMessages()
	s.toasts.Clear()
	_ = s.stores.KV.Close()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns the local stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPubSub returns the recording event bus
func (s *BaseServiceTestSuite) GetPubSub() *InMemoryPubSub {
	return s.pubsub
}

// GetSession returns the credential store, seeded with TestToken
func (s *BaseServiceTestSuite) GetSession() session.Store {
	return s.session
}

// GetHTTPClient returns the mock transport under the backend client
func (s *BaseServiceTestSuite) GetHTTPClient() *MockHTTPClient {
	return s.httpClient
}

// GetFakeBackend returns the stateful backend behind the mock transport
func (s *BaseServiceTestSuite) GetFakeBackend() *FakeHRBackend {
	return s.fake
}

// GetBackend returns the real backend client wired to the mock transport
func (s *BaseServiceTestSuite) GetBackend() backend.Client {
	return s.backend
}

// GetToasts returns the recording toast sink
func (s *BaseServiceTestSuite) GetToasts() *RecordingToastSink {
	return s.toasts
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
