package service

import (
	"github.com/hiretrack/hiretrack/internal/backend"
	"github.com/hiretrack/hiretrack/internal/config"
	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	"github.com/hiretrack/hiretrack/internal/domain/notification"
	"github.com/hiretrack/hiretrack/internal/domain/signal"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/pubsub"
	"github.com/hiretrack/hiretrack/internal/s3"
	"github.com/hiretrack/hiretrack/internal/sentry"
	"github.com/hiretrack/hiretrack/internal/session"
	"github.com/hiretrack/hiretrack/internal/types"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	S3     s3.Service
	Sentry *sentry.Service

	// InstanceID identifies this process in cross-process change flags
	InstanceID string

	// Local state
	Applicants       *applicant.Collection
	NotificationRepo notification.Repository
	SignalRepo       signal.Repository

	// Remote
	Backend backend.Client
	Session session.Store

	// Events
	PubSub pubsub.PubSub
	Toasts ToastSink
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	s3 s3.Service,
	sentry *sentry.Service,
	applicants *applicant.Collection,
	notificationRepo notification.Repository,
	signalRepo signal.Repository,
	backend backend.Client,
	session session.Store,
	pubsub pubsub.PubSub,
	toasts ToastSink,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		S3:               s3,
		Sentry:           sentry,
		InstanceID:       types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INSTANCE),
		Applicants:       applicants,
		NotificationRepo: notificationRepo,
		SignalRepo:       signalRepo,
		Backend:          backend,
		Session:          session,
		PubSub:           pubsub,
		Toasts:           toasts,
	}
}
