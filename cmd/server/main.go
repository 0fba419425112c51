package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hiretrack/hiretrack/internal/api"
	"github.com/hiretrack/hiretrack/internal/backend"
	"github.com/hiretrack/hiretrack/internal/config"
	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	"github.com/hiretrack/hiretrack/internal/httpclient"
	"github.com/hiretrack/hiretrack/internal/kvstore"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/pubsub"
	"github.com/hiretrack/hiretrack/internal/pubsub/memory"
	"github.com/hiretrack/hiretrack/internal/repository"
	"github.com/hiretrack/hiretrack/internal/s3"
	"github.com/hiretrack/hiretrack/internal/sentry"
	"github.com/hiretrack/hiretrack/internal/service"
	"github.com/hiretrack/hiretrack/internal/session"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/hiretrack/hiretrack/internal/validator"
	"github.com/hiretrack/hiretrack/internal/watcher"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Initialize Fx application
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,

			// Local store
			provideKVStore,

			// PubSub
			memory.NewPubSub,
			providePublisher,

			// Session
			session.NewStore,

			// HTTP Client
			httpclient.NewDefaultClient,
			backend.NewClient,

			// Resume archive
			s3.NewService,

			// Repositories
			repository.NewNotificationRepository,
			repository.NewSignalRepository,
			applicant.NewCollection,

			// Toasts
			service.NewToastLog,
			provideToastSink,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewApplicantSyncService,
			service.NewWorkflowService,
			service.NewSchedulerService,
			service.NewNotificationService,
			service.NewResumeService,
			service.NewSyncController,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			api.NewHandlers,
			provideRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideKVStore(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (kvstore.Store, error) {
	store, err := kvstore.New(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
	return store, nil
}

func providePublisher(ps pubsub.PubSub) pubsub.Publisher {
	return ps
}

func provideToastSink(toasts *service.ToastLog) service.ToastSink {
	return toasts
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	controller service.SyncController,
	store kvstore.Store,
	ps pubsub.PubSub,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startSyncController(lc, controller, ps, log)
		if cfg.Sync.WatchStore {
			startStoreWatcher(lc, store, controller, cfg, log)
		}
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		startSyncController(lc, controller, ps, log)
	case types.ModeCLI:
		log.Fatalf("deployment mode %s is served by the hiretrack command, not the server", mode)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startSyncController(
	lc fx.Lifecycle,
	controller service.SyncController,
	ps pubsub.PubSub,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := controller.Start(ctx); err != nil {
				log.Errorw("failed to start sync controller", "error", err)
				return err
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := controller.Stop(ctx); err != nil {
				log.Warnw("sync controller did not stop cleanly", "error", err)
			}
			return ps.Close()
		},
	})
}

func startStoreWatcher(
	lc fx.Lifecycle,
	store kvstore.Store,
	controller service.SyncController,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	sw, err := watcher.NewStoreWatcher(store.Path(), cfg.Sync.WatchDebounce, controller.Focus, log)
	if err != nil {
		log.Warnw("store watcher disabled", "error", err)
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sw.Start(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return sw.Stop()
		},
	})
}
