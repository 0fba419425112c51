package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hiretrack/hiretrack/internal/backend"
	"github.com/hiretrack/hiretrack/internal/config"
	"github.com/hiretrack/hiretrack/internal/domain/applicant"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
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
	"github.com/spf13/cobra"
)

var jsonOutput bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "hiretrack: %s\n", ierr.DisplayMessage(err))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "hiretrack",
		Short: "HR applicant pipeline operator CLI",
		Long: `hiretrack works on the same local store and backend as the API server: it refreshes
applicants, changes application status, reads the notification feed and downloads resumes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	cmd.AddCommand(
		newSyncCmd(a),
		newApplicantsCmd(a),
		newTransitionCmd(a),
		newNotificationsCmd(a),
		newInterviewCmd(a),
		newResumeCmd(a),
		newSignalCmd(a),
	)
	return cmd
}

// app wires the core for one CLI invocation
type app struct {
	cfg    *config.Configuration
	log    *logger.Logger
	store  kvstore.Store
	ps     pubsub.PubSub
	sentry *sentry.Service

	sync          service.ApplicantSyncService
	workflow      service.WorkflowService
	scheduler     service.SchedulerService
	notifications service.NotificationService
	resume        service.ResumeService
	controller    service.SyncController
}

func (a *app) init(stderr io.Writer) error {
	validator.NewValidator()

	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	cfg.Deployment.Mode = types.ModeCLI
	a.cfg = cfg

	a.log, err = logger.NewLogger(cfg)
	if err != nil {
		return err
	}

	a.sentry = sentry.NewSentryService(cfg, a.log)
	if err := a.sentry.Init(); err != nil {
		return err
	}

	a.store, err = kvstore.New(cfg, a.log)
	if err != nil {
		return err
	}
	a.ps = memory.NewPubSub(cfg, a.log)

	sess, err := session.NewStore(a.store, a.ps, cfg, a.log)
	if err != nil {
		return err
	}
	archive, err := s3.NewService(cfg)
	if err != nil {
		return err
	}

	params := service.NewServiceParams(
		a.log,
		cfg,
		archive,
		a.sentry,
		applicant.NewCollection(),
		repository.NewNotificationRepository(a.store, cfg, a.log),
		repository.NewSignalRepository(a.store, a.log),
		backend.NewClient(httpclient.NewDefaultClient(cfg, a.log), sess, cfg, a.log),
		sess,
		a.ps,
		&printToasts{w: stderr},
	)

	a.sync = service.NewApplicantSyncService(params)
	a.workflow = service.NewWorkflowService(params, a.sync)
	a.scheduler = service.NewSchedulerService(params, a.workflow, a.sync)
	a.notifications = service.NewNotificationService(params)
	a.resume = service.NewResumeService(params)
	a.controller = service.NewSyncController(params, a.sync)
	return nil
}

// load fills the local collection; commands that act on applicants need it
func (a *app) load(ctx context.Context) error {
	_, err := a.sync.FetchAll(ctx, types.SyncTriggerInitial)
	return err
}

func (a *app) close() error {
	if a.sentry != nil {
		a.sentry.Flush(2)
	}
	if a.ps != nil {
		_ = a.ps.Close()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
