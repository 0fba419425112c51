package service

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/hiretrack/hiretrack/internal/api/dto"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/pubsub"
	"github.com/hiretrack/hiretrack/internal/types"
	"github.com/sourcegraph/conc"
)

const (
	defaultSyncInterval = 10 * time.Second
	msgRecordsRefreshed = "Records refreshed successfully"
	msgSessionExpired   = "Session expired. Please log in again."
)

// SyncController owns every refresh trigger of the applicant collection:
// the polling interval, in-process change events, the cross-process flag and
// manual refreshes. Nothing else runs timers against the collection.
type SyncController interface {
	// Start performs an initial fetch and starts the interval and event
	// triggers. Starting a running controller is a no-op.
	Start(ctx context.Context) error
	// Stop halts all triggers and waits for them to exit
	Stop(ctx context.Context) error
	Running() bool

	// Refresh is the manual trigger
	Refresh(ctx context.Context) (*dto.SyncResponse, error)
	// Focus checks the cross-process flag. A flag left by another process
	// causes exactly one fetch and is then removed. It reports whether a
	// fetch was issued.
	Focus(ctx context.Context) (bool, error)
	// NotifyChanged publishes an in-process change event
	NotifyChanged(ctx context.Context, event pubsub.ChangeEvent) error
}

type syncController struct {
	ServiceParams
	sync     ApplicantSyncService
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      *conc.WaitGroup

	// serializes flag checks so concurrent focus events fetch once
	focusMu sync.Mutex
}

func NewSyncController(params ServiceParams, sync ApplicantSyncService) SyncController {
	interval := params.Config.Sync.Interval
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &syncController{
		ServiceParams: params,
		sync:          sync,
		interval:      interval,
	}
}

func (c *syncController) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	changes, err := c.PubSub.Subscribe(loopCtx, pubsub.TopicApplicationsChanged)
	if err != nil {
		cancel()
		return ierr.WithError(err).
			WithHint("Unable to subscribe to application changes").
			Mark(ierr.ErrSystem)
	}
	expiries, err := c.PubSub.Subscribe(loopCtx, pubsub.TopicSessionExpired)
	if err != nil {
		cancel()
		return ierr.WithError(err).
			WithHint("Unable to subscribe to session events").
			Mark(ierr.ErrSystem)
	}

	c.cancel = cancel
	c.wg = conc.NewWaitGroup()
	c.running = true

	c.wg.Go(func() { c.pollLoop(loopCtx) })
	c.wg.Go(func() { c.changeLoop(loopCtx, changes) })
	c.wg.Go(func() { c.expiryLoop(loopCtx, expiries) })

	c.Logger.Infow("sync controller started", "interval", c.interval, "instance_id", c.InstanceID)
	return nil
}

func (c *syncController) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.cancel()
	wg := c.wg
	c.running = false
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.Logger.Info("sync controller stopped")
		return nil
	case <-ctx.Done():
		return ierr.WithError(ctx.Err()).
			WithHint("Timed out waiting for sync triggers to stop").
			Mark(ierr.ErrSystem)
	}
}

func (c *syncController) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *syncController) pollLoop(ctx context.Context) {
	if _, err := c.sync.FetchAll(ctx, types.SyncTriggerInitial); err != nil {
		c.Logger.Warnw("initial applicant fetch failed", "error", err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// silent: failures are logged by the sync service
			_, _ = c.sync.FetchAll(ctx, types.SyncTriggerInterval)
		}
	}
}

func (c *syncController) changeLoop(ctx context.Context, messages <-chan *message.Message) {
	for msg := range messages {
		msg.Ack()

		var event pubsub.ChangeEvent
		if err := pubsub.Decode(msg, &event); err != nil {
			c.Logger.Warnw("ignoring malformed change event", "message_id", msg.UUID, "error", err)
			continue
		}
		c.Logger.Debugw("application change event received",
			"source", event.Source,
			"application_id", event.ApplicationID,
			"status", event.Status)

		if ctx.Err() != nil {
			return
		}
		_, _ = c.sync.FetchAll(ctx, types.SyncTriggerEvent)
	}
}

func (c *syncController) expiryLoop(ctx context.Context, messages <-chan *message.Message) {
	for msg := range messages {
		msg.Ack()

		var event pubsub.SessionExpiredEvent
		if err := pubsub.Decode(msg, &event); err != nil {
			c.Logger.Warnw("ignoring malformed session event", "message_id", msg.UUID, "error", err)
			continue
		}
		c.Logger.Warnw("session expired, re-authentication required", "reason", event.Reason)
		if c.Toasts != nil {
			c.Toasts.Show(ctx, types.Toast{Kind: types.ToastKindError, Message: msgSessionExpired})
		}
	}
}

func (c *syncController) Refresh(ctx context.Context) (*dto.SyncResponse, error) {
	records, err := c.sync.FetchAll(ctx, types.SyncTriggerManual)
	if err != nil {
		return nil, err
	}
	return &dto.SyncResponse{
		Refreshed: true,
		Total:     len(records),
		Toast:     &types.Toast{Kind: types.ToastKindSuccess, Message: msgRecordsRefreshed},
	}, nil
}

func (c *syncController) Focus(ctx context.Context) (bool, error) {
	c.focusMu.Lock()
	defer c.focusMu.Unlock()

	flag, err := c.SignalRepo.Peek(ctx)
	if err != nil {
		c.Logger.Warnw("ignoring unreadable change flag", "error", err)
		return false, nil
	}
	if flag == nil {
		return false, nil
	}
	if flag.Source == c.InstanceID {
		// our own change, already reflected locally
		return false, nil
	}

	c.Logger.Infow("change flag from another process detected",
		"source", flag.Source,
		"application_id", flag.ApplicationID,
		"status", flag.Status,
		"flagged_at", flag.Timestamp)

	_, fetchErr := c.sync.FetchAll(ctx, types.SyncTriggerFocus)

	cleared, err := c.SignalRepo.Clear(ctx, flag)
	if err != nil {
		c.Logger.Warnw("failed to clear change flag", "error", err)
	} else if !cleared {
		c.Logger.Debugw("change flag replaced during refresh, keeping it for the next check")
	}
	return true, fetchErr
}

func (c *syncController) NotifyChanged(ctx context.Context, event pubsub.ChangeEvent) error {
	if event.Source == "" {
		event.Source = c.InstanceID
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	msg, err := pubsub.NewMessage(event)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	return c.PubSub.Publish(ctx, pubsub.TopicApplicationsChanged, msg)
}
