package kv

import (
	"context"
	"sync"
	"time"

	"github.com/hiretrack/hiretrack/internal/domain/notification"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/kvstore"
	"github.com/hiretrack/hiretrack/internal/logger"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultMaxNotifications is the feed capacity used when none is configured
const DefaultMaxNotifications = 50

type notificationRepository struct {
	store      kvstore.Store
	logger     *logger.Logger
	maxEntries int
	now        func() time.Time

	// serializes read-modify-write cycles within this process
	mu sync.Mutex
}

func NewNotificationRepository(store kvstore.Store, log *logger.Logger, maxEntries int) notification.Repository {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxNotifications
	}
	return &notificationRepository{
		store:      store,
		logger:     log,
		maxEntries: maxEntries,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *notificationRepository) Append(ctx context.Context, n *notification.Notification) error {
	if n == nil {
		return ierr.NewError("notification is nil").Mark(ierr.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	feed := r.loadNotifications(ctx)

	now := r.now()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.ID == 0 {
		n.ID = now.UnixMilli()
		// ids must stay strictly increasing even within one millisecond
		if len(feed) > 0 && n.ID <= feed[0].ID {
			n.ID = feed[0].ID + 1
		}
	}

	feed = append([]*notification.Notification{n}, feed...)
	if len(feed) > r.maxEntries {
		feed = feed[:r.maxEntries]
	}

	return r.save(ctx, kvstore.KeyNotifications, feed)
}

func (r *notificationRepository) List(ctx context.Context) ([]*notification.Notification, error) {
	return r.loadNotifications(ctx), nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	feed := r.loadNotifications(ctx)
	n, ok := lo.Find(feed, func(n *notification.Notification) bool { return n.ID == id })
	if !ok {
		return ierr.NewErrorf("notification %d not found", id).
			WithHint("Notification not found").
			Mark(ierr.ErrNotFound)
	}
	if n.Read {
		return nil
	}
	n.Read = true
	return r.save(ctx, kvstore.KeyNotifications, feed)
}

func (r *notificationRepository) UpsertInterviewDetail(ctx context.Context, d *notification.InterviewDetail) error {
	if d == nil || notification.KeyFor(d.ApplicantEmail) == "" {
		return ierr.NewError("interview detail requires an applicant email").
			WithHint("Applicant email is required").
			Mark(ierr.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ScheduledAt.IsZero() {
		d.ScheduledAt = r.now()
	}

	details := lo.Reject(r.loadInterviewDetails(ctx), func(existing *notification.InterviewDetail, _ int) bool {
		return existing.Key() == d.Key()
	})
	details = append([]*notification.InterviewDetail{d}, details...)

	return r.save(ctx, kvstore.KeyInterviewDetails, details)
}

func (r *notificationRepository) FindInterviewDetail(ctx context.Context, email string) (*notification.InterviewDetail, error) {
	key := notification.KeyFor(email)
	if key == "" {
		return nil, nil
	}
	d, ok := lo.Find(r.loadInterviewDetails(ctx), func(d *notification.InterviewDetail) bool {
		return d.Key() == key
	})
	if !ok {
		return nil, nil
	}
	return d, nil
}

func (r *notificationRepository) ListInterviewDetails(ctx context.Context) ([]*notification.InterviewDetail, error) {
	return r.loadInterviewDetails(ctx), nil
}

func (r *notificationRepository) loadNotifications(ctx context.Context) []*notification.Notification {
	return lo.Compact(loadCollection[*notification.Notification](ctx, r, kvstore.KeyNotifications))
}

func (r *notificationRepository) loadInterviewDetails(ctx context.Context) []*notification.InterviewDetail {
	return lo.Compact(loadCollection[*notification.InterviewDetail](ctx, r, kvstore.KeyInterviewDetails))
}

// loadCollection decodes the collection stored under key. Missing, unreadable
// or corrupt data yields nil; a partly decoded collection is never returned.
func loadCollection[T any](ctx context.Context, r *notificationRepository, key string) []T {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Errorw("failed to read local collection, treating as empty", "key", key, "error", err)
		return nil
	}
	if !ok || len(raw) == 0 {
		return nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		r.logger.Warnw("malformed local collection, treating as empty", "key", key, "error", err)
		return nil
	}
	return out
}

func (r *notificationRepository) save(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Unable to encode local data").
			Mark(ierr.ErrSystem)
	}
	return r.store.Set(ctx, key, raw)
}
