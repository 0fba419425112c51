// Package session holds the bearer credential used against the backend.
// The credential is issued elsewhere (login is not handled here); this package
// only stores it, hands it out and drops it when the backend rejects it.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/hiretrack/hiretrack/internal/config"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/kvstore"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/pubsub"
)

type Store interface {
	// Token returns the current credential or an ErrUnauthenticated error
	Token(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	// Expire drops the credential and announces that re-authentication is needed
	Expire(ctx context.Context, reason string) error
}

type store struct {
	kv        kvstore.Store
	publisher pubsub.Publisher
	logger    *logger.Logger
}

// NewStore returns a kv backed credential store. A token from configuration
// seeds the store when nothing is persisted yet.
func NewStore(kv kvstore.Store, publisher pubsub.Publisher, cfg *config.Configuration, log *logger.Logger) (Store, error) {
	s := &store{kv: kv, publisher: publisher, logger: log}

	if seed := strings.TrimSpace(cfg.Backend.Token); seed != "" {
		_, ok, err := kv.Get(context.Background(), kvstore.KeySessionCredential)
		if err != nil {
			return nil, err
		}
		if !ok {
			if err := s.Set(context.Background(), seed); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (s *store) Token(ctx context.Context) (string, error) {
	raw, ok, err := s.kv.Get(ctx, kvstore.KeySessionCredential)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(raw))
	if !ok || token == "" {
		return "", ierr.NewError("no session credential").
			WithHint("You are not logged in. Please log in again.").
			Mark(ierr.ErrUnauthenticated)
	}
	return token, nil
}

func (s *store) Set(ctx context.Context, token string) error {
	return s.kv.Set(ctx, kvstore.KeySessionCredential, []byte(strings.TrimSpace(token)))
}

func (s *store) Expire(ctx context.Context, reason string) error {
	if err := s.kv.Delete(ctx, kvstore.KeySessionCredential); err != nil {
		return err
	}
	s.logger.Warnw("session credential cleared, re-authentication required", "reason", reason)

	msg, err := pubsub.NewMessage(pubsub.SessionExpiredEvent{Reason: reason, OccurredAt: time.Now().UTC()})
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	if err := s.publisher.Publish(ctx, pubsub.TopicSessionExpired, msg); err != nil {
		s.logger.Errorw("failed to publish session expiry", "error", err)
	}
	return nil
}
