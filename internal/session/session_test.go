package session

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/hiretrack/hiretrack/internal/config"
	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/hiretrack/hiretrack/internal/kvstore"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	topics []string
	events []pubsub.SessionExpiredEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.topics = append(p.topics, topic)
	var e pubsub.SessionExpiredEvent
	if err := pubsub.Decode(msg, &e); err == nil {
		p.events = append(p.events, e)
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestStoreSeedsFromConfig(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemoryStore()
	cfg := config.GetDefaultConfig()
	cfg.Backend.Token = "  seeded  "

	s, err := NewStore(kv, &recordingPublisher{}, cfg, logger.NewNoopLogger())
	require.NoError(t, err)

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "seeded", token)

	// a persisted credential wins over the configured seed
	require.NoError(t, s.Set(ctx, "rotated"))
	s, err = NewStore(kv, &recordingPublisher{}, cfg, logger.NewNoopLogger())
	require.NoError(t, err)
	token, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rotated", token)
}

func TestStoreWithoutCredential(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Backend.Token = ""

	s, err := NewStore(kvstore.NewMemoryStore(), &recordingPublisher{}, cfg, logger.NewNoopLogger())
	require.NoError(t, err)

	_, err = s.Token(context.Background())
	require.Error(t, err)
	assert.True(t, ierr.IsUnauthenticated(err))
	assert.Equal(t, "You are not logged in. Please log in again.", ierr.DisplayMessage(err))
}

func TestExpire(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	cfg := config.GetDefaultConfig()
	cfg.Backend.Token = "abc"

	s, err := NewStore(kvstore.NewMemoryStore(), pub, cfg, logger.NewNoopLogger())
	require.NoError(t, err)

	require.NoError(t, s.Expire(ctx, "GET /onboarding-records returned 401"))

	_, err = s.Token(ctx)
	assert.True(t, ierr.IsUnauthenticated(err))
	assert.Equal(t, []string{pubsub.TopicSessionExpired}, pub.topics)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "GET /onboarding-records returned 401", pub.events[0].Reason)
	assert.False(t, pub.events[0].OccurredAt.IsZero())
}
