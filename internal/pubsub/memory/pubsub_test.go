package memory

import (
	"context"
	"testing"
	"time"

	"github.com/hiretrack/hiretrack/internal/config"
	"github.com/hiretrack/hiretrack/internal/logger"
	"github.com/hiretrack/hiretrack/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	ps := NewPubSub(config.GetDefaultConfig(), logger.NewNoopLogger())
	defer ps.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := ps.Subscribe(ctx, pubsub.TopicApplicationsChanged)
	require.NoError(t, err)

	msg, err := pubsub.NewMessage(pubsub.ChangeEvent{Source: "inst_a", ApplicationID: 7})
	require.NoError(t, err)
	require.NoError(t, ps.Publish(ctx, pubsub.TopicApplicationsChanged, msg))

	select {
	case got := <-ch:
		got.Ack()
		var event pubsub.ChangeEvent
		require.NoError(t, pubsub.Decode(got, &event))
		assert.Equal(t, "inst_a", event.Source)
		assert.Equal(t, int64(7), event.ApplicationID)
	case <-time.After(time.Second):
		t.Fatal("change event not delivered")
	}
}

func TestLateSubscriberMissesEarlierEvents(t *testing.T) {
	ps := NewPubSub(config.GetDefaultConfig(), logger.NewNoopLogger())
	defer ps.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msg, err := pubsub.NewMessage(pubsub.SessionExpiredEvent{Reason: "401"})
	require.NoError(t, err)
	require.NoError(t, ps.Publish(ctx, pubsub.TopicSessionExpired, msg))

	ch, err := ps.Subscribe(ctx, pubsub.TopicSessionExpired)
	require.NoError(t, err)

	select {
	case <-ch:
		t.Fatal("non persistent bus replayed an old event")
	case <-time.After(50 * time.Millisecond):
	}
}
