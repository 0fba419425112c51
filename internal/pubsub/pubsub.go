package pubsub

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/hiretrack/hiretrack/internal/types"
	jsoniter "github.com/json-iterator/go"
)

// Topics published inside one process
const (
	// TopicApplicationsChanged asks interested views to re-fetch applicant data
	TopicApplicationsChanged = "applications.changed"
	// TopicSessionExpired fires when the backend rejected the stored credential
	TopicSessionExpired = "session.expired"
)

// Publisher defines the interface for publishing in-process events
type Publisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
	Close() error
}

// Subscriber defines the interface for consuming in-process events
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// PubSub combines both Publisher and Subscriber interfaces
type PubSub interface {
	Publisher
	Subscriber
}

// ChangeEvent is the payload of TopicApplicationsChanged
type ChangeEvent struct {
	Source        string                  `json:"source"`
	ApplicationID int64                   `json:"application_id,omitempty"`
	Status        types.ApplicationStatus `json:"status,omitempty"`
	OccurredAt    time.Time               `json:"occurred_at"`
}

// SessionExpiredEvent is the payload of TopicSessionExpired
type SessionExpiredEvent struct {
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMessage encodes payload as JSON into a new watermill message
func NewMessage(payload interface{}) (*message.Message, error) {
	raw, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return message.NewMessage(watermill.NewUUID(), raw), nil
}

// Decode unmarshals a message payload into out
func Decode(msg *message.Message, out interface{}) error {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(msg.Payload, out)
}
