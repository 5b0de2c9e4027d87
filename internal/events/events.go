// Package events publishes domain events (user and post lifecycle) to Kafka.
// Publishing is best-effort: failures are logged and never fail a request.
package events

import (
	"context"
	"time"
)

// Event types.
const (
	UserCreated = "user.created"
	UserDeleted = "user.deleted"
	PostCreated = "post.created"
	PostDeleted = "post.deleted"
)

// Event is the envelope written to the topic.
type Event struct {
	Type       string    `json:"event_type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publisher sends events.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, data any)
	Close() error
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, string, any) {}

func (Noop) Close() error { return nil }
