package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/webitel/hangman-client/internal/domain/event"
)

// EventDispatcher defines the high-level contract for outgoing screen events.
// This allows the handler to stay agnostic of the transport implementation.
type EventDispatcher interface {
	Publish(ctx context.Context, ev *event.ScreenEvent) error
}

type eventDispatcher struct {
	publisher message.Publisher
	topic     string
}

func NewEventDispatcher(pub message.Publisher) EventDispatcher {
	return &eventDispatcher{
		publisher: pub,
		topic:     TopicScreenRendered,
	}
}

func (d *eventDispatcher) Publish(ctx context.Context, ev *event.ScreenEvent) error {
	if ev == nil {
		return fmt.Errorf("event dispatcher: cannot publish nil event")
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("event dispatcher: marshal failure: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("session_id", ev.GetSessionID().String())
	msg.SetContext(ctx)

	if err := d.publisher.Publish(d.topic, msg); err != nil {
		return fmt.Errorf("event dispatcher: failed to publish to topic %s: %w", d.topic, err)
	}
	return nil
}
