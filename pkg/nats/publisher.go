package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/farmstore/pkg/messaging"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const contentTypeHeader = "Content-Type"

// JetStreamPublisher writes events to JetStream. The event ID becomes the message ID,
// so a republished event inside the stream's duplicate window is stored once.
type JetStreamPublisher struct {
	js jetstream.JetStream
}

func NewJetStreamPublisher(js jetstream.JetStream) *JetStreamPublisher {
	return &JetStreamPublisher{js: js}
}

func (p *JetStreamPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.ID(), err)
	}
	msg := nats.NewMsg(event.Subject())
	msg.Data = data
	msg.Header.Set(contentTypeHeader, "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	if _, err := p.js.PublishMsg(ctx, msg, jetstream.WithMsgID(event.ID())); err != nil {
		return fmt.Errorf("failed to publish event %s to %s: %w", event.ID(), event.Subject(), err)
	}
	return nil
}
