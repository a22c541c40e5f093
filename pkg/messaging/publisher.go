// Package messaging defines the events the service emits and the publishers that carry them.
package messaging

import (
	"context"
)

const (
	SalesStreamName      = "SALES"
	SalesRecordedSubject = "sales.recorded"
)

// Event is a message addressed to a subject. ID is unique per event and stable across retries.
type Event interface {
	ID() string
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
