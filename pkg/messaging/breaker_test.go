package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abgdnv/farmstore/pkg/config"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"
)

type testEvent struct{}

func (testEvent) ID() string      { return "test-1" }
func (testEvent) Subject() string { return "test.subject" }
func (testEvent) Payload() ([]byte, error) { return []byte("{}"), nil }

// failingPublisher returns queued errors in order. Not thread-safe.
type failingPublisher struct {
	calls int
	errs  []error
}

func (p *failingPublisher) Publish(context.Context, Event) error {
	p.calls++
	if len(p.errs) == 0 {
		return nil
	}
	err := p.errs[0]
	p.errs = p.errs[1:]
	return err
}

func testBreakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		ConsecutiveFailures: 2,
		ErrorRatePercent:    100,
		OpenTimeout:         time.Minute,
	}
}

func TestBreakerPublisher_OpensAfterConsecutiveFailures(t *testing.T) {
	// given
	brokerDown := errors.New("nats: no responders available for request")
	next := &failingPublisher{errs: []error{brokerDown, brokerDown, brokerDown, brokerDown}}
	publisher := NewBreakerPublisher(next, testBreakerConfig())

	// when
	for i := 0; i < 3; i++ {
		err := publisher.Publish(context.Background(), testEvent{})
		require.ErrorIs(t, err, brokerDown)
	}
	err := publisher.Publish(context.Background(), testEvent{})

	// then
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.Equal(t, gobreaker.StateOpen, publisher.State())
	require.Equal(t, 3, next.calls, "an open breaker must not reach the broker")
}

func TestBreakerPublisher_CancelledCallsDoNotTrip(t *testing.T) {
	// given
	next := &failingPublisher{errs: []error{context.Canceled, context.Canceled, context.Canceled, context.Canceled}}
	publisher := NewBreakerPublisher(next, testBreakerConfig())

	// when
	for i := 0; i < 4; i++ {
		err := publisher.Publish(context.Background(), testEvent{})
		require.ErrorIs(t, err, context.Canceled)
	}

	// then
	require.Equal(t, gobreaker.StateClosed, publisher.State())
	require.Equal(t, 4, next.calls)
}

func TestNopPublisher(t *testing.T) {
	require.NoError(t, NopPublisher{}.Publish(context.Background(), testEvent{}))
}
