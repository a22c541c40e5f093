package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/farmstore/pkg/config"
	"github.com/abgdnv/farmstore/pkg/messaging"
	"github.com/abgdnv/farmstore/pkg/messaging/events"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/nats"
)

const skipIntegrationTests = "FARMSTORE_SKIP_INTEGRATION_TESTS"
const natsImg = "nats:2.11.6-alpine"

// PublisherSuite publishes sale events into a real JetStream server.
type PublisherSuite struct {
	suite.Suite
	ctx           context.Context
	logger        *slog.Logger
	natsContainer *nats.NATSContainer
	nc            *natsgo.Conn
	js            jetstream.JetStream
	streamCfg     config.NATSConfig
}

func (s *PublisherSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.natsContainer, err = nats.Run(s.ctx, natsImg)
	require.NoError(s.T(), err, "Failed to run NATS container")

	natsURL, err := s.natsContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)

	s.streamCfg = config.NATSConfig{
		Enabled:    true,
		URL:        natsURL,
		Timeout:    5 * time.Second,
		Stream:     messaging.SalesStreamName,
		Duplicates: time.Minute,
	}
	s.nc, err = NewClient(s.streamCfg, "farmstore-test", s.logger)
	require.NoError(s.T(), err, "Failed to connect to NATS")

	s.js, err = NewJetStreamContext(s.nc)
	require.NoError(s.T(), err, "Failed to get JetStream context")

	require.NoError(s.T(), EnsureStream(s.ctx, s.js, s.streamCfg, messaging.SalesRecordedSubject))
	// a second call updates the existing stream
	require.NoError(s.T(), EnsureStream(s.ctx, s.js, s.streamCfg, messaging.SalesRecordedSubject))
}

// SetupTest drops the events left by the previous test.
func (s *PublisherSuite) SetupTest() {
	stream, err := s.js.Stream(s.ctx, s.streamCfg.Stream)
	require.NoError(s.T(), err)
	require.NoError(s.T(), stream.Purge(s.ctx))
}

func (s *PublisherSuite) fetchAll(n int) []jetstream.Msg {
	consumer, err := s.js.CreateOrUpdateConsumer(s.ctx, s.streamCfg.Stream, jetstream.ConsumerConfig{
		Durable:   "test-" + uuid.NewString()[:8],
		AckPolicy: jetstream.AckExplicitPolicy,
	})
	require.NoError(s.T(), err)

	batch, err := consumer.Fetch(n, jetstream.FetchMaxWait(2*time.Second))
	require.NoError(s.T(), err)
	var msgs []jetstream.Msg
	for msg := range batch.Messages() {
		require.NoError(s.T(), msg.Ack())
		msgs = append(msgs, msg)
	}
	require.NoError(s.T(), batch.Error())
	return msgs
}

func (s *PublisherSuite) TearDownSuite() {
	if s.nc != nil {
		s.nc.Close()
	}
	if err := testcontainers.TerminateContainer(s.natsContainer); err != nil {
		s.logger.Error("Failed to terminate NATS container", "error", err)
	}
}

func TestPublisherIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) TestPublishSaleRecorded() {
	// given
	event := events.SaleRecordedEvent{
		SaleID:             uuid.New(),
		CustomerNationalID: "V-100",
		Total:              decimal.RequireFromString("25.50"),
		Items: []events.SaleRecordedLine{{
			ProductID: uuid.New(),
			Name:      "Goat cheese",
			Quantity:  2,
			Subtotal:  decimal.RequireFromString("25.50"),
		}},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	// when
	err := NewJetStreamPublisher(s.js).Publish(s.ctx, event)
	require.NoError(s.T(), err)

	// then
	msgs := s.fetchAll(2)
	require.Len(s.T(), msgs, 1)
	s.Equal(messaging.SalesRecordedSubject, msgs[0].Subject())
	s.Equal("application/json", msgs[0].Headers().Get("Content-Type"))
	s.Equal(event.SaleID.String(), msgs[0].Headers().Get(natsgo.MsgIdHdr))

	var got events.SaleRecordedEvent
	require.NoError(s.T(), json.Unmarshal(msgs[0].Data(), &got))
	s.Equal(event.SaleID, got.SaleID)
	s.Equal(event.CustomerNationalID, got.CustomerNationalID)
	s.True(event.Total.Equal(got.Total))
	s.Equal(event.CreatedAt, got.CreatedAt.UTC())
	s.Require().Len(got.Items, 1)
	s.Equal(int32(2), got.Items[0].Quantity)
}

func (s *PublisherSuite) TestPublishTwiceStoresOnce() {
	// given
	publisher := NewJetStreamPublisher(s.js)
	event := events.SaleRecordedEvent{SaleID: uuid.New(), Total: decimal.RequireFromString("1.00")}

	// when
	require.NoError(s.T(), publisher.Publish(s.ctx, event))
	require.NoError(s.T(), publisher.Publish(s.ctx, event))

	// then
	require.Len(s.T(), s.fetchAll(2), 1)
}
