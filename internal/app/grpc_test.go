package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestSetupGrpcServer_HealthFollowsServingStatus(t *testing.T) {
	// given
	deps := &Dependencies{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	server, health := SetupGrpcServer(deps, false)
	lis := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	client := grpc_health_v1.NewHealthClient(conn)

	// when
	before, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	after, err := client.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)

	// then
	require.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, before.GetStatus())
	require.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, after.GetStatus())
}
