// Package main runs the farmstore point-of-sale API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abgdnv/farmstore/internal/app"
	"github.com/abgdnv/farmstore/internal/config"
	"github.com/abgdnv/farmstore/internal/idempotency"
	"github.com/abgdnv/farmstore/migrations"
	"github.com/abgdnv/farmstore/pkg/bootstrap"
	"github.com/abgdnv/farmstore/pkg/config/configloader"
	"github.com/abgdnv/farmstore/pkg/messaging"
	natsclient "github.com/abgdnv/farmstore/pkg/nats"
	"github.com/abgdnv/farmstore/pkg/telemetry"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "farmstore"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run connects to the database and the optional backends, then serves HTTP, gRPC and pprof until ctx is done.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	if cfg.Database.Migrate {
		if err := migrations.Up(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("Database migrations applied")
	}

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	logger.Info("Successfully connected to the database!")

	meterProvider, metricsHandler, err := telemetry.NewMeterProvider(serviceName)
	if err != nil {
		return err
	}

	var tracerProvider *tracesdk.TracerProvider
	if cfg.Telemetry.Enabled {
		tracerProvider, err = telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return err
		}
	}

	publisher, closePublisher, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	deps := app.SetupDependencies(dbPool, publisher, cfg.Sales.Retry, logger)
	deps.MetricsHandler = metricsHandler
	deps.Cors = cfg.HTTPServer.Cors

	if cfg.Redis.Enabled {
		redisClient, err := bootstrap.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("Failed to close Redis client", slog.String("error", err.Error()))
			}
		}()
		deps.IdempotencyKeys = idempotency.NewRedisKeys(redisClient, cfg.Redis.KeyTTL)
		logger.Info("Idempotency keys stored in Redis", slog.String("addr", cfg.Redis.Addr))
	}

	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer, grpcHealth := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)
	grpcHealth.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	pprofServer := &http.Server{
		Addr:              cfg.PProf.Addr,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader,
	}

	g, gCtx := errgroup.WithContext(ctx)

	serveHTTP(gCtx, g, "HTTP", httpServer, cfg.Shutdown.Timeout, logger)
	if cfg.PProf.Enabled {
		serveHTTP(gCtx, g, "pprof", pprofServer, cfg.Shutdown.Timeout, logger)
	}

	// Start the gRPC server
	g.Go(func() error {
		grpcAddr := ":" + cfg.GRPC.Port
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})
	// gracefully shutdown gRPC server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down gRPC server...")
		grpcHealth.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			grpcHealth.Shutdown()
			close(stopped)
		}()
		select {
		case <-stopped:
			logger.Info("gRPC server stopped gracefully.")
			return nil
		case <-time.After(cfg.Shutdown.Timeout):
			logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			grpcServer.Stop()
			return fmt.Errorf("grpc server graceful stop timed out")
		}
	})

	if tracerProvider != nil {
		onShutdown(gCtx, g, "tracer provider", cfg.Shutdown.Timeout, logger, tracerProvider.Shutdown)
	}
	onShutdown(gCtx, g, "meter provider", cfg.Shutdown.Timeout, logger, meterProvider.Shutdown)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// serveHTTP runs srv until gCtx is done, then shuts it down within timeout.
func serveHTTP(gCtx context.Context, g *errgroup.Group, name string, srv *http.Server, timeout time.Duration, logger *slog.Logger) {
	g.Go(func() error {
		logger.Info("Server listening", slog.String("server", name), slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	onShutdown(gCtx, g, name+" server", timeout, logger, srv.Shutdown)
}

// onShutdown calls stop once gCtx is done, giving it timeout to finish.
func onShutdown(gCtx context.Context, g *errgroup.Group, name string, timeout time.Duration, logger *slog.Logger, stop func(context.Context) error) {
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down", slog.String("component", name))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down %s: %w", name, err)
		}
		return nil
	})
}

// newPublisher connects to NATS JetStream when enabled and returns a publisher guarded by a circuit breaker.
// When NATS is disabled sale events are dropped.
func newPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.NATS.Enabled {
		return messaging.NopPublisher{}, func() {}, nil
	}
	nc, err := natsclient.NewClient(cfg.NATS, serviceName, logger)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.NATS.Timeout)
	defer cancel()
	if err := natsclient.EnsureStream(streamCtx, js, cfg.NATS, messaging.SalesRecordedSubject); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Publishing sale events to NATS", slog.String("url", nc.ConnectedUrlRedacted()), slog.String("stream", cfg.NATS.Stream))

	closeFn := func() {
		if err := nc.Drain(); err != nil {
			logger.Error("Failed to drain NATS connection", slog.String("error", err.Error()))
		}
	}
	return messaging.NewBreakerPublisher(natsclient.NewJetStreamPublisher(js), cfg.Breaker), closeFn, nil
}
