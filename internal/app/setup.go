// Package app wires the farmstore stores, services and transports together.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/farmstore/internal/config"
	"github.com/abgdnv/farmstore/internal/idempotency"
	"github.com/abgdnv/farmstore/internal/service"
	"github.com/abgdnv/farmstore/internal/stock"
	"github.com/abgdnv/farmstore/internal/store"
	"github.com/abgdnv/farmstore/internal/transport/rest"
	pconfig "github.com/abgdnv/farmstore/pkg/config"
	"github.com/abgdnv/farmstore/pkg/messaging"
	"github.com/abgdnv/farmstore/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "farmstore"

type Dependencies struct {
	Services rest.Services
	Store    *store.PgStore
	Logger   *slog.Logger

	// IdempotencyKeys guards POST /sales against replays; nil disables the check.
	IdempotencyKeys idempotency.Keys
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	// Cors lets browser clients on other origins call the API; zero value disables it.
	Cors pconfig.CorsConfig
}

// SetupDependencies builds the services on top of one PostgreSQL store.
// A nil publisher drops sale events.
func SetupDependencies(dbPool *pgxpool.Pool, publisher messaging.Publisher, retry pconfig.RetryConfig, logger *slog.Logger) *Dependencies {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	pgStore := store.NewPgStore(dbPool)
	guard := stock.NewGuard(logger.With("component", "stock"))

	return &Dependencies{
		Services: rest.Services{
			Products:  service.NewProductService(pgStore),
			Customers: service.NewCustomerService(pgStore),
			Suppliers: service.NewSupplierService(pgStore),
			Sales:     service.NewSaleService(pgStore, guard, publisher, retry, logger.With("component", "sales")),
		},
		Store:  pgStore,
		Logger: logger,
	}
}

// SetupHttpHandler initializes the router of the farmstore API.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger, deps.Cors)
	wireRoutes(mux, deps)
	return otelhttp.NewHandler(mux, serviceName)
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	var saleMiddlewares []func(http.Handler) http.Handler
	if deps.IdempotencyKeys != nil {
		saleMiddlewares = append(saleMiddlewares, idempotency.Middleware(deps.IdempotencyKeys, deps.Logger))
	}
	handler := rest.NewHandler(deps.Services, deps.Store, deps.Logger, saleMiddlewares...)
	handler.RegisterRoutes(mux)

	if deps.MetricsHandler != nil {
		mux.Handle("/metrics", deps.MetricsHandler)
	}
}

// SetupHttpServer creates and configures the HTTP server of the farmstore API.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}

// SetupGrpcServer creates the ops gRPC server exposing the standard health service.
// The health status starts as NOT_SERVING; the caller flips it once the database is reachable.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) (*grpc.Server, *health.Server) {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	registerHealth := func(s *grpc.Server) {
		grpc_health_v1.RegisterHealthServer(s, healthServer)
	}
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, registerHealth), healthServer
}
