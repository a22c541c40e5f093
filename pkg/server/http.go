package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/farmstore/pkg/config"
	"github.com/abgdnv/farmstore/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewHTTPServer binds handler to the configured port with the configured limits.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        handler,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}
	srv.ReadTimeout = cfg.Timeout.Read
	srv.WriteTimeout = cfg.Timeout.Write
	srv.IdleTimeout = cfg.Timeout.Idle
	srv.ReadHeaderTimeout = cfg.Timeout.ReadHeader
	return srv
}

// NewChiRouter returns a router that tags every request with an ID, logs it
// and recovers panics. It answers CORS requests when origins are configured
// and strips trailing slashes.
func NewChiRouter(logger *slog.Logger, corsCfg config.CorsConfig) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(
		middleware.RequestID,
		web.StructuredLogger(logger),
		web.Recoverer(logger),
	)
	if corsCfg.Enabled() {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsCfg.AllowedOrigins,
			AllowedMethods: corsCfg.AllowedMethods,
			AllowedHeaders: corsCfg.AllowedHeaders,
			ExposedHeaders: corsCfg.ExposedHeaders,
			MaxAge:         int(corsCfg.MaxAge.Seconds()),
		}))
	}
	mux.Use(middleware.StripSlashes)
	return mux
}
