// Package idempotency rejects replays of a request carrying an already used Idempotency-Key.
package idempotency

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	perrors "github.com/abgdnv/farmstore/internal/errors"
	"github.com/abgdnv/farmstore/pkg/web"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderKey = "Idempotency-Key"
	keyPrefix = "idem:sale:"
	maxKeyLen = 128
)

// Keys remembers claimed idempotency keys.
type Keys interface {
	// Claim records key and reports whether it was not claimed before.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so the request can be sent again.
	Release(ctx context.Context, key string) error
}

// RedisKeys stores claimed keys in Redis with a TTL.
type RedisKeys struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisKeys(client *redis.Client, ttl time.Duration) *RedisKeys {
	return &RedisKeys{client: client, ttl: ttl}
}

func (r *RedisKeys) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyPrefix+key, 1, r.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *RedisKeys) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}

// Middleware claims the Idempotency-Key of a request before it is handled.
// A replayed key gets 409. A key whose request failed or panicked is released.
// Requests without the header pass through untouched.
func Middleware(keys Keys, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderKey)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			log := logger.With(slog.String("request_id", middleware.GetReqID(r.Context())))
			if len(key) > maxKeyLen {
				web.RespondError(w, log, http.StatusBadRequest, "Invalid Idempotency-Key")
				return
			}

			claimed, err := keys.Claim(r.Context(), key)
			if err != nil {
				log.ErrorContext(r.Context(), "Failed to claim idempotency key", slog.String("error", err.Error()))
				web.RespondError(w, log, http.StatusInternalServerError, "Failed to process request")
				return
			}
			if !claimed {
				log.WarnContext(r.Context(), "Replayed idempotency key", slog.String("key", key))
				web.RespondError(w, log, http.StatusConflict, perrors.ErrDuplicateRequest.Error())
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				// released on panic as well; the recoverer upstream answers the request
				rvr := recover()
				if rvr != nil || ww.Status() >= http.StatusBadRequest {
					if err := keys.Release(context.WithoutCancel(r.Context()), key); err != nil {
						log.ErrorContext(r.Context(), "Failed to release idempotency key", slog.String("error", err.Error()))
					}
				}
				if rvr != nil {
					panic(rvr)
				}
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
