package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestContextHandler(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	testCases := []struct {
		name     string
		ctx      context.Context
		bind     bool
		contains []string
		count    int
	}{
		{
			name:     "request id from context",
			ctx:      context.WithValue(context.Background(), middleware.RequestIDKey, "req-1"),
			contains: []string{`"request_id":"req-1"`},
			count:    1,
		},
		{
			name:     "request id bound with With is not repeated",
			ctx:      context.WithValue(context.Background(), middleware.RequestIDKey, "req-1"),
			bind:     true,
			contains: []string{`"request_id":"req-1"`},
			count:    1,
		},
		{
			name:     "trace and span ids",
			ctx:      trace.ContextWithSpanContext(context.Background(), spanCtx),
			contains: []string{`"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`, `"span_id":"00f067aa0ba902b7"`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))
			if tc.bind {
				log = log.With(RequestIDKey, middleware.GetReqID(tc.ctx))
			}

			// when
			log.InfoContext(tc.ctx, "sale recorded")

			// then
			out := buf.String()
			for _, want := range tc.contains {
				assert.Contains(t, out, want)
			}
			assert.Equal(t, tc.count, strings.Count(out, RequestIDKey))
		})
	}
}
