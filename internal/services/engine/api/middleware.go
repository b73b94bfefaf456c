package api

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EngineKeyHeader carries the pre-shared key on every request.
const EngineKeyHeader = "X-ENGINE-KEY"

const tracerName = "github.com/louisbranch/roundtable/internal/services/engine/api"

// requireEngineKey rejects requests whose pre-shared key does not match.
// The health endpoint stays open for probes.
func requireEngineKey(next http.Handler, key string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isKeyExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get(EngineKeyHeader) != key {
			writeDetail(w, http.StatusForbidden, "Invalid or missing ENGINE_KEY")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isKeyExempt(path string) bool {
	return path == "/up"
}

// withTracing opens one server span per request using the globally
// registered provider; with tracing disabled these are no-op spans.
func withTracing(next http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("url.path", r.URL.Path),
			),
		)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
