package logger

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKeyCorrelationID struct{}

// CorrelationIDFromContext returns the request's correlation id, or "" when
// the context did not pass through Middleware.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyCorrelationID{}).(string)
	return id
}

// Middleware tags every request context with a fresh correlation id so logs
// across the request can be tied together.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ctxKeyCorrelationID{}, uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
