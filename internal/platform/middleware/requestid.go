package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"sutura/pkg/requestcontext"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns a request ID (honoring an incoming X-Request-ID header)
// and exposes it on the context and the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID set by this middleware.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
