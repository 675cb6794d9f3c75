package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDKey string

const ridKey requestIDKey = "request_id"

// RequestIDHeader is the header the request ID is read from and echoed on.
const RequestIDHeader = "X-Request-ID"

// RequestID returns middleware that ensures every request carries an ID.
// An inbound X-Request-ID is trusted when present; otherwise a fresh UUID is
// generated. The ID is stored in the context and echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), ridKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext retrieves the request ID, or "" when the middleware
// did not run.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ridKey).(string)
	return id
}

// MaxBodySize returns middleware that limits request body size using
// http.MaxBytesReader. The limit is enforced when the body is read;
// BindJSON translates the resulting *http.MaxBytesError into a 400.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
