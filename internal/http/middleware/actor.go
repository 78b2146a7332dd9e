package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ActorHeader carries the id of the user performing a request
const ActorHeader = "X-User-ID"

type contextKey string

const actorContextKey contextKey = "actorID"

// WithActor adds the acting user id to the context
func WithActor(ctx context.Context, actorID uuid.UUID) context.Context {
	return context.WithValue(ctx, actorContextKey, actorID)
}

// ActorFromContext extracts the acting user id from the context
func ActorFromContext(ctx context.Context) (uuid.UUID, bool) {
	actorID, ok := ctx.Value(actorContextKey).(uuid.UUID)
	return actorID, ok
}

// Actor reads the X-User-ID header into the request context. The header is
// optional and trusted; a malformed value is rejected with 400.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(ActorHeader))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		actorID, err := uuid.Parse(raw)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"type":"bad_request","title":"Bad Request","status":400,"detail":"X-User-ID must be a valid UUID"}`))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actorID)))
	})
}
