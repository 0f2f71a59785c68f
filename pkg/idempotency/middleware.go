package idempotency

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const Header = "Idempotency-Key"

// ScopeFunc namespaces keys, normally by the authenticated caller.
type ScopeFunc func(r *http.Request) string

// Middleware rejects a request whose Idempotency-Key was already used in the
// same scope with 409. Requests without the header pass through. A claim is
// released when the handler does not answer with a 2xx, so a failed attempt
// may be retried under the same key.
func Middleware(log *slog.Logger, store *Store, scope ScopeFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(Header)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			redisKey := "idem:http:" + scope(r) + ":" + key
			seen, err := store.Seen(ctx, redisKey)
			if err != nil {
				log.Warn("idempotency check failed, continuing", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "duplicate request"})
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if status := ww.Status(); status < 200 || status >= 300 {
				if err := store.Release(ctx, redisKey); err != nil {
					log.Warn("idempotency release failed", "key", redisKey, "err", err)
				}
			}
		})
	}
}
