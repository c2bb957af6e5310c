package ledger_http

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type contextKey string

const actorContextKey contextKey = "actor"

// ActorFromContext returns the authenticated username, or "" when the
// request never passed RequireAuth.
func ActorFromContext(r *http.Request) string {
	if actor, ok := r.Context().Value(actorContextKey).(string); ok {
		return actor
	}
	return ""
}

// RequireAuth resolves the bearer token into a username and stores it in the
// request context. The service still checks the resolved actor against the
// account each operation claims to move money for.
func (h *LedgerHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			http.Error(w, "Missing bearer token", http.StatusUnauthorized)
			return
		}

		actor, err := h.service.ResolveSession(token)
		if err != nil {
			h.logger.Warn("Rejected request with invalid session token", zap.String("path", r.URL.Path))
			http.Error(w, "Invalid session token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
