package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/prepmate/prepmate/internal/auth"
	"github.com/prepmate/prepmate/internal/ratelimit"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserID returns the authenticated user id placed in the request context by
// RequireAuth. Empty for unauthenticated requests.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// Middleware bundles the cross-cutting request wrappers.
type Middleware struct {
	Tokens *auth.TokenManager
	Log    *zap.Logger
}

// RequireAuth verifies the bearer token and stores the user id in the
// request context. Absence and invalidity get distinct messages but the
// same status, so callers cannot probe which tokens exist.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			sendError(w, http.StatusUnauthorized, msgTokenMissing)
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		userID, err := m.Tokens.Verify(token)
		if err != nil {
			sendError(w, http.StatusUnauthorized, msgTokenInvalid)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Limit rejects callers that exhausted their request budget.
func Limit(limiter *ratelimit.Limiter, message string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(clientIP(r)) {
			sendError(w, http.StatusTooManyRequests, message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
