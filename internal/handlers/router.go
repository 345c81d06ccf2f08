package handlers

import (
	"net/http"
	"time"

	"github.com/prepmate/prepmate/internal/ratelimit"
)

// RouterConfig carries the wired handlers and boundary limiters.
type RouterConfig struct {
	Auth       *AuthHandler
	Documents  *DocumentHandler
	Chat       *ChatHandler
	Middleware *Middleware

	// APILimiter guards every /api route; LoginLimiter additionally
	// guards the login endpoint.
	APILimiter   *ratelimit.Limiter
	LoginLimiter *ratelimit.Limiter
}

// NewRouter assembles the full HTTP surface.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   msgServerRunning,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := func(h http.Handler) http.Handler {
		return Limit(cfg.APILimiter, msgTooManyRequests, h)
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return api(cfg.Middleware.RequireAuth(h))
	}

	mux.Handle("POST /api/auth/signup", api(http.HandlerFunc(cfg.Auth.Signup)))
	mux.Handle("POST /api/auth/login",
		api(Limit(cfg.LoginLimiter, msgTooManyLogins, http.HandlerFunc(cfg.Auth.Login))))

	mux.Handle("POST /api/documents/upload", protected(cfg.Documents.Upload))
	mux.Handle("GET /api/documents/list", protected(cfg.Documents.List))
	mux.Handle("DELETE /api/documents/{id}", protected(cfg.Documents.Delete))

	mux.Handle("POST /api/chat/start", protected(cfg.Chat.Start))
	mux.Handle("POST /api/chat/query", protected(cfg.Chat.Query))

	// Everything else is an unknown route.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		sendError(w, http.StatusNotFound, msgRouteNotFound)
	})

	return mux
}
