package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Assure-Desk/assuredesk/internal/domain/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionFrom extracts the authenticated session from a request context.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(*session.Session)
	return sess, ok
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// authMiddleware validates the bearer token, refreshes the session's
// sliding expiry, and stores the session in the request context. Missing,
// unknown, and expired tokens all map to 401.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		sess, err := h.sessions.Get(r.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				h.respondError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			h.logger.Error("session lookup failed", "error", err)
			h.respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		// Sliding expiry: every authenticated request extends the session.
		if err := h.sessions.Refresh(r.Context(), token); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			h.logger.Warn("session refresh failed", "error", err)
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
