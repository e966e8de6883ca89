package rest

import (
	"net/http"
	"property-explorer/internal/contextkeys"
	"property-explorer/internal/core/port"

	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "session_id"
)

// SessionMiddleware определяет UI-сессию по заголовку или cookie.
// Если сессии нет или id не UUID, создается новая и возвращается клиенту.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(SessionHeader)
		if sessionID == "" {
			if c, err := r.Cookie(SessionCookie); err == nil {
				sessionID = c.Value
			}
		}

		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(SessionHeader, sessionID)

		logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"session_id": sessionID})
		ctx := contextkeys.ContextWithLogger(r.Context(), logger)
		ctx = contextkeys.ContextWithSessionID(ctx, sessionID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
