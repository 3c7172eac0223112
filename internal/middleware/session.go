package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AnshRaj112/healthtips-backend/internal/models"
)

// SessionCookieName carries the signed session token.
const SessionCookieName = "healthtips.sid"

type contextKey string

var (
	sessionContextKey      = contextKey("session")
	sessionErrorContextKey = contextKey("session_error")
)

// SessionLookup resolves a session cookie value; nil means anonymous.
type SessionLookup func(ctx context.Context, cookie string) (*models.Session, error)

// Sessions loads the session named by the cookie into the request context.
// It never rejects a request; RequireAuth does that for protected routes. A
// failed lookup leaves the request anonymous but is remembered so protected
// routes answer 500 rather than asking for a new login.
func Sessions(lookup SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := lookup(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to load session",
					slog.String("error", err.Error()),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionErrorContextKey, err)))
				return
			}
			if session != nil {
				r = r.WithContext(ContextWithSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext returns the authenticated session, or nil.
func SessionFromContext(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionContextKey).(*models.Session)
	return session
}

func ContextWithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionErrorFromContext returns the error of a failed session lookup, if any.
func SessionErrorFromContext(ctx context.Context) error {
	err, _ := ctx.Value(sessionErrorContextKey).(error)
	return err
}

// RequireAuth rejects requests without a session with 401, or 500 when the
// session could not be loaded.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionErrorFromContext(r.Context()) != nil {
			writeJSON(w, http.StatusInternalServerError, errorBody{
				Error:   "Internal server error",
				Message: "Session could not be loaded, try again later",
			})
			return
		}
		if SessionFromContext(r.Context()) == nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{
				Error:   "Authentication required",
				Message: "You do not have access. Please authenticate via /login",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
