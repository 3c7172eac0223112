package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/AnshRaj112/healthtips-backend/internal/middleware"
	"github.com/AnshRaj112/healthtips-backend/internal/services"
)

const (
	stateCookieName = "oauth_state"
	stateCookieTTL  = 10 * time.Minute
	callbackPath    = "/auth/github/callback"
)

// Authenticator is the login flow the auth routes drive.
type Authenticator interface {
	BeginLogin() (state, authorizeURL string, err error)
	CompleteLogin(ctx context.Context, p services.CallbackParams) (*services.LoginResult, error)
	Logout(ctx context.Context, cookie string) error
}

type AuthHandler struct {
	auth    Authenticator
	enabled bool // false when the GitHub credentials are missing
	secure  bool // Secure cookies, set in production
}

func NewAuthHandler(auth Authenticator, enabled, secure bool) *AuthHandler {
	return &AuthHandler{auth: auth, enabled: enabled, secure: secure}
}

// Login handles GET /login by redirecting to the provider.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		writeError(w, http.StatusServiceUnavailable, "GitHub OAuth is not configured", nil)
		return
	}

	state, authorizeURL, err := h.auth.BeginLogin()
	if err != nil {
		slog.Error("failed to start login", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to start login", nil)
		return
	}

	slog.Info("🔐 Starting GitHub OAuth login")
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     callbackPath,
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authorizeURL, http.StatusTemporaryRedirect)
}

// Callback handles GET /auth/github/callback. Failures never reach the client
// as errors, only as /?error=<code>.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := services.CallbackParams{
		Error: q.Get("error"),
		State: q.Get("state"),
		Code:  q.Get("code"),
	}
	if c, err := r.Cookie(stateCookieName); err == nil {
		params.ExpectedState = c.Value
	}
	// the state is single-use
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Path:     callbackPath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	res, err := h.auth.CompleteLogin(r.Context(), params)
	if err != nil {
		code := services.ErrCodeInternal
		var loginErr *services.LoginError
		if errors.As(err, &loginErr) {
			code = loginErr.Code
		}
		slog.Warn("❌ GitHub OAuth failed",
			slog.String("code", code),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		)
		http.Redirect(w, r, "/?error="+url.QueryEscape(code), http.StatusTemporaryRedirect)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    res.Cookie,
		Path:     "/",
		MaxAge:   int(res.Session.ExpiresAt.Sub(res.Session.CreatedAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout handles GET /logout. It succeeds with or without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.auth.Logout(r.Context(), c.Value); err != nil {
			slog.Error("session destroy error", slog.String("error", err.Error()))
		}
	}

	if session := middleware.SessionFromContext(r.Context()); session != nil {
		slog.Info("👋 User logging out", slog.String("username", session.User.Username))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Logged out successfully"})
}
