package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnshRaj112/healthtips-backend/internal/models"
	"github.com/AnshRaj112/healthtips-backend/pkg/utils"
)

// Login error codes carried back to the landing page as ?error=<code>.
const (
	ErrCodeOAuthDenied = "oauth_denied"
	ErrCodeOAuthFailed = "oauth_failed"
	ErrCodeInternal    = "internal_error"
)

var (
	ErrStateMismatch = errors.New("oauth state mismatch")
	ErrMissingCode   = errors.New("missing authorization code")
)

// LoginError is a failed callback. Code is safe to show the client; Err is
// for the server log only.
type LoginError struct {
	Code string
	Err  error
}

func (e *LoginError) Error() string {
	if e.Err == nil {
		return "login failed: " + e.Code
	}
	return fmt.Sprintf("login failed: %s: %v", e.Code, e.Err)
}

func (e *LoginError) Unwrap() error { return e.Err }

// CallbackParams is what the provider's redirect and the state cookie carry.
type CallbackParams struct {
	Error         string // provider-reported "error" query parameter
	State         string
	ExpectedState string // from the state cookie
	Code          string
}

type LoginResult struct {
	Cookie  string // signed session token for the session cookie
	Session *models.Session
}

// AuthService drives the two login transitions and session lookups.
type AuthService struct {
	provider OAuthProvider
	store    SessionStore
	signer   *utils.Signer
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(provider OAuthProvider, store SessionStore, signer *utils.Signer) *AuthService {
	return &AuthService{
		provider: provider,
		store:    store,
		signer:   signer,
		ttl:      SessionDuration,
		now:      time.Now,
	}
}

// BeginLogin returns a fresh state and the provider URL to redirect to.
func (s *AuthService) BeginLogin() (state, authorizeURL string, err error) {
	state, err = NewSessionToken()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate state: %w", err)
	}
	return state, s.provider.AuthCodeURL(state), nil
}

// CompleteLogin verifies the callback and, on success, stores a new session
// holding the provider profile. Every failure is a *LoginError.
func (s *AuthService) CompleteLogin(ctx context.Context, p CallbackParams) (*LoginResult, error) {
	if p.Error != "" {
		return nil, &LoginError{Code: ErrCodeOAuthDenied, Err: fmt.Errorf("provider error: %s", p.Error)}
	}
	if p.State == "" || p.ExpectedState == "" ||
		subtle.ConstantTimeCompare([]byte(p.State), []byte(p.ExpectedState)) != 1 {
		return nil, &LoginError{Code: ErrCodeOAuthFailed, Err: ErrStateMismatch}
	}
	if p.Code == "" {
		return nil, &LoginError{Code: ErrCodeOAuthFailed, Err: ErrMissingCode}
	}

	profile, err := s.provider.Exchange(ctx, p.Code)
	if err != nil {
		return nil, &LoginError{Code: ErrCodeOAuthFailed, Err: err}
	}

	token, err := NewSessionToken()
	if err != nil {
		return nil, &LoginError{Code: ErrCodeInternal, Err: err}
	}

	now := s.now().UTC()
	session := &models.Session{
		User:      *profile,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, token, session); err != nil {
		return nil, &LoginError{Code: ErrCodeInternal, Err: err}
	}

	slog.Info("user logged in", slog.String("username", profile.Username))
	return &LoginResult{Cookie: s.signer.Sign(token), Session: session}, nil
}

// Lookup returns the session behind a cookie value, or nil for anonymous
// requests (missing, tampered, unknown or expired).
func (s *AuthService) Lookup(ctx context.Context, cookie string) (*models.Session, error) {
	if cookie == "" {
		return nil, nil
	}
	token, err := s.signer.Verify(cookie)
	if err != nil {
		return nil, nil
	}
	return s.store.Get(ctx, token)
}

// Logout destroys the session behind cookie. Logging out without a valid
// session is not an error.
func (s *AuthService) Logout(ctx context.Context, cookie string) error {
	if cookie == "" {
		return nil
	}
	token, err := s.signer.Verify(cookie)
	if err != nil {
		return nil
	}
	if err := s.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

