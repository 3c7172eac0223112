package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AnshRaj112/healthtips-backend/internal/config"
	"github.com/AnshRaj112/healthtips-backend/internal/middleware"
	"github.com/AnshRaj112/healthtips-backend/internal/models"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the landing, health and debug endpoints.
type SystemHandler struct {
	cfg *config.Config
	db  Pinger
	now func() time.Time
}

func NewSystemHandler(cfg *config.Config, db Pinger) *SystemHandler {
	return &SystemHandler{cfg: cfg, db: db, now: time.Now}
}

type homeResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	User    *models.Profile   `json:"user,omitempty"`
	Links   map[string]string `json:"links"`
}

// Home handles GET /
func (h *SystemHandler) Home(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		writeJSON(w, http.StatusOK, homeResponse{
			Success: false,
			Message: "You are not logged in",
			Links:   map[string]string{"login": "/login"},
		})
		return
	}

	user := session.User
	writeJSON(w, http.StatusOK, homeResponse{
		Success: true,
		Message: "Welcome " + user.Name() + "!",
		User:    &user,
		Links: map[string]string{
			"login":      "/login",
			"logout":     "/logout",
			"recipes":    "/recipes",
			"healthtips": "/healthtips",
		},
	})
}

type healthResponse struct {
	Success     bool   `json:"success"`
	Status      string `json:"status"`
	Database    string `json:"database"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

// Health handles GET /health, answering 503 when the database is unreachable.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Success:     true,
		Status:      "healthy",
		Database:    "connected",
		Timestamp:   h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Environment: h.cfg.Environment,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		resp.Success = false
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// DebugEnv handles GET /debug/env. It reports which settings are present,
// never their values, and does not exist in production.
func (h *SystemHandler) DebugEnv(w http.ResponseWriter, r *http.Request) {
	if h.cfg.IsProduction() {
		NotFound(w, r)
		return
	}

	set := func(v string) string {
		if v == "" {
			return "❌ Missing"
		}
		return "✅ Set"
	}

	secret := "✅ Set"
	if h.cfg.UsingDefaultSessionSecret() {
		secret = "⚠️ Default"
	}

	var username *string
	session := middleware.SessionFromContext(r.Context())
	if session != nil {
		username = &session.User.Username
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"environment": map[string]string{
			"MONGODB_URI":          set(h.cfg.MongoURI),
			"DB_NAME":              h.cfg.DBName,
			"REDIS_URI":            set(h.cfg.RedisURI),
			"GITHUB_CLIENT_ID":     set(h.cfg.GitHubClientID),
			"GITHUB_CLIENT_SECRET": set(h.cfg.GitHubClientSecret),
			"GITHUB_CALLBACK_URL":  h.cfg.CallbackURL(),
			"SESSION_SECRET":       secret,
			"ENV":                  h.cfg.Environment,
			"PORT":                 h.cfg.Port,
		},
		"session": map[string]any{
			"isAuthenticated": session != nil,
			"user":            username,
		},
	})
}
