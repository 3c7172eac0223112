package routes

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AnshRaj112/healthtips-backend/internal/config"
	"github.com/AnshRaj112/healthtips-backend/internal/handlers"
	"github.com/AnshRaj112/healthtips-backend/internal/middleware"
	"github.com/AnshRaj112/healthtips-backend/internal/models"
	"github.com/go-chi/chi/v5"
)

// Auth is the session side of the auth service the router needs.
type Auth interface {
	handlers.Authenticator
	Lookup(ctx context.Context, cookie string) (*models.Session, error)
}

// Deps is everything the router wires together. Metrics, MetricsHandler and
// the limiters are optional.
type Deps struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         handlers.Pinger
	HealthTips handlers.Store[models.HealthTip]
	Recipes    handlers.Store[models.Recipe]
	Auth       Auth

	Metrics        *middleware.Metrics
	MetricsHandler http.Handler
	GlobalLimiter  *middleware.RateLimiter
	LoginLimiter   *middleware.RateLimiter
}

// NewRouter builds the middleware chain and mounts every route.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Sessions(deps.Auth.Lookup))
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Recovery)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler)
	}
	r.Use(middleware.CORS(deps.Config.AllowedOrigins))
	if deps.Config.IsProduction() {
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.HostCheck(deps.Config.AllowedHost))
	}
	if deps.GlobalLimiter != nil {
		r.Use(deps.GlobalLimiter.Handler)
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	SetupRoutes(r, deps)
	return r
}

func SetupRoutes(r chi.Router, deps Deps) {
	system := handlers.NewSystemHandler(deps.Config, deps.DB)
	r.Get("/", system.Home)
	r.Get("/health", system.Health)
	r.Get("/debug/env", system.DebugEnv)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// Auth routes
	auth := handlers.NewAuthHandler(deps.Auth, deps.Config.OAuthConfigured(), deps.Config.IsProduction())
	r.Group(func(r chi.Router) {
		if deps.LoginLimiter != nil {
			r.Use(deps.LoginLimiter.Handler)
		}
		r.Get("/login", auth.Login)
		r.Get("/auth/github/callback", auth.Callback)
	})
	r.Get("/logout", auth.Logout)

	r.Route("/healthtips", func(r chi.Router) {
		mountResource(r, handlers.NewHealthTipHandler(deps.HealthTips))
	})
	r.Route("/recipes", func(r chi.Router) {
		mountResource(r, handlers.NewRecipeHandler(deps.Recipes))
	})
}

// mountResource registers the CRUD routes; reads are public, writes need a session.
func mountResource[T any](r chi.Router, h *handlers.Resource[T]) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}
