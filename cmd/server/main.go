package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AnshRaj112/healthtips-backend/internal/config"
	"github.com/AnshRaj112/healthtips-backend/internal/database"
	"github.com/AnshRaj112/healthtips-backend/internal/logger"
	"github.com/AnshRaj112/healthtips-backend/internal/middleware"
	"github.com/AnshRaj112/healthtips-backend/internal/repository"
	"github.com/AnshRaj112/healthtips-backend/internal/routes"
	"github.com/AnshRaj112/healthtips-backend/internal/services"
	"github.com/AnshRaj112/healthtips-backend/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		slog.Error("❌ Server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Load env
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}
	cfg := config.Load()
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.UsingDefaultSessionSecret() {
		log.Warn("⚠️  SESSION_SECRET not set, using the development default")
	}
	if !cfg.OAuthConfigured() {
		log.Warn("⚠️  GITHUB_CLIENT_ID/GITHUB_CLIENT_SECRET not set, /login is disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// MongoDB must be up before the server accepts traffic.
	mongo := database.NewMongo()
	if err := mongo.Connect(ctx, cfg.MongoURI, cfg.DBName); err != nil {
		log.Error("Failed to connect to MongoDB",
			slog.String("error", err.Error()),
			slog.String("hint", "check the connection string, credentials and that your IP is allowed"),
		)
		return err
	}
	defer func() {
		if err := mongo.Disconnect(context.Background()); err != nil {
			log.Error("MongoDB disconnect failed", slog.String("error", err.Error()))
		}
	}()

	healthTips, err := repository.NewHealthTips(mongo)
	if err != nil {
		return err
	}
	recipes, err := repository.NewRecipes(mongo)
	if err != nil {
		return err
	}

	var store services.SessionStore
	if cfg.RedisURI != "" {
		client, err := database.ConnectRedis(ctx, cfg.RedisURI)
		if err != nil {
			return err
		}
		defer client.Close()
		store = services.NewRedisSessionStore(client)
	} else {
		mem := services.NewMemorySessionStore()
		go mem.Run(ctx, 10*time.Minute)
		store = mem
		log.Info("Sessions kept in process memory (set REDIS_URI to share them)")
	}

	provider := services.NewGitHubProvider(services.GitHubConfig{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		CallbackURL:  cfg.CallbackURL(),
	})
	auth := services.NewAuthService(provider, store, utils.NewSigner(cfg.SessionSecret))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewMetrics(reg)
	if err != nil {
		return err
	}

	deps := routes.Deps{
		Config:         cfg,
		Logger:         log,
		DB:             mongo,
		HealthTips:     healthTips,
		Recipes:        recipes,
		Auth:           auth,
		Metrics:        metrics,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}

	// Per-IP limits in production only, as with the security headers.
	if cfg.IsProduction() {
		deps.GlobalLimiter = middleware.NewGlobalRateLimiter()
		deps.LoginLimiter = middleware.NewLoginRateLimiter()
		go deps.GlobalLimiter.Run(ctx)
		go deps.LoginLimiter.Run(ctx)
		log.Info("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Health tips backend running",
			slog.String("addr", server.Addr),
			slog.String("environment", cfg.Environment),
			slog.String("oauth_callback", cfg.CallbackURL()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}
