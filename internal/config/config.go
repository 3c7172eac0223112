package config

import (
	"errors"
	"os"
	"strings"
)

// DefaultSessionSecret is used when SESSION_SECRET is unset. Fine for local
// development, rejected in production by Validate.
const DefaultSessionSecret = "your-secret-key-here"

type Config struct {
	MongoURI           string
	DBName             string
	RedisURI           string   // empty keeps sessions in process memory
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string   // raw GITHUB_CALLBACK_URL; use CallbackURL()
	SessionSecret      string
	Port               string
	AllowedOrigins     []string // CORS: from ALLOWED_ORIGINS, "*" when unset
	AllowedHost        string   // production Host check (ALLOWED_HOST); empty disables it
	Environment        string   // ENV (or NODE_ENV): production, development, etc.
	LogLevel           string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", getEnv("NODE_ENV", "development"))))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return &Config{
		MongoURI:           getEnv("MONGODB_URI", getEnv("MONGO_URI", "")),
		DBName:             getEnv("DB_NAME", "Health_db"),
		RedisURI:           getEnv("REDIS_URI", ""),
		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		GitHubCallbackURL:  getEnv("GITHUB_CALLBACK_URL", ""),
		SessionSecret:      getEnv("SESSION_SECRET", DefaultSessionSecret),
		Port:               getEnv("PORT", "3000"),
		AllowedOrigins:     allowedOrigins,
		AllowedHost:        strings.TrimSpace(getEnv("ALLOWED_HOST", "")),
		Environment:        env,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports configuration that must stop the process from starting.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.MongoURI) == "" {
		errs = append(errs, errors.New("missing MongoDB URI: set MONGODB_URI"))
	}
	if c.IsProduction() && c.UsingDefaultSessionSecret() {
		errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
	}
	if c.IsProduction() && c.AllowsAnyOrigin() {
		errs = append(errs, errors.New("ALLOWED_ORIGINS must list explicit origins in production"))
	}
	return errors.Join(errs...)
}

// CallbackURL returns the OAuth redirect URL registered with GitHub.
func (c *Config) CallbackURL() string {
	if c.GitHubCallbackURL != "" {
		return c.GitHubCallbackURL
	}
	return "http://localhost:" + c.Port + "/auth/github/callback"
}

// OAuthConfigured is false when either GitHub credential is missing; /login
// then answers 503 instead of redirecting to a broken authorize URL.
func (c *Config) OAuthConfigured() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// AllowsAnyOrigin is true when CORS reflects every origin. With credentialed
// requests that lets any site act with the visitor's session.
func (c *Config) AllowsAnyOrigin() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (c *Config) UsingDefaultSessionSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
