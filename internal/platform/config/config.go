package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config configures the interactive client.
type Config struct {
	AppEnv         string        `env:"APP_ENV" default:"development"`
	BackendURL     string        `env:"BACKEND_URL" default:"http://localhost:8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" default:"10s"`
	LoginPath      string        `env:"LOGIN_PATH" default:"/login"`
	MetricsAddr    string        `env:"METRICS_ADDR"`
	LogLevel       string        `env:"LOG_LEVEL" default:"info"`
	LogFormat      string        `env:"LOG_FORMAT" default:"text"`
}

// BackendConfig configures the development backend.
type BackendConfig struct {
	AppEnv        string        `env:"APP_ENV" default:"development"`
	Port          string        `env:"PORT" default:"8080"`
	SessionSecret string        `env:"SESSION_SECRET"`
	TokenSecret   string        `env:"TOKEN_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" default:"5m"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days
	Users         string        `env:"BACKEND_USERS" default:"demo:demo"`
	LogLevel      string        `env:"LOG_LEVEL" default:"info"`
	LogFormat     string        `env:"LOG_FORMAT" default:"text"`

	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" default:"5"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" default:"10"`
}

// User is a seeded account of the development backend.
type User struct {
	Username string
	Password string
	Admin    bool
	Banned   bool
}

const minTokenSecretLength = 16

func Load() (*Config, error) {
	loadDotEnv()

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func LoadBackend() (*BackendConfig, error) {
	loadDotEnv()

	var cfg BackendConfig
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validateBackend(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.BackendURL)
	if err != nil {
		return fmt.Errorf("BACKEND_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BACKEND_URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("BACKEND_URL must include a host")
	}

	if cfg.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if !strings.HasPrefix(cfg.LoginPath, "/") {
		return fmt.Errorf("LOGIN_PATH must start with /, got %q", cfg.LoginPath)
	}

	return validateLogFormat(cfg.LogFormat)
}

func validateBackend(cfg *BackendConfig) error {
	required := map[string]string{
		"SESSION_SECRET": cfg.SessionSecret,
		"TOKEN_SECRET":   cfg.TokenSecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if len(cfg.TokenSecret) < minTokenSecretLength {
		return fmt.Errorf("TOKEN_SECRET must be at least %d characters", minTokenSecretLength)
	}
	if cfg.TokenTTL < time.Second {
		return errors.New("TOKEN_TTL must be at least 1s")
	}
	if cfg.SessionMaxAge < cfg.TokenTTL {
		return errors.New("SESSION_MAX_AGE must not be shorter than TOKEN_TTL")
	}
	if cfg.AuthRateLimit <= 0 || cfg.AuthRateBurst <= 0 {
		return errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must be positive")
	}
	if _, err := cfg.ParseUsers(); err != nil {
		return err
	}

	return validateLogFormat(cfg.LogFormat)
}

func validateLogFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", format)
	}
}

// ParseUsers parses BACKEND_USERS: space-separated "name:password[:flag...]"
// entries where flag is "admin" or "banned".
func (cfg *BackendConfig) ParseUsers() ([]User, error) {
	var users []User
	seen := make(map[string]bool)

	for _, entry := range strings.Fields(cfg.Users) {
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("BACKEND_USERS entry %q must be name:password", entry)
		}
		if seen[parts[0]] {
			return nil, fmt.Errorf("BACKEND_USERS contains duplicate user %q", parts[0])
		}
		seen[parts[0]] = true

		u := User{Username: parts[0], Password: parts[1]}
		for _, flag := range parts[2:] {
			switch flag {
			case "admin":
				u.Admin = true
			case "banned":
				u.Banned = true
			default:
				return nil, fmt.Errorf("BACKEND_USERS entry %q has unknown flag %q", entry, flag)
			}
		}
		users = append(users, u)
	}

	if len(users) == 0 {
		return nil, errors.New("BACKEND_USERS must name at least one user")
	}
	return users, nil
}
