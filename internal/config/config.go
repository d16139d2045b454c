package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// devJWTSecret signs tokens only when APP_ENV is dev or test.
const devJWTSecret = "dev-secret-change-me"

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set outside dev and test")

type Config struct {
	Env  string
	Port int

	StorageDriver string
	DBURI         string
	DBName        string

	JWTSecret   string
	JWTTTLHours int

	// GoogleClientID enables ID token verification on Google login when set.
	GoogleClientID string

	ClientOrigins []string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	OTELEndpoint  string
	AuthRateLimit int
}

func Load() Config {
	// a missing .env is fine, real deployments set the environment directly
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")

	cfg := Config{
		Env:            env,
		Port:           getEnvInt("PORT", 5000),
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StorageMongo)),
		DBURI:          getEnv("DB_URI", "mongodb://127.0.0.1:27017"),
		DBName:         getEnv("DB_NAME", "eTuitionBD"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTTTLHours:    getEnvInt("JWT_TTL_HOURS", 7*24),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		ClientOrigins:  splitList(getEnv("CLIENT_URL", "http://localhost:5173")),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		AdminName:      getEnv("ADMIN_NAME", "Administrator"),
		OTELEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 20),
	}

	if cfg.JWTSecret == "" && cfg.IsDev() {
		cfg.JWTSecret = devJWTSecret
	}

	return cfg
}

func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "test"
}

// Validate reports settings the server must not start without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// WithTimeout bounds a store call by d while still honouring the caller's cancellation.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, d)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env value, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
