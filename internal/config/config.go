package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	OIDC         OIDCConfig
	Cache        CacheConfig
	RateLimit    RateLimitConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	MigrationsDir   string
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
	ConnectAttempts int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines session cookie parameters.
type AuthConfig struct {
	SessionSecret     string
	SessionTTLMinutes int
	CookieName        string
	CookieSecure      bool
	CookieDomain      string
}

// OIDCConfig points at the identity provider realm.
type OIDCConfig struct {
	IssuerURL             string
	ClientID              string
	AuthorizationEndpoint string
	TokenEndpoint         string
	RedirectURI           string
	HTTPTimeoutSeconds    int
}

// CacheConfig controls the customer read-through cache.
type CacheConfig struct {
	CustomerTTLSeconds int
}

// RateLimitConfig bounds loan evaluations per client.
type RateLimitConfig struct {
	LoanEvaluationsPerMinute int
}

// NotificationConfig holds stub notification endpoints for branch follow-ups.
type NotificationConfig struct {
	EmailFrom   string
	BranchEmail string
	WebhookURL  string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "neuralbank-loan-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			MaxConns:        int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:        int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:   getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:   getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ConnectAttempts: getEnvAsInt("POSTGRES_CONNECT_ATTEMPTS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			SessionSecret:     getEnv("AUTH_SESSION_SECRET", "dev-secret"),
			SessionTTLMinutes: getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 60),
			CookieName:        getEnv("AUTH_COOKIE_NAME", "jwt"),
			CookieSecure:      getEnvAsBool("AUTH_COOKIE_SECURE", false),
			CookieDomain:      os.Getenv("AUTH_COOKIE_DOMAIN"),
		},
		OIDC: OIDCConfig{
			IssuerURL:             strings.TrimRight(os.Getenv("KEYCLOAK_ISSUER_URL"), "/"),
			ClientID:              os.Getenv("KEYCLOAK_CLIENT_ID"),
			AuthorizationEndpoint: os.Getenv("KEYCLOAK_AUTHORIZATION_ENDPOINT"),
			TokenEndpoint:         os.Getenv("KEYCLOAK_TOKEN_ENDPOINT"),
			RedirectURI:           strings.TrimSpace(os.Getenv("KEYCLOAK_REDIRECT_URI")),
			HTTPTimeoutSeconds:    getEnvAsInt("KEYCLOAK_HTTP_TIMEOUT_SECONDS", 10),
		},
		Cache: CacheConfig{
			CustomerTTLSeconds: getEnvAsInt("CACHE_CUSTOMER_TTL_SECONDS", 300),
		},
		RateLimit: RateLimitConfig{
			LoanEvaluationsPerMinute: getEnvAsInt("RATE_LIMIT_LOAN_EVALUATIONS_PER_MINUTE", 30),
		},
		Notification: NotificationConfig{
			EmailFrom:   getEnv("NOTIFY_EMAIL_FROM", "noreply@neuralbank.example"),
			BranchEmail: getEnv("NOTIFY_BRANCH_EMAIL", ""),
			WebhookURL:  getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionTTL returns the fallback session lifetime used when the IdP omits expires_in.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// HTTPTimeout returns the timeout for calls to the identity provider.
func (o OIDCConfig) HTTPTimeout() time.Duration {
	if o.HTTPTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(o.HTTPTimeoutSeconds) * time.Second
}

// CustomerTTL returns how long a customer stays cached.
func (c CacheConfig) CustomerTTL() time.Duration {
	if c.CustomerTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CustomerTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
