// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dubbing-backend/internal/language"
)

// User store backends.
const (
	UserStoreNone     = "none"
	UserStorePostgres = "postgres"
	UserStoreMongo    = "mongo"
	UserStoreHTTP     = "http"
)

// Config is read once at startup from the environment.
type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string
	BaseURL        string

	// Dubbing backend
	DubAPIURL       string
	UpstreamTimeout time.Duration

	// Sessions
	DefaultTargetLang string
	AuthSecret        string
	SessionTTL        time.Duration
	CookieSecure      bool

	// OAuth
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	// Persistence
	UserStore   string
	DatabaseURL string
	MongoURI    string
	MongoDB     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DraftTTL      time.Duration

	// Uploads
	StorageType string
	UploadDir   string
	AWSBucket   string
	AWSRegion   string
	AWSPrefix   string

	LogLevel  string
	LogFormat string
}

// Load reads the environment and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8083"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8083"),
		DubAPIURL:          strings.TrimRight(getEnv("DUB_API_URL", "http://localhost:3001"), "/"),
		DefaultTargetLang:  getEnv("DEFAULT_TARGET_LANG", "en"),
		AuthSecret:         os.Getenv("AUTH_SECRET"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", "http://localhost:8083/api/auth/callback"),
		UserStore:          strings.ToLower(getEnv("USER_STORE", UserStoreNone)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "dubbing"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		StorageType:        strings.ToLower(getEnv("STORAGE_TYPE", "local")),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		AWSBucket:          os.Getenv("AWS_BUCKET"),
		AWSRegion:          os.Getenv("AWS_REGION"),
		AWSPrefix:          os.Getenv("AWS_PREFIX"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.UpstreamTimeout, err = getDuration("UPSTREAM_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DraftTTL, err = getDuration("DRAFT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	cfg.CookieSecure = cfg.IsProduction()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	var errs []error

	lang, err := language.Validate(c.DefaultTargetLang)
	if err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_TARGET_LANG %q: %w", c.DefaultTargetLang, err))
	} else {
		c.DefaultTargetLang = lang
	}

	if c.AuthSecret == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("AUTH_SECRET is required in production"))
		} else {
			c.AuthSecret = "dev-insecure-secret"
		}
	}

	switch c.UserStore {
	case UserStoreNone, UserStoreHTTP:
	case UserStorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when USER_STORE=postgres"))
		}
	case UserStoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when USER_STORE=mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown USER_STORE %q", c.UserStore))
	}

	switch c.StorageType {
	case "local":
	case "s3":
		if c.AWSBucket == "" {
			errs = append(errs, errors.New("AWS_BUCKET is required when STORAGE_TYPE=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_TYPE %q", c.StorageType))
	}

	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// OAuthEnabled reports whether Google sign-in credentials are present.
func (c *Config) OAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
