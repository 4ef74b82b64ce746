package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultCloudbetBaseURL = "https://sports-api.cloudbet.com/pub/v2"

type Config struct {
	Env       string
	Addr      string
	DBDSN     string
	DBMigrate bool
	LogLevel  string

	TokenSecret string
	TokenTTL    time.Duration
	CORSOrigins []string

	GoogleClientID string
	AppleServiceID string

	CloudbetAPIKey  string
	CloudbetBaseURL *url.URL
	OddsTimeout     time.Duration

	FCMProjectID       string
	FCMCredentialsFile string
}

// Load reads an optional .env file from the working directory and then builds
// the config from the process environment. Variables already set win over the
// file.
func Load() (Config, error) {
	if err := loadDotEnvFile(".env", os.Setenv, os.Getenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return LoadFromEnv(os.Getenv)
}

func loadDotEnvFile(path string, setenv func(string, string) error, getenv func(string) string) error {
	vals, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	for k, v := range vals {
		if v == "" || getenv(k) != "" {
			continue
		}
		if err := setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:                getenv("APP_ENV"),
		Addr:               getenv("APP_ADDR"),
		DBDSN:              getenv("APP_DB_DSN"),
		LogLevel:           getenv("APP_LOG_LEVEL"),
		TokenSecret:        getenv("APP_TOKEN_SECRET"),
		GoogleClientID:     strings.TrimSpace(getenv("APP_GOOGLE_CLIENT_ID")),
		AppleServiceID:     strings.TrimSpace(getenv("APP_APPLE_SERVICE_ID")),
		CloudbetAPIKey:     strings.TrimSpace(getenv("CLOUDBET_API_KEY")),
		FCMProjectID:       strings.TrimSpace(getenv("APP_FCM_PROJECT_ID")),
		FCMCredentialsFile: strings.TrimSpace(getenv("APP_FCM_CREDENTIALS_FILE")),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}
	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	cfg.DBMigrate = true
	if raw := getenv("APP_DB_MIGRATE"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_DB_MIGRATE: %w", err)
		}
		cfg.DBMigrate = v
	}

	var err error
	if cfg.TokenTTL, err = parseDuration(getenv, "APP_TOKEN_TTL", 30*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OddsTimeout, err = parseDuration(getenv, "APP_ODDS_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	baseRaw := strings.TrimSpace(getenv("CLOUDBET_API_BASE_URL"))
	if baseRaw == "" {
		baseRaw = defaultCloudbetBaseURL
	}
	base, err := url.Parse(baseRaw)
	if err != nil {
		return Config{}, fmt.Errorf("CLOUDBET_API_BASE_URL: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return Config{}, errors.New("CLOUDBET_API_BASE_URL: must be an absolute URL")
	}
	switch base.Scheme {
	case "http", "https":
	default:
		return Config{}, errors.New("CLOUDBET_API_BASE_URL: scheme must be http or https")
	}
	cfg.CloudbetBaseURL = base

	cfg.CORSOrigins = parseCSV(getenv("APP_CORS_ORIGINS"))

	if cfg.FCMProjectID != "" && cfg.FCMCredentialsFile == "" {
		return Config{}, errors.New("APP_FCM_CREDENTIALS_FILE: required when APP_FCM_PROJECT_ID is set")
	}

	if cfg.IsProd() {
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if len(cfg.TokenSecret) < 32 {
			return Config{}, errors.New("APP_TOKEN_SECRET: must be at least 32 bytes in prod")
		}
	}
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = "dev-insecure-token-secret-change-me"
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) PushEnabled() bool { return c.FCMProjectID != "" }

func parseDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be > 0", key)
	}
	return d, nil
}

func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
