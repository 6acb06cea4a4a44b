package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"env"` // ENV: production, development, etc.
	Port        string `yaml:"port"`
	Host        string `yaml:"host"`         // Raw HOST env (e.g. https://journal.example.com)
	AllowedHost string `yaml:"allowed_host"` // Hostname only for strict host check (production only)

	DBDriver    string `yaml:"db_driver"` // postgres or sqlite3
	PostgresURI string `yaml:"postgres_uri"`
	SQLitePath  string `yaml:"sqlite_path"`

	SessionStore    string        `yaml:"session_store"` // redis or memory
	RedisURI        string        `yaml:"redis_uri"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	SessionHashKey  string        `yaml:"session_hash_key"`
	SessionBlockKey string        `yaml:"session_block_key"`
	FlashSecret     string        `yaml:"flash_secret"`

	MongoURI      string `yaml:"mongo_uri"` // empty disables the activity log
	EncryptionKey string `yaml:"encryption_key"`

	AllowedOrigins []string `yaml:"allowed_origins"`
	TrustProxy     bool     `yaml:"trust_proxy"` // honour X-Forwarded-For / X-Real-IP

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogFile   string `yaml:"log_file"`
}

// Load reads configuration from the environment and, when CONFIG_FILE is
// set, overlays the YAML document it points at.
func Load() (*Config, error) {
	cfg := fromEnv()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}

	cfg.AllowedHost = allowedHostFor(cfg.Environment, cfg.Host)
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:8080")}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() *Config {
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "168h"))
	if err != nil || ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &Config{
		Environment:     strings.ToLower(strings.TrimSpace(getEnv("ENV", "development"))),
		Port:            getEnv("PORT", "8080"),
		Host:            getEnv("HOST", "http://localhost:8080"),
		DBDriver:        getEnv("DB_DRIVER", "postgres"),
		PostgresURI:     getEnv("POSTGRES_URI", "postgres://localhost:5432/journal?sslmode=disable"),
		SQLitePath:      getEnv("SQLITE_PATH", "./data/journal.db"),
		SessionStore:    getEnv("SESSION_STORE", "redis"),
		RedisURI:        getEnv("REDIS_URI", "redis://localhost:6379/0"),
		SessionTTL:      ttl,
		SessionHashKey:  getEnv("SESSION_HASH_KEY", ""),
		SessionBlockKey: getEnv("SESSION_BLOCK_KEY", ""),
		FlashSecret:     getEnv("FLASH_SECRET", ""),
		MongoURI:        getEnv("MONGODB_URI", getEnv("MONGO_URI", "")),
		EncryptionKey:   getEnv("ENCRYPTION_KEY", ""),
		AllowedOrigins:  parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		TrustProxy:      getEnv("TRUST_PROXY", "") == "true",
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		LogFile:         getEnv("LOG_FILE", ""),
	}
}

// overlay replaces any field present in the YAML file.
func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite3, got %q", c.DBDriver)
	}
	switch c.SessionStore {
	case "redis", "memory":
	default:
		return fmt.Errorf("SESSION_STORE must be redis or memory, got %q", c.SessionStore)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.IsProduction() && c.SessionHashKey == "" {
		return fmt.Errorf("SESSION_HASH_KEY is required in production")
	}
	return nil
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// allowedHostFor strips scheme, path and port from host. Host checks only
// run in production.
func allowedHostFor(env, host string) string {
	if strings.ToLower(env) != "production" {
		return ""
	}
	h := host
	for _, prefix := range []string{"https://", "http://"} {
		h = strings.TrimPrefix(h, prefix)
	}
	if idx := strings.Index(h, "/"); idx != -1 {
		h = h[:idx]
	}
	if idx := strings.Index(h, ":"); idx != -1 {
		h = h[:idx]
	}
	return strings.TrimSpace(h)
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
