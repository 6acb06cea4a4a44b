package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SESSION_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.DBDriver != "postgres" || cfg.SessionStore != "redis" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.IsProduction() || cfg.AllowedHost != "" {
		t.Fatalf("development config has production settings: %+v", cfg)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.yaml")
	doc := "db_driver: sqlite3\nsqlite_path: /tmp/j.db\nsession_store: memory\nsession_ttl: 30m\nallowed_origins:\n  - https://a.example\n"
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9999")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBDriver != "sqlite3" || cfg.SQLitePath != "/tmp/j.db" || cfg.SessionStore != "memory" {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.Port != "9999" {
		t.Fatalf("env value lost: port %q", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://a.example" {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadRejectsBadDriver(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := Load(); err == nil {
		t.Fatal("mysql driver accepted")
	}
}

func TestProductionRequiresHashKey(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_HASH_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("production config without SESSION_HASH_KEY accepted")
	}

	t.Setenv("SESSION_HASH_KEY", "k")
	t.Setenv("HOST", "https://journal.example.com:443/app")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AllowedHost != "journal.example.com" {
		t.Fatalf("AllowedHost = %q", cfg.AllowedHost)
	}
}
