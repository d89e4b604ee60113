package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeFile(t, `
server:
  port: 9090
  shutdown_timeout: 5s
database:
  driver: postgres
  url: postgres://tracker@localhost/tracker?sslmode=disable
redis:
  addr: localhost:6379
  ttl: 1m
auth:
  jwt_secret: s3cret
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.MaxOpenConns != 10 {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.TTL != time.Minute {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeFile(t, "auth:\n  jwt_secret: from-file\n")
	t.Setenv("TRACKER_AUTH_JWT_SECRET", "from-env")
	t.Setenv("TRACKER_SERVER_PORT", "7000")
	t.Setenv("TRACKER_DATABASE_URL", "/tmp/override.db")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("jwt secret = %q, want from-env", cfg.Auth.JWTSecret)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Database.DSN != "/tmp/override.db" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("TRACKER_AUTH_JWT_SECRET", "x")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.Driver != "sqlite3" || cfg.Server.Port != 8080 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid yaml", "server: [unterminated"},
		{"unknown driver", "database:\n  driver: mysql\nauth:\n  jwt_secret: x\n"},
		{"missing secret", "server:\n  port: 80\n"},
	}
	for _, tt := range tests {
		if _, err := LoadConfig(writeFile(t, tt.body)); err == nil {
			t.Errorf("%s: LoadConfig = nil error, want error", tt.name)
		}
	}
}
