package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PROGOL_DATA_DIR", "DATABASE_URL", "PROGOL_LOG_LEVEL", "PROGOL_URL", "PORT",
		"PROGOL_SECURE_COOKIES", "TWITTER_API_KEY", "TWITTER_API_SECRET",
		"TWITTER_ACCESS_TOKEN", "TWITTER_ACCESS_SECRET", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "progol.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DataDir != DefaultDataDir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, DefaultDataDir)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.Twitter.Complete() {
		t.Error("Twitter.Complete() = true with no credentials")
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
data_dir: /var/lib/progol
database_url: postgres://localhost/progol?sslmode=disable
log_level: debug
server:
  addr: ":9090"
  secure_cookies: true
fetch:
  url: http://localhost:8000/progol.html
  timeout: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DataDir != "/var/lib/progol" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.DatabaseURL != "postgres://localhost/progol?sslmode=disable" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Server.Addr != ":9090" || !cfg.Server.SecureCookies {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Fetch.URL != "http://localhost:8000/progol.html" || cfg.Fetch.Timeout != 5*time.Second {
		t.Errorf("Fetch = %+v", cfg.Fetch)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "data_dir: /from/file\nlog_level: warn\n")

	t.Setenv("PROGOL_DATA_DIR", "/from/env")
	t.Setenv("PORT", "3000")
	t.Setenv("TWITTER_API_KEY", "key")
	t.Setenv("TWITTER_API_SECRET", "secret")
	t.Setenv("TWITTER_ACCESS_TOKEN", "token")
	t.Setenv("TWITTER_ACCESS_SECRET", "token-secret")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DataDir != "/from/env" {
		t.Errorf("DataDir = %q, want /from/env", cfg.DataDir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn from file", cfg.LogLevel)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Server.Addr = %q, want :3000", cfg.Server.Addr)
	}
	if !cfg.Twitter.Complete() {
		t.Errorf("Twitter = %+v, want complete credentials", cfg.Twitter)
	}
	if cfg.Telegram.Complete() {
		t.Errorf("Telegram = %+v, want incomplete without a chat ID", cfg.Telegram)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "missing explicit file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.yaml")
			},
		},
		{
			name: "invalid yaml",
			setup: func(t *testing.T) string {
				return writeConfig(t, "server: [unclosed")
			},
		},
		{
			name: "empty data dir",
			setup: func(t *testing.T) string {
				return writeConfig(t, "data_dir: \"\"\n")
			},
		},
		{
			name: "negative timeout",
			setup: func(t *testing.T) string {
				return writeConfig(t, "fetch:\n  timeout: -1s\n")
			},
		},
		{
			name: "bad secure cookies flag",
			setup: func(t *testing.T) string {
				t.Setenv("PROGOL_SECURE_COOKIES", "sometimes")
				return ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if _, err := Load(tt.setup(t)); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}
