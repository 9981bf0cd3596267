package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Discord.PageSize != 100 {
		t.Fatalf("expected default page size 100, got %d", cfg.Discord.PageSize)
	}
	if cfg.Discord.ChannelPrefix != "fav-" {
		t.Fatalf("expected default channel prefix fav-, got %q", cfg.Discord.ChannelPrefix)
	}
	if got := cfg.WatchInterval(); got != 5*time.Minute {
		t.Fatalf("expected default watch interval 5m, got %v", got)
	}
	if cfg.DB.Table != "curated_links" {
		t.Fatalf("expected default table curated_links, got %q", cfg.DB.Table)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
auth:
  admin_token: admin-secret
  revalidate_secret: reval-secret
discord:
  token: bot-token
  guild_id: "424242"
  page_size: 50
  channel_names: ["resources"]
db:
  dsn: postgres://localhost/garden
kv:
  path: /tmp/gardenkv
watcher:
  enabled: true
  interval_seconds: 60
revalidate:
  url: http://localhost:3000/api/revalidate
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Discord.PageSize != 50 {
		t.Fatalf("expected page size 50, got %d", cfg.Discord.PageSize)
	}
	if cfg.Auth.AdminToken != "admin-secret" {
		t.Fatalf("unexpected admin token %q", cfg.Auth.AdminToken)
	}
	if got := cfg.WatchInterval(); got != time.Minute {
		t.Fatalf("expected watch interval 1m, got %v", got)
	}
	if cfg.Logging.Development {
		t.Fatal("expected development logging disabled")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "oversized page",
			mutate:  func(c *Config) { c.Discord.PageSize = 500 },
			wantErr: "discord.page_size",
		},
		{
			name: "watcher without revalidate url",
			mutate: func(c *Config) {
				c.Watcher.Enabled = true
				c.Revalidate.URL = ""
			},
			wantErr: "revalidate.url",
		},
		{
			name: "watcher without interval",
			mutate: func(c *Config) {
				c.Watcher.Enabled = true
				c.Watcher.IntervalSeconds = 0
			},
			wantErr: "watcher.interval_seconds",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func validConfig() Config {
	return Config{
		Server:  ServerConfig{Port: 8080},
		Discord: DiscordConfig{PageSize: 100, RequestsPerSec: 5},
		Watcher: WatcherConfig{Enabled: true, IntervalSeconds: 300, LeaseTTLSeconds: 240},
		Revalidate: RevalidateConfig{
			URL:  "http://localhost:3000/api/revalidate",
			Path: "/curated-links",
		},
		HTTP: HTTPConfig{TimeoutSeconds: 15},
	}
}
