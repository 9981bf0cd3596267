// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Discord    DiscordConfig    `mapstructure:"discord"`
	DB         DBConfig         `mapstructure:"db"`
	KV         KVConfig         `mapstructure:"kv"`
	Watcher    WatcherConfig    `mapstructure:"watcher"`
	Revalidate RevalidateConfig `mapstructure:"revalidate"`
	Newsletter NewsletterConfig `mapstructure:"newsletter"`
	Books      BooksConfig      `mapstructure:"books"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig holds the shared secrets for admin and revalidation endpoints.
type AuthConfig struct {
	AdminToken       string `mapstructure:"admin_token"`
	RevalidateSecret string `mapstructure:"revalidate_secret"`
}

// DiscordConfig configures the chat-platform source fetcher.
type DiscordConfig struct {
	Token          string   `mapstructure:"token"`
	GuildID        string   `mapstructure:"guild_id"`
	BaseURL        string   `mapstructure:"base_url"`
	ChannelNames   []string `mapstructure:"channel_names"`
	ChannelPrefix  string   `mapstructure:"channel_prefix"`
	PageSize       int      `mapstructure:"page_size"`
	RequestsPerSec float64  `mapstructure:"requests_per_sec"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// KVConfig locates the badger key-value store.
type KVConfig struct {
	Path string `mapstructure:"path"`
}

// WatcherConfig governs the change-detector loop.
type WatcherConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalSeconds int  `mapstructure:"interval_seconds"`
	LeaseTTLSeconds int  `mapstructure:"lease_ttl_seconds"`
}

// RevalidateConfig points the watcher at the page-cache revalidation endpoint.
type RevalidateConfig struct {
	URL  string `mapstructure:"url"`
	Path string `mapstructure:"path"`
}

// NewsletterConfig configures the newsletter provider client.
type NewsletterConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// BooksConfig configures the reading-tracker and highlights-source clients.
type BooksConfig struct {
	TrackerURL      string `mapstructure:"tracker_url"`
	TrackerToken    string `mapstructure:"tracker_token"`
	HighlightsURL   string `mapstructure:"highlights_url"`
	HighlightsToken string `mapstructure:"highlights_token"`
}

// HTTPConfig configures outbound HTTP client behavior.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GARDEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("discord.base_url", "https://discord.com/api/v10")
	v.SetDefault("discord.channel_prefix", "fav-")
	v.SetDefault("discord.channel_names", []string{"resources", "reading-list"})
	v.SetDefault("discord.page_size", 100)
	v.SetDefault("discord.requests_per_sec", 5.0)
	v.SetDefault("db.table", "curated_links")
	v.SetDefault("kv.path", "data/gardend")
	v.SetDefault("watcher.enabled", false)
	v.SetDefault("watcher.interval_seconds", 300)
	v.SetDefault("watcher.lease_ttl_seconds", 240)
	v.SetDefault("revalidate.path", "/curated-links")
	v.SetDefault("newsletter.base_url", "https://api.buttondown.email/v1")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Discord.PageSize <= 0 || c.Discord.PageSize > 100 {
		return fmt.Errorf("discord.page_size must be in (0, 100]")
	}
	if c.Discord.RequestsPerSec <= 0 {
		return fmt.Errorf("discord.requests_per_sec must be > 0")
	}
	if c.Watcher.Enabled && c.Watcher.IntervalSeconds <= 0 {
		return fmt.Errorf("watcher.interval_seconds must be > 0 when the watcher is enabled")
	}
	if c.Watcher.Enabled && c.Revalidate.URL == "" {
		return fmt.Errorf("revalidate.url must be set when the watcher is enabled")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	return nil
}

// WatchInterval returns the watcher tick interval as a duration.
func (c Config) WatchInterval() time.Duration {
	return time.Duration(c.Watcher.IntervalSeconds) * time.Second
}

// LeaseTTL returns the watcher lease lifetime as a duration.
func (c Config) LeaseTTL() time.Duration {
	return time.Duration(c.Watcher.LeaseTTLSeconds) * time.Second
}

// ClientTimeout returns the outbound HTTP timeout as a duration.
func (c Config) ClientTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
