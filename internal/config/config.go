// Package config provides YAML-based configuration loading for Frontdesk.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override config file values for secrets.
const (
	EnvAdminUser = "FD_ADMIN_USER"
	EnvAdminPass = "FD_ADMIN_PASS"
	EnvLLMAPIKey = "FD_LLM_API_KEY"
)

// Insecure defaults for the admin credential pair. Deployments must
// override these via config or environment.
const (
	DefaultAdminUser = "admin"
	DefaultAdminPass = "admin123"
)

// Config is the top-level Frontdesk configuration, loaded from config.yaml.
type Config struct {
	AppName  string         `yaml:"app_name"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Admin    AdminConfig    `yaml:"admin"`
	LLM      LLMConfig      `yaml:"llm"`
	Chat     ChatConfig     `yaml:"chat"`
	Enrich   EnrichConfig   `yaml:"enrich"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig selects and configures the relational store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" or "mysql"
	Path     string `yaml:"path"`   // sqlite file path
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// AdminConfig holds the single staff credential pair and session settings.
type AdminConfig struct {
	Username          string `yaml:"username"`
	Password          string `yaml:"password"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
}

// LLMConfig configures the OpenAI-compatible model provider.
type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ChatConfig controls turn-handling behavior.
type ChatConfig struct {
	// FeedSummaryIntoReply controls whether the latest stored summary is
	// passed to reply generation. Off by default: summaries exist for the
	// admin surface.
	FeedSummaryIntoReply bool `yaml:"feed_summary_into_reply"`
	// MinNewChatLength is the minimum message length for the form-based
	// new-chat entry point. The JSON endpoint only requires non-empty.
	MinNewChatLength int `yaml:"min_new_chat_length"`
}

// EnrichConfig controls the background enrichment sweep.
type EnrichConfig struct {
	// SweepSchedule is a 5-field cron expression for the sweep that
	// re-enqueues missed mood/summary runs and purges expired sessions.
	SweepSchedule string `yaml:"sweep_schedule"`
}

// NotifyConfig configures optional staff escalation channels.
type NotifyConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig holds Slack escalation settings. Empty token disables it.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds Discord escalation settings. Empty token disables it.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a Config with all defaults applied and no file input.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "Frontdesk"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "frontdesk.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.Name == "" {
			c.Database.Name = "frontdesk"
		}
	}
	if c.Admin.Username == "" {
		c.Admin.Username = DefaultAdminUser
	}
	if c.Admin.Password == "" {
		c.Admin.Password = DefaultAdminPass
	}
	if c.Admin.SessionTTLMinutes <= 0 {
		c.Admin.SessionTTLMinutes = 60
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 30
	}
	if c.Chat.MinNewChatLength <= 0 {
		c.Chat.MinNewChatLength = 5
	}
	if c.Enrich.SweepSchedule == "" {
		c.Enrich.SweepSchedule = "*/5 * * * *"
	}
}

// applyEnv overrides secret-bearing fields from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAdminUser); v != "" {
		c.Admin.Username = v
	}
	if v := os.Getenv(EnvAdminPass); v != "" {
		c.Admin.Password = v
	}
	if v := os.Getenv(EnvLLMAPIKey); v != "" {
		c.LLM.APIKey = v
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite, mysql)", c.Database.Driver))
	}
	if c.Database.Driver == "mysql" && c.Database.User == "" {
		errs = append(errs, "database.user is required for mysql")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InsecureAdminDefaults reports whether the admin credential pair is still
// the well-known default, so startup can warn loudly.
func (c *Config) InsecureAdminDefaults() bool {
	return c.Admin.Username == DefaultAdminUser && c.Admin.Password == DefaultAdminPass
}
