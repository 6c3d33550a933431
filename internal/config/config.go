// Package config loads progol settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir  = "~/.progol"
	DefaultLogLevel = "info"
	DefaultAddr     = ":8080"
)

type Config struct {
	DataDir     string         `yaml:"data_dir"`
	DatabaseURL string         `yaml:"database_url"`
	LogLevel    string         `yaml:"log_level"`
	Server      ServerConfig   `yaml:"server"`
	Fetch       FetchConfig    `yaml:"fetch"`
	Twitter     TwitterConfig  `yaml:"-"`
	Telegram    TelegramConfig `yaml:"-"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// SecureCookies marks the session cookie Secure; enable behind TLS.
	SecureCookies bool `yaml:"secure_cookies"`
}

type FetchConfig struct {
	URL     string        `yaml:"url"`     // empty means the official page
	Timeout time.Duration `yaml:"timeout"` // zero means the fetcher default
}

// TwitterConfig is only ever read from the environment.
type TwitterConfig struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string
}

// Complete reports whether all four credentials are set.
func (t TwitterConfig) Complete() bool {
	return t.APIKey != "" && t.APISecret != "" && t.AccessToken != "" && t.AccessTokenSecret != ""
}

// TelegramConfig names the bot and the chat it posts to.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

func (t TelegramConfig) Complete() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:  DefaultDataDir,
		LogLevel: DefaultLogLevel,
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
	}
}

// Load reads path, when given, and applies environment overrides. A
// missing file is only an error when path was set explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.DataDir = getEnv("PROGOL_DATA_DIR", c.DataDir)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.LogLevel = getEnv("PROGOL_LOG_LEVEL", c.LogLevel)
	c.Fetch.URL = getEnv("PROGOL_URL", c.Fetch.URL)

	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if v := os.Getenv("PROGOL_SECURE_COOKIES"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing PROGOL_SECURE_COOKIES: %w", err)
		}
		c.Server.SecureCookies = secure
	}

	c.Twitter = TwitterConfig{
		APIKey:            os.Getenv("TWITTER_API_KEY"),
		APISecret:         os.Getenv("TWITTER_API_SECRET"),
		AccessToken:       os.Getenv("TWITTER_ACCESS_TOKEN"),
		AccessTokenSecret: os.Getenv("TWITTER_ACCESS_SECRET"),
	}
	c.Telegram = TelegramConfig{
		BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
	}
	return nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout must not be negative, got %s", c.Fetch.Timeout)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
