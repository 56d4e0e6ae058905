// Package config loads service settings from the environment, an optional
// .env file and an optional YAML notice document file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	noticeapp "rentnotice-cloud/internal/notice/application"
	notice "rentnotice-cloud/internal/notice/domain"
	"rentnotice-cloud/internal/notice/layout"
)

// Config is the service configuration.
type Config struct {
	DatabaseURL       string
	HTTPAddr          string
	JWTSecret         string
	RequestTimeout    time.Duration
	EmailRelayURL     string
	EmailFrom         string
	EmailRelayTimeout time.Duration
	DispatchInterval  time.Duration
	Notice            NoticeConfig
}

// NoticeConfig controls notice documents. It is read from the file named by
// NOTICE_CONFIG; missing fields keep the US Letter defaults.
type NoticeConfig struct {
	Layout   layout.Config           `yaml:"layout"`
	Title    string                  `yaml:"title"`
	Defaults notice.EditableSections `yaml:"defaults"`
}

// DocumentOptions converts the notice settings for the notice service.
func (c NoticeConfig) DocumentOptions() noticeapp.DocumentOptions {
	return noticeapp.DocumentOptions{Layout: c.Layout, Title: c.Title, Defaults: c.Defaults}
}

// Load reads .env (when present), the environment and NOTICE_CONFIG.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment.
func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL:       getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:         getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		RequestTimeout:    getenvDuration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
		EmailRelayURL:     getenvDefault("EMAIL_RELAY_URL", ""),
		EmailFrom:         getenvDefault("EMAIL_FROM", "notices@localhost"),
		EmailRelayTimeout: getenvDuration("EMAIL_RELAY_TIMEOUT", 5*time.Second),
		DispatchInterval:  getenvDuration("EMAIL_DISPATCH_INTERVAL", time.Minute),
		Notice:            NoticeConfig{Layout: layout.LetterConfig()},
	}
	if path := os.Getenv("NOTICE_CONFIG"); path != "" {
		noticeCfg, err := LoadNoticeConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg.Notice = noticeCfg
	}
	if title := os.Getenv("NOTICE_TITLE"); title != "" {
		cfg.Notice.Title = title
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("config: DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("config: AUTH_JWT_SECRET is required")
	}
	return cfg, nil
}

// LoadNoticeConfig reads a YAML notice document file over the Letter defaults.
func LoadNoticeConfig(path string) (NoticeConfig, error) {
	cfg := NoticeConfig{Layout: layout.LetterConfig()}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: notice file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: notice file %s: %w", path, err)
	}
	cfg.Title = strings.TrimSpace(cfg.Title)
	if err := cfg.Layout.Validate(); err != nil {
		return cfg, fmt.Errorf("config: notice file %s: %w", path, err)
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		if seconds, convErr := strconv.Atoi(value); convErr == nil {
			return time.Duration(seconds) * time.Second
		}
		return fallback
	}
	return parsed
}
