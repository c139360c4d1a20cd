// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type WidgetConfig struct {
	Language  string `yaml:"language"`  // default UI language: en|es
	Anonymous bool   `yaml:"anonymous"` // start in anonymous (ephemeral) mode
}

type SessionConfig struct {
	InactivityTimeout time.Duration `yaml:"inactivity_timeout"` // rotate after this much idle time
	ContextWindow     int           `yaml:"context_window"`     // messages sent as chat context
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"` // key namespace for this widget instance
}

type BackendConfig struct {
	BaseURL           string        `yaml:"base_url"`
	ChatTimeout       time.Duration `yaml:"chat_timeout"`
	StatusTimeout     time.Duration `yaml:"status_timeout"`
	ComplianceTimeout time.Duration `yaml:"compliance_timeout"`
	ProbeDelay        time.Duration `yaml:"probe_delay"` // deferred status re-check after init
}

type PrivacyConfig struct {
	MessageRetentionDays int           `yaml:"message_retention_days"`
	AuditRetentionDays   int           `yaml:"audit_retention_days"`
	SweepInterval        time.Duration `yaml:"sweep_interval"`
	AuditLogging         bool          `yaml:"audit_logging"`
}

type OpsConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Widget  WidgetConfig  `yaml:"widget"`
	Session SessionConfig `yaml:"session"`
	Redis   RedisConfig   `yaml:"redis"`
	Backend BackendConfig `yaml:"backend"`
	Privacy PrivacyConfig `yaml:"privacy"`
	Ops     OpsConfig     `yaml:"ops"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	// Minimal validation
	if cfg.Backend.BaseURL == "" {
		return nil, errors.New("backend.base_url is required")
	}
	if !cfg.Widget.Anonymous && cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required unless widget.anonymous is set")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Widget.Language == "" {
		cfg.Widget.Language = "en"
	}
	if cfg.Session.InactivityTimeout <= 0 {
		cfg.Session.InactivityTimeout = 30 * time.Minute
	}
	if cfg.Session.ContextWindow <= 0 {
		cfg.Session.ContextWindow = 15
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "mentivio"
	}
	if cfg.Backend.ChatTimeout <= 0 {
		cfg.Backend.ChatTimeout = 10 * time.Second
	}
	if cfg.Backend.StatusTimeout <= 0 {
		cfg.Backend.StatusTimeout = 5 * time.Second
	}
	if cfg.Backend.ComplianceTimeout <= 0 {
		cfg.Backend.ComplianceTimeout = 5 * time.Second
	}
	if cfg.Backend.ProbeDelay <= 0 {
		cfg.Backend.ProbeDelay = 5 * time.Second
	}
	if cfg.Privacy.MessageRetentionDays <= 0 {
		cfg.Privacy.MessageRetentionDays = 30
	}
	if cfg.Privacy.AuditRetentionDays <= 0 {
		cfg.Privacy.AuditRetentionDays = 90
	}
	if cfg.Privacy.SweepInterval <= 0 {
		cfg.Privacy.SweepInterval = 6 * time.Hour
	}
	if cfg.Ops.Port == 0 {
		cfg.Ops.Port = 8090
	}
}
