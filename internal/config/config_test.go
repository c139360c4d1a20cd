//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://api.mentivio.com"
redis:
  url: "redis://localhost:6379/0"
`)
	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults = %+v", cfg.Log)
	}
	if cfg.Widget.Language != "en" {
		t.Errorf("language default = %q", cfg.Widget.Language)
	}
	if cfg.Session.InactivityTimeout != 30*time.Minute {
		t.Errorf("inactivity default = %s", cfg.Session.InactivityTimeout)
	}
	if cfg.Session.ContextWindow != 15 {
		t.Errorf("context window default = %d", cfg.Session.ContextWindow)
	}
	if cfg.Redis.Prefix != "mentivio" {
		t.Errorf("prefix default = %q", cfg.Redis.Prefix)
	}
	if cfg.Privacy.MessageRetentionDays != 30 || cfg.Privacy.AuditRetentionDays != 90 {
		t.Errorf("retention defaults = %+v", cfg.Privacy)
	}
	if cfg.Privacy.SweepInterval != 6*time.Hour {
		t.Errorf("sweep interval default = %s", cfg.Privacy.SweepInterval)
	}
	if cfg.Ops.Port != 8090 {
		t.Errorf("ops port default = %d", cfg.Ops.Port)
	}
	if !cfg.Runtime.Dev {
		t.Error("dev flag not carried into runtime config")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
widget:
  language: "es"
  anonymous: true
session:
  inactivity_timeout: 10m
  context_window: 5
backend:
  base_url: "http://localhost:3000"
  chat_timeout: 3s
privacy:
  message_retention_days: 7
`)
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Widget.Language != "es" || !cfg.Widget.Anonymous {
		t.Errorf("widget = %+v", cfg.Widget)
	}
	if cfg.Session.InactivityTimeout != 10*time.Minute || cfg.Session.ContextWindow != 5 {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Backend.ChatTimeout != 3*time.Second {
		t.Errorf("chat timeout = %s", cfg.Backend.ChatTimeout)
	}
	if cfg.Privacy.MessageRetentionDays != 7 {
		t.Errorf("message retention = %d", cfg.Privacy.MessageRetentionDays)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("missing base url", func(t *testing.T) {
		path := writeConfig(t, "redis:\n  url: \"redis://localhost:6379/0\"\n")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected error for missing backend.base_url")
		}
	})
	t.Run("redis required unless anonymous", func(t *testing.T) {
		path := writeConfig(t, "backend:\n  base_url: \"https://api.mentivio.com\"\n")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected error for missing redis.url")
		}
	})
	t.Run("anonymous needs no redis", func(t *testing.T) {
		path := writeConfig(t, "widget:\n  anonymous: true\nbackend:\n  base_url: \"https://api.mentivio.com\"\n")
		if _, err := LoadConfig(path, false); err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
	})
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
