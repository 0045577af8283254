package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Chat.KeepaliveInterval != 30*time.Second {
		t.Errorf("KeepaliveInterval = %v, want 30s", cfg.Chat.KeepaliveInterval)
	}
	if cfg.Chat.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %v, want 3s", cfg.Chat.PollInterval)
	}
	if cfg.Chat.PollMaxAttempts != 20 {
		t.Errorf("PollMaxAttempts = %d, want 20", cfg.Chat.PollMaxAttempts)
	}
}

func TestSocketTargetDerivedFromBase(t *testing.T) {
	cfg := &Config{Gateway: GatewayConfig{BaseURL: "https://assist.example.com/"}}
	if got := cfg.SocketTarget(); got != "wss://assist.example.com/ws/chat" {
		t.Errorf("SocketTarget() = %q", got)
	}

	cfg.Gateway.SocketURL = "ws://other:9000/ws"
	if got := cfg.SocketTarget(); got != "ws://other:9000/ws" {
		t.Errorf("explicit SocketTarget() = %q", got)
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"gateway":{"baseUrl":"http://from-file:1234","authToken":"file-token"}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HELMDECK_CONFIG", path)
	t.Setenv("HELMDECK_GATEWAY_AUTH_TOKEN", "env-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.BaseURL != "http://from-file:1234" {
		t.Errorf("BaseURL = %q, want file value", cfg.Gateway.BaseURL)
	}
	if cfg.Gateway.AuthToken != "env-token" {
		t.Errorf("AuthToken = %q, want env override", cfg.Gateway.AuthToken)
	}
}

func TestLoadDurationFormsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"chat":{"keepaliveInterval":"45s","pollInterval":2000000000}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HELMDECK_CONFIG", path)
	t.Setenv("HELMDECK_GATEWAY_AUTH_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chat.KeepaliveInterval != 45*time.Second {
		t.Errorf("KeepaliveInterval = %v, want 45s from duration string", cfg.Chat.KeepaliveInterval)
	}
	if cfg.Chat.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s from nanosecond integer", cfg.Chat.PollInterval)
	}
	// An absent field keeps its default rather than zeroing.
	if cfg.Chat.PollMaxAttempts != 20 {
		t.Errorf("PollMaxAttempts = %d, want default 20", cfg.Chat.PollMaxAttempts)
	}
}

func TestLoadRejectsBadDurationString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"chat":{"pollInterval":"soon"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HELMDECK_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("want error for unparseable duration string")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HELMDECK_CONFIG", filepath.Join(t.TempDir(), "nope.json"))
	t.Setenv("HELMDECK_GATEWAY_AUTH_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.BaseURL == "" {
		t.Error("expected default BaseURL")
	}
	if cfg.Chat.PollMaxAttempts != 20 {
		t.Errorf("PollMaxAttempts = %d, want default 20", cfg.Chat.PollMaxAttempts)
	}
}

func TestConfigPathExplicit(t *testing.T) {
	t.Setenv("HELMDECK_CONFIG", "/tmp/custom.json")
	path, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/custom.json" {
		t.Errorf("ConfigPath() = %q", path)
	}
}
