// Package config provides configuration types and loading for helmdeck.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the root configuration struct.
// Top-level groups: Gateway, Chat, Archive.
type Config struct {
	Gateway GatewayConfig `json:"gateway"`
	Chat    ChatConfig    `json:"chat"`
	Archive ArchiveConfig `json:"archive"`
}

// GatewayConfig locates the assistant gateway and carries the bearer token.
type GatewayConfig struct {
	BaseURL   string `json:"baseUrl" envconfig:"GATEWAY_BASE_URL"`
	SocketURL string `json:"socketUrl" envconfig:"GATEWAY_SOCKET_URL"`
	AuthToken string `json:"authToken" envconfig:"GATEWAY_AUTH_TOKEN"`
}

// ChatConfig groups live-session tuning knobs.
type ChatConfig struct {
	KeepaliveInterval time.Duration `json:"keepaliveInterval" envconfig:"CHAT_KEEPALIVE_INTERVAL"`
	PollInterval      time.Duration `json:"pollInterval" envconfig:"CHAT_POLL_INTERVAL"`
	PollMaxAttempts   int           `json:"pollMaxAttempts" envconfig:"CHAT_POLL_MAX_ATTEMPTS"`
}

// UnmarshalJSON accepts the duration fields either as Go duration strings
// ("30s") or as raw nanosecond integers, matching what envconfig accepts on
// the environment path. Fields absent from the document keep their current
// values.
func (c *ChatConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		KeepaliveInterval *jsonDuration `json:"keepaliveInterval"`
		PollInterval      *jsonDuration `json:"pollInterval"`
		PollMaxAttempts   *int          `json:"pollMaxAttempts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.KeepaliveInterval != nil {
		c.KeepaliveInterval = time.Duration(*raw.KeepaliveInterval)
	}
	if raw.PollInterval != nil {
		c.PollInterval = time.Duration(*raw.PollInterval)
	}
	if raw.PollMaxAttempts != nil {
		c.PollMaxAttempts = *raw.PollMaxAttempts
	}
	return nil
}

type jsonDuration time.Duration

func (d *jsonDuration) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = jsonDuration(parsed)
		return nil
	}
	var ns int64
	if err := json.Unmarshal(data, &ns); err != nil {
		return err
	}
	*d = jsonDuration(ns)
	return nil
}

// ArchiveConfig configures the local message archive.
type ArchiveConfig struct {
	Enabled bool   `json:"enabled" envconfig:"ARCHIVE_ENABLED"`
	Path    string `json:"path" envconfig:"ARCHIVE_PATH"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Gateway: GatewayConfig{
			BaseURL: "http://localhost:18790",
		},
		Chat: ChatConfig{
			KeepaliveInterval: 30 * time.Second,
			PollInterval:      3 * time.Second,
			PollMaxAttempts:   20,
		},
		Archive: ArchiveConfig{
			Enabled: true,
			Path:    filepath.Join(home, ConfigDir, "archive.db"),
		},
	}
}

// SocketTarget returns the websocket endpoint, deriving it from BaseURL when
// SocketURL is not set explicitly.
func (c *Config) SocketTarget() string {
	if c.Gateway.SocketURL != "" {
		return c.Gateway.SocketURL
	}
	ws := strings.Replace(c.Gateway.BaseURL, "http://", "ws://", 1)
	ws = strings.Replace(ws, "https://", "wss://", 1)
	return strings.TrimRight(ws, "/") + "/ws/chat"
}
