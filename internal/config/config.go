// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SlackClientID     string `envconfig:"SLACK_CLIENT_ID" required:"true"`
	SlackClientSecret string `envconfig:"SLACK_CLIENT_SECRET" required:"true"`
	SlackRedirectURI  string `envconfig:"SLACK_REDIRECT_URI" default:"https://localhost:3000/auth/slack/callback"`
	SlackAPIURL       string `envconfig:"SLACK_API_URL" default:"https://slack.com/api/"`
	SlackAuthorizeURL string `envconfig:"SLACK_AUTHORIZE_URL" default:"https://slack.com/oauth/v2/authorize"`

	Port       int    `envconfig:"PORT" default:"3000"`
	ListenHost string `envconfig:"SLACKPANEL_LISTEN_HOST" default:""`
	DBPath     string `envconfig:"SLACKPANEL_DB_PATH" default:"data.db"`
	TLSCert    string `envconfig:"SLACKPANEL_TLS_CERT" default:"cert/cert.pem"`
	TLSKey     string `envconfig:"SLACKPANEL_TLS_KEY" default:"cert/key.pem"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	// SecretKeyHex, when set, enables AES-256-GCM encryption of the stored
	// bot token. It must decode to exactly 32 bytes.
	SecretKeyHex string `envconfig:"SLACKPANEL_SECRET_KEY"`
	SecretKey    []byte `ignored:"true"`
}

// ListenAddr returns the host:port the HTTPS server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.Port))
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads configuration from the environment, after merging an optional
// .env file from the working directory (existing variables win), and returns
// a validated Config. SLACK_CLIENT_ID and SLACK_CLIENT_SECRET are required;
// a missing value is a startup error so the server never accepts traffic
// half-configured.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate checks values envconfig cannot: blank required keys, URL shapes,
// port range and the optional encryption key.
func (c *Config) validate() error {
	if strings.TrimSpace(c.SlackClientID) == "" {
		return errors.New("SLACK_CLIENT_ID must not be empty")
	}
	if strings.TrimSpace(c.SlackClientSecret) == "" {
		return errors.New("SLACK_CLIENT_SECRET must not be empty")
	}

	for name, raw := range map[string]string{
		"SLACK_REDIRECT_URI":  c.SlackRedirectURI,
		"SLACK_API_URL":       c.SlackAPIURL,
		"SLACK_AUTHORIZE_URL": c.SlackAuthorizeURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("SLACKPANEL_DB_PATH must not be empty")
	}
	if c.TLSCert == "" || c.TLSKey == "" {
		return errors.New("SLACKPANEL_TLS_CERT and SLACKPANEL_TLS_KEY must not be empty")
	}

	if c.SecretKeyHex != "" {
		key, err := hex.DecodeString(c.SecretKeyHex)
		if err != nil {
			return fmt.Errorf("SLACKPANEL_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("SLACKPANEL_SECRET_KEY must decode to 32 bytes, got %d", len(key))
		}
		c.SecretKey = key
	}

	return nil
}
