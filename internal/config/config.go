package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// Presence
	SessionTTL    time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`

	// Push channels
	KeepaliveInterval time.Duration `mapstructure:"keepalive_interval" yaml:"keepalive_interval"`
	SubscriberBuffer  int           `mapstructure:"subscriber_buffer" yaml:"subscriber_buffer"`

	ClearBoardOnSeatLeft bool `mapstructure:"clear_board_on_seat_left" yaml:"clear_board_on_seat_left"`
	// RateLimit caps /action and /move requests per client address per
	// minute. Zero disables it.
	RateLimit int `mapstructure:"rate_limit" yaml:"rate_limit"`

	// ResultsDBPath enables the finished-game ledger when set.
	ResultsDBPath string `mapstructure:"results_db_path" yaml:"results_db_path"`

	// AdminSecret guards /admin/reset with HS256 bearer tokens when set.
	AdminSecret string `mapstructure:"admin_secret" yaml:"admin_secret"`
	AdminIssuer string `mapstructure:"admin_issuer" yaml:"admin_issuer"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                 ":8080",
		ReadHeaderTimeout:    5 * time.Second,
		ShutdownTimeout:      5 * time.Second,
		LogLevel:             "info",
		SessionTTL:           25 * time.Second,
		SweepInterval:        10 * time.Second,
		KeepaliveInterval:    15 * time.Second,
		SubscriberBuffer:     16,
		ClearBoardOnSeatLeft: true,
		RateLimit:            600,
		ResultsDBPath:        "",
		AdminSecret:          "",
		AdminIssuer:          "reversi-server",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// ClearBoardOnSeatLeft is not touched since its zero value is meaningful.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.SessionTTL != 0 {
		c.SessionTTL = other.SessionTTL
	}
	if other.SweepInterval != 0 {
		c.SweepInterval = other.SweepInterval
	}
	if other.KeepaliveInterval != 0 {
		c.KeepaliveInterval = other.KeepaliveInterval
	}
	if other.SubscriberBuffer != 0 {
		c.SubscriberBuffer = other.SubscriberBuffer
	}
	if other.RateLimit != 0 {
		c.RateLimit = other.RateLimit
	}
	if other.ResultsDBPath != "" {
		c.ResultsDBPath = other.ResultsDBPath
	}
	if other.AdminSecret != "" {
		c.AdminSecret = other.AdminSecret
	}
	if other.AdminIssuer != "" {
		c.AdminIssuer = other.AdminIssuer
	}
}
