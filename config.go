package cnsmtp

import (
	"log/slog"
	"time"
)

// ClientConfig holds configuration for the SMTP client.
type ClientConfig struct {
	// LocalName is the identity sent with HELO.
	// Default: "localhost"
	LocalName string

	// ConnectTimeout bounds a single TCP connect attempt made by a Dialer.
	// Default: 30 seconds
	ConnectTimeout time.Duration

	// ReadTimeout is applied as a read deadline before every reply line
	// when the bound reader supports deadlines. Zero disables it.
	ReadTimeout time.Duration

	// WriteTimeout is applied as a write deadline before every command and
	// every message line when the bound writer supports deadlines. Zero
	// disables it.
	WriteTimeout time.Duration

	// MaxReplyLineLength limits a single reply line, excluding CRLF.
	// Default: 2048
	MaxReplyLineLength int

	// LineWidth is the width message bodies are wrapped at during DATA.
	// Default: 76
	LineWidth int

	// Logger receives protocol traces at debug level.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		LocalName:          "localhost",
		ConnectTimeout:     30 * time.Second,
		ReadTimeout:        5 * time.Minute,
		WriteTimeout:       5 * time.Minute,
		MaxReplyLineLength: 2048,
		LineWidth:          76,
	}
}

// withDefaults returns a copy of c with zero fields filled in.
func (c *ClientConfig) withDefaults() *ClientConfig {
	d := DefaultClientConfig()
	if c == nil {
		d.Logger = slog.Default()
		return d
	}

	cfg := *c
	if cfg.LocalName == "" {
		cfg.LocalName = d.LocalName
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = d.ConnectTimeout
	}
	if cfg.MaxReplyLineLength == 0 {
		cfg.MaxReplyLineLength = d.MaxReplyLineLength
	}
	if cfg.LineWidth == 0 {
		cfg.LineWidth = d.LineWidth
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &cfg
}
