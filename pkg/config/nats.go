package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// NATSConfig points the sale event publisher at a JetStream server.
type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Stream  string        `koanf:"stream"`
	// MaxAge bounds how long the stream keeps events. Zero keeps them forever.
	MaxAge time.Duration `koanf:"maxAge"`
	// Duplicates is the window in which a repeated message ID is dropped by the server.
	Duplicates time.Duration `koanf:"duplicates"`
}

func (c *NATSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  url: %s\n", MaskURL(c.URL)))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  stream: %s\n", c.Stream))
	b.WriteString(fmt.Sprintf("  maxAge: %s\n", c.MaxAge))
	b.WriteString(fmt.Sprintf("  duplicates: %s\n", c.Duplicates))
	return b.String()
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.URL == "" {
		return fmt.Errorf("NATS URL is not configured")
	}
	for _, server := range strings.Split(c.URL, ",") {
		u, err := url.Parse(strings.TrimSpace(server))
		if err != nil || u.Host == "" {
			return fmt.Errorf("invalid NATS server URL: %s", server)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("NATS dial timeout is not configured")
	}
	if c.Stream == "" || strings.ContainsAny(c.Stream, ". *>") {
		return fmt.Errorf("invalid NATS stream name: %q", c.Stream)
	}
	if c.MaxAge < 0 || c.Duplicates < 0 {
		return fmt.Errorf("NATS stream retention must not be negative")
	}
	return nil
}
