package edgar

import (
	"os"
	"strconv"
	"time"
)

// DefaultUserAgent is used when EDGAR_API_USER_AGENT is not set. SEC's
// fair-access policy asks for a descriptive agent with contact details, so
// running with the placeholder is worth a startup warning but is not fatal.
const DefaultUserAgent = "edgar-mcp-server/1.0 (EDGAR_API_USER_AGENT not set)"

// Config holds EDGAR client settings
type Config struct {
	// UserAgent identifies the client to SEC per their fair-access policy,
	// e.g. "Acme Research admin@acme.example"
	UserAgent string

	// UserAgentDefaulted is true when no user agent was configured and the
	// placeholder is in use
	UserAgentDefaulted bool

	// Timeout for API requests
	Timeout time.Duration

	// MaxRetries for failed requests
	MaxRetries int
}

// LoadConfig loads configuration from environment variables. Missing or
// malformed values fall back to defaults; nothing here is fatal.
func LoadConfig() Config {
	cfg := Config{
		UserAgent:  os.Getenv("EDGAR_API_USER_AGENT"),
		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
		cfg.UserAgentDefaulted = true
	}

	if t := os.Getenv("EDGAR_HTTP_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if r := os.Getenv("EDGAR_MAX_RETRIES"); r != "" {
		if n, err := strconv.Atoi(r); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	return cfg
}
