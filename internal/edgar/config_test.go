package edgar

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("EDGAR_API_USER_AGENT", "")
	t.Setenv("EDGAR_HTTP_TIMEOUT", "")
	t.Setenv("EDGAR_MAX_RETRIES", "")

	cfg := LoadConfig()
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, want default placeholder", cfg.UserAgent)
	}
	if !cfg.UserAgentDefaulted {
		t.Error("UserAgentDefaulted should be true when the env var is unset")
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("EDGAR_API_USER_AGENT", "Example Research research@example.com")
	t.Setenv("EDGAR_HTTP_TIMEOUT", "10s")
	t.Setenv("EDGAR_MAX_RETRIES", "1")

	cfg := LoadConfig()
	if cfg.UserAgent != "Example Research research@example.com" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.UserAgentDefaulted {
		t.Error("UserAgentDefaulted should be false when the env var is set")
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.MaxRetries != 1 {
		t.Errorf("MaxRetries = %d, want 1", cfg.MaxRetries)
	}
}

func TestLoadConfig_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("EDGAR_API_USER_AGENT", "x")
	t.Setenv("EDGAR_HTTP_TIMEOUT", "not-a-duration")
	t.Setenv("EDGAR_MAX_RETRIES", "many")

	cfg := LoadConfig()
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want the 30s default for a malformed value", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want the default 3 for a malformed value", cfg.MaxRetries)
	}
}
