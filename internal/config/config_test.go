package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if cfg.LLMProvider != "auto" {
		t.Fatalf("LLMProvider = %q, want %q", cfg.LLMProvider, "auto")
	}
	if cfg.SessionHistoryWindow != 40 {
		t.Fatalf("SessionHistoryWindow = %d, want 40", cfg.SessionHistoryWindow)
	}
	if cfg.AnthropicAPIKey != "" {
		t.Fatalf("AnthropicAPIKey = %q, want empty default", cfg.AnthropicAPIKey)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "10m")
	t.Setenv("APP_SESSION_HISTORY_WINDOW", "12")
	t.Setenv("LLM_PROVIDER", "mock")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.SessionInactivityTimeout != 10*time.Minute {
		t.Fatalf("SessionInactivityTimeout = %v", cfg.SessionInactivityTimeout)
	}
	if cfg.SessionHistoryWindow != 12 {
		t.Fatalf("SessionHistoryWindow = %d", cfg.SessionHistoryWindow)
	}
}

func TestLoadRejectsBadProvider(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("LLM_PROVIDER", "skynet")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want invalid provider error")
	}
}

func TestLoadRejectsTinyInactivityTimeout(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "1s")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() error = nil, want validation error")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_SESSION_INACTIVITY_TIMEOUT",
		"APP_SESSION_HISTORY_WINDOW",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"LLM_PROVIDER",
		"ANTHROPIC_API_KEY",
		"ANTHROPIC_BASE_URL",
		"ANTHROPIC_MODEL",
		"DATABASE_URL",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}
