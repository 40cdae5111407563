package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Config controls client construction.
type Config struct {
	Mode    string
	APIKey  string
	BaseURL string
	Model   string
}

// NewClient builds a model client for the configured mode. In auto mode the
// real adapter is used when an API key is present, otherwise the mock.
func NewClient(cfg Config) (Client, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewAnthropicAdapter(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
		}
		return NewMockAdapter(), nil
	case "anthropic":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is required for anthropic mode")
		}
		return NewAnthropicAdapter(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case "mock":
		return NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider mode %q", cfg.Mode)
	}
}
