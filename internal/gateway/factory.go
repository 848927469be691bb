package gateway

import (
	"context"
	"fmt"
	"time"
)

// Config selects and configures a backend.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	// CannedDelay simulates latency for the canned provider.
	CannedDelay time.Duration
}

// New builds the configured backend wrapped with the call timeout.
func New(ctx context.Context, cfg Config) (Client, error) {
	var client Client
	switch cfg.Provider {
	case "gemini":
		g, err := NewGemini(ctx, GeminiOptions{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
		if err != nil {
			return nil, err
		}
		client = g
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai: api key is required")
		}
		client = NewOpenAI(OpenAIOptions{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
	case "canned", "":
		client = &Canned{Delay: cfg.CannedDelay}
	default:
		return nil, fmt.Errorf("unknown gateway provider %q", cfg.Provider)
	}
	name := cfg.Provider
	if name == "" {
		name = "canned"
	}
	return WithTimeout(client, cfg.Timeout, name), nil
}
