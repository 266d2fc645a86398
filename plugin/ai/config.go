package ai

import (
	"errors"
	"time"

	"github.com/hrygo/personalboard/internal/profile"
)

const (
	defaultMaxTokens   = 2048
	defaultTemperature = 0.7

	deepSeekBaseURL = "https://api.deepseek.com/v1"
)

// LLMConfig represents LLM configuration.
type LLMConfig struct {
	Provider    string // openai, deepseek, ollama, anthropic
	Model       string // gpt-4o-mini
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 2048
	Temperature float32 // default: 0.7
}

// RetryConfig bounds the retries of a single chat call.
type RetryConfig struct {
	// MaxAttempts counts the first call; 1 disables retrying.
	MaxAttempts int
	// BackoffBase is the wait before the second attempt; it doubles after each failure.
	BackoffBase time.Duration
}

// NewLLMConfigFromProfile creates LLM config from profile.
func NewLLMConfigFromProfile(p *profile.Profile) *LLMConfig {
	cfg := &LLMConfig{
		Provider:    p.LLMProvider,
		Model:       p.LLMModel,
		APIKey:      p.LLMAPIKey,
		BaseURL:     p.LLMBaseURL,
		MaxTokens:   p.LLMMaxTokens,
		Temperature: p.LLMTemperature,
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.Provider == "deepseek" && cfg.BaseURL == "" {
		cfg.BaseURL = deepSeekBaseURL
	}
	return cfg
}

// NewRetryConfigFromProfile creates retry config from profile.
func NewRetryConfigFromProfile(p *profile.Profile) *RetryConfig {
	return &RetryConfig{
		MaxAttempts: p.RetryMaxAttempts,
		BackoffBase: p.RetryBackoffBase,
	}
}

// Validate validates the configuration.
func (c *LLMConfig) Validate() error {
	switch c.Provider {
	case "":
		return errors.New("LLM provider is required")
	case "openai", "deepseek", "anthropic":
		if c.APIKey == "" {
			return errors.New("LLM API key is required")
		}
	case "ollama":
		if c.BaseURL == "" {
			return errors.New("ollama server URL is required")
		}
	default:
		return errors.New("unsupported LLM provider: " + c.Provider)
	}
	if c.Model == "" {
		return errors.New("LLM model is required")
	}
	return nil
}
