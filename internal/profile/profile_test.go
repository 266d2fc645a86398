package profile

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvProviderKeys(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		envVar   string
		envValue string
		expected string
	}{
		{"openai key", "openai", "OPENAI_API_KEY", "sk-openai", "sk-openai"},
		{"deepseek key", "deepseek", "DEEPSEEK_API_KEY", "sk-deepseek", "sk-deepseek"},
		{"anthropic key", "anthropic", "ANTHROPIC_API_KEY", "sk-ant", "sk-ant"},
		{"ollama needs no key", "ollama", "OPENAI_API_KEY", "sk-openai", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.envValue)

			profile := &Profile{LLMProvider: tt.provider}
			profile.FromEnv()

			if profile.LLMAPIKey != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, profile.LLMAPIKey)
			}
		})
	}
}

func TestFromEnvKeepsExplicitKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")

	profile := &Profile{LLMProvider: "openai", LLMAPIKey: "from-flag"}
	profile.FromEnv()

	if profile.LLMAPIKey != "from-flag" {
		t.Errorf("expected explicit key to win, got %q", profile.LLMAPIKey)
	}
}

func TestFromEnvOllamaHost(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "http://ollama:11434")

	profile := &Profile{LLMProvider: "ollama"}
	profile.FromEnv()

	if profile.LLMBaseURL != "http://ollama:11434" {
		t.Errorf("expected OLLAMA_HOST to be used, got %q", profile.LLMBaseURL)
	}
}

func TestValidateDefaults(t *testing.T) {
	dir := t.TempDir()
	profile := &Profile{Mode: "bogus", Data: dir}

	if err := profile.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	tests := []struct {
		name     string
		actual   any
		expected any
	}{
		{"mode falls back to demo", profile.Mode, "demo"},
		{"driver defaults to sqlite", profile.Driver, "sqlite"},
		{"sqlite dsn lives in data dir", profile.DSN, filepath.Join(dir, "personalboard_demo.db")},
		{"model default", profile.LLMModel, "gpt-4o-mini"},
		{"generation timeout", profile.GenerationTimeout, 60 * time.Second},
		{"retry attempts", profile.RetryMaxAttempts, 3},
		{"retry backoff", profile.RetryBackoffBase, 500 * time.Millisecond},
		{"fan-out concurrency", profile.FanOutConcurrency, 4},
		{"rate limit per minute", profile.RateLimitPerMinute, 6},
		{"rate limit burst", profile.RateLimitBurst, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %v, got %v", tt.name, tt.expected, tt.actual)
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		profile *Profile
	}{
		{"unknown driver", &Profile{Mode: "dev", Driver: "mysql", Data: t.TempDir()}},
		{"postgres without dsn", &Profile{Mode: "dev", Driver: "postgres", Data: t.TempDir()}},
		{"missing data dir", &Profile{Mode: "dev", Data: filepath.Join(t.TempDir(), "missing")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.profile.Validate(); err == nil {
				t.Errorf("%s: expected error", tt.name)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for input, expected := range tests {
		p := &Profile{LogLevel: input}
		if got := p.ParseLogLevel(); got != expected {
			t.Errorf("ParseLogLevel(%q): expected %v, got %v", input, expected, got)
		}
	}
}
