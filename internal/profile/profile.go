package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultLLMProvider       = "openai"
	defaultLLMModel          = "gpt-4o-mini"
	defaultGenerationTimeout = 60 * time.Second
	defaultRetryMaxAttempts  = 3
	defaultRetryBackoffBase  = 500 * time.Millisecond
	defaultFanOutConcurrency = 4
	defaultRateLimitPerMin   = 6
	defaultRateLimitBurst    = 3
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where personalboard stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// LLM configuration
	LLMProvider    string // BOARD_LLM_PROVIDER (default: openai)
	LLMModel       string // BOARD_LLM_MODEL (default: gpt-4o-mini)
	LLMAPIKey      string // BOARD_LLM_API_KEY, falls back to the provider's own variable
	LLMBaseURL     string // BOARD_LLM_BASE_URL
	LLMMaxTokens   int
	LLMTemperature float32

	// Generation pipeline
	GenerationTimeout time.Duration // per model call
	RetryMaxAttempts  int
	RetryBackoffBase  time.Duration
	FanOutConcurrency int

	// Submission rate limit per user
	RateLimitPerMinute int
	RateLimitBurst     int

	// Logging
	LogLevel string
	LogFile  string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// providerAPIKeyEnv maps an LLM provider to the variable its own SDKs read.
var providerAPIKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"deepseek":  "DEEPSEEK_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// FromEnv fills unset LLM credentials from the provider's conventional environment variable.
func (p *Profile) FromEnv() {
	if p.LLMProvider == "" {
		p.LLMProvider = defaultLLMProvider
	}
	if p.LLMAPIKey == "" {
		if key, ok := providerAPIKeyEnv[p.LLMProvider]; ok {
			p.LLMAPIKey = os.Getenv(key)
		}
	}
	if p.LLMProvider == "ollama" && p.LLMBaseURL == "" {
		p.LLMBaseURL = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
	}
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q: only 'postgres' and 'sqlite' are supported", p.Driver)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "personalboard")
		} else {
			p.Data = "/var/opt/personalboard"
		}
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
		}
	}
	if p.Data == "" {
		p.Data = "."
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("personalboard_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.LLMModel == "" {
		p.LLMModel = defaultLLMModel
	}
	if p.GenerationTimeout <= 0 {
		p.GenerationTimeout = defaultGenerationTimeout
	}
	if p.RetryMaxAttempts <= 0 {
		p.RetryMaxAttempts = defaultRetryMaxAttempts
	}
	if p.RetryBackoffBase <= 0 {
		p.RetryBackoffBase = defaultRetryBackoffBase
	}
	if p.FanOutConcurrency <= 0 {
		p.FanOutConcurrency = defaultFanOutConcurrency
	}
	if p.RateLimitPerMinute <= 0 {
		p.RateLimitPerMinute = defaultRateLimitPerMin
	}
	if p.RateLimitBurst <= 0 {
		p.RateLimitBurst = defaultRateLimitBurst
	}

	return nil
}

// ParseLogLevel converts the configured level name to a slog level.
func (p *Profile) ParseLogLevel() slog.Level {
	switch strings.ToUpper(p.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
