package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hrygo/personalboard/internal/logger"
	"github.com/hrygo/personalboard/internal/profile"
	"github.com/hrygo/personalboard/internal/version"
	"github.com/hrygo/personalboard/plugin/ai"
	"github.com/hrygo/personalboard/server"
	"github.com/hrygo/personalboard/internal/observability"
	apiv1 "github.com/hrygo/personalboard/server/router/api/v1"
	"github.com/hrygo/personalboard/server/service/board"
	"github.com/hrygo/personalboard/store"
	"github.com/hrygo/personalboard/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "personalboard",
	Short: "A personal board of AI advisors, each answering in their own persona.",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:               viper.GetString("mode"),
			Addr:               viper.GetString("addr"),
			Port:               viper.GetInt("port"),
			Data:               viper.GetString("data"),
			Driver:             viper.GetString("driver"),
			DSN:                viper.GetString("dsn"),
			Version:            version.GetCurrentVersion(viper.GetString("mode")),
			LLMProvider:        viper.GetString("llm-provider"),
			LLMModel:           viper.GetString("llm-model"),
			LLMAPIKey:          viper.GetString("llm-api-key"),
			LLMBaseURL:         viper.GetString("llm-base-url"),
			LLMMaxTokens:       viper.GetInt("llm-max-tokens"),
			LLMTemperature:     float32(viper.GetFloat64("llm-temperature")),
			GenerationTimeout:  viper.GetDuration("generation-timeout"),
			RetryMaxAttempts:   viper.GetInt("retry-max-attempts"),
			RetryBackoffBase:   viper.GetDuration("retry-backoff-base"),
			FanOutConcurrency:  viper.GetInt("fanout-concurrency"),
			RateLimitPerMinute: viper.GetInt("rate-limit-per-minute"),
			RateLimitBurst:     viper.GetInt("rate-limit-burst"),
			LogLevel:           viper.GetString("log-level"),
			LogFile:            viper.GetString("log-file"),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return err
		}

		log, closeLog := logger.SetupLogger(instanceProfile.LogFile, instanceProfile.ParseLogLevel())
		defer closeLog()
		slog.SetDefault(log)

		return run(instanceProfile, log)
	},
}

func run(instanceProfile *profile.Profile, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return errors.Wrap(err, "failed to create db driver")
	}
	storeInstance := store.New(dbDriver, instanceProfile)
	defer storeInstance.Close()
	if err := storeInstance.Migrate(ctx); err != nil {
		return errors.Wrap(err, "failed to migrate")
	}

	llmConfig := ai.NewLLMConfigFromProfile(instanceProfile)
	if err := llmConfig.Validate(); err != nil {
		return err
	}
	llmService, err := ai.NewLLMService(llmConfig)
	if err != nil {
		return errors.Wrap(err, "failed to create LLM service")
	}
	llmService = ai.WithRetry(llmService, ai.NewRetryConfigFromProfile(instanceProfile))

	metrics := observability.NewMetrics(0)
	boardService := board.NewService(storeInstance, llmService, metrics, log, board.Config{
		GenerationTimeout: instanceProfile.GenerationTimeout,
		FanOutConcurrency: instanceProfile.FanOutConcurrency,
	})
	apiV1Service, err := apiv1.NewAPIV1Service(instanceProfile, boardService, metrics, log)
	if err != nil {
		return err
	}

	s := server.NewServer(ctx, instanceProfile, apiV1Service)
	if err := s.Start(ctx); err != nil {
		return err
	}
	printGreetings(instanceProfile, llmConfig)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", slog.String("signal", sig.String()))

	return s.Shutdown(context.Background())
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)
	viper.SetDefault("llm-provider", "openai")
	viper.SetDefault("log-level", "info")

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("addr", "", "address of server")
	flags.Int("port", 8081, "port of server")
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", "database driver, sqlite or postgres")
	flags.String("dsn", "", "database source name(aka. DSN)")
	flags.String("llm-provider", "openai", "LLM provider: openai, deepseek, ollama or anthropic")
	flags.String("llm-model", "", "model name used for every persona")
	flags.String("llm-api-key", "", "API key of the LLM provider")
	flags.String("llm-base-url", "", "override the provider endpoint")
	flags.Int("llm-max-tokens", 0, "max tokens per answer")
	flags.Float64("llm-temperature", 0, "sampling temperature")
	flags.Duration("generation-timeout", 0, "timeout of one persona answer, retries included")
	flags.Int("retry-max-attempts", 0, "attempts per model call")
	flags.Duration("retry-backoff-base", 0, "base delay of the exponential retry backoff")
	flags.Int("fanout-concurrency", 0, "model calls in flight per submission")
	flags.Int("rate-limit-per-minute", 0, "submissions per user per minute")
	flags.Int("rate-limit-burst", 0, "back-to-back submissions allowed per user")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.String("log-file", "", "also write JSON logs to this file")

	flags.VisitAll(func(flag *pflag.Flag) {
		if err := viper.BindPFlag(flag.Name, flag); err != nil {
			panic(err)
		}
	})

	viper.SetEnvPrefix("board")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

func printGreetings(p *profile.Profile, llmConfig *ai.LLMConfig) {
	fmt.Printf("Personal Board %s started successfully!\n", p.Version)
	fmt.Printf("Mode: %s, driver: %s\n", p.Mode, p.Driver)
	fmt.Printf("LLM: %s (%s)\n", llmConfig.Provider, llmConfig.Model)
	if p.Addr == "" {
		fmt.Printf("Server running on port %d\n", p.Port)
	} else {
		fmt.Printf("Server running at %s:%d\n", p.Addr, p.Port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
