package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
)

type retryingService struct {
	next   LLMService
	config RetryConfig
}

// WithRetry wraps next so that transient failures are retried with
// exponential backoff. Client errors (4xx other than 429), empty responses
// and context cancellation are returned immediately.
func WithRetry(next LLMService, config *RetryConfig) LLMService {
	if config == nil || config.MaxAttempts <= 1 {
		return next
	}
	return &retryingService{next: next, config: *config}
}

func (s *retryingService) Chat(ctx context.Context, messages []Message) (string, error) {
	var result string
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(s.config.MaxAttempts-1), retry.NewExponential(s.config.BackoffBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		content, err := s.next.Chat(ctx, messages)
		if err == nil {
			result = content
			return nil
		}
		if !isRetryable(ctx, err) {
			return err
		}
		slog.Debug("LLM request failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		return retry.RetryableError(err)
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return isRetryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return isRetryableStatus(reqErr.HTTPStatusCode)
	}
	return true
}

func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code < 400 || code >= 500
}
