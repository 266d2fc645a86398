package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hrygo/personalboard/plugin/ai"
	"github.com/hrygo/personalboard/plugin/ai/timeout"
	boarderrors "github.com/hrygo/personalboard/server/internal/errors"
	"github.com/hrygo/personalboard/internal/observability"
	"github.com/hrygo/personalboard/store"
)

// Generator produces one member's answer to one user input.
type Generator struct {
	llm     ai.LLMService
	timeout time.Duration
	metrics *observability.Metrics
}

// NewGenerator creates a generator; a non-positive callTimeout falls back to timeout.GenerationTimeout.
func NewGenerator(llm ai.LLMService, callTimeout time.Duration, metrics *observability.Metrics) *Generator {
	if callTimeout <= 0 {
		callTimeout = timeout.GenerationTimeout
	}
	return &Generator{llm: llm, timeout: callTimeout, metrics: metrics}
}

// Generate issues a single chat call conditioned on member and returns the
// completion verbatim. Every failure is a *BoardError.
func (g *Generator) Generate(ctx context.Context, member *store.Member, userInput string) (string, error) {
	if member == nil || strings.TrimSpace(member.Name) == "" {
		return "", boarderrors.ValidationFailed("board member must have a name")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	output, err := g.llm.Chat(callCtx, []ai.Message{
		ai.SystemPrompt(BuildPrompt(member, userInput)),
		ai.UserMessage(userInput),
	})
	if err == nil && strings.TrimSpace(output) == "" {
		err = ai.ErrEmptyResponse
	}
	g.record(err != nil)
	if err == nil {
		return output, nil
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "", boarderrors.Timeout("submission deadline exceeded", err).WithContext("member_id", member.ID)
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return "", boarderrors.GenerationFailed(fmt.Sprintf("%s did not answer within %s", member.Name, g.timeout), err).
			WithContext("member_id", member.ID)
	default:
		return "", boarderrors.GenerationFailed(fmt.Sprintf("%s could not answer", member.Name), err).
			WithContext("member_id", member.ID)
	}
}

func (g *Generator) record(failed bool) {
	if g.metrics != nil {
		g.metrics.RecordGeneration(failed)
	}
}
