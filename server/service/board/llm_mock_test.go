package board

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hrygo/personalboard/plugin/ai"
)

// MockLLM is a testify mock of ai.LLMService.
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

// llmFunc adapts a function to ai.LLMService for tests that need to block or count.
type llmFunc func(ctx context.Context, messages []ai.Message) (string, error)

func (f llmFunc) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	return f(ctx, messages)
}
