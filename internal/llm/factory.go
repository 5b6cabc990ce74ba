package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/rcscout/internal/store"
)

// NewProvider builds the configured provider. Calls flow
// retry → recording → provider, so every attempt is recorded. events may
// be nil, in which case nothing is recorded.
func NewProvider(ctx context.Context, cfg Config, events store.LLMEventAppender) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	if events != nil {
		base = WithRecording(base, cfg.Provider, events)
	}
	return WithRetry(base, cfg.Retry), nil
}
