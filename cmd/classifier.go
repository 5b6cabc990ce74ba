package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/rcscout/internal/classifier"
	"github.com/abhisek/rcscout/internal/llm"
	"github.com/abhisek/rcscout/internal/store"
)

// newTrainer builds the configured classifier. The LLM provider records
// every request in events.
func newTrainer(ctx context.Context, name string, events store.LLMEventAppender) (classifier.Trainer, error) {
	switch name {
	case "tfidf":
		return classifier.TFIDFTrainer{}, nil
	case "llm":
		lc := cfg.LLM
		if !llm.Discover(&lc) {
			return nil, lc.Validate()
		}
		provider, err := llm.NewProvider(ctx, lc, events)
		if err != nil {
			return nil, fmt.Errorf("llm provider: %w", err)
		}
		return classifier.LLMTrainer{
			Provider:  provider,
			FewShot:   cfg.FewShot,
			MaxTokens: lc.MaxTokens,
		}, nil
	default:
		return nil, fmt.Errorf("unknown classifier %q (want tfidf or llm)", name)
	}
}
