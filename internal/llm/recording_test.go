package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rcscout/internal/store"
)

type fakeEvents struct {
	events []store.LLMRequestEventData
	err    error
}

func (f *fakeEvents) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	f.events = append(f.events, data)
	return f.err
}

func TestRecordingProvider(t *testing.T) {
	events := &fakeEvents{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"root_cause_probability":0.9,"reasoning":"r"}`), Usage: Usage{InputTokens: 30, OutputTokens: 7}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithRecording(mock, "mock", events)
	ctx := WithPurpose(context.Background(), "root-cause")

	req := Request{System: "judge", Messages: []Message{{Role: RoleUser, Content: "answer text"}}, Schema: rootCauseSchema()}
	_, err := p.Generate(ctx, req)
	require.NoError(t, err)
	_, err = p.Generate(ctx, req)
	require.Error(t, err)

	require.Len(t, events.events, 2)
	ok, failed := events.events[0], events.events[1]

	assert.Equal(t, "mock", ok.Provider)
	assert.Equal(t, "root-cause", ok.Purpose)
	assert.True(t, ok.Success)
	assert.Equal(t, 30, ok.InputTokens)
	assert.Equal(t, 7, ok.OutputTokens)
	assert.Contains(t, ok.ResponseBody, "root_cause_probability")
	assert.True(t, strings.HasPrefix(ok.RequestBody, "[system]\njudge"))
	assert.Contains(t, ok.RequestBody, "[schema: root-cause-judgment]")

	assert.False(t, failed.Success)
	assert.Contains(t, failed.ErrorMessage, "down")
}

func TestRecordingProvider_AppendFailureIgnored(t *testing.T) {
	events := &fakeEvents{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithRecording(mock, "mock", events)

	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
	assert.Equal(t, DefaultPurpose, events.events[0].Purpose)
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, Config{Provider: "mock", Retry: RetryConfig{MaxAttempts: 1}}, &fakeEvents{})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	_, err = NewProvider(ctx, Config{Provider: "anthropic"}, nil)
	assert.ErrorContains(t, err, "initializing anthropic provider")

	_, err = NewProvider(ctx, Config{Provider: "llama"}, nil)
	assert.ErrorContains(t, err, "unknown LLM provider")

	p, err = NewProvider(ctx, Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "k", Model: "m"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "m", p.ModelID())
}
