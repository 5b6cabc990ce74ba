package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/rcscout/internal/logging"
	"github.com/abhisek/rcscout/internal/store"
)

// RecordingProvider appends an llm_request_events row for every call.
type RecordingProvider struct {
	inner    Provider
	provider string
	events   store.LLMEventAppender
}

// WithRecording wraps p so each Generate call is stored through events.
func WithRecording(p Provider, providerName string, events store.LLMEventAppender) Provider {
	return &RecordingProvider{inner: p, provider: providerName, events: events}
}

func (r *RecordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := r.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    r.provider,
		Model:       r.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: describeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	// A failed append never fails the request.
	if appendErr := r.events.AppendLLMRequest(context.WithoutCancel(ctx), data); appendErr != nil {
		logging.New("llm").Warn("failed to record LLM request", "error", appendErr)
	}

	return resp, err
}

func (r *RecordingProvider) ModelID() string { return r.inner.ModelID() }

// describeRequest renders the prompt the way `rcscout llm view` shows it.
func describeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
