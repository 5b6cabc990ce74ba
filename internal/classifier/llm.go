package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/rcscout/internal/llm"
)

const (
	// DefaultFewShot is how many labeled answers go into each prompt.
	DefaultFewShot = 6

	// DefaultMaxChars truncates each answer sent to the model.
	DefaultMaxChars = 1500

	// Purpose tags recorded LLM requests made by the classifier.
	Purpose = "root-cause"
)

const systemPrompt = `You review answers to system administration questions.
Decide whether an answer explains the root cause of the problem, meaning
why it happened, rather than only a workaround or a generic fix.
Reply with the probability, between 0 and 1, that the answer states the
root cause, and one sentence of reasoning.`

var judgmentSchema = &llm.Schema{
	Name:        "root-cause-judgment",
	Description: "Probability that an answer explains the root cause",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"root_cause_probability": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"reasoning":              map[string]any{"type": "string"},
		},
		"required":             []any{"root_cause_probability", "reasoning"},
		"additionalProperties": false,
	},
}

type judgment struct {
	Probability float64 `json:"root_cause_probability"`
	Reasoning   string  `json:"reasoning"`
}

// LLMTrainer "trains" by picking few-shot examples; the model does the
// rest.
type LLMTrainer struct {
	Provider  llm.Provider
	FewShot   int
	MaxChars  int
	MaxTokens int
}

func (LLMTrainer) Name() string { return "llm" }

// Train keeps up to FewShot examples, balanced between the classes and
// taken in input order.
func (t LLMTrainer) Train(_ context.Context, texts []string, labels []float64) (Predictor, error) {
	if err := checkTrainingInput(texts, labels); err != nil {
		return nil, err
	}
	if t.Provider == nil {
		return nil, fmt.Errorf("llm classifier: no provider configured")
	}

	k := t.FewShot
	if k <= 0 {
		k = DefaultFewShot
	}
	maxChars := t.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var pos, neg []int
	for i, l := range labels {
		if l >= 0.5 {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}

	// Alternate classes, then top up from whichever has examples left.
	var picked []int
	for i := 0; len(picked) < k && (i < len(pos) || i < len(neg)); i++ {
		if i < len(pos) {
			picked = append(picked, pos[i])
		}
		if i < len(neg) && len(picked) < k {
			picked = append(picked, neg[i])
		}
	}

	shots := make([]llm.Message, 0, 2*len(picked))
	for _, i := range picked {
		reply, err := json.Marshal(judgment{
			Probability: labels[i],
			Reasoning:   shotReasoning(labels[i]),
		})
		if err != nil {
			return nil, err
		}
		shots = append(shots,
			llm.Message{Role: llm.RoleUser, Content: truncate(texts[i], maxChars)},
			llm.Message{Role: llm.RoleAssistant, Content: string(reply)},
		)
	}

	maxTokens := t.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}
	return &LLMPredictor{provider: t.Provider, shots: shots, maxChars: maxChars, maxTokens: maxTokens}, nil
}

// LLMPredictor asks the provider to judge each answer.
type LLMPredictor struct {
	provider  llm.Provider
	shots     []llm.Message
	maxChars  int
	maxTokens int
}

// Shots returns the number of few-shot examples in each prompt.
func (p *LLMPredictor) Shots() int { return len(p.shots) / 2 }

func (p *LLMPredictor) Predict(ctx context.Context, text string) (Scores, error) {
	msgs := make([]llm.Message, 0, len(p.shots)+1)
	msgs = append(msgs, p.shots...)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: truncate(text, p.maxChars)})

	resp, err := p.provider.Generate(llm.WithPurpose(ctx, Purpose), llm.Request{
		System:    systemPrompt,
		Messages:  msgs,
		Schema:    judgmentSchema,
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return Scores{}, fmt.Errorf("judge answer: %w", err)
	}

	var j judgment
	if err := resp.Decode(&j); err != nil {
		return Scores{}, err
	}
	return Scores{Positive: j.Probability, Negative: 1 - j.Probability}, nil
}

func shotReasoning(label float64) string {
	if label >= 0.5 {
		return "The answer explains why the problem happened."
	}
	return "The answer does not explain why the problem happened."
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
