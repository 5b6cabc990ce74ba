// Package dataset turns the item store into labeled training and
// evaluation examples.
package dataset

import (
	"math/rand/v2"
	"time"

	"github.com/abhisek/rcscout/internal/itemstore"
	"github.com/abhisek/rcscout/internal/markup"
	"github.com/abhisek/rcscout/internal/qa"
)

// DefaultRatio is the share of records used for training.
const DefaultRatio = 0.8

// Example is one answer text with its root-cause label (1 or 0).
type Example struct {
	QuestionID int64
	Text       string
	Label      float64
}

// Options configures Split.
type Options struct {
	// Ratio is the training share in (0, 1]. Zero means DefaultRatio.
	Ratio float64

	// Limit keeps only the last Limit records after shuffling. Zero keeps all.
	Limit int

	// Rand drives the shuffle. Nil seeds a generator from the clock, so
	// pass one explicitly for reproducible splits.
	Rand *rand.Rand
}

// Split is a disjoint partition of the store.
type Split struct {
	Train []Example
	Eval  []Example
}

// NewRand returns a generator seeded from seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ExampleOf converts a record into a labeled example.
func ExampleOf(rec qa.Record) Example {
	label := 0.0
	if rec.ValidatedRootCause == qa.Accepted {
		label = 1.0
	}
	return Example{
		QuestionID: rec.ID(),
		Text:       markup.ToText(rec.Answer.Body),
		Label:      label,
	}
}

// Examples converts every record in the store, ordered by question ID.
func Examples(s *itemstore.Store) []Example {
	records := s.Records()
	out := make([]Example, len(records))
	for i, rec := range records {
		out[i] = ExampleOf(rec)
	}
	return out
}

// SplitStore shuffles the store's examples and partitions them.
func SplitStore(s *itemstore.Store, opts Options) Split {
	return SplitExamples(Examples(s), opts)
}

// SplitExamples shuffles examples in place, applies the limit and cuts at
// floor(len * ratio). The input order must already be deterministic; the
// shuffle is the only source of randomness.
func SplitExamples(examples []Example, opts Options) Split {
	ratio := opts.Ratio
	switch {
	case ratio <= 0:
		ratio = DefaultRatio
	case ratio > 1:
		ratio = 1
	}

	rng := opts.Rand
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}
	rng.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})

	if opts.Limit > 0 && opts.Limit < len(examples) {
		examples = examples[len(examples)-opts.Limit:]
	}

	cut := int(float64(len(examples)) * ratio)
	return Split{
		Train: examples[:cut:cut],
		Eval:  examples[cut:],
	}
}

// Texts returns the example texts in order.
func Texts(examples []Example) []string {
	out := make([]string, len(examples))
	for i, e := range examples {
		out[i] = e.Text
	}
	return out
}

// Labels returns the example labels in order.
func Labels(examples []Example) []float64 {
	out := make([]float64, len(examples))
	for i, e := range examples {
		out[i] = e.Label
	}
	return out
}

// Positives counts examples labeled as root causes.
func Positives(examples []Example) int {
	n := 0
	for _, e := range examples {
		if e.Label >= 0.5 {
			n++
		}
	}
	return n
}
