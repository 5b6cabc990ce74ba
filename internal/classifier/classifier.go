// Package classifier trains and applies root-cause classifiers over
// answer text. Two implementations exist: a TF-IDF centroid baseline that
// runs offline and an LLM few-shot judge.
package classifier

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyTraining is returned when there is nothing to train on.
var ErrEmptyTraining = errors.New("no training examples")

// DefaultMaxTexts caps how many training texts a run uses.
const DefaultMaxTexts = 2000

// Scores are class probabilities for one text.
type Scores struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
}

// RootCause reports the live-session decision: the positive class wins.
func (s Scores) RootCause() bool {
	return s.Positive > s.Negative
}

// Percent is the positive score as a percentage for display.
func (s Scores) Percent() float64 {
	return s.Positive * 100
}

// Predictor scores answer text.
type Predictor interface {
	Predict(ctx context.Context, text string) (Scores, error)
}

// Trainer fits a Predictor from texts and 0/1 labels.
type Trainer interface {
	Name() string
	Train(ctx context.Context, texts []string, labels []float64) (Predictor, error)
}

func checkTrainingInput(texts []string, labels []float64) error {
	if len(texts) != len(labels) {
		return fmt.Errorf("training input: %d texts but %d labels", len(texts), len(labels))
	}
	if len(texts) == 0 {
		return ErrEmptyTraining
	}
	return nil
}
