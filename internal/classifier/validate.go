package classifier

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/rcscout/internal/dataset"
	"github.com/abhisek/rcscout/internal/evaluate"
	"github.com/abhisek/rcscout/internal/logging"
)

// DefaultParallelism bounds concurrent Predict calls in PredictAll.
const DefaultParallelism = 4

// PredictAll scores texts with at most parallelism calls in flight. The
// result is index-aligned with texts; the first error cancels the rest.
func PredictAll(ctx context.Context, p Predictor, texts []string, parallelism int) ([]Scores, error) {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	out := make([]Scores, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, text := range texts {
		g.Go(func() error {
			s, err := p.Predict(gctx, text)
			if err != nil {
				return fmt.Errorf("predict example %d: %w", i, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Options tunes Validate.
type Options struct {
	Parallelism int

	// MaxTexts caps the training examples used. Zero means
	// DefaultMaxTexts; negative means no cap.
	MaxTexts int
}

// Report is the outcome of training on one split and scoring the other.
type Report struct {
	Classifier string            `json:"classifier"`
	TrainSize  int               `json:"train_size"`
	EvalSize   int               `json:"eval_size"`
	Positives  int               `json:"eval_positives"`
	Counters   evaluate.Counters `json:"counters"`
	Metrics    evaluate.Metrics  `json:"metrics"`
	Duration   time.Duration     `json:"duration"`

	// Predictor is the model trained on split.Train.
	Predictor Predictor `json:"-"`
}

// Validate trains on split.Train and evaluates on split.Eval. An empty
// evaluation split yields the epsilon-only counters rather than an error.
func Validate(ctx context.Context, trainer Trainer, split dataset.Split, opts Options) (Report, error) {
	start := time.Now()
	log := logging.New("classifier")

	train := split.Train
	maxTexts := opts.MaxTexts
	if maxTexts == 0 {
		maxTexts = DefaultMaxTexts
	}
	if maxTexts > 0 && len(train) > maxTexts {
		train = train[:maxTexts]
	}
	if len(train) == 0 {
		return Report{}, ErrEmptyTraining
	}

	log.Info("training", "classifier", trainer.Name(), "train", len(train), "eval", len(split.Eval))
	p, err := trainer.Train(ctx, dataset.Texts(train), dataset.Labels(train))
	if err != nil {
		return Report{}, fmt.Errorf("train %s: %w", trainer.Name(), err)
	}

	scores, err := PredictAll(ctx, p, dataset.Texts(split.Eval), opts.Parallelism)
	if err != nil {
		return Report{}, err
	}
	preds := make([]float64, len(scores))
	for i, s := range scores {
		preds[i] = s.Positive
	}
	metrics, counters, err := evaluate.Evaluate(preds, dataset.Labels(split.Eval))
	if err != nil {
		return Report{}, err
	}

	r := Report{
		Classifier: trainer.Name(),
		TrainSize:  len(train),
		EvalSize:   len(split.Eval),
		Positives:  dataset.Positives(split.Eval),
		Counters:   counters,
		Metrics:    metrics,
		Duration:   time.Since(start),
		Predictor:  p,
	}
	log.Info("evaluated", "classifier", r.Classifier, "metrics", metrics.String())
	return r, nil
}
