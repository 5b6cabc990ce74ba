package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rcscout/internal/classifier"
	"github.com/abhisek/rcscout/internal/dataset"
	"github.com/abhisek/rcscout/internal/itemstore"
	"github.com/abhisek/rcscout/internal/logging"
	"github.com/abhisek/rcscout/internal/store"
)

var trainFlags struct {
	classifier string
	ratio      float64
	limit      int
	seed       uint64
	save       bool
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a classifier on a split of the labels and score the holdout",
	Long: `Train shuffles the annotated items, trains on the first share and evaluates
on the rest. The evaluation is recorded in the event database and the TF-IDF
model is saved to the model directory.`,
	RunE: runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.StringVarP(&trainFlags.classifier, "classifier", "c", "", "Classifier: tfidf or llm (default from config)")
	f.Float64Var(&trainFlags.ratio, "ratio", 0, "Training share in (0, 1] (default from config)")
	f.IntVar(&trainFlags.limit, "limit", 0, "Keep only this many items after shuffling (0 = all)")
	f.Uint64Var(&trainFlags.seed, "seed", 0, "Shuffle seed (0 = from config, or the clock)")
	f.BoolVar(&trainFlags.save, "save", true, "Save the trained TF-IDF model")
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logging.New("train")
	out := cmd.OutOrStdout()

	name := cfg.Classifier
	if trainFlags.classifier != "" {
		name = trainFlags.classifier
	}
	opts := dataset.Options{Ratio: cfg.SplitRatio, Limit: cfg.SplitLimit}
	if trainFlags.ratio != 0 {
		opts.Ratio = trainFlags.ratio
	}
	if trainFlags.limit != 0 {
		opts.Limit = trainFlags.limit
	}
	seed := cfg.Seed
	if trainFlags.seed != 0 {
		seed = trainFlags.seed
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	opts.Rand = dataset.NewRand(seed)

	items, err := itemstore.Load(cfg.ItemsPath)
	if err != nil {
		return err
	}
	split := dataset.SplitStore(items, opts)
	log.Info("split items", "items", items.Len(), "train", len(split.Train), "eval", len(split.Eval), "seed", seed)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	events := st.EventRepo()

	trainer, err := newTrainer(ctx, name, events)
	if err != nil {
		return err
	}
	report, err := classifier.Validate(ctx, trainer, split, classifier.Options{
		Parallelism: cfg.Parallelism,
		MaxTexts:    cfg.MaxTexts,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Classifier:  %s\n", report.Classifier)
	fmt.Fprintf(out, "Train/eval:  %d / %d (%d positive in eval)\n", report.TrainSize, report.EvalSize, report.Positives)
	fmt.Fprintf(out, "Counters:    tp=%.0f fp=%.0f fn=%.0f tn=%.0f\n",
		report.Counters.TP, report.Counters.FP, report.Counters.FN, report.Counters.TN)
	fmt.Fprintf(out, "Metrics:     %s\n", report.Metrics)
	fmt.Fprintf(out, "Duration:    %s\n", report.Duration.Round(time.Millisecond))

	if m, ok := report.Predictor.(*classifier.TFIDFModel); ok && trainFlags.save {
		if err := m.Save(cfg.ModelDir); err != nil {
			return fmt.Errorf("save model: %w", err)
		}
		fmt.Fprintf(out, "Model saved to %s\n", cfg.ModelDir)
	}

	err = events.AppendEvaluation(ctx, store.EvaluationRunData{
		Source:     store.SourceHoldout,
		Classifier: report.Classifier,
		TrainSize:  report.TrainSize,
		EvalSize:   report.EvalSize,
		Counters:   report.Counters,
		Metrics:    report.Metrics,
	})
	if err != nil {
		log.Warn("failed to record evaluation", "error", err)
	}
	return nil
}
