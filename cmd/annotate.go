package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/rcscout/internal/classifier"
	"github.com/abhisek/rcscout/internal/dataset"
	"github.com/abhisek/rcscout/internal/itemstore"
	"github.com/abhisek/rcscout/internal/logging"
	"github.com/abhisek/rcscout/internal/prompt"
	"github.com/abhisek/rcscout/internal/session"
	"github.com/abhisek/rcscout/internal/stackexchange"
	"github.com/abhisek/rcscout/internal/store"
)

var annotateFlags struct {
	quota int
	query string
	train bool
	plain bool
}

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Search questions and label their accepted answers",
	Long: `Annotate searches for questions with an accepted answer, lets you keep or
drop each candidate, then asks whether each accepted answer is a good answer
and whether it explains the root cause. Labels are saved after every item.`,
	RunE: runAnnotate,
}

func init() {
	f := annotateCmd.Flags()
	f.IntVarP(&annotateFlags.quota, "number", "n", session.DefaultQuota, "Number of questions to accept (asked interactively when not set)")
	f.StringVarP(&annotateFlags.query, "query", "q", "", "Search query (asked interactively when not set; empty = random questions)")
	f.BoolVar(&annotateFlags.train, "train", true, "Train a classifier on existing labels to show live predictions")
	f.BoolVar(&annotateFlags.plain, "plain", false, "Disable colors and screen clearing")
}

func runAnnotate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logging.New("annotate")

	items, err := itemstore.Load(cfg.ItemsPath)
	if err != nil {
		return err
	}
	log.Info("qa items already annotated", "count", items.Len(), "path", cfg.ItemsPath)

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	events := st.EventRepo()

	predictor, err := livePredictor(ctx, items, events)
	if err != nil {
		return err
	}

	p := prompt.New(os.Stdin, cmd.OutOrStdout(), prompt.WithStyle(!annotateFlags.plain))

	quota := annotateFlags.quota
	if !cmd.Flags().Changed("number") {
		p.Rule()
		quota, err = p.Number(ctx, fmt.Sprintf("How many question to explore? (default is %d): ", session.DefaultQuota), session.DefaultQuota)
		if err != nil {
			return err
		}
	}
	query := annotateFlags.query
	if !cmd.Flags().Changed("query") {
		p.Printf("\n\n")
		p.Rule()
		query, err = p.Line(ctx, "Enter your search query based on server logs (press enter for random questions): ")
		if err != nil {
			return err
		}
	}

	client := stackexchange.New(cfg.StackExchange())
	runner := &session.Runner{
		Searcher:   client,
		Answers:    client,
		Items:      items,
		Prompter:   p,
		ItemsPath:  cfg.ItemsPath,
		PageSize:   cfg.PageSize,
		Predictor:  predictor,
		Classifier: cfg.Classifier,
		Recorder:   events,
	}

	sum, err := runner.Run(ctx, session.Request{Quota: quota, Query: query})
	if sum != nil {
		sum.Print(p)
	}
	return err
}

// livePredictor returns the classifier shown during annotation, or nil
// when there is nothing to predict with.
func livePredictor(ctx context.Context, items *itemstore.Store, events store.EventRepo) (classifier.Predictor, error) {
	log := logging.New("annotate")

	if !annotateFlags.train {
		if cfg.Classifier != "tfidf" {
			return nil, nil
		}
		m, err := classifier.LoadModel(cfg.ModelDir)
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("no saved model, predictions disabled", "dir", cfg.ModelDir)
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		return m, nil
	}

	examples := dataset.Examples(items)
	if len(examples) == 0 {
		log.Info("no labeled items yet, predictions disabled")
		return nil, nil
	}
	if cfg.MaxTexts > 0 && len(examples) > cfg.MaxTexts {
		examples = examples[:cfg.MaxTexts]
	}

	trainer, err := newTrainer(ctx, cfg.Classifier, events)
	if err != nil {
		return nil, err
	}
	predictor, err := trainer.Train(ctx, dataset.Texts(examples), dataset.Labels(examples))
	if errors.Is(err, classifier.ErrEmptyTraining) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", trainer.Name(), err)
	}
	if m, ok := predictor.(*classifier.TFIDFModel); ok {
		if err := m.Save(cfg.ModelDir); err != nil {
			log.Warn("failed to save model", "dir", cfg.ModelDir, "error", err)
		}
	}
	log.Info("classifier trained", "classifier", trainer.Name(), "examples", len(examples))
	return predictor, nil
}
