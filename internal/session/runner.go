// Package session runs an interactive annotation session: search for
// candidate questions, let the operator filter them, fetch the accepted
// answers and collect a judgment pair for each.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/abhisek/rcscout/internal/classifier"
	"github.com/abhisek/rcscout/internal/itemstore"
	"github.com/abhisek/rcscout/internal/logging"
	"github.com/abhisek/rcscout/internal/prompt"
	"github.com/abhisek/rcscout/internal/qa"
	"github.com/abhisek/rcscout/internal/stackexchange"
	"github.com/abhisek/rcscout/internal/store"
)

// DefaultQuota is how many questions a session accepts when the operator
// gives no number.
const DefaultQuota = 5

// Searcher returns ranked candidate questions.
type Searcher interface {
	Search(ctx context.Context, p stackexchange.SearchParams) (*stackexchange.SearchResult, error)
}

// AnswerFetcher returns answer bodies by ID.
type AnswerFetcher interface {
	Answers(ctx context.Context, ids []int64) ([]qa.Answer, error)
}

// Request is one session's parameters.
type Request struct {
	Quota int
	Query string
}

// Runner wires the collaborators of a session together.
type Runner struct {
	Searcher Searcher
	Answers  AnswerFetcher
	Items    *itemstore.Store
	Prompter *prompt.Prompter

	// ItemsPath is where the store is checkpointed and saved.
	ItemsPath string
	PageSize  int

	// Predictor and Classifier are optional. Classifier names the
	// predictor in recorded evaluations.
	Predictor  classifier.Predictor
	Classifier string

	// Recorder is optional. Recording failures are logged, never fatal.
	Recorder store.AnnotationRecorder
}

// Run executes one session. Transport failures end the session; records
// annotated before the failure are saved first.
func (r *Runner) Run(ctx context.Context, req Request) (*Summary, error) {
	log := logging.New("session")
	sessionID := uuid.New().String()
	log = log.With("session_id", sessionID)

	sum := &Summary{SessionID: sessionID, Quota: req.Quota}
	ann := NewAnnotator(r.Items, r.ItemsPath, r.Prompter, r.Predictor)
	var sel *Selection

	finish := func(runErr error) (*Summary, error) {
		var cpErr *checkpointError
		if !errors.As(runErr, &cpErr) {
			if err := r.Items.Save(r.ItemsPath); err != nil {
				runErr = errors.Join(runErr, err)
			}
		}
		sum.fill(sel, ann)
		r.record(context.WithoutCancel(ctx), log, sessionID, sel, ann)
		return sum, runErr
	}

	log.Info("finding questions", "query", req.Query)
	res, err := r.Searcher.Search(ctx, stackexchange.SearchParams{
		Query:    req.Query,
		Page:     1,
		PageSize: r.PageSize,
		Accepted: true,
	})
	if err != nil {
		return finish(fmt.Errorf("search questions: %w", err))
	}
	log.Info("search done", "found", len(res.Items), "quota_remaining", res.QuotaRemaining)
	sum.Candidates = len(res.Items)

	sel, err = Filter(ctx, r.Items, res.Items, req.Quota, r.Prompter)
	if err != nil {
		return finish(fmt.Errorf("filter questions: %w", err))
	}
	log.Info("questions accepted, looking deeper now", "accepted", len(sel.Accepted))
	if len(sel.Accepted) == 0 {
		return finish(nil)
	}

	answers, err := r.Answers.Answers(ctx, sel.AnswerIDs())
	if err != nil {
		return finish(fmt.Errorf("fetch answers: %w", err))
	}

	if err := ann.Annotate(ctx, sel, answers); err != nil {
		return finish(fmt.Errorf("annotate: %w", err))
	}
	return finish(nil)
}

// record appends one event per candidate and the live evaluation.
func (r *Runner) record(ctx context.Context, log *slog.Logger, sessionID string, sel *Selection, ann *Annotator) {
	if r.Recorder == nil || sel == nil {
		return
	}

	byQuestion := make(map[int64]Annotation, len(ann.Annotations))
	for _, a := range ann.Annotations {
		byQuestion[a.Record.ID()] = a
	}
	questionAnswer := make(map[int64]int64, len(sel.AnswerToQuestion))
	for answerID, questionID := range sel.AnswerToQuestion {
		questionAnswer[questionID] = answerID
	}

	for _, o := range sel.Outcomes() {
		data := store.AnnotationEventData{
			SessionID:  sessionID,
			QuestionID: o.QuestionID,
			AnswerID:   questionAnswer[o.QuestionID],
			Outcome:    o.Phase.outcome(),
		}
		if a, ok := byQuestion[o.QuestionID]; ok {
			data.ValidatedAnswer = a.Record.ValidatedAnswer.String()
			data.ValidatedRootCause = a.Record.ValidatedRootCause.String()
			if a.Scores != nil {
				score := a.Scores.Positive
				data.PredictedScore = &score
			}
		}
		if err := r.Recorder.AppendAnnotation(ctx, data); err != nil {
			log.Warn("failed to record annotation event", "question_id", o.QuestionID, "error", err)
		}
	}

	metrics, n := ann.Metrics()
	if n == 0 {
		return
	}
	log.Info("live performance", "metrics", metrics.String(), "predictions", n)
	err := r.Recorder.AppendEvaluation(ctx, store.EvaluationRunData{
		Source:     store.SourceLive,
		Classifier: r.Classifier,
		SessionID:  sessionID,
		TrainSize:  r.Items.Len() - len(ann.Annotations),
		EvalSize:   n,
		Counters:   ann.Counters,
		Metrics:    metrics,
	})
	if err != nil {
		log.Warn("failed to record live evaluation", "error", err)
	}
}
