package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/rcscout/internal/classifier"
	"github.com/abhisek/rcscout/internal/evaluate"
	"github.com/abhisek/rcscout/internal/itemstore"
	"github.com/abhisek/rcscout/internal/logging"
	"github.com/abhisek/rcscout/internal/markup"
	"github.com/abhisek/rcscout/internal/prompt"
	"github.com/abhisek/rcscout/internal/qa"
)

const (
	msgModelRight = "Cool the model was right!"
	msgModelWrong = "... one more sample to learn."
)

// Annotation is one record written by a session, with the prediction
// shown to the operator, if any.
type Annotation struct {
	Record qa.Record
	Scores *classifier.Scores
}

// Annotator collects judgments for fetched answers and checkpoints the
// item store after every record.
type Annotator struct {
	Items    *itemstore.Store
	Prompter *prompt.Prompter

	// Path is the checkpoint target. Empty disables checkpoints.
	Path string

	// Predictor is optional. Without one no prediction is shown and the
	// live counters stay empty.
	Predictor classifier.Predictor

	// Counters accumulate live prediction quality.
	Counters evaluate.Counters

	Annotations []Annotation

	log *slog.Logger
}

// NewAnnotator returns an Annotator writing into items.
func NewAnnotator(items *itemstore.Store, path string, p *prompt.Prompter, predictor classifier.Predictor) *Annotator {
	return &Annotator{
		Items:     items,
		Prompter:  p,
		Path:      path,
		Predictor: predictor,
		Counters:  evaluate.NewCounters(),
		log:       logging.New("session"),
	}
}

// checkpointError marks a failure to persist the store, so callers do not
// retry the same save.
type checkpointError struct {
	err error
}

func (e *checkpointError) Error() string { return "checkpoint: " + e.err.Error() }
func (e *checkpointError) Unwrap() error { return e.err }

// Annotate walks the fetched answers and asks for both judgments on each.
// Answers whose question is not in sel.Accepted are dropped.
func (a *Annotator) Annotate(ctx context.Context, sel *Selection, answers []qa.Answer) error {
	for _, ans := range answers {
		if err := ctx.Err(); err != nil {
			return err
		}
		q, ok := sel.Accepted[ans.QuestionID]
		if !ok {
			a.log.Warn("dropping answer", "error", &MissingParentError{QuestionID: ans.QuestionID, AnswerID: ans.AnswerID})
			continue
		}
		if sel.life.phase(q.QuestionID) != PhaseAccepted {
			a.log.Warn("answer for already handled question", "question_id", q.QuestionID, "answer_id", ans.AnswerID)
			continue
		}
		if err := a.annotateOne(ctx, sel, q, ans); err != nil {
			return err
		}
	}

	// Accepted questions whose answer never came back.
	for _, id := range sel.AnswerIDs() {
		qid := sel.AnswerToQuestion[id]
		if sel.life.phase(qid) == PhaseAccepted {
			if err := sel.life.move(qid, PhaseDropped); err != nil {
				return err
			}
			a.log.Info("accepted answer not returned", "question_id", qid, "answer_id", id)
		}
	}
	return nil
}

func (a *Annotator) annotateOne(ctx context.Context, sel *Selection, q qa.Question, ans qa.Answer) error {
	p := a.Prompter
	answerText := markup.ToText(ans.Body)

	p.Clear()
	p.Title(fmt.Sprintf("Q#%d - %s", q.QuestionID, markup.ToText(q.Title)))
	p.Divider()
	p.Section("Question body", markup.ToText(q.Body))
	p.Divider()
	p.Section("Answer body", answerText)

	scores, err := a.predict(ctx, answerText)
	if err != nil {
		return err
	}

	p.Rule()
	goodAnswer, err := p.Decide(ctx, "Good answer: (A) accept | (R) reject: ")
	if err != nil {
		return err
	}
	rootCause, err := p.Decide(ctx, "Root cause in answer: (A) accept | (R) reject: ")
	if err != nil {
		return err
	}
	p.Rule()

	pause := "\nPress Enter to continue..."
	if scores != nil {
		predicted := scores.RootCause()
		a.Counters.ObserveBool(predicted, rootCause)
		a.log.Info("prediction", "question_id", q.QuestionID, "positive", scores.Positive, "negative", scores.Negative)
		p.Hint(fmt.Sprintf("positive=%.4f negative=%.4f", scores.Positive, scores.Negative))
		p.Printf("%05.2f%% chance of answer containing root cause.\n", scores.Percent())

		msg := msgModelWrong
		if predicted == rootCause {
			msg = msgModelRight
		}
		p.Verdict(predicted == rootCause, msg)
		pause = fmt.Sprintf("\n%s Press Enter to continue...", msg)
	}
	if err := p.Pause(ctx, pause); err != nil {
		return err
	}

	rec := qa.Record{
		Question:           q,
		Answer:             ans,
		ValidatedAnswer:    qa.VerdictOf(goodAnswer),
		ValidatedRootCause: qa.VerdictOf(rootCause),
	}
	if !a.Items.Add(rec) {
		a.log.Warn("question already stored, keeping existing record", "question_id", q.QuestionID)
	}
	if err := sel.life.move(q.QuestionID, PhaseAnnotated); err != nil {
		return err
	}
	a.Annotations = append(a.Annotations, Annotation{Record: rec, Scores: scores})

	if a.Path != "" {
		if err := a.Items.Save(a.Path); err != nil {
			return &checkpointError{err: err}
		}
	}
	return nil
}

// predict returns nil scores when there is no predictor or it failed.
// A failing predictor does not end the session; only cancellation does.
func (a *Annotator) predict(ctx context.Context, text string) (*classifier.Scores, error) {
	if a.Predictor == nil {
		return nil, nil
	}
	scores, err := a.Predictor.Predict(ctx, text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		a.log.Warn("prediction failed", "error", err)
		return nil, nil
	}
	return &scores, nil
}

// Metrics are the live prediction metrics, and how many predictions fed them.
func (a *Annotator) Metrics() (evaluate.Metrics, int) {
	return a.Counters.Metrics(), a.Counters.Total()
}
