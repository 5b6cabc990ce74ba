package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rcscout/internal/classifier"
	"github.com/abhisek/rcscout/internal/itemstore"
	"github.com/abhisek/rcscout/internal/prompt"
	"github.com/abhisek/rcscout/internal/qa"
	"github.com/abhisek/rcscout/internal/stackexchange"
	"github.com/abhisek/rcscout/internal/store"
)

type fakeSource struct {
	questions []qa.Question
	answers   []qa.Answer
	searchErr error
	answerErr error

	gotParams stackexchange.SearchParams
	gotIDs    []int64
}

func (f *fakeSource) Search(_ context.Context, p stackexchange.SearchParams) (*stackexchange.SearchResult, error) {
	f.gotParams = p
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &stackexchange.SearchResult{Items: f.questions, QuotaRemaining: 299}, nil
}

func (f *fakeSource) Answers(_ context.Context, ids []int64) ([]qa.Answer, error) {
	f.gotIDs = ids
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	return f.answers, nil
}

type fixedPredictor struct {
	scores classifier.Scores
}

func (f fixedPredictor) Predict(context.Context, string) (classifier.Scores, error) {
	return f.scores, nil
}

type fakeRecorder struct {
	mu          sync.Mutex
	annotations []store.AnnotationEventData
	evaluations []store.EvaluationRunData
}

func (f *fakeRecorder) AppendAnnotation(_ context.Context, d store.AnnotationEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.annotations = append(f.annotations, d)
	return nil
}

func (f *fakeRecorder) AppendEvaluation(_ context.Context, d store.EvaluationRunData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluations = append(f.evaluations, d)
	return nil
}

func answer(questionID, answerID int64) qa.Answer {
	return qa.Answer{AnswerID: answerID, QuestionID: questionID, Body: "<p>The disk was <em>full</em>.</p>"}
}

func newRunner(t *testing.T, src *fakeSource, p *prompt.Prompter) (*Runner, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.json")
	return &Runner{
		Searcher:  src,
		Answers:   src,
		Items:     itemstore.New(),
		Prompter:  p,
		ItemsPath: path,
		PageSize:  30,
	}, path
}

func TestRun_AnnotatesAndRecords(t *testing.T) {
	src := &fakeSource{
		questions: []qa.Question{question(1, 11), question(2, 0)},
		answers:   []qa.Answer{answer(1, 11)},
	}
	// filter accept, good answer yes, root cause no, press enter
	p, out := scripted("a", "a", "r", "")
	r, path := newRunner(t, src, p)
	rec := &fakeRecorder{}
	r.Recorder = rec
	r.Predictor = fixedPredictor{classifier.Scores{Positive: 0.8, Negative: 0.2}}
	r.Classifier = "tfidf"

	sum, err := r.Run(context.Background(), Request{Quota: 5, Query: "disk full"})
	require.NoError(t, err)

	assert.Equal(t, stackexchange.SearchParams{Query: "disk full", Page: 1, PageSize: 30, Accepted: true}, src.gotParams)
	assert.Equal(t, []int64{11}, src.gotIDs)

	saved, err := itemstore.Load(path)
	require.NoError(t, err)
	got, ok := saved.Get(1)
	require.True(t, ok)
	assert.Equal(t, qa.Accepted, got.ValidatedAnswer)
	assert.Equal(t, qa.Rejected, got.ValidatedRootCause)

	assert.Contains(t, out.String(), "80.00% chance of answer containing root cause.")
	assert.Contains(t, out.String(), "... one more sample to learn.")
	assert.Contains(t, out.String(), "The disk was full.")

	assert.Equal(t, 2, sum.Candidates)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Accepted)
	assert.Equal(t, 1, sum.Annotated)
	assert.Equal(t, 1, sum.Predictions)
	assert.Equal(t, 0.0, sum.Metrics.Precision)
	assert.NotEmpty(t, sum.SessionID)

	require.Len(t, rec.annotations, 2)
	first := rec.annotations[0]
	assert.Equal(t, sum.SessionID, first.SessionID)
	assert.Equal(t, int64(11), first.AnswerID)
	assert.Equal(t, store.OutcomeAnnotated, first.Outcome)
	assert.Equal(t, "accepted", first.ValidatedAnswer)
	assert.Equal(t, "rejected", first.ValidatedRootCause)
	require.NotNil(t, first.PredictedScore)
	assert.InDelta(t, 0.8, *first.PredictedScore, 1e-9)
	assert.Equal(t, store.OutcomeSkipped, rec.annotations[1].Outcome)

	require.Len(t, rec.evaluations, 1)
	ev := rec.evaluations[0]
	assert.Equal(t, store.SourceLive, ev.Source)
	assert.Equal(t, "tfidf", ev.Classifier)
	assert.Equal(t, 1, ev.EvalSize)
	assert.InDelta(t, 1.0, ev.Counters.FP, 1e-6)
}

func TestRun_ModelRightMessage(t *testing.T) {
	src := &fakeSource{
		questions: []qa.Question{question(1, 11)},
		answers:   []qa.Answer{answer(1, 11)},
	}
	p, out := scripted("a", "a", "a", "")
	r, _ := newRunner(t, src, p)
	r.Predictor = fixedPredictor{classifier.Scores{Positive: 0.9, Negative: 0.1}}

	sum, err := r.Run(context.Background(), Request{Quota: 1})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Cool the model was right!")
	assert.InDelta(t, 1.0, sum.Metrics.Precision, 1e-6)
}

func TestRun_WithoutPredictorSkipsPrediction(t *testing.T) {
	src := &fakeSource{
		questions: []qa.Question{question(1, 11)},
		answers:   []qa.Answer{answer(1, 11)},
	}
	p, out := scripted("a", "r", "r", "")
	r, _ := newRunner(t, src, p)
	rec := &fakeRecorder{}
	r.Recorder = rec

	sum, err := r.Run(context.Background(), Request{Quota: 1})
	require.NoError(t, err)

	assert.NotContains(t, out.String(), "chance of answer containing root cause")
	assert.Equal(t, 0, sum.Predictions)
	assert.Equal(t, 1, sum.Annotated)
	assert.Empty(t, rec.evaluations)
}

func TestRun_MissingParentIsDropped(t *testing.T) {
	src := &fakeSource{
		questions: []qa.Question{question(1, 11)},
		// The answer claims a question nobody accepted.
		answers: []qa.Answer{answer(99, 11)},
	}
	p, _ := scripted("a")
	r, path := newRunner(t, src, p)

	sum, err := r.Run(context.Background(), Request{Quota: 1})
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Annotated)
	assert.Equal(t, 1, sum.Dropped)

	saved, err := itemstore.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, saved.Len())
}

func TestRun_StoredQuestionIsNotPromptedAgain(t *testing.T) {
	src := &fakeSource{
		questions: []qa.Question{question(42, 420), question(43, 430)},
		answers:   []qa.Answer{answer(43, 430)},
	}
	// The only accept goes to 43; annotate it and continue.
	p, out := scripted("a", "a", "r", "")
	r, path := newRunner(t, src, p)
	stored := storedRecord(42)
	r.Items.Add(stored)

	sum, err := r.Run(context.Background(), Request{Quota: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Annotated)
	assert.NotContains(t, out.String(), "Q#42")
	assert.Contains(t, out.String(), "Q#43")
	assert.Equal(t, []int64{430}, src.gotIDs)

	saved, err := itemstore.Load(path)
	require.NoError(t, err)
	got, ok := saved.Get(42)
	require.True(t, ok)
	assert.Equal(t, stored, got)
	assert.True(t, saved.Has(43))
}

func TestRun_AnswerFetchFailureSavesStore(t *testing.T) {
	fetchErr := &stackexchange.TransportError{Op: "answers", Err: errors.New("connection reset")}
	src := &fakeSource{
		questions: []qa.Question{question(1, 11)},
		answerErr: fetchErr,
	}
	p, _ := scripted("a")
	r, path := newRunner(t, src, p)
	r.Items.Add(storedRecord(42))

	_, err := r.Run(context.Background(), Request{Quota: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, fetchErr)

	saved, err := itemstore.Load(path)
	require.NoError(t, err)
	assert.True(t, saved.Has(42))
}

func TestRun_AbortKeepsAnnotatedRecords(t *testing.T) {
	src := &fakeSource{
		questions: []qa.Question{question(1, 11), question(2, 22)},
		answers:   []qa.Answer{answer(1, 11), answer(2, 22)},
	}
	// Accept both, annotate the first, then input ends mid-way.
	p, _ := scripted("a", "a", "a", "a", "", "a")
	r, path := newRunner(t, src, p)

	sum, err := r.Run(context.Background(), Request{Quota: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, prompt.ErrInputClosed)
	assert.Equal(t, 1, sum.Annotated)

	saved, err := itemstore.Load(path)
	require.NoError(t, err)
	assert.True(t, saved.Has(1))
	assert.False(t, saved.Has(2))
}

func TestRun_CheckpointFailureIsReported(t *testing.T) {
	src := &fakeSource{
		questions: []qa.Question{question(1, 11)},
		answers:   []qa.Answer{answer(1, 11)},
	}
	p, _ := scripted("a", "a", "a", "")
	r, _ := newRunner(t, src, p)
	// Renaming onto a directory fails.
	r.ItemsPath = t.TempDir()

	_, err := r.Run(context.Background(), Request{Quota: 1})
	var se *itemstore.StorageError
	require.ErrorAs(t, err, &se)
}
