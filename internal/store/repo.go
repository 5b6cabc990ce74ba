package store

import (
	"context"
	"time"

	"github.com/abhisek/rcscout/internal/evaluate"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // LLM events only; empty = all
	Source  string // evaluation runs only; empty = all
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls by purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// Annotation outcomes, one per terminal state of a candidate.
const (
	OutcomeSkipped   = "skipped"
	OutcomeRejected  = "rejected"
	OutcomeAccepted  = "accepted"
	OutcomeAnnotated = "annotated"
	OutcomeDropped   = "dropped"
)

// AnnotationEventData records what happened to one candidate question.
type AnnotationEventData struct {
	SessionID          string
	QuestionID         int64
	AnswerID           int64
	Outcome            string
	ValidatedAnswer    string
	ValidatedRootCause string
	PredictedScore     *float64
}

// Evaluation sources.
const (
	SourceHoldout = "holdout"
	SourceLive    = "live"
)

// EvaluationRunData records one scoring of predictions against labels.
type EvaluationRunData struct {
	Source     string
	Classifier string
	SessionID  string
	TrainSize  int
	EvalSize   int
	Counters   evaluate.Counters
	Metrics    evaluate.Metrics
}

// EvaluationRun is a stored evaluation.
type EvaluationRun struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	EvaluationRunData
}

// LLMEventAppender is the write side used by the LLM logging middleware.
type LLMEventAppender interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// AnnotationRecorder is the write side used by annotation sessions.
type AnnotationRecorder interface {
	AppendAnnotation(ctx context.Context, data AnnotationEventData) error
	AppendEvaluation(ctx context.Context, data EvaluationRunData) error
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	LLMEventAppender
	AnnotationRecorder

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AnnotationCounts returns outcome counts, for one session or all
	// sessions when sessionID is empty.
	AnnotationCounts(ctx context.Context, sessionID string) (map[string]int, error)

	// RecentEvaluations returns evaluation runs, newest first.
	RecentEvaluations(ctx context.Context, opts QueryOpts) ([]EvaluationRun, error)
}
