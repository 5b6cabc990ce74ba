package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendAnnotation(ctx context.Context, data AnnotationEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	va, vrc := data.ValidatedAnswer, data.ValidatedRootCause
	if va == "" {
		va = "unset"
	}
	if vrc == "" {
		vrc = "unset"
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO annotation_events
		(sequence, timestamp, session_id, question_id, answer_id, outcome,
		 validated_answer, validated_root_cause, predicted_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, formatTime(time.Now()), data.SessionID, data.QuestionID, data.AnswerID,
		data.Outcome, va, vrc, data.PredictedScore,
	)
	if err != nil {
		return fmt.Errorf("save annotation event: %w", err)
	}
	return nil
}

func (r *eventRepo) AnnotationCounts(ctx context.Context, sessionID string) (map[string]int, error) {
	query := `SELECT outcome, COUNT(*) FROM annotation_events`
	var args []any
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` GROUP BY outcome`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query annotation counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan annotation count: %w", err)
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}
