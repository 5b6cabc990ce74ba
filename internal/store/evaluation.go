package store

import (
	"context"
	"fmt"
	"time"
)

func (r *eventRepo) AppendEvaluation(ctx context.Context, data EvaluationRunData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	c, m := data.Counters, data.Metrics
	_, err = r.db.ExecContext(ctx, `INSERT INTO evaluation_runs
		(sequence, timestamp, source, classifier, session_id, train_size, eval_size,
		 tp, fp, fn, tn, precision, recall, f1, accuracy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, formatTime(time.Now()), data.Source, data.Classifier, data.SessionID,
		data.TrainSize, data.EvalSize,
		c.TP, c.FP, c.FN, c.TN, m.Precision, m.Recall, m.F1, m.Accuracy,
	)
	if err != nil {
		return fmt.Errorf("save evaluation run: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentEvaluations(ctx context.Context, opts QueryOpts) ([]EvaluationRun, error) {
	query := `SELECT id, sequence, timestamp, source, classifier,
		session_id, train_size, eval_size, tp, fp, fn, tn, precision, recall, f1, accuracy
		FROM evaluation_runs`
	var args []any
	if opts.Source != "" {
		query += ` WHERE source = ?`
		args = append(args, opts.Source)
	}
	query += ` ORDER BY sequence DESC` + limitClause(opts.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query evaluation runs: %w", err)
	}
	defer rows.Close()

	var runs []EvaluationRun
	for rows.Next() {
		var e EvaluationRun
		var ts string
		c, m := &e.Counters, &e.Metrics
		if err := rows.Scan(&e.ID, &e.Sequence, &ts, &e.Source, &e.Classifier, &e.SessionID,
			&e.TrainSize, &e.EvalSize, &c.TP, &c.FP, &c.FN, &c.TN,
			&m.Precision, &m.Recall, &m.F1, &m.Accuracy); err != nil {
			return nil, fmt.Errorf("scan evaluation run: %w", err)
		}
		e.Timestamp = parseTime(ts)
		runs = append(runs, e)
	}
	return runs, rows.Err()
}
