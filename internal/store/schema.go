package store

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp TEXT NOT NULL,
		provider TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		purpose TEXT NOT NULL DEFAULT '',
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS annotation_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp TEXT NOT NULL,
		session_id TEXT NOT NULL,
		question_id INTEGER NOT NULL,
		answer_id INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL,
		validated_answer TEXT NOT NULL DEFAULT 'unset',
		validated_root_cause TEXT NOT NULL DEFAULT 'unset',
		predicted_score REAL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_annotation_events_session ON annotation_events(session_id)`,
	`CREATE TABLE IF NOT EXISTS evaluation_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence INTEGER NOT NULL UNIQUE,
		timestamp TEXT NOT NULL,
		source TEXT NOT NULL,
		classifier TEXT NOT NULL DEFAULT '',
		session_id TEXT NOT NULL DEFAULT '',
		train_size INTEGER NOT NULL DEFAULT 0,
		eval_size INTEGER NOT NULL DEFAULT 0,
		tp REAL NOT NULL,
		fp REAL NOT NULL,
		fn REAL NOT NULL,
		tn REAL NOT NULL,
		precision REAL NOT NULL,
		recall REAL NOT NULL,
		f1 REAL NOT NULL,
		accuracy REAL NOT NULL
	)`,
}

// migrate creates every table the repositories use.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
