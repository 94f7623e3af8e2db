package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAuditStore is a PostgreSQL implementation of the AuditStore
// interface.
type PostgresAuditStore struct {
	db *pgxpool.Pool
}

// NewPostgresAuditStore creates a new PostgresAuditStore.
func NewPostgresAuditStore(db *pgxpool.Pool) *PostgresAuditStore {
	return &PostgresAuditStore{db: db}
}

// EnsureSchema creates the validation_runs table if it does not exist.
func (s *PostgresAuditStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS validation_runs (
		id UUID PRIMARY KEY,
		workflow_name TEXT NOT NULL,
		mode TEXT NOT NULL,
		valid BOOLEAN NOT NULL,
		error_count INT NOT NULL,
		warning_count INT NOT NULL,
		fix_count INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

// RecordRun persists one validation run.
func (s *PostgresAuditStore) RecordRun(ctx context.Context, run *ValidationRun) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO validation_runs
			(id, workflow_name, mode, valid, error_count, warning_count, fix_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.WorkflowName, run.Mode, run.Valid,
		run.ErrorCount, run.WarningCount, run.FixCount, run.CreatedAt)
	return err
}

// ListRuns returns the most recent runs, newest first.
func (s *PostgresAuditStore) ListRuns(ctx context.Context, limit int) ([]*ValidationRun, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, workflow_name, mode, valid, error_count, warning_count, fix_count, created_at
		FROM validation_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*ValidationRun
	for rows.Next() {
		var run ValidationRun
		if err := rows.Scan(&run.ID, &run.WorkflowName, &run.Mode, &run.Valid,
			&run.ErrorCount, &run.WarningCount, &run.FixCount, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
