package repository

import (
	"context"
	"time"
)

// ValidationRun is one recorded pipeline invocation: which graph was
// checked, in which mode, and how it came out. Reports themselves are never
// persisted; the audit trail keeps only the aggregates.
type ValidationRun struct {
	ID           string
	WorkflowName string
	Mode         string // "check" or "clean"
	Valid        bool
	ErrorCount   int
	WarningCount int
	FixCount     int
	CreatedAt    time.Time
}

// AuditStore records validation runs for later inspection.
type AuditStore interface {
	// RecordRun persists one validation run.
	RecordRun(ctx context.Context, run *ValidationRun) error
	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*ValidationRun, error)
}
