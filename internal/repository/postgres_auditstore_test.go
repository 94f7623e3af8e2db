package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresAuditStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	store := NewPostgresAuditStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	t.Run("Record and List", func(t *testing.T) {
		older := &ValidationRun{
			ID:           uuid.New().String(),
			WorkflowName: "order sync",
			Mode:         "check",
			Valid:        false,
			ErrorCount:   2,
			WarningCount: 1,
			CreatedAt:    time.Now().Add(-time.Minute),
		}
		newer := &ValidationRun{
			ID:           uuid.New().String(),
			WorkflowName: "order sync",
			Mode:         "clean",
			Valid:        true,
			FixCount:     3,
			CreatedAt:    time.Now(),
		}
		assert.NoError(t, store.RecordRun(ctx, older))
		assert.NoError(t, store.RecordRun(ctx, newer))

		runs, err := store.ListRuns(ctx, 10)
		assert.NoError(t, err)
		assert.Len(t, runs, 2)
		assert.Equal(t, newer.ID, runs[0].ID, "newest first")
		assert.Equal(t, "clean", runs[0].Mode)
		assert.Equal(t, 3, runs[0].FixCount)
		assert.Equal(t, 2, runs[1].ErrorCount)
	})
}
