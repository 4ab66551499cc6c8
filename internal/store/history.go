package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/tupyy/periodic/internal/models"
)

// HistoryStore journals completed task invocations.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func WithTask(name string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"task": name})
	}
}

func WithSince(t time.Time) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.GtOrEq{"started_at_ms": t.UnixMilli()})
	}
}

func WithLimit(n uint64) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Limit(n)
	}
}

// Insert journals one run.
func (s *HistoryStore) Insert(ctx context.Context, run models.TaskRun) error {
	_, err := s.db.ExecContext(ctx, queryInsertTaskRun,
		run.Task,
		run.Started.UnixMilli(),
		run.Duration.Milliseconds(),
		string(run.Outcome),
		run.Error,
	)
	return err
}

// List returns journaled runs, most recent first.
func (s *HistoryStore) List(ctx context.Context, opts ...ListOption) ([]models.TaskRun, error) {
	builder := sq.Select(
		"id",
		"task",
		"started_at_ms",
		"duration_ms",
		"outcome",
		"error",
	).From("task_runs").
		OrderBy("id DESC")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.TaskRun
	for rows.Next() {
		var run models.TaskRun
		var startedMs, durationMs int64
		var outcome string
		err := rows.Scan(
			&run.ID,
			&run.Task,
			&startedMs,
			&durationMs,
			&outcome,
			&run.Error,
		)
		if err != nil {
			return nil, err
		}
		run.Started = time.UnixMilli(startedMs)
		run.Duration = time.Duration(durationMs) * time.Millisecond
		run.Outcome = models.RunOutcome(outcome)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Count returns the number of journaled runs.
func (s *HistoryStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From("task_runs")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Prune keeps the most recent keep runs and deletes the rest.
func (s *HistoryStore) Prune(ctx context.Context, keep int) error {
	_, err := s.db.ExecContext(ctx, queryPruneTaskRuns, keep)
	return err
}
