package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"etf-turtle/internal/domain"
	"etf-turtle/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL. The details payload
// round-trips through a JSONB column via the tagged codec in domain.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `
	id, started_at, completed_at, task_type,
	symbols_checked, signals_found, actions_needed, errors_count,
	status, summary, details
`

// Save upserts a run by ID. Task type and start time are immutable after the
// first insert: the conflict-update clause omits them.
func (s *RunStore) Save(ctx context.Context, r *domain.Run) error {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	details, err := domain.EncodeDetail(r.Details)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			completed_at = EXCLUDED.completed_at,
			symbols_checked = EXCLUDED.symbols_checked,
			signals_found = EXCLUDED.signals_found,
			actions_needed = EXCLUDED.actions_needed,
			errors_count = EXCLUDED.errors_count,
			status = EXCLUDED.status,
			summary = EXCLUDED.summary,
			details = EXCLUDED.details
	`

	_, err = s.pool.Exec(ctx, query,
		r.ID, r.StartedAt, r.CompletedAt, r.TaskType,
		r.SymbolsChecked, r.SignalsFound, r.ActionsNeeded, r.ErrorsCount,
		r.Status, r.Summary, details,
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// ByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) ByID(ctx context.Context, id string) (*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, id)
	r, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return r, nil
}

// Recent retrieves up to limit runs, newest-first by start time.
func (s *RunStore) Recent(ctx context.Context, taskType *domain.TaskType, limit int) ([]*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any

	if taskType != nil {
		args = append(args, *taskType)
		query += fmt.Sprintf(" WHERE task_type = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get recent runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// ByDate retrieves all runs whose start time falls on the given calendar date
// (by Postgres' date truncation of started_at), newest-first.
func (s *RunStore) ByDate(ctx context.Context, day time.Time, taskType *domain.TaskType) ([]*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE started_at::date = $1::date`
	args := []any{day}

	if taskType != nil {
		args = append(args, *taskType)
		query += fmt.Sprintf(" AND task_type = $%d", len(args))
	}
	query += " ORDER BY started_at DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get runs by date: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// scanRun scans a single row into a Run, decoding the details document.
func scanRun(row pgx.Row) (*domain.Run, error) {
	var r domain.Run
	var details []byte

	err := row.Scan(
		&r.ID, &r.StartedAt, &r.CompletedAt, &r.TaskType,
		&r.SymbolsChecked, &r.SignalsFound, &r.ActionsNeeded, &r.ErrorsCount,
		&r.Status, &r.Summary, &details,
	)
	if err != nil {
		return nil, err
	}

	r.Details, err = domain.DecodeDetail(r.TaskType, details)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// scanRuns scans multiple rows into a slice of Run.
func scanRuns(rows pgx.Rows) ([]*domain.Run, error) {
	var runs []*domain.Run

	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}
