package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"etf-turtle/internal/observability"
)

// Config holds the connection settings supplied by the settings provider.
type Config struct {
	DSN            string
	MinConns       int32
	MaxConns       int32
	CommandTimeout time.Duration // process-wide statement timeout; zero disables
}

// Pool is a lazily created pgx connection pool shared by all stores. It is
// constructor-injected (no package global); the first query creates the
// underlying pool, Close releases it and resets state so a later query can
// recreate it. Creation failures propagate to the caller; no retries.
type Pool struct {
	cfg     Config
	metrics *observability.Metrics

	mu   sync.Mutex // guards creation only, never query execution
	pool atomic.Pointer[pgxpool.Pool]
}

// New returns an unconnected pool handle. No I/O happens until first use.
func New(cfg Config) *Pool {
	return &Pool{cfg: cfg}
}

// WithMetrics attaches query duration and error metrics.
func (p *Pool) WithMetrics(m *observability.Metrics) *Pool {
	p.metrics = m
	return p
}

// acquire returns the underlying pool, creating it on first use. The lock is
// taken only when the pool is absent and presence is re-verified after
// acquiring it, so warm acquisitions never serialize behind the mutex.
func (p *Pool) acquire(ctx context.Context) (*pgxpool.Pool, error) {
	if pool := p.pool.Load(); pool != nil {
		return pool, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if pool := p.pool.Load(); pool != nil {
		return pool, nil
	}

	config, err := pgxpool.ParseConfig(p.cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if p.cfg.MinConns > 0 {
		config.MinConns = p.cfg.MinConns
	}
	if p.cfg.MaxConns > 0 {
		config.MaxConns = p.cfg.MaxConns
	}
	if p.cfg.CommandTimeout > 0 {
		config.ConnConfig.RuntimeParams["statement_timeout"] =
			strconv.FormatInt(p.cfg.CommandTimeout.Milliseconds(), 10)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p.pool.Store(pool)
	return pool, nil
}

// Close releases all connections and resets the pool so a subsequent query
// recreates it. Safe to call on a never-used or already-closed pool.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pool := p.pool.Swap(nil); pool != nil {
		pool.Close()
	}
}

// Ping creates the pool if needed and verifies connectivity.
func (p *Pool) Ping(ctx context.Context) error {
	pool, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Exec runs a statement on a pooled connection.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	pool, err := p.acquire(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}

	start := time.Now()
	tag, err := pool.Exec(ctx, sql, args...)
	p.observe(sqlVerb(sql), start, err)
	return tag, err
}

// Query runs a query on a pooled connection.
func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	pool, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := pool.Query(ctx, sql, args...)
	p.observe(sqlVerb(sql), start, err)
	return rows, err
}

// QueryRow runs a single-row query on a pooled connection. A pool creation
// failure surfaces from Scan, mirroring pgxpool's own acquire-failure shape.
func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	pool, err := p.acquire(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return timedRow{
		row:       pool.QueryRow(ctx, sql, args...),
		pool:      p,
		operation: sqlVerb(sql),
		start:     time.Now(),
	}
}

// Begin starts a transaction on a pooled connection.
func (p *Pool) Begin(ctx context.Context) (pgx.Tx, error) {
	pool, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return pool.Begin(ctx)
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// timedRow defers the duration observation to Scan, where single-row queries
// actually hit the wire.
type timedRow struct {
	row       pgx.Row
	pool      *Pool
	operation string
	start     time.Time
}

func (r timedRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	r.pool.observe(r.operation, r.start, err)
	return err
}

// observe records one query's duration and, for real failures (not absent
// rows), its error.
func (p *Pool) observe(operation string, start time.Time, err error) {
	if p.metrics == nil {
		return
	}
	p.metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		p.metrics.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// sqlVerb extracts the leading SQL keyword for the operation label.
func sqlVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}

// isNotFoundError checks if error indicates no rows found.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
