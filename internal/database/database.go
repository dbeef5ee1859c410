// Package database provides the Postgres-backed alternative store for
// job audit records: a durable trail of every solve run, independent of
// the Redis-backed job queue's TTL-bound result cache (spec.md §6, "an
// alternative backing for the KV store, selectable alongside Redis").
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paiban/roster/internal/config"
	"github.com/paiban/roster/pkg/logger"

	_ "github.com/lib/pq"
)

// DB wraps a sql.DB with the roster-engine's connection policy and
// slow-query logging.
type DB struct {
	*sql.DB
	cfg *config.DatabaseConfig
}

// New opens and pings a Postgres connection per cfg.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("database connection established")

	return &DB{DB: db, cfg: cfg}, nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	if db.DB != nil {
		logger.Info().Msg("closing database connection")
		return db.DB.Close()
	}
	return nil
}

// Health pings the connection.
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Transaction runs fn inside a transaction, rolling back on error or
// panic and re-panicking after rollback.
func (db *DB) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Stats returns the pool's connection statistics.
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := db.DB.ExecContext(ctx, query, args...)
	duration := time.Since(start)

	if duration > 100*time.Millisecond {
		logger.Warn().
			Str("query", truncateQuery(query)).
			Dur("duration", duration).
			Msg("slow query")
	}

	return result, err
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.DB.QueryContext(ctx, query, args...)
	duration := time.Since(start)

	if duration > 100*time.Millisecond {
		logger.Warn().
			Str("query", truncateQuery(query)).
			Dur("duration", duration).
			Msg("slow query")
	}

	return rows, err
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRowContext(ctx, query, args...)
}

// EnsureSchema creates the job_audit table if it does not already
// exist. Safe to call on every process start.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS job_audit (
			job_id       TEXT PRIMARY KEY,
			status       TEXT NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL,
			finished_at  TIMESTAMPTZ
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure job_audit schema: %w", err)
	}
	return nil
}

// RecordJobAudit upserts one job's terminal outcome into the durable
// audit trail, independent of the job queue's TTL-bound result.
func (db *DB) RecordJobAudit(ctx context.Context, jobID, status, errMsg string, finishedAt time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO job_audit (job_id, status, error_message, created_at, finished_at)
		VALUES ($1, $2, $3, now(), $4)
		ON CONFLICT (job_id) DO UPDATE
		SET status = EXCLUDED.status,
		    error_message = EXCLUDED.error_message,
		    finished_at = EXCLUDED.finished_at
	`, jobID, status, errMsg, finishedAt)
	return err
}

func truncateQuery(query string) string {
	if len(query) > 200 {
		return query[:200] + "..."
	}
	return query
}
