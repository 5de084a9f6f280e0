package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/prostaff-av/riskdash/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock's pool
// interface satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 5
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool (used by tests).
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshot_opportunities (
	id             TEXT PRIMARY KEY,
	opportunity_id BIGINT NOT NULL,
	data           JSONB NOT NULL,
	fetched_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshot_opportunity_id ON snapshot_opportunities(opportunity_id);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// SaveSnapshot replaces the cached collection wholesale in one transaction.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, opps []model.Opportunity, fetchedAt time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM snapshot_opportunities`); err != nil {
		return eris.Wrap(err, "postgres: clear snapshot")
	}

	for _, o := range opps {
		data, err := json.Marshal(o)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal opportunity %d", o.ID)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO snapshot_opportunities (id, opportunity_id, data, fetched_at) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), o.ID, data, fetchedAt.UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert opportunity %d", o.ID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "postgres: commit snapshot")
	}
	return nil
}

// LoadSnapshot returns the cached collection in opportunity-id order.
func (s *PostgresStore) LoadSnapshot(ctx context.Context) ([]model.Opportunity, time.Time, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data, fetched_at FROM snapshot_opportunities ORDER BY opportunity_id`,
	)
	if err != nil {
		return nil, time.Time{}, eris.Wrap(err, "postgres: query snapshot")
	}
	defer rows.Close()

	var opps []model.Opportunity
	var fetchedAt time.Time
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data, &fetchedAt); err != nil {
			return nil, time.Time{}, eris.Wrap(err, "postgres: scan snapshot row")
		}
		var o model.Opportunity
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, time.Time{}, eris.Wrap(err, "postgres: unmarshal opportunity")
		}
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, eris.Wrap(err, "postgres: iterate snapshot")
	}
	if len(opps) == 0 {
		return nil, time.Time{}, ErrNoSnapshot
	}
	return opps, fetchedAt, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
