package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/prostaff-av/riskdash/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshot_opportunities (
	id             TEXT PRIMARY KEY,
	opportunity_id INTEGER NOT NULL,
	data           TEXT NOT NULL,
	fetched_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshot_opportunity_id ON snapshot_opportunities(opportunity_id);
`

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// SaveSnapshot replaces the cached collection wholesale in one transaction.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, opps []model.Opportunity, fetchedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_opportunities`); err != nil {
		return eris.Wrap(err, "sqlite: clear snapshot")
	}

	for _, o := range opps {
		data, err := json.Marshal(o)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal opportunity %d", o.ID)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshot_opportunities (id, opportunity_id, data, fetched_at) VALUES (?, ?, ?, ?)`,
			uuid.NewString(), o.ID, string(data), fetchedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert opportunity %d", o.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit snapshot")
	}
	return nil
}

// LoadSnapshot returns the cached collection in opportunity-id order.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) ([]model.Opportunity, time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data, fetched_at FROM snapshot_opportunities ORDER BY opportunity_id`,
	)
	if err != nil {
		return nil, time.Time{}, eris.Wrap(err, "sqlite: query snapshot")
	}
	defer rows.Close()

	var opps []model.Opportunity
	var fetchedAt time.Time
	for rows.Next() {
		var data, stamp string
		if err := rows.Scan(&data, &stamp); err != nil {
			return nil, time.Time{}, eris.Wrap(err, "sqlite: scan snapshot row")
		}
		if t, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
			fetchedAt = t
		}
		var o model.Opportunity
		if err := json.Unmarshal([]byte(data), &o); err != nil {
			return nil, time.Time{}, eris.Wrap(err, "sqlite: unmarshal opportunity")
		}
		opps = append(opps, o)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, eris.Wrap(err, "sqlite: iterate snapshot")
	}
	if len(opps) == 0 {
		return nil, time.Time{}, ErrNoSnapshot
	}
	return opps, fetchedAt, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
