// Package store persists bootstrapped zero curves to Postgres.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/quantmex/mxlib/timeseries"
)

// CurveStore writes curve time series to a zero_curves table keyed by
// (time_index, unique_identifier, days_to_maturity).
type CurveStore struct {
	db *sql.DB
}

// Open connects to Postgres using a lib/pq connection string or URL.
func Open(dsn string) (*CurveStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	return &CurveStore{db: db}, nil
}

// Close releases the underlying pool.
func (s *CurveStore) Close() error {
	return s.db.Close()
}

// Ping verifies connectivity.
func (s *CurveStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Init creates the zero_curves table when absent.
func (s *CurveStore) Init(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS zero_curves (
	time_index        date             NOT NULL,
	unique_identifier text             NOT NULL,
	days_to_maturity  integer          NOT NULL,
	zero_rate         double precision NOT NULL,
	updated_at        timestamptz      NOT NULL DEFAULT now(),
	PRIMARY KEY (time_index, unique_identifier, days_to_maturity)
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("store: init schema: %w", err)
	}
	return nil
}

// SaveCurves upserts every row of the series inside one transaction and
// returns the number of rows written.
func (s *CurveStore) SaveCurves(ctx context.Context, ts *timeseries.CurveTimeSeries) (int, error) {
	rows := ts.Rows()
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
INSERT INTO zero_curves (time_index, unique_identifier, days_to_maturity, zero_rate, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (time_index, unique_identifier, days_to_maturity)
DO UPDATE SET zero_rate = EXCLUDED.zero_rate, updated_at = now()`

	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		return 0, fmt.Errorf("store: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.TimeIndex, ts.UniqueIdentifier, r.DaysToMaturity, r.ZeroRate); err != nil {
			return 0, fmt.Errorf("store: upsert %s/%d: %w", r.TimeIndex.Format("2006-01-02"), r.DaysToMaturity, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return len(rows), nil
}

// LastTimeIndex returns the newest persisted valuation date for the
// identifier; ok is false when none exists.
func (s *CurveStore) LastTimeIndex(ctx context.Context, uniqueIdentifier string) (time.Time, bool, error) {
	const q = `SELECT max(time_index) FROM zero_curves WHERE unique_identifier = $1`
	var last sql.NullTime
	if err := s.db.QueryRowContext(ctx, q, uniqueIdentifier).Scan(&last); err != nil {
		return time.Time{}, false, fmt.Errorf("store: last time index: %w", err)
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	return last.Time, true, nil
}
