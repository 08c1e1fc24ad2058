// Package resultstore optionally persists a finished backtest run's
// summary to Postgres. Adapted from the repository pattern used
// across the exchange services (plain database/sql against
// github.com/lib/pq), narrowed to a single insert-on-finish table
// instead of a full CRUD repository.
package resultstore

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

// Result is one finished backtest run's summary.
type Result struct {
	RunID          string
	FixturePath    string
	StartTimestamp int64
	EndTimestamp   int64
	FinalPosition  float64
	FinalBalance   float64
	FinalEquity    float64
	NumFills       int64
	NumOrders      int64
}

// Store persists Results to a postgres table.
type Store struct {
	db *sql.DB
}

// Open connects to dsn using the postgres driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an already-open *sql.DB (used by tests against sqlmock).
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts one run result row.
func (s *Store) Save(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO backtest.run_results
			(run_id, fixture_path, start_timestamp, end_timestamp,
			 final_position, final_balance, final_equity, num_fills, num_orders)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.RunID, r.FixturePath, r.StartTimestamp, r.EndTimestamp,
		r.FinalPosition, r.FinalBalance, r.FinalEquity, r.NumFills, r.NumOrders,
	)
	return err
}

// Load retrieves one run result row by id. sql.ErrNoRows is returned
// unwrapped when runID is unknown.
func (s *Store) Load(ctx context.Context, runID string) (Result, error) {
	var r Result
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, fixture_path, start_timestamp, end_timestamp,
			final_position, final_balance, final_equity, num_fills, num_orders
		 FROM backtest.run_results WHERE run_id = $1`,
		runID,
	)
	err := row.Scan(
		&r.RunID, &r.FixturePath, &r.StartTimestamp, &r.EndTimestamp,
		&r.FinalPosition, &r.FinalBalance, &r.FinalEquity, &r.NumFills, &r.NumOrders,
	)
	return r, err
}
