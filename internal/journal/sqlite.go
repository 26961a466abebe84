package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/haldorsen/breakwater/internal/model"

	_ "modernc.org/sqlite"
)

const createDispatchesTable = `
CREATE TABLE IF NOT EXISTS dispatches (
    id          TEXT PRIMARY KEY,
    pool_key    TEXT NOT NULL,
    outcome     TEXT NOT NULL,
    status      INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    created_at  DATETIME NOT NULL
)`

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteJournal)(nil)

// SQLiteJournal implements Store using SQLite.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens the SQLite database at dbPath and runs migrations.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createDispatchesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create dispatches table: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Close closes the underlying database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

// RecordDispatch inserts a new dispatch record.
func (j *SQLiteJournal) RecordDispatch(ctx context.Context, d *model.Dispatch) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO dispatches (id, pool_key, outcome, status, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.PoolKey, d.Outcome, d.Status, d.DurationMS, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dispatch: %w", err)
	}
	return nil
}

// GetDispatch retrieves a dispatch record by ID.
func (j *SQLiteJournal) GetDispatch(ctx context.Context, id string) (*model.Dispatch, error) {
	d := &model.Dispatch{}
	err := j.db.QueryRowContext(ctx,
		`SELECT id, pool_key, outcome, status, duration_ms, created_at
		FROM dispatches WHERE id = ?`, id,
	).Scan(&d.ID, &d.PoolKey, &d.Outcome, &d.Status, &d.DurationMS, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dispatch: %w", err)
	}
	return d, nil
}

// ListDispatches returns a paginated list of dispatches ordered by created_at
// DESC, along with the total count of all records.
func (j *SQLiteJournal) ListDispatches(ctx context.Context, limit, offset int) ([]*model.Dispatch, int, error) {
	tx, err := j.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM dispatches").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count dispatches: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, pool_key, outcome, status, duration_ms, created_at
		FROM dispatches ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list dispatches: %w", err)
	}
	defer rows.Close()

	var dispatches []*model.Dispatch
	for rows.Next() {
		d := &model.Dispatch{}
		if err := rows.Scan(&d.ID, &d.PoolKey, &d.Outcome, &d.Status, &d.DurationMS, &d.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan dispatch: %w", err)
		}
		dispatches = append(dispatches, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate dispatches: %w", err)
	}

	return dispatches, total, nil
}

// GetDispatchStats aggregates counts by outcome and pool plus the average
// dispatch duration.
func (j *SQLiteJournal) GetDispatchStats(ctx context.Context) (*DispatchStats, error) {
	stats := &DispatchStats{
		CountByOutcome: make(map[string]int),
		CountByPool:    make(map[string]int),
	}

	if err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(AVG(duration_ms), 0) FROM dispatches",
	).Scan(&stats.Total, &stats.AvgDurationMS); err != nil {
		return nil, fmt.Errorf("aggregate dispatches: %w", err)
	}

	rows, err := j.db.QueryContext(ctx, "SELECT outcome, COUNT(*) FROM dispatches GROUP BY outcome")
	if err != nil {
		return nil, fmt.Errorf("count by outcome: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		stats.CountByOutcome[outcome] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome counts: %w", err)
	}

	poolRows, err := j.db.QueryContext(ctx, "SELECT pool_key, COUNT(*) FROM dispatches GROUP BY pool_key")
	if err != nil {
		return nil, fmt.Errorf("count by pool: %w", err)
	}
	defer poolRows.Close()
	for poolRows.Next() {
		var key string
		var n int
		if err := poolRows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan pool count: %w", err)
		}
		stats.CountByPool[key] = n
	}
	if err := poolRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool counts: %w", err)
	}

	return stats, nil
}
