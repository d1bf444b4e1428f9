// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"disposal-watch/internal/models"
	"disposal-watch/internal/rocdate"
)

// SQLiteStore implements WatchStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-based watch store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Watch-list: at most one record per security code
	CREATE TABLE IF NOT EXISTS watchlist (
		code TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		match_tier TEXT NOT NULL,
		period_start TEXT,
		release_date TEXT NOT NULL,
		reason TEXT DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Daily attention/disposal status observations
	CREATE TABLE IF NOT EXISTS status_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		code TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(date, code, status)
	);

	CREATE INDEX IF NOT EXISTS idx_watchlist_release ON watchlist(release_date);
	CREATE INDEX IF NOT EXISTS idx_watchlist_tier ON watchlist(match_tier);
	CREATE INDEX IF NOT EXISTS idx_history_code ON status_history(code);
	CREATE INDEX IF NOT EXISTS idx_history_date ON status_history(date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LoadAll reads the whole watch-list keyed by security code.
func (s *SQLiteStore) LoadAll(ctx context.Context) (map[string]models.DisposalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT code, display_name, match_tier, period_start, release_date, reason FROM watchlist`)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	defer rows.Close()

	records := make(map[string]models.DisposalRecord)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records[rec.Code] = rec
	}
	return records, rows.Err()
}

// ReplaceAll atomically replaces the persisted watch-list with the given
// records. Either every row lands or none do.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, records map[string]models.DisposalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM watchlist`); err != nil {
		return fmt.Errorf("failed to clear watchlist: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO watchlist (code, display_name, match_tier, period_start, release_date, reason)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var start interface{}
		if !rec.PeriodStart.IsZero() {
			start = rec.PeriodStart.Format(rocdate.DateLayout)
		}
		_, err := stmt.ExecContext(ctx,
			rec.Code,
			rec.DisplayName,
			string(rec.MatchTier),
			start,
			rec.ReleaseDate.Format(rocdate.DateLayout),
			rec.Reason,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.Code, err)
		}
	}
	return tx.Commit()
}

// GetActiveRecords returns all watch-list records sorted by release date
// ascending, then by code for a stable order.
func (s *SQLiteStore) GetActiveRecords(ctx context.Context) ([]models.DisposalRecord, error) {
	return s.queryRecords(ctx,
		`SELECT code, display_name, match_tier, period_start, release_date, reason
		 FROM watchlist ORDER BY release_date ASC, code ASC`)
}

// GetByTier returns the watch-list subset matching one tier, sorted by
// release date ascending.
func (s *SQLiteStore) GetByTier(ctx context.Context, tier models.MatchTier) ([]models.DisposalRecord, error) {
	return s.queryRecords(ctx,
		`SELECT code, display_name, match_tier, period_start, release_date, reason
		 FROM watchlist WHERE match_tier = ? ORDER BY release_date ASC, code ASC`, string(tier))
}

// Reset wipes the watch-list.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM watchlist`)
	if err != nil {
		return fmt.Errorf("failed to reset watchlist: %w", err)
	}
	return nil
}

// RecordStatuses replaces the given day's status observations with the
// supplied set, so re-running a day's recording never duplicates rows.
func (s *SQLiteStore) RecordStatuses(ctx context.Context, date string, statuses []models.StatusRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM status_history WHERE date = ?`, date); err != nil {
		return fmt.Errorf("failed to clear day %s: %w", date, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO status_history (date, code, status) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, st := range statuses {
		if _, err := stmt.ExecContext(ctx, date, st.Code, string(st.Status)); err != nil {
			return fmt.Errorf("failed to insert status for %s: %w", st.Code, err)
		}
	}
	return tx.Commit()
}

// GetStatusHistory returns the status observations for one security code,
// newest first.
func (s *SQLiteStore) GetStatusHistory(ctx context.Context, code string) ([]models.StatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT date, code, status FROM status_history WHERE code = ? ORDER BY date DESC`, code)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var history []models.StatusRecord
	for rows.Next() {
		var st models.StatusRecord
		var status string
		if err := rows.Scan(&st.Date, &st.Code, &status); err != nil {
			return nil, fmt.Errorf("failed to scan status row: %w", err)
		}
		st.Status = models.SecurityStatus(status)
		history = append(history, st)
	}
	return history, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args ...interface{}) ([]models.DisposalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var records []models.DisposalRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (models.DisposalRecord, error) {
	var rec models.DisposalRecord
	var tier string
	var start sql.NullString
	var release string
	if err := rows.Scan(&rec.Code, &rec.DisplayName, &tier, &start, &release, &rec.Reason); err != nil {
		return rec, fmt.Errorf("failed to scan record: %w", err)
	}
	rec.MatchTier = models.MatchTier(tier)
	if start.Valid && start.String != "" {
		t, err := time.Parse(rocdate.DateLayout, start.String)
		if err != nil {
			return rec, fmt.Errorf("failed to parse period_start %q: %w", start.String, err)
		}
		rec.PeriodStart = t
	}
	t, err := time.Parse(rocdate.DateLayout, release)
	if err != nil {
		return rec, fmt.Errorf("failed to parse release_date %q: %w", release, err)
	}
	rec.ReleaseDate = t
	return rec, nil
}
