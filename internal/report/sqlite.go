package report

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db      *sql.DB
	closed  bool
	writeMu sync.Mutex
}

// NewSQLiteStore creates a new SQLite result store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Configure SQLite for concurrent access
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=2000&_busy_timeout=60000", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(10 * time.Minute)

	store := &SQLiteStore{
		db:     db,
		closed: false,
	}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS read_results (
		bucket TEXT NOT NULL,
		key TEXT NOT NULL,
		byte_range TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		status TEXT NOT NULL,
		last_error TEXT,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (bucket, key, byte_range)
	);

	CREATE INDEX IF NOT EXISTS idx_read_results_status ON read_results(status);
	`

	_, err := s.db.Exec(query)
	return err
}

// SaveTask saves or updates a result record with retry mechanism
func (s *SQLiteStore) SaveTask(record *TaskRecord) error {
	if s.closed {
		return fmt.Errorf("database store is closed")
	}

	// Serialize writes to avoid SQLITE_BUSY from multiple concurrent workers
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.retryOnBusy(func() error {
		return s.saveTaskWithTransaction(record)
	})
}

func (s *SQLiteStore) saveTaskWithTransaction(record *TaskRecord) error {
	record.UpdatedAt = time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // This will be ignored if Commit() succeeds

	// UPSERT keeps a re-read of the same range (e.g. a second run against the
	// same report file) from failing on the primary key.
	query := `
    INSERT INTO read_results
    (bucket, key, byte_range, bytes, duration_ms, status, last_error, updated_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(bucket, key, byte_range) DO UPDATE SET
        bytes = excluded.bytes,
        duration_ms = excluded.duration_ms,
        status = excluded.status,
        last_error = excluded.last_error,
        updated_at = excluded.updated_at
    `

	_, err = tx.Exec(query,
		record.Bucket,
		record.Key,
		record.Range,
		record.Bytes,
		record.DurationMs,
		record.Status,
		record.LastError,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to execute insert: %w", err)
	}

	return tx.Commit()
}

// ListFailedTasks returns all failed read records
func (s *SQLiteStore) ListFailedTasks() ([]*TaskRecord, error) {
	if s.closed {
		return nil, fmt.Errorf("database store is closed")
	}

	query := `
	SELECT bucket, key, byte_range, bytes, duration_ms, status, last_error, updated_at
	FROM read_results WHERE status = ?
	ORDER BY updated_at ASC
	`

	rows, err := s.db.Query(query, StatusFailed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*TaskRecord

	for rows.Next() {
		var record TaskRecord
		var lastError sql.NullString

		err := rows.Scan(
			&record.Bucket,
			&record.Key,
			&record.Range,
			&record.Bytes,
			&record.DurationMs,
			&record.Status,
			&lastError,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if lastError.Valid {
			record.LastError = lastError.String
		}

		records = append(records, &record)
	}

	return records, rows.Err()
}

// Summarize aggregates success/failure counts and total bytes read
func (s *SQLiteStore) Summarize() (Summary, error) {
	if s.closed {
		return Summary{}, fmt.Errorf("database store is closed")
	}

	query := `
	SELECT
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = ? THEN bytes ELSE 0 END), 0)
	FROM read_results
	`

	var summary Summary
	err := s.db.QueryRow(query, StatusSuccess, StatusFailed, StatusSuccess).Scan(
		&summary.Success,
		&summary.Failed,
		&summary.Bytes,
	)
	if err != nil {
		return Summary{}, err
	}

	return summary, nil
}

// retryOnBusy retries the operation if SQLite is busy
func (s *SQLiteStore) retryOnBusy(operation func() error) error {
	maxRetries := 10
	baseDelay := 50 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if isSQLiteBusyError(err) && attempt < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<uint(attempt))
			time.Sleep(delay)
			continue
		}

		return err
	}

	return nil
}

// isSQLiteBusyError checks if the error is a SQLite busy error
func isSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	errorStr := err.Error()
	return strings.Contains(errorStr, "database is locked") ||
		strings.Contains(errorStr, "SQLITE_BUSY")
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.closed = true
	return s.db.Close()
}
