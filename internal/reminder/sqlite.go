package reminder

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore provides SQLite-backed storage for reminders. It stores the
// same columns as the CSV Store and can replace it without touching the
// Manager.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath and
// ensures the reminders table exists.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createTable(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

func createTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id         INTEGER PRIMARY KEY,
			kind       TEXT    NOT NULL,
			message    TEXT    NOT NULL,
			due_at     TEXT    NOT NULL,
			subject_id INTEGER NOT NULL,
			priority   TEXT    NOT NULL,
			status     TEXT    NOT NULL DEFAULT 'pending',
			detail     TEXT    NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts r or replaces the row with the same id.
func (s *SQLiteStore) Save(r Reminder) error {
	fields, err := encodeReminder(r)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO reminders (id, kind, message, due_at, subject_id, priority, status, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			message = excluded.message,
			due_at = excluded.due_at,
			subject_id = excluded.subject_id,
			priority = excluded.priority,
			status = excluded.status,
			detail = excluded.detail
	`, r.ID, fields[1], fields[2], fields[3], r.SubjectID, fields[5], fields[6], fields[7])
	if err != nil {
		return fmt.Errorf("failed to save reminder %d: %w", r.ID, err)
	}
	return nil
}

// LoadAll returns every reminder ordered by id. Rows that fail validation
// are logged and skipped.
func (s *SQLiteStore) LoadAll() ([]Reminder, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, message, due_at, subject_id, priority, status, detail
		FROM reminders ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	line := 0
	for rows.Next() {
		line++
		var id, subjectID int64
		var kind, message, dueAt, priority, status, detail string

		if err := rows.Scan(&id, &kind, &message, &dueAt, &subjectID,
			&priority, &status, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}

		r, err := decodeReminder([]string{
			strconv.FormatInt(id, 10), kind, message, dueAt,
			strconv.FormatInt(subjectID, 10), priority, status, detail,
		}, line)
		if err != nil {
			var corrupt *CorruptRecordError
			if errors.As(err, &corrupt) {
				s.logger.Warn("skipping corrupt reminder row",
					zap.Int64("id", id),
					zap.String("reason", corrupt.Reason))
				continue
			}
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

// Snapshot reloads the table and returns its reminders for filtering.
func (s *SQLiteStore) Snapshot() (Snapshot, error) {
	return LoadSnapshot(s)
}
