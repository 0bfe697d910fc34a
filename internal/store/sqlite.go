package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/keyrelay/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db         *sql.DB
	maxRetries int
	retryDelay time.Duration
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// modernc applies _pragma parameters on every new connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single writer keeps inserts serialized.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, maxRetries: 3, retryDelay: 50 * time.Millisecond}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS session_logs (
		id TEXT PRIMARY KEY,
		participant_id TEXT NOT NULL,
		input_mode TEXT NOT NULL,
		suggestions TEXT NOT NULL,
		committed_text TEXT NOT NULL,
		characters_entered INTEGER NOT NULL,
		used_suggestion INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		timed INTEGER NOT NULL,
		completed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_session_logs_participant ON session_logs(participant_id, completed_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Append inserts one session record.
func (s *SQLiteStore) Append(ctx context.Context, rec domain.SessionLogRecord) error {
	query := `
	INSERT INTO session_logs (
		id, participant_id, input_mode, suggestions, committed_text,
		characters_entered, used_suggestion, elapsed_ms, timed, completed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var err error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		_, err = s.db.ExecContext(ctx, query,
			rec.ID, rec.ParticipantID, rec.InputModeLabel, rec.SuggestionsLabel,
			rec.CommittedText, rec.CharactersEntered, rec.UsedSuggestion,
			rec.ElapsedMillis, rec.Timed, rec.CompletedAt.UnixMilli(),
		)
		if err == nil {
			return nil
		}
		if !isSQLiteConflict(err) || attempt == s.maxRetries-1 {
			break
		}

		delay := s.retryDelay * time.Duration(1<<attempt)
		slog.Debug("Database locked during session log insert, retrying",
			"record_id", rec.ID,
			"attempt", attempt+1,
			"delay", delay)
		select {
		case <-ctx.Done():
			return fmt.Errorf("insert session log: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("insert session log: %w", err)
}

// List returns the records for a participant in completion order. An empty
// participant lists everything.
func (s *SQLiteStore) List(ctx context.Context, participantID string) ([]domain.SessionLogRecord, error) {
	query := `
		SELECT id, participant_id, input_mode, suggestions, committed_text,
		       characters_entered, used_suggestion, elapsed_ms, timed, completed_at
		FROM session_logs`
	var args []interface{}
	if participantID != "" {
		query += ` WHERE participant_id = ?`
		args = append(args, participantID)
	}
	query += ` ORDER BY completed_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.SessionLogRecord
	for rows.Next() {
		var rec domain.SessionLogRecord
		var completedAt int64
		if err := rows.Scan(
			&rec.ID, &rec.ParticipantID, &rec.InputModeLabel, &rec.SuggestionsLabel,
			&rec.CommittedText, &rec.CharactersEntered, &rec.UsedSuggestion,
			&rec.ElapsedMillis, &rec.Timed, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session log row: %w", err)
		}
		rec.CompletedAt = time.UnixMilli(completedAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session logs: %w", err)
	}
	return out, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
