package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/ashureev/keyrelay/internal/domain"
)

// CSVHeader is written once when the log file is created.
var CSVHeader = []string{
	"Participant Id",
	"Input Mode",
	"Suggestions Enabled",
	"Text Input",
	"Chars Entered (With Errors)",
	"Used Suggestion",
	"Time Taken (ms)",
}

// CSVStore appends session records to a CSV file.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

// NewCSV opens the log at path, creating it with a header row if it does not
// exist yet.
func NewCSV(path string) (*CSVStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	s := &CSVStore{path: path}
	if err := s.write(); err != nil {
		return nil, err
	}
	return s, nil
}

// write appends rows, first writing the header when the file is new. The
// caller holds mu, or the store is not yet shared.
func (s *CSVStore) write(rows ...[]string) error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	switch {
	case err == nil:
		rows = append([][]string{CSVHeader}, rows...)
	case errors.Is(err, fs.ErrExist):
		f, err = os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open csv log: %w", err)
		}
	default:
		return fmt.Errorf("create csv log: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write csv log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv log: %w", err)
	}
	return nil
}

func csvRow(rec domain.SessionLogRecord) []string {
	return []string{
		rec.ParticipantID,
		rec.InputModeLabel,
		rec.SuggestionsLabel,
		rec.CommittedText,
		strconv.Itoa(rec.CharactersEntered),
		domain.YesNo(rec.UsedSuggestion),
		strconv.FormatInt(rec.ElapsedMillis, 10),
	}
}

// Append writes one row. The file is opened per record so external tools can
// rotate or copy it between sessions; a rotated-away log is recreated with
// its header.
func (s *CSVStore) Append(ctx context.Context, rec domain.SessionLogRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(csvRow(rec))
}

// Ping checks the log file is still present and writable.
func (s *CSVStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("csv log unavailable: %w", err)
	}
	return f.Close()
}

// Close is a no-op; the file is not held open.
func (s *CSVStore) Close() error { return nil }
