package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashureev/keyrelay/internal/domain"
)

// Multi fans each record out to several repositories.
type Multi []Repository

// Append writes to every repository, even after a failure, and returns the
// joined errors.
func (m Multi) Append(ctx context.Context, rec domain.SessionLogRecord) error {
	var errs []error
	for _, r := range m {
		if err := r.Append(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ping pings every repository.
func (m Multi) Ping(ctx context.Context) error {
	var errs []error
	for _, r := range m {
		if err := r.Ping(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List reads from the first repository that supports listing.
func (m Multi) List(ctx context.Context, participantID string) ([]domain.SessionLogRecord, error) {
	for _, r := range m {
		if l, ok := AsLister(r); ok {
			return l.List(ctx, participantID)
		}
	}
	return nil, ErrNotListable
}

// Close closes every repository.
func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open builds the repository selected by opts.Backend.
func Open(opts Options) (Repository, error) {
	switch opts.Backend {
	case BackendCSV:
		return NewCSV(opts.CSVPath)
	case BackendSQLite:
		return NewSQLite(opts.DBPath)
	case BackendBoth:
		c, err := NewCSV(opts.CSVPath)
		if err != nil {
			return nil, err
		}
		s, err := NewSQLite(opts.DBPath)
		if err != nil {
			return nil, err
		}
		return Multi{c, s}, nil
	default:
		return nil, fmt.Errorf("unknown session log backend %q", opts.Backend)
	}
}
