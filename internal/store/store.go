// Package store provides append-only persistence for completed session logs.
package store

import (
	"context"
	"errors"

	"github.com/ashureev/keyrelay/internal/domain"
)

// Repository defines the interface for persisting session log records.
// Records are only ever appended.
type Repository interface {
	// Append writes one completed session record.
	Append(ctx context.Context, rec domain.SessionLogRecord) error

	// Ping verifies the store is reachable and writable.
	Ping(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
	BackendBoth   = "both"
)

// Options selects and locates the session log backends.
type Options struct {
	Backend string
	CSVPath string
	DBPath  string
}

// ErrNotListable is returned when no configured backend can read records back.
var ErrNotListable = errors.New("session log backend does not support listing")

// Lister reads records back in completion order. An empty participant lists
// everything.
type Lister interface {
	List(ctx context.Context, participantID string) ([]domain.SessionLogRecord, error)
}

// AsLister returns repo as a Lister when it, or for a Multi one of its
// members, can read records back.
func AsLister(repo Repository) (Lister, bool) {
	if m, ok := repo.(Multi); ok {
		for _, r := range m {
			if _, ok := AsLister(r); ok {
				return m, true
			}
		}
		return nil, false
	}
	l, ok := repo.(Lister)
	return l, ok
}
