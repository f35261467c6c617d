// Package repository persists voting state between restarts.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/faceoff/internal/domain/model"
)

// Supported backends.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Store provides durable read/write access to the voting state.
type Store interface {
	// Load returns the last saved snapshot.
	// Returns ErrNotFound if nothing has been saved yet.
	Load(ctx context.Context) (model.Snapshot, error)

	// Save replaces the durable state with snap.
	Save(ctx context.Context, snap model.Snapshot) error

	// Close releases underlying resources.
	Close() error
}

// Open creates the store for backend. target is a file path for json and
// sqlite, and a connection string for postgres.
func Open(ctx context.Context, backend, target string, opts ...Option) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendJSON:
		return NewJSONFileStore(target, opts...), nil
	case BackendSQLite:
		return NewSQLStore(ctx, BackendSQLite, target, opts...)
	case BackendPostgres:
		return NewSQLStore(ctx, BackendPostgres, target, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
