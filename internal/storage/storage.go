// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/seaplan/mplan/pkg/core"
)

// Backend is the interface all template library implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Save creates or replaces the template stored under t.Name.
	Save(ctx context.Context, t core.Template) error
	// Load returns core.ErrTemplateNotFound when nothing is stored under name.
	Load(ctx context.Context, name string) (core.Template, error)
	// List returns every template ordered by name.
	List(ctx context.Context) ([]core.Template, error)
	Delete(ctx context.Context, name string) error
}

// Snapshotter is an optional interface for backends that can persist their contents on demand.
type Snapshotter interface {
	Snapshot() error
}
