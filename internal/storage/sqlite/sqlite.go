// Package sqlitestorage implements the template library on a local SQLite file.
// It wraps the GORM backend; the only SQLite-specific concern is opening the file.
package sqlitestorage

import (
	"fmt"
	"log/slog"

	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/internal/database"
	gormstorage "github.com/seaplan/mplan/internal/storage/gorm"
)

// Backend wraps the GORM backend for SQLite. An empty path keeps the library in memory.
// Init must be called before any other method.
type Backend struct {
	*gormstorage.Backend
	cfg    config.SQLiteConfig
	logger *slog.Logger
}

// New creates a new SQLite storage backend.
func New(cfg config.SQLiteConfig, logger *slog.Logger) *Backend {
	return &Backend{cfg: cfg, logger: logger}
}

// Init opens the database file and migrates the schema.
func (b *Backend) Init() error {
	db, err := database.OpenSQLite(b.cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to open SQLite DB %q: %w", b.cfg.Path, err)
	}
	b.Backend = gormstorage.New(db, b.logger)
	return b.Backend.Init()
}

// Close closes the database if it was opened.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	return b.Backend.Close()
}
