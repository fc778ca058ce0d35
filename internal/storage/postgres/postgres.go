// Package postgres implements the template library on PostgreSQL by wrapping the GORM backend.
package postgres

import (
	"fmt"
	"log/slog"

	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/internal/database"
	gormstorage "github.com/seaplan/mplan/internal/storage/gorm"
)

// Backend connects on Init. Init must be called before any other method.
type Backend struct {
	*gormstorage.Backend
	cfg    config.DBConfig
	logger *slog.Logger
}

// New creates a new PostgreSQL storage backend.
func New(cfg config.DBConfig, logger *slog.Logger) *Backend {
	return &Backend{cfg: cfg, logger: logger}
}

// Init connects to the database and migrates the schema.
func (b *Backend) Init() error {
	db, err := database.OpenPostgres(b.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	b.Backend = gormstorage.New(db, b.logger)
	return b.Backend.Init()
}

// Close closes the connection if it was opened.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	return b.Backend.Close()
}
