// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"

	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/internal/storage/memory"
	"github.com/seaplan/mplan/internal/storage/postgres"
	sqlitestorage "github.com/seaplan/mplan/internal/storage/sqlite"
)

// NewBackend creates a template library backend based on configuration. The backend is
// not initialized.
func NewBackend(cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Type {
	case "postgres":
		return postgres.New(cfg.DB, logger), nil
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite, logger), nil
	case "memory", "":
		return memory.New(cfg.Memory, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
