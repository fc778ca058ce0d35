package main

import (
	"fmt"

	"github.com/seaplan/mplan/internal/cache"
	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/internal/database"
	"github.com/seaplan/mplan/internal/storage"
	gormstorage "github.com/seaplan/mplan/internal/storage/gorm"
)

// openLibrary opens the template library. Database backends go through database.Manager so
// an unreachable postgres falls back to the local SQLite file.
func (a *app) openLibrary() (storage.Backend, *cache.Templates, error) {
	cfg := config.GetStorageConfig()
	logger := a.slog.Named("storage")

	var backend storage.Backend
	switch cfg.Type {
	case "postgres", "sqlite":
		mgr := database.NewManager(a.zlog.With().Str("component", "database").Logger())
		if err := mgr.Connect(cfg); err != nil {
			return nil, nil, err
		}
		if mgr.ShouldSaveLocal {
			logger.Warn("Template library is using the local SQLite fallback", "path", cfg.SQLite.Path)
		}
		backend = gormstorage.New(mgr.DB, logger)
	default:
		b, err := storage.NewBackend(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		backend = b
	}

	if err := backend.Init(); err != nil {
		if gb, ok := backend.(*gormstorage.Backend); ok {
			_ = gb.Close()
		}
		return nil, nil, fmt.Errorf("failed to initialize template library: %w", err)
	}
	logger.Info("Template library ready", "type", cfg.Type)
	return backend, cache.NewTemplates(backend, a.reg, cfg.CacheSize, logger), nil
}
