// Package gormstorage implements the template library on GORM. The sqlite and postgres
// backends wrap it and only differ in how the connection is opened.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/seaplan/mplan/internal/database"
	"github.com/seaplan/mplan/internal/model"
	"github.com/seaplan/mplan/internal/model/convert"
	"github.com/seaplan/mplan/pkg/core"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Backend stores templates in a GORM database.
type Backend struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New wraps an open connection.
func New(db *gorm.DB, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{db: db, logger: logger}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := database.Migrate(b.db); err != nil {
		return err
	}
	b.logger.Debug("template schema ready", "dialect", b.db.Dialector.Name())
	return nil
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (b *Backend) Save(ctx context.Context, t core.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	rec := convert.TemplateToGorm(t)
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"vehicle", "kind", "document", "tags", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save template %s: %w", t.Name, err)
	}
	return nil
}

func (b *Backend) Load(ctx context.Context, name string) (core.Template, error) {
	var rec model.Template
	err := b.db.WithContext(ctx).Where("name = ?", name).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.Template{}, fmt.Errorf("%w: %s", core.ErrTemplateNotFound, name)
	}
	if err != nil {
		return core.Template{}, fmt.Errorf("failed to load template %s: %w", name, err)
	}
	return convert.TemplateToCore(rec), nil
}

func (b *Backend) List(ctx context.Context) ([]core.Template, error) {
	var recs []model.Template
	if err := b.db.WithContext(ctx).Order("name").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	out := make([]core.Template, len(recs))
	for i, rec := range recs {
		out[i] = convert.TemplateToCore(rec)
	}
	return out, nil
}

// Delete removes the row outright so the name can be reused.
func (b *Backend) Delete(ctx context.Context, name string) error {
	res := b.db.WithContext(ctx).Unscoped().Where("name = ?", name).Delete(&model.Template{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete template %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", core.ErrTemplateNotFound, name)
	}
	return nil
}
