// internal/storage/memory/memory.go
package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/pkg/core"
	"github.com/vmihailenco/msgpack/v5"
)

const snapshotVersion = 1

// snapshot is the on-disk form: msgpack compressed with zstd.
type snapshot struct {
	Version   int             `msgpack:"version"`
	Templates []core.Template `msgpack:"templates"`
}

// Backend keeps templates in memory. With a snapshot path it loads the snapshot on Init
// and writes it back on Close.
type Backend struct {
	cfg    config.MemoryConfig
	logger *slog.Logger

	mu        sync.RWMutex
	templates map[string]core.Template
	now       func() time.Time
}

// New creates a new memory backend
func New(cfg config.MemoryConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		cfg:       cfg,
		logger:    logger,
		templates: make(map[string]core.Template),
		now:       time.Now,
	}
}

// Init loads the snapshot file if one is configured and present.
func (b *Backend) Init() error {
	if b.cfg.SnapshotPath == "" {
		return nil
	}
	err := b.readSnapshot()
	if errors.Is(err, fs.ErrNotExist) {
		b.logger.Debug("no template snapshot yet", "path", b.cfg.SnapshotPath)
		return nil
	}
	return err
}

// Close writes the snapshot file if one is configured.
func (b *Backend) Close() error {
	if b.cfg.SnapshotPath == "" {
		return nil
	}
	return b.Snapshot()
}

func (b *Backend) Save(_ context.Context, t core.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now().UTC()
	t = cloneTemplate(t)
	t.CreatedAt, t.UpdatedAt = now, now
	if prev, ok := b.templates[t.Name]; ok {
		t.CreatedAt = prev.CreatedAt
	}
	b.templates[t.Name] = t
	return nil
}

func (b *Backend) Load(_ context.Context, name string) (core.Template, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.templates[name]
	if !ok {
		return core.Template{}, fmt.Errorf("%w: %s", core.ErrTemplateNotFound, name)
	}
	return cloneTemplate(t), nil
}

func (b *Backend) List(_ context.Context) ([]core.Template, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sorted(), nil
}

func (b *Backend) Delete(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.templates[name]; !ok {
		return fmt.Errorf("%w: %s", core.ErrTemplateNotFound, name)
	}
	delete(b.templates, name)
	return nil
}

// sorted returns copies of all templates ordered by name. Callers hold mu.
func (b *Backend) sorted() []core.Template {
	out := make([]core.Template, 0, len(b.templates))
	for _, t := range b.templates {
		out = append(out, cloneTemplate(t))
	}
	slices.SortFunc(out, func(a, b core.Template) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Snapshot writes all templates to the snapshot file, replacing it atomically.
func (b *Backend) Snapshot() error {
	if b.cfg.SnapshotPath == "" {
		return errors.New("snapshot path not set")
	}

	b.mu.RLock()
	snap := snapshot{Version: snapshotVersion, Templates: b.sorted()}
	b.mu.RUnlock()

	dir := filepath.Dir(b.cfg.SnapshotPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	f, err := os.CreateTemp(dir, ".templates-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer os.Remove(f.Name())

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		f.Close()
		return err
	}
	if err := msgpack.NewEncoder(zw).Encode(snap); err != nil {
		zw.Close()
		f.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to compress snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), b.cfg.SnapshotPath); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	b.logger.Debug("wrote template snapshot", "path", b.cfg.SnapshotPath, "templates", len(snap.Templates))
	return nil
}

func (b *Backend) readSnapshot() error {
	f, err := os.Open(b.cfg.SnapshotPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	defer zr.Close()

	var snap snapshot
	if err := msgpack.NewDecoder(zr).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.templates = make(map[string]core.Template, len(snap.Templates))
	for _, t := range snap.Templates {
		b.templates[t.Name] = t
	}
	b.logger.Info("loaded template snapshot", "path", b.cfg.SnapshotPath, "templates", len(snap.Templates))
	return nil
}

func cloneTemplate(t core.Template) core.Template {
	t.Document = slices.Clone(t.Document)
	t.Tags = slices.Clone(t.Tags)
	return t
}
