package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/registry"
	"github.com/seaplan/mplan/internal/storage"
	"github.com/seaplan/mplan/pkg/core"
)

const (
	// DefaultSize is used when a non-positive size is configured.
	DefaultSize = 128
	ttl         = time.Hour
)

// Templates caches decoded templates in front of a storage backend so repeated plan
// assembly does not reparse documents. Callers always receive clones.
type Templates struct {
	backend storage.Backend
	reg     *registry.Registry
	lru     *expirable.LRU[string, maneuver.Maneuver]
	logger  *slog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewTemplates creates a template cache holding up to size maneuvers.
func NewTemplates(backend storage.Backend, reg *registry.Registry, size int, logger *slog.Logger) *Templates {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = DefaultSize
	}
	return &Templates{
		backend: backend,
		reg:     reg,
		lru:     expirable.NewLRU[string, maneuver.Maneuver](size, nil, ttl),
		logger:  logger,
	}
}

// Get returns the maneuver stored under name.
func (c *Templates) Get(ctx context.Context, name string) (maneuver.Maneuver, error) {
	if m, ok := c.lru.Get(name); ok {
		c.hits.Add(1)
		return m.Clone(), nil
	}
	c.misses.Add(1)

	t, err := c.backend.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	m, err := c.reg.DecodeDocument(t.Document)
	switch {
	case m != nil && errors.Is(err, registry.ErrUnknownType):
		c.logger.Warn("template holds unknown maneuver", "template", name, "kind", m.Kind())
	case err != nil:
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	c.lru.Add(name, m)
	return m.Clone(), nil
}

// Put stores m under name. A non-empty vehicle must support the maneuver kind.
func (c *Templates) Put(ctx context.Context, name, vehicle string, m maneuver.Maneuver, tags ...string) error {
	if vehicle != "" && !c.reg.ForVehicle(vehicle).Supports(m.Kind()) {
		return fmt.Errorf("%w: %s on %s", registry.ErrNotSupported, m.Kind(), vehicle)
	}
	doc, err := maneuver.ExportDocument(m)
	if err != nil {
		return err
	}
	err = c.backend.Save(ctx, core.Template{
		Name:     name,
		Vehicle:  vehicle,
		Kind:     m.Kind(),
		Document: doc,
		Tags:     slices.Clone(tags),
	})
	if err != nil {
		return err
	}
	c.lru.Add(name, m.Clone())
	return nil
}

// Delete removes a template from the cache and the backend.
func (c *Templates) Delete(ctx context.Context, name string) error {
	c.lru.Remove(name)
	return c.backend.Delete(ctx, name)
}

// List returns the stored templates without decoding them.
func (c *Templates) List(ctx context.Context) ([]core.Template, error) {
	return c.backend.List(ctx)
}

// Len returns the number of cached maneuvers.
func (c *Templates) Len() int {
	return c.lru.Len()
}

// Stats returns cache hits and misses since creation.
func (c *Templates) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Purge empties the cache.
func (c *Templates) Purge() {
	c.lru.Purge()
}
