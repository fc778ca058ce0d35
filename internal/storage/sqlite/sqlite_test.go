package sqlitestorage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.db")
	ctx := context.Background()

	b := New(config.SQLiteConfig{Path: path}, nil)
	require.NoError(t, b.Init())
	require.NoError(t, b.Save(ctx, core.Template{Name: "dive", Kind: "Elevator", Document: []byte("<node/>")}))
	require.NoError(t, b.Close())

	reopened := New(config.SQLiteConfig{Path: path}, nil)
	require.NoError(t, reopened.Init())
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Load(ctx, "dive")
	require.NoError(t, err)
	assert.Equal(t, "Elevator", got.Kind)
}

func TestClose_BeforeInit(t *testing.T) {
	assert.NoError(t, New(config.SQLiteConfig{}, nil).Close())
}
