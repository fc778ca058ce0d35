package monitor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seaplan/mplan/internal/cache"
	"github.com/seaplan/mplan/internal/config"
	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/registry"
	"github.com/seaplan/mplan/internal/storage/memory"
	"github.com/seaplan/mplan/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, path string) (*Service, *cache.Templates) {
	t.Helper()
	reg := registry.New(nil, registry.WithIDs(&maneuver.SequenceIDs{}))
	backend := memory.New(config.MemoryConfig{}, nil)
	require.NoError(t, backend.Init())
	templates := cache.NewTemplates(backend, reg, 4, nil)

	s := NewService(Dependencies{
		Templates:  templates,
		Worker:     worker.NewManager(worker.Dependencies{Registry: reg}),
		Pending:    func() int { return 3 },
		StatusPath: path,
		Interval:   10 * time.Millisecond,
	})
	return s, templates
}

func TestGetStatus(t *testing.T) {
	s, templates := newTestService(t, "")
	require.NoError(t, templates.Put(context.Background(), "hover", "", maneuver.NewLoiter(nil)))

	st := s.GetStatus()
	assert.Equal(t, 1, st.CacheEntries)
	assert.Equal(t, 3, st.LinkPending)
	assert.Empty(t, st.Received)
}

func TestGetStatus_NoDependencies(t *testing.T) {
	st := NewService(Dependencies{}).GetStatus()
	assert.Zero(t, st.CacheEntries)
	assert.NotNil(t, st.Received)
}

func TestStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	s, _ := newTestService(t, path)

	s.Start()
	s.Start()
	assert.True(t, s.IsRunning())

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	s.Stop()
	s.Stop()
	assert.False(t, s.IsRunning())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var st Status
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, 3, st.LinkPending)
}
