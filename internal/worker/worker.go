package worker

import (
	"log/slog"
	"sync"

	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/registry"
)

// StatsWriter records statistics of translated maneuvers. *influx.Manager implements it.
type StatsWriter interface {
	WriteManeuver(vehicle, plan string, m maneuver.Maneuver) error
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Registry *registry.Registry
	// Stats is optional.
	Stats  StatsWriter
	Logger *slog.Logger
	// Workers bounds concurrent translations; values below 1 mean 1.
	Workers int
}

// Manager translates plans and tracks what vehicles report back.
type Manager struct {
	deps Dependencies

	mu       sync.Mutex
	received map[string][]maneuver.Maneuver
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Registry == nil {
		deps.Registry = registry.New(deps.Logger)
	}
	deps.Workers = max(deps.Workers, 1)
	return &Manager{
		deps:     deps,
		received: make(map[string][]maneuver.Maneuver),
	}
}

// Received returns clones of the maneuvers a vehicle has sent back, in arrival order.
func (m *Manager) Received(vehicle string) []maneuver.Maneuver {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]maneuver.Maneuver, len(m.received[vehicle]))
	for i, man := range m.received[vehicle] {
		out[i] = man.Clone()
	}
	return out
}

// ResetReceived forgets what a vehicle has sent back.
func (m *Manager) ResetReceived(vehicle string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.received, vehicle)
}

// ReceivedCounts returns how many maneuvers each vehicle has sent back.
func (m *Manager) ReceivedCounts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.received))
	for v, list := range m.received {
		out[v] = len(list)
	}
	return out
}
