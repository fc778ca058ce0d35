package worker

import (
	"github.com/seaplan/mplan/internal/dispatcher"
	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/wire"
)

// RegisterHandlers registers a handler for every maneuver message a vehicle may echo back.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	h := dispatcher.Maneuvers(m.deps.Registry, m.handleManeuver)
	for _, abbrev := range wire.Abbrevs() {
		d.Register(abbrev, h, dispatcher.Buffered(256), dispatcher.Logged())
	}
}

func (m *Manager) handleManeuver(e dispatcher.Event, man maneuver.Maneuver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received[e.Vehicle] = append(m.received[e.Vehicle], man)
	return nil
}
