package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/seaplan/mplan/internal/link"
	"github.com/seaplan/mplan/internal/logging"
	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/registry"
	"github.com/seaplan/mplan/internal/wire"
	"golang.org/x/sync/errgroup"
)

// Translated is one maneuver of a plan with its wire frame.
type Translated struct {
	Maneuver maneuver.Maneuver
	Frame    wire.Frame
}

// TranslatePlan converts node documents to wire frames in parallel. The result keeps the
// order of documents. Kinds the vehicle profile excludes fail the whole plan; kinds the
// registry does not know travel as custom maneuvers.
func (m *Manager) TranslatePlan(ctx context.Context, vehicle string, documents [][]byte) ([]Translated, error) {
	reg := m.deps.Registry
	view := reg.ForVehicle(vehicle)
	out := make([]Translated, len(documents))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.deps.Workers)
	for i, doc := range documents {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			man, err := reg.DecodeDocument(doc)
			switch {
			case man != nil && errors.Is(err, registry.ErrUnknownType):
				m.deps.Logger.WarnContext(ctx, "translating unknown maneuver as custom", "index", i, "kind", man.Kind())
			case err != nil:
				return fmt.Errorf("maneuver %d: %w", i, err)
			case !view.Supports(man.Kind()):
				return fmt.Errorf("maneuver %d: %w: %s on %s", i, registry.ErrNotSupported, man.Kind(), vehicle)
			}

			msg, err := man.ToWire()
			if err != nil {
				return fmt.Errorf("maneuver %d (%s): %w", i, man.Kind(), err)
			}
			f, err := wire.NewFrame(msg)
			if err != nil {
				return fmt.Errorf("maneuver %d (%s): %w", i, man.Kind(), err)
			}
			out[i] = Translated{Maneuver: man, Frame: f}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Batch translates a plan into an upload batch.
func (m *Manager) Batch(ctx context.Context, vehicle, plan string, documents [][]byte) (wire.Batch, []Translated, error) {
	translated, err := m.TranslatePlan(ctx, vehicle, documents)
	if err != nil {
		return wire.Batch{}, nil, err
	}
	b := wire.Batch{Vehicle: vehicle, Plan: plan, Frames: make([]wire.Frame, len(translated))}
	for i, t := range translated {
		b.Frames[i] = t.Frame
	}
	return b, translated, nil
}

// Upload translates a plan, sends its frames in order over t and records statistics.
// Nothing is sent when translation fails.
func (m *Manager) Upload(ctx context.Context, t link.Transport, vehicle, plan string, documents [][]byte) error {
	ctx = logging.WithPlan(logging.WithVehicle(ctx, vehicle), plan)

	b, translated, err := m.Batch(ctx, vehicle, plan, documents)
	if err != nil {
		return err
	}
	for i, f := range b.Frames {
		if err := t.Send(f); err != nil {
			return fmt.Errorf("sending maneuver %d: %w", i, err)
		}
	}
	m.deps.Logger.InfoContext(ctx, "plan uploaded", "maneuvers", len(b.Frames))

	if m.deps.Stats != nil {
		for _, tr := range translated {
			if err := m.deps.Stats.WriteManeuver(vehicle, plan, tr.Maneuver); err != nil {
				m.deps.Logger.WarnContext(ctx, "failed to record plan statistics", "error", err)
				break
			}
		}
	}
	return nil
}
