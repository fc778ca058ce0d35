// Package registry creates maneuvers by kind name and resolves the kind of incoming
// documents and wire messages.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/maneuver"
	"github.com/seaplan/mplan/internal/wire"
)

var (
	// ErrUnknownType is returned with an Unconstrained placeholder when a kind is not registered.
	ErrUnknownType = errors.New("unknown maneuver type")
	// ErrNotSupported is returned when a vehicle profile excludes a kind.
	ErrNotSupported = errors.New("maneuver not supported by vehicle")
)

// Constructor builds a maneuver with default parameters.
type Constructor func(ids maneuver.IDSource) maneuver.Maneuver

func ctor[T maneuver.Maneuver](f func(maneuver.IDSource) T) Constructor {
	return func(ids maneuver.IDSource) maneuver.Maneuver { return f(ids) }
}

var builtin = map[string]Constructor{
	maneuver.KindGoto:                   ctor(maneuver.NewGoto),
	maneuver.KindLaunch:                 ctor(maneuver.NewLaunch),
	maneuver.KindDrop:                   ctor(maneuver.NewDrop),
	maneuver.KindLoiter:                 ctor(maneuver.NewLoiter),
	maneuver.KindStationKeeping:         ctor(maneuver.NewStationKeeping),
	maneuver.KindFollowTrajectory:       ctor(maneuver.NewFollowTrajectory),
	maneuver.KindFollowPath:             ctor(maneuver.NewFollowPath),
	maneuver.KindRows:                   ctor(maneuver.NewRows),
	maneuver.KindRowsPattern:            ctor(maneuver.NewRowsPattern),
	maneuver.KindRIPattern:              ctor(maneuver.NewRIPattern),
	maneuver.KindCrossHatchPattern:      ctor(maneuver.NewCrossHatchPattern),
	maneuver.KindExpandingSquarePattern: ctor(maneuver.NewExpandingSquarePattern),
	maneuver.KindMagnetometer:           ctor(maneuver.NewMagnetometer),
	maneuver.KindElevator:               ctor(maneuver.NewElevator),
	maneuver.KindPopUp:                  ctor(maneuver.NewPopUp),
	maneuver.KindHeadingSpeedDepth:      ctor(maneuver.NewHeadingSpeedDepth),
	maneuver.KindCompassCalibration:     ctor(maneuver.NewCompassCalibration),
	maneuver.KindYoYo:                   ctor(maneuver.NewYoYo),
	maneuver.KindScheduledGoto:          ctor(maneuver.NewScheduledGoto),
	maneuver.KindTakeoff:                ctor(maneuver.NewTakeoff),
	maneuver.KindLand:                   ctor(maneuver.NewLand),
	maneuver.KindDock:                   ctor(maneuver.NewDock),
	maneuver.KindTeleoperation:          ctor(maneuver.NewTeleoperation),
	maneuver.KindFollowReference:        ctor(maneuver.NewFollowReference),
	maneuver.KindCoverArea:              ctor(maneuver.NewCoverArea),
}

// Option configures a Registry.
type Option func(*Registry)

// WithIDs sets the identifier source handed to constructors.
func WithIDs(ids maneuver.IDSource) Option {
	return func(r *Registry) {
		r.ids = ids
	}
}

// WithProfiles installs vehicle profiles.
func WithProfiles(profiles []Profile) Option {
	return func(r *Registry) {
		r.setProfiles(profiles)
	}
}

// Registry maps kind names to constructors. It is safe for concurrent use.
type Registry struct {
	logger *slog.Logger
	ids    maneuver.IDSource

	mu       sync.RWMutex
	ctors    map[string]Constructor
	profiles map[string]Profile
}

// New returns a registry holding every built-in kind. A nil logger uses slog.Default().
func New(logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		logger:   logger,
		ids:      maneuver.DefaultIDs,
		ctors:    make(map[string]Constructor, len(builtin)),
		profiles: make(map[string]Profile),
	}
	for kind, c := range builtin {
		r.ctors[kind] = c
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces the constructor for kind.
func (r *Registry) Register(kind string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[kind] = c
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.ctors))
	for k := range r.ctors {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Has reports whether kind, or the legacy name it replaces, is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[maneuver.CanonicalKind(kind)]
	return ok
}

// New builds a maneuver of the given kind with default parameters. Legacy names are
// resolved. An unregistered kind yields an Unconstrained placeholder together with
// ErrUnknownType, so callers may keep the placeholder.
func (r *Registry) New(kind string) (maneuver.Maneuver, error) {
	kind = maneuver.CanonicalKind(kind)
	r.mu.RLock()
	c, ok := r.ctors[kind]
	r.mu.RUnlock()
	if !ok {
		return maneuver.NewUnconstrained(r.ids, kind), fmt.Errorf("%w: %s", ErrUnknownType, kind)
	}
	return c(r.ids), nil
}

// DecodeDocument parses a node document into a maneuver of the kind named by its payload.
// Unknown kinds are kept in an Unconstrained placeholder and reported with ErrUnknownType
// alongside the placeholder.
func (r *Registry) DecodeDocument(data []byte) (maneuver.Maneuver, error) {
	n, err := document.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", maneuver.ErrParse, err)
	}
	return r.FromNode(n)
}

// FromNode is DecodeDocument for an already parsed node.
func (r *Registry) FromNode(n *document.Node) (maneuver.Maneuver, error) {
	if n.Body.Raw == nil {
		return nil, fmt.Errorf("%w: node %q has no payload", maneuver.ErrParse, n.ID)
	}
	m, unknown := r.New(n.Body.Raw.Kind())
	if unknown != nil {
		r.logger.Warn("keeping unknown maneuver as placeholder", "kind", n.Body.Raw.Kind(), "id", n.ID)
	}
	if err := maneuver.ApplyNode(n, m); err != nil {
		return nil, err
	}
	return m, unknown
}

// KindOf returns the maneuver kind that reads msg. Extended station keeping reads as
// StationKeeping, a FollowPath carrying a registered pattern reads as that pattern and a
// CustomManeuver reads as the kind it names.
func (r *Registry) KindOf(msg wire.Message) string {
	switch w := msg.(type) {
	case wire.StationKeepingExtended:
		return maneuver.KindStationKeeping
	case wire.FollowPath:
		if name, ok := wire.DecodeTupleList(w.Custom).Get(maneuver.PatternKey); ok && r.Has(name) {
			return name
		}
		return maneuver.KindFollowPath
	case wire.CustomManeuver:
		if w.Name == "" {
			return maneuver.KindUnconstrained
		}
		return w.Name
	}
	return msg.Abbrev()
}

// DecodeWire builds a maneuver from a wire message.
func (r *Registry) DecodeWire(msg wire.Message) (maneuver.Maneuver, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: nil message", maneuver.ErrParse)
	}
	var m maneuver.Maneuver
	if _, custom := msg.(wire.CustomManeuver); custom {
		m = maneuver.NewUnconstrained(r.ids, "")
	} else {
		var err error
		if m, err = r.New(r.KindOf(msg)); err != nil {
			return nil, err
		}
	}
	if err := m.FromWire(msg); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeFrame decodes the message in f and builds a maneuver from it.
func (r *Registry) DecodeFrame(f wire.Frame) (maneuver.Maneuver, error) {
	msg, err := f.Decode()
	if err != nil {
		return nil, err
	}
	return r.DecodeWire(msg)
}
