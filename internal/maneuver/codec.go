package maneuver

import (
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// legacyKinds maps payload names written by older planners to current kinds.
var legacyKinds = map[string]string{
	"HeadingVelocityDepth": KindHeadingSpeedDepth,
}

// CanonicalKind resolves legacy payload names.
func CanonicalKind(name string) string {
	if k, ok := legacyKinds[name]; ok {
		return k
	}
	return name
}

// Node builds the document envelope for m.
func Node(m Maneuver) *document.Node {
	b := m.Common()
	return &document.Node{
		Start: b.Initial,
		XPos:  b.XPos,
		YPos:  b.YPos,
		ID:    b.ID,
		Body: document.Body{
			MinTime: b.MinTime,
			MaxTime: b.MaxTime,
			Payload: m.EncodePayload(),
			Custom:  document.NewCustomSettings(b.custom),
		},
		Actions: document.NewActions(b.startActions, b.endActions),
	}
}

// ExportDocument encodes m as an XML node document.
func ExportDocument(m Maneuver) ([]byte, error) {
	return document.Marshal(Node(m))
}

// ImportDocument parses data into m. On error m is unchanged.
func ImportDocument(data []byte, m Maneuver) error {
	n, err := document.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	return ApplyNode(n, m)
}

// ApplyNode imports a parsed node into m. The payload element must name m's kind.
func ApplyNode(n *document.Node, m Maneuver) error {
	if n.Body.Raw == nil {
		return fmt.Errorf("%w: node %q has no payload", ErrParse, n.ID)
	}
	if _, placeholder := m.(*Unconstrained); !placeholder && CanonicalKind(n.Body.Raw.Kind()) != m.Kind() {
		return fmt.Errorf("%w: payload %s cannot be read into %s", ErrParse, n.Body.Raw.Kind(), m.Kind())
	}

	commit, err := m.DecodePayload(n.Body.Raw)
	if err != nil {
		if errors.Is(err, ErrParse) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrParse, m.Kind(), err)
	}
	start, end := n.Actions.Core()
	custom := n.Body.Custom.Core()

	commit()
	b := m.Common()
	b.ID = n.ID
	b.Initial = n.Start
	b.XPos, b.YPos = n.XPos, n.YPos
	b.MinTime, b.MaxTime = n.Body.MinTime, n.Body.MaxTime
	b.custom = custom
	b.startActions, b.endActions = start, end
	return nil
}

// unitsOK logs unknown unit tokens, which already carry a usable default, and passes other errors on.
func unitsOK(kind string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrUnknownUnits) {
		slog.Warn("unknown units, using default", "kind", kind, "error", err)
		return nil
	}
	return err
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

func xmlName(kind string) xml.Name { return xml.Name{Local: kind} }

// locationToWire resolves offsets and returns wire coordinates in radians.
func locationToWire(l core.Location) (lat, lon, z float64, units wire.ZUnits) {
	a := l.Absolute()
	return deg2rad(a.Latitude), deg2rad(a.Longitude), a.Z, wire.EncodeZUnits(a.ZUnits)
}

func locationFromWire(kind string, lat, lon, z float64, zu wire.ZUnits) (core.Location, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.Abs(lat) > math.Pi/2 || math.Abs(lon) > math.Pi*2 {
		return core.Location{}, fmt.Errorf("%w: %s position (%v, %v) out of range", ErrParse, kind, lat, lon)
	}
	units, err := wire.DecodeZUnits(zu)
	if err := unitsOK(kind, err); err != nil {
		return core.Location{}, err
	}
	return core.LocationFromRadians(lat, lon, z, units), nil
}

func speedFromWire(kind string, value float64, units wire.SpeedUnits) core.Speed {
	s, err := wire.DecodeSpeed(value, units)
	_ = unitsOK(kind, err)
	return s
}

func zUnitsFromWire(kind string, zu wire.ZUnits) core.ZUnits {
	units, err := wire.DecodeZUnits(zu)
	_ = unitsOK(kind, err)
	return units
}

func decodePayload(raw *document.Payload, v any) error {
	if err := raw.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	return nil
}

func required(kind, element string) error {
	return fmt.Errorf("%w: %s: missing %s", ErrParse, kind, element)
}

func outOfRange(kind, element string, v any) error {
	return fmt.Errorf("%w: %s: %s %v out of range", ErrParse, kind, element, v)
}
