package maneuver

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// LoiterType is the loiter shape, as written in documents.
type LoiterType string

const (
	LoiterDefault   LoiterType = "Default"
	LoiterCircular  LoiterType = "Circular"
	LoiterRacetrack LoiterType = "Racetrack"
	LoiterEight     LoiterType = "Figure 8"
	LoiterHover     LoiterType = "Hover"
)

var loiterTypeTokens = map[LoiterType]string{
	LoiterDefault:   wire.LoiterDefault,
	LoiterCircular:  wire.LoiterCircular,
	LoiterRacetrack: wire.LoiterRacetrack,
	LoiterEight:     wire.LoiterEight,
	LoiterHover:     wire.LoiterHover,
}

// Direction is a turning direction, as written in documents.
type Direction string

const (
	DirectionVehicleDependent Direction = "Vehicle Dependent"
	DirectionClockwise        Direction = "Clockwise"
	DirectionCounterClockwise Direction = "Counter Clockwise"
	DirectionIntoWind         Direction = "Into the wind"
)

var directionTokens = map[Direction]string{
	DirectionVehicleDependent: wire.DirectionVehicleDependent,
	DirectionClockwise:        wire.DirectionClockwise,
	DirectionCounterClockwise: wire.DirectionCounterClockwise,
	DirectionIntoWind:         wire.DirectionIntoWind,
}

// ParseDirection accepts the document names case-insensitively, including "Counter-Clockwise".
func ParseDirection(s string) (Direction, bool) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", " "))
	for d := range directionTokens {
		if strings.ToLower(string(d)) == norm {
			return d, true
		}
	}
	return DirectionClockwise, false
}

// ParseLoiterType accepts the document names case-insensitively.
func ParseLoiterType(s string) (LoiterType, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for t := range loiterTypeTokens {
		if strings.ToLower(string(t)) == norm {
			return t, true
		}
	}
	return LoiterDefault, false
}

func directionToWire(d Direction) string {
	if tok, ok := directionTokens[d]; ok {
		return tok
	}
	return wire.DirectionVehicleDependent
}

func loiterTypeFromWire(tok string) (LoiterType, bool) {
	for t, wt := range loiterTypeTokens {
		if wt == tok {
			return t, true
		}
	}
	return LoiterDefault, false
}

func directionFromWire(kind, tok string) Direction {
	for d, t := range directionTokens {
		if t == tok {
			return d
		}
	}
	slog.Warn("unknown direction, using vehicle dependent", "kind", kind, "direction", tok)
	return DirectionVehicleDependent
}

// Loiter circles or holds around a point for a duration.
type Loiter struct {
	Base
	position
	propulsion

	duration        int
	radius          float64
	radiusTolerance float64
	length          float64
	bearing         float64 // degrees
	loiterType      LoiterType
	direction       Direction
}

// NewLoiter returns a Loiter with default parameters.
func NewLoiter(ids IDSource) *Loiter {
	l := &Loiter{Base: newBase(ids, KindLoiter)}
	l.setDefaults()
	return l
}

func (l *Loiter) setDefaults() {
	l.loc = core.NewLocation(0, 0)
	l.propulsion = propulsion{speed: core.NewSpeed(30, core.MetersPS), speedTolerance: 5}
	l.duration = 60
	l.radius = 15
	l.radiusTolerance = 5
	l.length = 1
	l.bearing = 0
	l.loiterType = LoiterCircular
	l.direction = DirectionClockwise
}

func (l *Loiter) Kind() string    { return KindLoiter }
func (l *Loiter) Clone() Maneuver { return deep.MustCopy(l) }

// Location reports the loiter radius in the Radius field.
func (l *Loiter) Location() core.Location {
	loc := l.loc
	loc.Radius = l.radius
	return loc
}

// SetLocation stores loc. A positive Radius also sets the loiter radius.
func (l *Loiter) SetLocation(loc core.Location) {
	if loc.Radius > 0 {
		l.radius = loc.Radius
	}
	loc.Radius = 0
	l.loc = loc
}

func (l *Loiter) Duration() int                { return l.duration }
func (l *Loiter) SetDuration(seconds int)      { l.duration = seconds }
func (l *Loiter) Radius() float64              { return l.radius }
func (l *Loiter) SetRadius(r float64)          { l.radius = r }
func (l *Loiter) RadiusTolerance() float64     { return l.radiusTolerance }
func (l *Loiter) SetRadiusTolerance(r float64) { l.radiusTolerance = r }
func (l *Loiter) Length() float64              { return l.length }
func (l *Loiter) SetLength(v float64)          { l.length = v }
func (l *Loiter) Bearing() float64             { return l.bearing }
func (l *Loiter) SetBearing(deg float64)       { l.bearing = deg }
func (l *Loiter) LoiterType() LoiterType       { return l.loiterType }
func (l *Loiter) SetLoiterType(t LoiterType)   { l.loiterType = t }
func (l *Loiter) Direction() Direction         { return l.direction }
func (l *Loiter) SetDirection(d Direction)     { l.direction = d }

func (l *Loiter) ValidateParams() []ValidationError {
	var errs []ValidationError
	errs = append(errs, nonNegative("duration", float64(l.duration))...)
	errs = append(errs, nonNegative("radius", l.radius)...)
	errs = append(errs, nonNegative("radiusTolerance", l.radiusTolerance)...)
	errs = append(errs, nonNegative("length", l.length)...)
	if _, ok := loiterTypeTokens[l.loiterType]; !ok {
		errs = append(errs, ValidationError{Field: "type", Message: fmt.Sprintf("unknown loiter type %q", l.loiterType)})
	}
	if _, ok := directionTokens[l.direction]; !ok {
		errs = append(errs, ValidationError{Field: "direction", Message: fmt.Sprintf("unknown direction %q", l.direction)})
	}
	return append(errs, validateSpeed(l.speed)...)
}

type loiterTrajectory struct {
	Radius          float64  `xml:"radius"`
	RadiusTolerance float64  `xml:"radiusTolerance"`
	Type            string   `xml:"type"`
	Length          *float64 `xml:"length"`
	Lenght          *float64 `xml:"lenght"`
	Bearing         float64  `xml:"bearing"`
	Direction       string   `xml:"direction"`
}

type loiterPayload struct {
	XMLName    xml.Name
	Kind       string                 `xml:"kind,attr,omitempty"`
	BasePoint  *document.LocatedPoint `xml:"basePoint"`
	Duration   int                    `xml:"duration"`
	Trajectory loiterTrajectory       `xml:"trajectory"`
	Speed      *document.Speed        `xml:"speed"`
	Velocity   *document.Speed        `xml:"velocity"`
}

func (l *Loiter) EncodePayload() any {
	return &loiterPayload{
		XMLName:   xmlName(KindLoiter),
		Kind:      "automatic",
		BasePoint: document.NewLocatedPoint(l.loc, document.Float(l.radiusTolerance)),
		Duration:  l.duration,
		Trajectory: loiterTrajectory{
			Radius:          l.radius,
			RadiusTolerance: l.radiusTolerance,
			Type:            string(l.loiterType),
			Length:          document.Float(l.length),
			Bearing:         l.bearing,
			Direction:       string(l.direction),
		},
		Speed: l.element(),
	}
}

func (l *Loiter) DecodePayload(raw *document.Payload) (func(), error) {
	var next Loiter
	next.setDefaults()
	p := &loiterPayload{
		Duration: next.duration,
		Trajectory: loiterTrajectory{
			Radius:          next.radius,
			RadiusTolerance: next.radiusTolerance,
			Type:            string(next.loiterType),
			Bearing:         next.bearing,
			Direction:       string(next.direction),
		},
	}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}

	loc, err := locatedPoint(KindLoiter, "basePoint", p.BasePoint)
	if err != nil {
		return nil, err
	}
	prop, err := decodePropulsion(KindLoiter, p.Speed, p.Velocity, next.propulsion)
	if err != nil {
		return nil, err
	}
	t := p.Trajectory
	loiterType, ok := ParseLoiterType(t.Type)
	if !ok {
		slog.Warn("unknown loiter type, using default", "kind", KindLoiter, "type", t.Type)
		loiterType = LoiterDefault
	}
	direction, ok := ParseDirection(t.Direction)
	if !ok {
		slog.Warn("unknown direction, using vehicle dependent", "kind", KindLoiter, "direction", t.Direction)
		direction = DirectionVehicleDependent
	}

	next.loc = loc
	next.propulsion = prop
	next.duration = p.Duration
	next.radius = t.Radius
	next.radiusTolerance = t.RadiusTolerance
	switch {
	case t.Length != nil:
		next.length = *t.Length
	case t.Lenght != nil:
		next.length = *t.Lenght
	}
	next.bearing = t.Bearing
	next.loiterType = loiterType
	next.direction = direction

	return func() {
		base := l.Base
		*l = next
		l.Base = base
	}, nil
}

func (l *Loiter) ToWire() (wire.Message, error) {
	custom, err := l.wireCustom(KindLoiter)
	if err != nil {
		return nil, err
	}
	typ, ok := loiterTypeTokens[l.loiterType]
	if !ok {
		typ = wire.LoiterDefault
	}
	msg := wire.Loiter{
		Timeout:   wire.EncodeTimeout(l.MaxTime),
		Duration:  wire.EncodeDuration(l.duration),
		Type:      typ,
		Radius:    l.radius,
		Length:    l.length,
		Bearing:   deg2rad(l.bearing),
		Direction: directionToWire(l.direction),
		Custom:    custom,
	}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(l.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(l.speed)
	return msg, nil
}

func (l *Loiter) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.Loiter)
	if !ok {
		return wrongMessage(l, msg)
	}
	loc, err := locationFromWire(KindLoiter, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	loiterType, ok := loiterTypeFromWire(w.Type)
	if !ok {
		slog.Warn("unknown loiter type, using default", "kind", KindLoiter, "type", w.Type)
	}

	next := *l
	next.Base = l.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindLoiter, w.Speed, w.SpeedUnits)
	next.duration = int(w.Duration)
	next.loiterType = loiterType
	next.radius = w.Radius
	next.length = w.Length
	next.bearing = rad2deg(w.Bearing)
	next.direction = directionFromWire(KindLoiter, w.Direction)
	*l = next
	return nil
}
