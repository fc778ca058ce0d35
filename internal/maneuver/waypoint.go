package maneuver

import (
	"encoding/xml"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// waypoint is a transit to a single point, shared by Goto, Launch and Drop.
type waypoint struct {
	position
	propulsion
	radiusTolerance float64
}

func defaultWaypoint() waypoint {
	return waypoint{
		position:   position{loc: core.NewLocation(0, 0)},
		propulsion: defaultPropulsion(),
	}
}

// RadiusTolerance returns the arrival tolerance in meters.
func (w *waypoint) RadiusTolerance() float64 { return w.radiusTolerance }

// SetRadiusTolerance sets the arrival tolerance in meters.
func (w *waypoint) SetRadiusTolerance(v float64) { w.radiusTolerance = v }

type waypointPayload struct {
	XMLName    xml.Name
	Kind       string                 `xml:"kind,attr,omitempty"`
	FinalPoint *document.LocatedPoint `xml:"finalPoint"`
	Speed      *document.Speed        `xml:"speed"`
	Velocity   *document.Speed        `xml:"velocity"`

	// orientation in degrees, Goto only
	Roll  *float64 `xml:"roll,omitempty"`
	Pitch *float64 `xml:"pitch,omitempty"`
	Yaw   *float64 `xml:"yaw,omitempty"`
}

func (w *waypoint) payload(kind string) *waypointPayload {
	return &waypointPayload{
		XMLName:    xmlName(kind),
		Kind:       "automatic",
		FinalPoint: document.NewLocatedPoint(w.loc, document.Float(w.radiusTolerance)),
		Speed:      w.element(),
	}
}

func decodeWaypoint(kind string, raw *document.Payload) (waypoint, *waypointPayload, error) {
	p := &waypointPayload{}
	if err := decodePayload(raw, p); err != nil {
		return waypoint{}, nil, err
	}
	def := defaultWaypoint()
	loc, err := locatedPoint(kind, "finalPoint", p.FinalPoint)
	if err != nil {
		return waypoint{}, nil, err
	}
	prop, err := decodePropulsion(kind, p.Speed, p.Velocity, def.propulsion)
	if err != nil {
		return waypoint{}, nil, err
	}
	return waypoint{
		position:        position{loc: loc},
		propulsion:      prop,
		radiusTolerance: p.FinalPoint.RadiusToleranceOr(def.radiusTolerance),
	}, p, nil
}

func (w *waypoint) validate() []ValidationError {
	var errs []ValidationError
	if w.radiusTolerance < 0 {
		errs = append(errs, ValidationError{Field: "radiusTolerance", Message: "must not be negative"})
	}
	return append(errs, validateSpeed(w.speed)...)
}

// Goto moves the vehicle to a point.
type Goto struct {
	Base
	waypoint

	// Roll, Pitch and Yaw are the desired attitude at the point, in degrees.
	Roll, Pitch, Yaw float64
}

// NewGoto returns a Goto with default parameters.
func NewGoto(ids IDSource) *Goto {
	return &Goto{Base: newBase(ids, KindGoto), waypoint: defaultWaypoint()}
}

func (g *Goto) Kind() string                      { return KindGoto }
func (g *Goto) Clone() Maneuver                   { return deep.MustCopy(g) }
func (g *Goto) ValidateParams() []ValidationError { return g.validate() }

func (g *Goto) EncodePayload() any {
	p := g.payload(KindGoto)
	if g.Roll != 0 || g.Pitch != 0 || g.Yaw != 0 {
		p.Roll, p.Pitch, p.Yaw = document.Float(g.Roll), document.Float(g.Pitch), document.Float(g.Yaw)
	}
	return p
}

func (g *Goto) DecodePayload(raw *document.Payload) (func(), error) {
	w, p, err := decodeWaypoint(KindGoto, raw)
	if err != nil {
		return nil, err
	}
	roll, pitch, yaw := floatOr(p.Roll, 0), floatOr(p.Pitch, 0), floatOr(p.Yaw, 0)
	return func() {
		g.waypoint = w
		g.Roll, g.Pitch, g.Yaw = roll, pitch, yaw
	}, nil
}

func (g *Goto) ToWire() (wire.Message, error) {
	custom, err := g.wireCustom(KindGoto)
	if err != nil {
		return nil, err
	}
	msg := wire.Goto{
		Timeout: wire.EncodeTimeout(g.MaxTime),
		Roll:    deg2rad(g.Roll),
		Pitch:   deg2rad(g.Pitch),
		Yaw:     deg2rad(g.Yaw),
		Custom:  custom,
	}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(g.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(g.speed)
	return msg, nil
}

func (g *Goto) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.Goto)
	if !ok {
		return wrongMessage(g, msg)
	}
	loc, err := locationFromWire(KindGoto, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	next := *g
	next.Base = g.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindGoto, w.Speed, w.SpeedUnits)
	next.Roll, next.Pitch, next.Yaw = rad2deg(w.Roll), rad2deg(w.Pitch), rad2deg(w.Yaw)
	*g = next
	return nil
}

// Launch departs from a launcher towards a point.
type Launch struct {
	Base
	waypoint
}

// NewLaunch returns a Launch with default parameters.
func NewLaunch(ids IDSource) *Launch {
	return &Launch{Base: newBase(ids, KindLaunch), waypoint: defaultWaypoint()}
}

func (l *Launch) Kind() string                      { return KindLaunch }
func (l *Launch) Clone() Maneuver                   { return deep.MustCopy(l) }
func (l *Launch) ValidateParams() []ValidationError { return l.validate() }
func (l *Launch) EncodePayload() any                { return l.payload(KindLaunch) }

func (l *Launch) DecodePayload(raw *document.Payload) (func(), error) {
	w, _, err := decodeWaypoint(KindLaunch, raw)
	if err != nil {
		return nil, err
	}
	return func() { l.waypoint = w }, nil
}

func (l *Launch) ToWire() (wire.Message, error) {
	custom, err := l.wireCustom(KindLaunch)
	if err != nil {
		return nil, err
	}
	msg := wire.Launch{Timeout: wire.EncodeTimeout(l.MaxTime), Custom: custom}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(l.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(l.speed)
	return msg, nil
}

func (l *Launch) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.Launch)
	if !ok {
		return wrongMessage(l, msg)
	}
	loc, err := locationFromWire(KindLaunch, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	next := *l
	next.Base = l.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindLaunch, w.Speed, w.SpeedUnits)
	*l = next
	return nil
}

// Drop releases a payload at a point.
type Drop struct {
	Base
	waypoint
}

// NewDrop returns a Drop with default parameters.
func NewDrop(ids IDSource) *Drop {
	return &Drop{Base: newBase(ids, KindDrop), waypoint: defaultWaypoint()}
}

func (d *Drop) Kind() string                      { return KindDrop }
func (d *Drop) Clone() Maneuver                   { return deep.MustCopy(d) }
func (d *Drop) ValidateParams() []ValidationError { return d.validate() }
func (d *Drop) EncodePayload() any                { return d.payload(KindDrop) }

func (d *Drop) DecodePayload(raw *document.Payload) (func(), error) {
	w, _, err := decodeWaypoint(KindDrop, raw)
	if err != nil {
		return nil, err
	}
	return func() { d.waypoint = w }, nil
}

func (d *Drop) ToWire() (wire.Message, error) {
	custom, err := d.wireCustom(KindDrop)
	if err != nil {
		return nil, err
	}
	msg := wire.Drop{Timeout: wire.EncodeTimeout(d.MaxTime), Custom: custom}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(d.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(d.speed)
	return msg, nil
}

func (d *Drop) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.Drop)
	if !ok {
		return wrongMessage(d, msg)
	}
	loc, err := locationFromWire(KindDrop, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	next := *d
	next.Base = d.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindDrop, w.Speed, w.SpeedUnits)
	*d = next
	return nil
}
