package maneuver

import (
	"encoding/xml"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// Takeoff climbs to the location at a fixed pitch.
type Takeoff struct {
	Base
	position
	propulsion

	takeoffPitch float64 // degrees
}

// NewTakeoff returns a Takeoff with default parameters.
func NewTakeoff(ids IDSource) *Takeoff {
	t := &Takeoff{Base: newBase(ids, KindTakeoff)}
	t.setDefaults()
	return t
}

func (t *Takeoff) setDefaults() {
	t.loc = core.NewLocation(0, 0).WithZ(30, core.ZHeight)
	t.propulsion = propulsion{speed: core.NewSpeed(17, core.MetersPS), speedTolerance: 2}
	t.takeoffPitch = 10
}

func (t *Takeoff) Kind() string                { return KindTakeoff }
func (t *Takeoff) Clone() Maneuver             { return deep.MustCopy(t) }
func (t *Takeoff) TakeoffPitch() float64       { return t.takeoffPitch }
func (t *Takeoff) SetTakeoffPitch(deg float64) { t.takeoffPitch = deg }

func (t *Takeoff) ValidateParams() []ValidationError {
	var errs []ValidationError
	if t.takeoffPitch <= 0 || t.takeoffPitch >= 90 {
		errs = append(errs, ValidationError{Field: "takeoffPitch", Message: "must be within (0, 90) degrees"})
	}
	return append(errs, validateSpeed(t.speed)...)
}

type takeoffPayload struct {
	XMLName      xml.Name
	Kind         string                 `xml:"kind,attr,omitempty"`
	FinalPoint   *document.LocatedPoint `xml:"finalPoint"`
	Speed        *document.Speed        `xml:"speed"`
	Velocity     *document.Speed        `xml:"velocity"`
	TakeoffPitch float64                `xml:"takeoffPitch"`
}

func (t *Takeoff) EncodePayload() any {
	return &takeoffPayload{
		XMLName:      xmlName(KindTakeoff),
		Kind:         "automatic",
		FinalPoint:   document.NewLocatedPoint(t.loc, document.Float(0)),
		Speed:        t.element(),
		TakeoffPitch: t.takeoffPitch,
	}
}

func (t *Takeoff) DecodePayload(raw *document.Payload) (func(), error) {
	var next Takeoff
	next.setDefaults()
	p := &takeoffPayload{TakeoffPitch: next.takeoffPitch}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}
	loc, err := locatedPoint(KindTakeoff, "finalPoint", p.FinalPoint)
	if err != nil {
		return nil, err
	}
	prop, err := decodePropulsion(KindTakeoff, p.Speed, p.Velocity, next.propulsion)
	if err != nil {
		return nil, err
	}
	next.loc = loc
	next.propulsion = prop
	next.takeoffPitch = p.TakeoffPitch

	return func() {
		base := t.Base
		*t = next
		t.Base = base
	}, nil
}

func (t *Takeoff) ToWire() (wire.Message, error) {
	custom, err := t.wireCustom(KindTakeoff)
	if err != nil {
		return nil, err
	}
	msg := wire.Takeoff{TakeoffPitch: deg2rad(t.takeoffPitch), Custom: custom}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(t.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(t.speed)
	return msg, nil
}

// FromWire keeps MaxTime, which the message does not carry.
func (t *Takeoff) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.Takeoff)
	if !ok {
		return wrongMessage(t, msg)
	}
	loc, err := locationFromWire(KindTakeoff, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	next := *t
	next.Base = t.Base.withCustom(w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindTakeoff, w.Speed, w.SpeedUnits)
	next.takeoffPitch = rad2deg(w.TakeoffPitch)
	*t = next
	return nil
}

// Land approaches the location along a glide slope from the given bearing.
type Land struct {
	Base
	position
	propulsion

	abortZ        float64
	bearing       float64 // degrees
	glideSlope    int     // percent
	glideSlopeAlt float64
}

// NewLand returns a Land with default parameters.
func NewLand(ids IDSource) *Land {
	l := &Land{Base: newBase(ids, KindLand)}
	l.setDefaults()
	return l
}

func (l *Land) setDefaults() {
	l.loc = core.NewLocation(0, 0).WithZ(0, core.ZHeight)
	l.propulsion = propulsion{speed: core.NewSpeed(17, core.MetersPS), speedTolerance: 2}
	l.abortZ = 20
	l.bearing = 0
	l.glideSlope = 5
	l.glideSlopeAlt = 10
}

func (l *Land) Kind() string               { return KindLand }
func (l *Land) Clone() Maneuver            { return deep.MustCopy(l) }
func (l *Land) AbortZ() float64            { return l.abortZ }
func (l *Land) SetAbortZ(v float64)        { l.abortZ = v }
func (l *Land) Bearing() float64           { return l.bearing }
func (l *Land) SetBearing(deg float64)     { l.bearing = deg }
func (l *Land) GlideSlope() int            { return l.glideSlope }
func (l *Land) SetGlideSlope(percent int)  { l.glideSlope = percent }
func (l *Land) GlideSlopeAlt() float64     { return l.glideSlopeAlt }
func (l *Land) SetGlideSlopeAlt(v float64) { l.glideSlopeAlt = v }

func (l *Land) ValidateParams() []ValidationError {
	var errs []ValidationError
	errs = append(errs, nonNegative("abortZ", l.abortZ)...)
	if l.glideSlope < 0 || l.glideSlope > 100 {
		errs = append(errs, ValidationError{Field: "glideSlope", Message: "must be within [0, 100]"})
	}
	errs = append(errs, nonNegative("glideSlopeAlt", l.glideSlopeAlt)...)
	return append(errs, validateSpeed(l.speed)...)
}

type landPayload struct {
	XMLName       xml.Name
	Kind          string                 `xml:"kind,attr,omitempty"`
	FinalPoint    *document.LocatedPoint `xml:"finalPoint"`
	Speed         *document.Speed        `xml:"speed"`
	Velocity      *document.Speed        `xml:"velocity"`
	AbortZ        float64                `xml:"abortZ"`
	Bearing       float64                `xml:"bearing"`
	GlideSlope    int                    `xml:"glideSlope"`
	GlideSlopeAlt float64                `xml:"glideSlopeAlt"`
}

func (l *Land) EncodePayload() any {
	return &landPayload{
		XMLName:       xmlName(KindLand),
		Kind:          "automatic",
		FinalPoint:    document.NewLocatedPoint(l.loc, document.Float(0)),
		Speed:         l.element(),
		AbortZ:        l.abortZ,
		Bearing:       l.bearing,
		GlideSlope:    l.glideSlope,
		GlideSlopeAlt: l.glideSlopeAlt,
	}
}

func (l *Land) DecodePayload(raw *document.Payload) (func(), error) {
	var next Land
	next.setDefaults()
	p := &landPayload{
		AbortZ:        next.abortZ,
		Bearing:       next.bearing,
		GlideSlope:    next.glideSlope,
		GlideSlopeAlt: next.glideSlopeAlt,
	}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}
	loc, err := locatedPoint(KindLand, "finalPoint", p.FinalPoint)
	if err != nil {
		return nil, err
	}
	prop, err := decodePropulsion(KindLand, p.Speed, p.Velocity, next.propulsion)
	if err != nil {
		return nil, err
	}
	next.loc = loc
	next.propulsion = prop
	next.abortZ = p.AbortZ
	next.bearing = p.Bearing
	next.glideSlope = p.GlideSlope
	next.glideSlopeAlt = p.GlideSlopeAlt

	return func() {
		base := l.Base
		*l = next
		l.Base = base
	}, nil
}

func (l *Land) ToWire() (wire.Message, error) {
	custom, err := l.wireCustom(KindLand)
	if err != nil {
		return nil, err
	}
	msg := wire.Land{
		AbortZ:        l.abortZ,
		Bearing:       deg2rad(l.bearing),
		GlideSlope:    clampUint8(float64(l.glideSlope)),
		GlideSlopeAlt: l.glideSlopeAlt,
		Custom:        custom,
	}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(l.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(l.speed)
	return msg, nil
}

// FromWire keeps MaxTime, which the message does not carry.
func (l *Land) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.Land)
	if !ok {
		return wrongMessage(l, msg)
	}
	loc, err := locationFromWire(KindLand, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	next := *l
	next.Base = l.Base.withCustom(w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindLand, w.Speed, w.SpeedUnits)
	next.abortZ = w.AbortZ
	next.bearing = rad2deg(w.Bearing)
	next.glideSlope = int(w.GlideSlope)
	next.glideSlopeAlt = w.GlideSlopeAlt
	*l = next
	return nil
}
