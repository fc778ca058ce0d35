package maneuver

import (
	"encoding/xml"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// Dock approaches a docking target at the location from the given bearing.
type Dock struct {
	Base
	position
	propulsion

	bearing float64 // degrees
	target  string
}

// NewDock returns a Dock with default parameters.
func NewDock(ids IDSource) *Dock {
	d := &Dock{Base: newBase(ids, KindDock)}
	d.setDefaults()
	return d
}

func (d *Dock) setDefaults() {
	d.loc = core.NewLocation(0, 0)
	d.propulsion = defaultPropulsion()
}

func (d *Dock) Kind() string           { return KindDock }
func (d *Dock) Clone() Maneuver        { return deep.MustCopy(d) }
func (d *Dock) Bearing() float64       { return d.bearing }
func (d *Dock) SetBearing(deg float64) { d.bearing = deg }
func (d *Dock) Target() string         { return d.target }
func (d *Dock) SetTarget(name string)  { d.target = name }

func (d *Dock) ValidateParams() []ValidationError {
	var errs []ValidationError
	if d.target == "" {
		errs = append(errs, ValidationError{Field: "target", Message: "must be set"})
	}
	return append(errs, validateSpeed(d.speed)...)
}

type dockPayload struct {
	XMLName    xml.Name
	Kind       string                 `xml:"kind,attr,omitempty"`
	FinalPoint *document.LocatedPoint `xml:"finalPoint"`
	Speed      *document.Speed        `xml:"speed"`
	Velocity   *document.Speed        `xml:"velocity"`
	Bearing    float64                `xml:"bearing"`
	Target     string                 `xml:"target"`
}

func (d *Dock) EncodePayload() any {
	return &dockPayload{
		XMLName:    xmlName(KindDock),
		Kind:       "automatic",
		FinalPoint: document.NewLocatedPoint(d.loc, document.Float(0)),
		Speed:      d.element(),
		Bearing:    d.bearing,
		Target:     d.target,
	}
}

func (d *Dock) DecodePayload(raw *document.Payload) (func(), error) {
	var next Dock
	next.setDefaults()
	p := &dockPayload{}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}
	loc, err := locatedPoint(KindDock, "finalPoint", p.FinalPoint)
	if err != nil {
		return nil, err
	}
	prop, err := decodePropulsion(KindDock, p.Speed, p.Velocity, next.propulsion)
	if err != nil {
		return nil, err
	}
	next.loc = loc
	next.propulsion = prop
	next.bearing = p.Bearing
	next.target = p.Target

	return func() {
		base := d.Base
		*d = next
		d.Base = base
	}, nil
}

func (d *Dock) ToWire() (wire.Message, error) {
	custom, err := d.wireCustom(KindDock)
	if err != nil {
		return nil, err
	}
	msg := wire.Dock{
		Timeout: wire.EncodeTimeout(d.MaxTime),
		Bearing: deg2rad(d.bearing),
		Target:  d.target,
		Custom:  custom,
	}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(d.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(d.speed)
	return msg, nil
}

func (d *Dock) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.Dock)
	if !ok {
		return wrongMessage(d, msg)
	}
	loc, err := locationFromWire(KindDock, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	next := *d
	next.Base = d.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindDock, w.Speed, w.SpeedUnits)
	next.bearing = rad2deg(w.Bearing)
	next.target = w.Target
	*d = next
	return nil
}
