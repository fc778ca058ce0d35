package maneuver

import (
	"encoding/xml"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// Elevator spirals between a start z and the z of its location.
type Elevator struct {
	Base
	position
	propulsion

	startZ             float64
	startZUnits        core.ZUnits
	radius             float64
	useCurrentLocation bool
}

// NewElevator returns an Elevator with default parameters.
func NewElevator(ids IDSource) *Elevator {
	e := &Elevator{Base: newBase(ids, KindElevator)}
	e.setDefaults()
	return e
}

func (e *Elevator) setDefaults() {
	e.loc = core.NewLocation(0, 0)
	e.propulsion = defaultPropulsion()
	e.startZ = 0
	e.startZUnits = core.ZNone
	e.radius = 5
}

func (e *Elevator) Kind() string                 { return KindElevator }
func (e *Elevator) Clone() Maneuver              { return deep.MustCopy(e) }
func (e *Elevator) StartZ() float64              { return e.startZ }
func (e *Elevator) StartZUnits() core.ZUnits     { return e.startZUnits }
func (e *Elevator) Radius() float64              { return e.radius }
func (e *Elevator) SetRadius(r float64)          { e.radius = r }
func (e *Elevator) UseCurrentLocation() bool     { return e.useCurrentLocation }
func (e *Elevator) SetUseCurrentLocation(v bool) { e.useCurrentLocation = v }
func (e *Elevator) EndLocation() core.Location   { return e.loc }

// SetStartZ sets the vertical value the spiral starts at.
func (e *Elevator) SetStartZ(z float64, units core.ZUnits) {
	e.startZ, e.startZUnits = z, units
}

// StartLocation is the location at the start z.
func (e *Elevator) StartLocation() core.Location {
	return e.loc.WithZ(e.startZ, e.startZUnits)
}

func (e *Elevator) ValidateParams() []ValidationError {
	return append(positive("radius", e.radius), validateSpeed(e.speed)...)
}

type elevatorFlags struct {
	UseCurrentLocation bool `xml:"useCurrentLocation,attr"`
}

type elevatorPayload struct {
	XMLName      xml.Name
	Kind         string                 `xml:"kind,attr,omitempty"`
	FinalPoint   *document.LocatedPoint `xml:"finalPoint"`
	InitialPoint *document.LocatedPoint `xml:"initialPoint,omitempty"`
	StartZ       *float64               `xml:"startZ"`
	EndZ         *float64               `xml:"endZ,omitempty"`
	StartZUnits  string                 `xml:"startZUnits"`
	Radius       *float64               `xml:"radius"`
	Speed        *document.Speed        `xml:"speed"`
	Velocity     *document.Speed        `xml:"velocity"`
	Flags        *elevatorFlags         `xml:"flags"`
}

func (e *Elevator) EncodePayload() any {
	return &elevatorPayload{
		XMLName:     xmlName(KindElevator),
		Kind:        "automatic",
		FinalPoint:  document.NewLocatedPoint(e.loc, document.Float(0)),
		StartZ:      document.Float(e.startZ),
		StartZUnits: e.startZUnits.String(),
		Radius:      document.Float(e.radius),
		Speed:       e.element(),
		Flags:       &elevatorFlags{UseCurrentLocation: e.useCurrentLocation},
	}
}

// DecodePayload also reads the initialPoint and endZ names of older documents.
func (e *Elevator) DecodePayload(raw *document.Payload) (func(), error) {
	var next Elevator
	next.setDefaults()
	p := &elevatorPayload{}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}
	fp := p.FinalPoint
	if fp == nil {
		fp = p.InitialPoint
	}
	loc, err := locatedPoint(KindElevator, "finalPoint", fp)
	if err != nil {
		return nil, err
	}
	prop, err := decodePropulsion(KindElevator, p.Speed, p.Velocity, next.propulsion)
	if err != nil {
		return nil, err
	}
	if p.Radius == nil {
		return nil, required(KindElevator, "radius")
	}
	startZUnits, err := zUnitsFromDocument(KindElevator, p.StartZUnits)
	if err != nil {
		return nil, err
	}
	next.loc = loc
	next.propulsion = prop
	switch {
	case p.StartZ != nil:
		next.startZ = *p.StartZ
	case p.EndZ != nil:
		next.startZ = *p.EndZ
	}
	next.startZUnits = startZUnits
	next.radius = *p.Radius
	next.useCurrentLocation = p.Flags != nil && p.Flags.UseCurrentLocation

	return func() {
		base := e.Base
		*e = next
		e.Base = base
	}, nil
}

func (e *Elevator) ToWire() (wire.Message, error) {
	custom, err := e.wireCustom(KindElevator)
	if err != nil {
		return nil, err
	}
	var flags uint8
	if e.useCurrentLocation {
		flags |= wire.FlagCurrPos
	}
	msg := wire.Elevator{
		Timeout:     wire.EncodeTimeout(e.MaxTime),
		Flags:       flags,
		StartZ:      e.startZ,
		StartZUnits: wire.EncodeZUnits(e.startZUnits),
		Radius:      e.radius,
		Custom:      custom,
	}
	msg.Lat, msg.Lon, msg.EndZ, msg.EndZUnits = locationToWire(e.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(e.speed)
	return msg, nil
}

func (e *Elevator) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.Elevator)
	if !ok {
		return wrongMessage(e, msg)
	}
	loc, err := locationFromWire(KindElevator, w.Lat, w.Lon, w.EndZ, w.EndZUnits)
	if err != nil {
		return err
	}
	next := *e
	next.Base = e.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindElevator, w.Speed, w.SpeedUnits)
	next.startZ = w.StartZ
	next.startZUnits = zUnitsFromWire(KindElevator, w.StartZUnits)
	next.radius = w.Radius
	next.useCurrentLocation = w.Flags&wire.FlagCurrPos != 0
	*e = next
	return nil
}

// PopUp surfaces at a point, optionally waiting there for a fix.
type PopUp struct {
	Base
	waypoint

	duration      int
	currPos       bool
	waitAtSurface bool
	stationKeep   bool
}

// NewPopUp returns a PopUp with default parameters.
func NewPopUp(ids IDSource) *PopUp {
	p := &PopUp{Base: newBase(ids, KindPopUp)}
	p.setDefaults()
	return p
}

func (p *PopUp) setDefaults() {
	p.waypoint = defaultWaypoint()
	p.radiusTolerance = 10
	p.duration = 300
	p.waitAtSurface = true
	p.stationKeep = true
}

func (p *PopUp) Kind() string            { return KindPopUp }
func (p *PopUp) Clone() Maneuver         { return deep.MustCopy(p) }
func (p *PopUp) Duration() int           { return p.duration }
func (p *PopUp) SetDuration(seconds int) { p.duration = seconds }
func (p *PopUp) CurrPos() bool           { return p.currPos }
func (p *PopUp) SetCurrPos(v bool)       { p.currPos = v }
func (p *PopUp) WaitAtSurface() bool     { return p.waitAtSurface }
func (p *PopUp) SetWaitAtSurface(v bool) { p.waitAtSurface = v }
func (p *PopUp) StationKeep() bool       { return p.stationKeep }
func (p *PopUp) SetStationKeep(v bool)   { p.stationKeep = v }

func (p *PopUp) ValidateParams() []ValidationError {
	return append(nonNegative("duration", float64(p.duration)), p.validate()...)
}

type popUpFlags struct {
	CurrPos       bool  `xml:"CurrPos,attr"`
	WaitAtSurface *bool `xml:"WaitAtSurface,attr,omitempty"`
	StationKeep   *bool `xml:"StationKeep,attr,omitempty"`
}

// popUpPayload names its own element; the XMLName of an embedded struct is not used.
type popUpPayload struct {
	XMLName xml.Name
	waypointPayload
	Duration int         `xml:"duration"`
	Flags    *popUpFlags `xml:"flags"`
}

func (p *PopUp) EncodePayload() any {
	return &popUpPayload{
		XMLName:         xmlName(KindPopUp),
		waypointPayload: *p.payload(KindPopUp),
		Duration:        p.duration,
		Flags: &popUpFlags{
			CurrPos:       p.currPos,
			WaitAtSurface: falseOnly(p.waitAtSurface),
			StationKeep:   falseOnly(p.stationKeep),
		},
	}
}

func (p *PopUp) DecodePayload(raw *document.Payload) (func(), error) {
	var next PopUp
	next.setDefaults()
	pl := &popUpPayload{Duration: next.duration}
	if err := decodePayload(raw, pl); err != nil {
		return nil, err
	}
	loc, err := locatedPoint(KindPopUp, "finalPoint", pl.FinalPoint)
	if err != nil {
		return nil, err
	}
	prop, err := decodePropulsion(KindPopUp, pl.Speed, pl.Velocity, next.propulsion)
	if err != nil {
		return nil, err
	}
	next.loc = loc
	next.propulsion = prop
	next.radiusTolerance = pl.FinalPoint.RadiusToleranceOr(next.radiusTolerance)
	next.duration = pl.Duration
	if f := pl.Flags; f != nil {
		next.currPos = f.CurrPos
		next.waitAtSurface = boolOr(f.WaitAtSurface, true)
		next.stationKeep = boolOr(f.StationKeep, true)
	}

	return func() {
		base := p.Base
		*p = next
		p.Base = base
	}, nil
}

func (p *PopUp) ToWire() (wire.Message, error) {
	custom, err := p.wireCustom(KindPopUp)
	if err != nil {
		return nil, err
	}
	var flags uint8
	if p.currPos {
		flags |= wire.FlagPopUpCurrPos
	}
	if p.waitAtSurface {
		flags |= wire.FlagPopUpWaitAtSurface
	}
	if p.stationKeep {
		flags |= wire.FlagPopUpStationKeep
	}
	msg := wire.PopUp{
		Timeout:  wire.EncodeTimeout(p.MaxTime),
		Duration: wire.EncodeDuration(p.duration),
		Radius:   p.radiusTolerance,
		Flags:    flags,
		Custom:   custom,
	}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(p.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(p.speed)
	return msg, nil
}

func (p *PopUp) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.PopUp)
	if !ok {
		return wrongMessage(p, msg)
	}
	loc, err := locationFromWire(KindPopUp, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	next := *p
	next.Base = p.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindPopUp, w.Speed, w.SpeedUnits)
	next.duration = int(w.Duration)
	next.radiusTolerance = w.Radius
	next.currPos = w.Flags&wire.FlagPopUpCurrPos != 0
	next.waitAtSurface = w.Flags&wire.FlagPopUpWaitAtSurface != 0
	next.stationKeep = w.Flags&wire.FlagPopUpStationKeep != 0
	*p = next
	return nil
}

// YoYo oscillates in depth around the z of its location while transiting to it.
type YoYo struct {
	Base
	position
	propulsion

	amplitude float64
	pitch     float64 // degrees
}

// NewYoYo returns a YoYo with default parameters.
func NewYoYo(ids IDSource) *YoYo {
	y := &YoYo{Base: newBase(ids, KindYoYo)}
	y.setDefaults()
	return y
}

func (y *YoYo) setDefaults() {
	y.loc = core.NewLocation(0, 0)
	y.propulsion = defaultPropulsion()
	y.amplitude = 2
	y.pitch = 15
}

func (y *YoYo) Kind() string           { return KindYoYo }
func (y *YoYo) Clone() Maneuver        { return deep.MustCopy(y) }
func (y *YoYo) Amplitude() float64     { return y.amplitude }
func (y *YoYo) SetAmplitude(v float64) { y.amplitude = v }
func (y *YoYo) Pitch() float64         { return y.pitch }
func (y *YoYo) SetPitch(deg float64)   { y.pitch = deg }

func (y *YoYo) ValidateParams() []ValidationError {
	var errs []ValidationError
	errs = append(errs, nonNegative("amplitude", y.amplitude)...)
	if y.pitch <= 0 || y.pitch > 90 {
		errs = append(errs, ValidationError{Field: "pitch", Message: "must be within (0, 90] degrees"})
	}
	return append(errs, validateSpeed(y.speed)...)
}

type yoyoPayload struct {
	XMLName    xml.Name
	Kind       string                 `xml:"kind,attr,omitempty"`
	FinalPoint *document.LocatedPoint `xml:"finalPoint"`
	Amplitude  float64                `xml:"amplitude"`
	Pitch      float64                `xml:"pitch"`
	Speed      *document.Speed        `xml:"speed"`
	Velocity   *document.Speed        `xml:"velocity"`
}

func (y *YoYo) EncodePayload() any {
	return &yoyoPayload{
		XMLName:    xmlName(KindYoYo),
		Kind:       "automatic",
		FinalPoint: document.NewLocatedPoint(y.loc, document.Float(0)),
		Amplitude:  y.amplitude,
		Pitch:      y.pitch,
		Speed:      y.element(),
	}
}

func (y *YoYo) DecodePayload(raw *document.Payload) (func(), error) {
	var next YoYo
	next.setDefaults()
	p := &yoyoPayload{Amplitude: next.amplitude, Pitch: next.pitch}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}
	loc, err := locatedPoint(KindYoYo, "finalPoint", p.FinalPoint)
	if err != nil {
		return nil, err
	}
	prop, err := decodePropulsion(KindYoYo, p.Speed, p.Velocity, next.propulsion)
	if err != nil {
		return nil, err
	}
	next.loc = loc
	next.propulsion = prop
	next.amplitude = p.Amplitude
	next.pitch = p.Pitch

	return func() {
		base := y.Base
		*y = next
		y.Base = base
	}, nil
}

func (y *YoYo) ToWire() (wire.Message, error) {
	custom, err := y.wireCustom(KindYoYo)
	if err != nil {
		return nil, err
	}
	msg := wire.YoYo{
		Timeout:   wire.EncodeTimeout(y.MaxTime),
		Amplitude: y.amplitude,
		Pitch:     deg2rad(y.pitch),
		Custom:    custom,
	}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(y.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(y.speed)
	return msg, nil
}

func (y *YoYo) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.YoYo)
	if !ok {
		return wrongMessage(y, msg)
	}
	loc, err := locationFromWire(KindYoYo, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	next := *y
	next.Base = y.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindYoYo, w.Speed, w.SpeedUnits)
	next.amplitude = w.Amplitude
	next.pitch = rad2deg(w.Pitch)
	*y = next
	return nil
}
