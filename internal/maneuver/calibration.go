package maneuver

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/pattern"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// Magnetometer flies a figure eight around a point to calibrate a magnetometer.
type Magnetometer struct {
	Base
	position
	propulsion

	width          float64
	bearing        float64 // degrees
	firstClockwise bool
}

// NewMagnetometer returns a Magnetometer with default parameters.
func NewMagnetometer(ids IDSource) *Magnetometer {
	m := &Magnetometer{Base: newBase(ids, KindMagnetometer)}
	m.setDefaults()
	return m
}

func (m *Magnetometer) setDefaults() {
	m.loc = core.NewLocation(0, 0)
	m.propulsion = defaultPropulsion()
	m.width = 100
	m.bearing = 0
	m.firstClockwise = true
}

func (m *Magnetometer) Kind() string                 { return KindMagnetometer }
func (m *Magnetometer) Clone() Maneuver              { return deep.MustCopy(m) }
func (m *Magnetometer) Width() float64               { return m.width }
func (m *Magnetometer) SetWidth(v float64)           { m.width = v }
func (m *Magnetometer) Bearing() float64             { return m.bearing }
func (m *Magnetometer) SetBearing(deg float64)       { m.bearing = deg }
func (m *Magnetometer) FirstClockwise() bool         { return m.firstClockwise }
func (m *Magnetometer) SetFirstClockwise(v bool)     { m.firstClockwise = v }
func (m *Magnetometer) StartLocation() core.Location { return m.loc }

// Points returns the figure eight offsets from the location.
func (m *Magnetometer) Points() []core.OffsetPoint {
	return pattern.FigureEight(m.width, deg2rad(m.bearing), m.firstClockwise)
}

func (m *Magnetometer) EndLocation() core.Location {
	points := m.Points()
	if len(points) == 0 {
		return m.loc
	}
	last := points[len(points)-1]
	return m.loc.Translate(last.North, last.East, last.Down)
}

func (m *Magnetometer) ValidateParams() []ValidationError {
	return append(nonNegative("width", m.width), validateSpeed(m.speed)...)
}

type magnetometerPayload struct {
	XMLName   xml.Name
	Kind      string                 `xml:"kind,attr,omitempty"`
	BasePoint *document.LocatedPoint `xml:"basePoint"`
	Width     *float64               `xml:"width"`
	Bearing   *float64               `xml:"bearing"`
	Clockwise *bool                  `xml:"clockwise,omitempty"`
	Speed     *document.Speed        `xml:"speed"`
	Velocity  *document.Speed        `xml:"velocity"`
}

func (m *Magnetometer) EncodePayload() any {
	return &magnetometerPayload{
		XMLName:   xmlName(KindMagnetometer),
		Kind:      "automatic",
		BasePoint: document.NewLocatedPoint(m.loc, document.Float(0)),
		Width:     document.Float(m.width),
		Bearing:   document.Float(m.bearing),
		Clockwise: falseOnly(m.firstClockwise),
		Speed:     m.element(),
	}
}

func (m *Magnetometer) DecodePayload(raw *document.Payload) (func(), error) {
	var next Magnetometer
	next.setDefaults()
	p := &magnetometerPayload{}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}
	loc, err := locatedPoint(KindMagnetometer, "basePoint", p.BasePoint)
	if err != nil {
		return nil, err
	}
	prop, err := decodePropulsion(KindMagnetometer, p.Speed, p.Velocity, next.propulsion)
	if err != nil {
		return nil, err
	}
	if p.Width == nil {
		return nil, required(KindMagnetometer, "width")
	}
	if p.Bearing == nil {
		return nil, required(KindMagnetometer, "bearing")
	}
	next.loc = loc
	next.propulsion = prop
	next.width = *p.Width
	next.bearing = *p.Bearing
	next.firstClockwise = boolOr(p.Clockwise, true)

	return func() {
		base := m.Base
		*m = next
		m.Base = base
	}, nil
}

func (m *Magnetometer) ToWire() (wire.Message, error) {
	custom, err := m.wireCustom(KindMagnetometer)
	if err != nil {
		return nil, err
	}
	direction := wire.MagClockwiseFirst
	if !m.firstClockwise {
		direction = wire.MagCounterClockwiseFirst
	}
	msg := wire.Magnetometer{
		Timeout:   wire.EncodeTimeout(m.MaxTime),
		Bearing:   deg2rad(m.bearing),
		Width:     m.width,
		Direction: direction,
		Custom:    custom,
	}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(m.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(m.speed)
	return msg, nil
}

func (m *Magnetometer) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.Magnetometer)
	if !ok {
		return wrongMessage(m, msg)
	}
	loc, err := locationFromWire(KindMagnetometer, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	next := *m
	switch w.Direction {
	case wire.MagClockwiseFirst, wire.MagClockwise:
		next.firstClockwise = true
	case wire.MagCounterClockwiseFirst, wire.MagCounterClockwise:
		next.firstClockwise = false
	default:
		slog.Warn("unknown direction, flying clockwise first", "kind", KindMagnetometer, "direction", w.Direction)
		next.firstClockwise = true
	}
	next.Base = m.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindMagnetometer, w.Speed, w.SpeedUnits)
	next.bearing = rad2deg(w.Bearing)
	next.width = w.Width
	*m = next
	return nil
}

// compassDirections is the numeric order older documents use for the direction element.
var compassDirections = []Direction{
	DirectionVehicleDependent,
	DirectionClockwise,
	DirectionCounterClockwise,
	DirectionIntoWind,
}

// CompassCalibration oscillates in pitch while circling a point.
type CompassCalibration struct {
	Base
	position
	propulsion

	pitch     float64 // degrees
	amplitude float64
	duration  int
	radius    float64
	direction Direction
}

// NewCompassCalibration returns a CompassCalibration with default parameters.
func NewCompassCalibration(ids IDSource) *CompassCalibration {
	c := &CompassCalibration{Base: newBase(ids, KindCompassCalibration)}
	c.setDefaults()
	return c
}

func (c *CompassCalibration) setDefaults() {
	c.loc = core.NewLocation(0, 0)
	c.propulsion = defaultPropulsion()
	c.pitch = 15
	c.amplitude = 1
	c.duration = 300
	c.radius = 5
	c.direction = DirectionClockwise
}

func (c *CompassCalibration) Kind() string             { return KindCompassCalibration }
func (c *CompassCalibration) Clone() Maneuver          { return deep.MustCopy(c) }
func (c *CompassCalibration) Pitch() float64           { return c.pitch }
func (c *CompassCalibration) SetPitch(deg float64)     { c.pitch = deg }
func (c *CompassCalibration) Amplitude() float64       { return c.amplitude }
func (c *CompassCalibration) SetAmplitude(v float64)   { c.amplitude = v }
func (c *CompassCalibration) Duration() int            { return c.duration }
func (c *CompassCalibration) SetDuration(seconds int)  { c.duration = seconds }
func (c *CompassCalibration) Radius() float64          { return c.radius }
func (c *CompassCalibration) SetRadius(r float64)      { c.radius = r }
func (c *CompassCalibration) Direction() Direction     { return c.direction }
func (c *CompassCalibration) SetDirection(d Direction) { c.direction = d }

func (c *CompassCalibration) ValidateParams() []ValidationError {
	var errs []ValidationError
	if c.pitch < 0 || c.pitch > 90 {
		errs = append(errs, ValidationError{Field: "pitch", Message: "must be within [0, 90] degrees"})
	}
	errs = append(errs, nonNegative("duration", float64(c.duration))...)
	errs = append(errs, positive("radius", c.radius)...)
	return append(errs, validateSpeed(c.speed)...)
}

type compassPayload struct {
	XMLName    xml.Name
	Kind       string                 `xml:"kind,attr,omitempty"`
	FinalPoint *document.LocatedPoint `xml:"finalPoint"`
	Pitch      float64                `xml:"pitch"`
	Amplitude  float64                `xml:"amplitude"`
	Duration   int                    `xml:"duration"`
	Speed      *document.Speed        `xml:"speed"`
	Velocity   *document.Speed        `xml:"velocity"`
	Radius     *float64               `xml:"radius"`
	Direction  string                 `xml:"direction"`
}

func (c *CompassCalibration) EncodePayload() any {
	direction := strconv.Itoa(max(0, indexOf(compassDirections, c.direction)))
	return &compassPayload{
		XMLName:    xmlName(KindCompassCalibration),
		Kind:       "automatic",
		FinalPoint: document.NewLocatedPoint(c.loc, nil),
		Pitch:      c.pitch,
		Amplitude:  c.amplitude,
		Duration:   c.duration,
		Speed:      c.element(),
		Radius:     document.Float(c.radius),
		Direction:  direction,
	}
}

func indexOf(directions []Direction, d Direction) int {
	for i, v := range directions {
		if v == d {
			return i
		}
	}
	return -1
}

// parseCompassDirection reads either the numeric form or a direction name.
func parseCompassDirection(s string) (Direction, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		if i < 0 || i >= len(compassDirections) {
			return "", fmt.Errorf("%w: %s: direction %d out of range", ErrParse, KindCompassCalibration, i)
		}
		return compassDirections[i], nil
	}
	d, ok := ParseDirection(s)
	if !ok {
		return "", fmt.Errorf("%w: %s: unknown direction %q", ErrParse, KindCompassCalibration, s)
	}
	return d, nil
}

func (c *CompassCalibration) DecodePayload(raw *document.Payload) (func(), error) {
	var next CompassCalibration
	next.setDefaults()
	p := &compassPayload{
		Pitch:     next.pitch,
		Amplitude: next.amplitude,
		Duration:  next.duration,
	}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}
	fp := p.FinalPoint
	if fp == nil {
		// older documents named it initialPoint
		legacy := &struct {
			InitialPoint *document.LocatedPoint `xml:"initialPoint"`
		}{}
		if err := decodePayload(raw, legacy); err != nil {
			return nil, err
		}
		fp = legacy.InitialPoint
	}
	loc, err := locatedPoint(KindCompassCalibration, "finalPoint", fp)
	if err != nil {
		return nil, err
	}
	prop, err := decodePropulsion(KindCompassCalibration, p.Speed, p.Velocity, next.propulsion)
	if err != nil {
		return nil, err
	}
	if p.Radius == nil {
		return nil, required(KindCompassCalibration, "radius")
	}
	if p.Direction != "" {
		if next.direction, err = parseCompassDirection(p.Direction); err != nil {
			return nil, err
		}
	}
	next.loc = loc
	next.propulsion = prop
	next.pitch = p.Pitch
	next.amplitude = p.Amplitude
	next.duration = p.Duration
	next.radius = *p.Radius

	return func() {
		base := c.Base
		*c = next
		c.Base = base
	}, nil
}

func (c *CompassCalibration) ToWire() (wire.Message, error) {
	custom, err := c.wireCustom(KindCompassCalibration)
	if err != nil {
		return nil, err
	}
	msg := wire.CompassCalibration{
		Timeout:   wire.EncodeTimeout(c.MaxTime),
		Pitch:     deg2rad(c.pitch),
		Amplitude: c.amplitude,
		Duration:  wire.EncodeDuration(c.duration),
		Radius:    c.radius,
		Direction: directionToWire(c.direction),
		Custom:    custom,
	}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(c.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(c.speed)
	return msg, nil
}

func (c *CompassCalibration) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.CompassCalibration)
	if !ok {
		return wrongMessage(c, msg)
	}
	loc, err := locationFromWire(KindCompassCalibration, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	next := *c
	next.Base = c.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindCompassCalibration, w.Speed, w.SpeedUnits)
	next.pitch = rad2deg(w.Pitch)
	next.amplitude = w.Amplitude
	next.duration = int(w.Duration)
	next.radius = w.Radius
	next.direction = directionFromWire(KindCompassCalibration, w.Direction)
	*c = next
	return nil
}
