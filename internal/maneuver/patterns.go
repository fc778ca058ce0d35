package maneuver

import (
	"math"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/pattern"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// Rows is a lawnmower survey executed natively by the vehicle.
type Rows struct {
	Base
	survey
}

// NewRows returns a Rows with default parameters.
func NewRows(ids IDSource) *Rows {
	return &Rows{Base: newBase(ids, KindRows), survey: defaultSurvey()}
}

func (r *Rows) Kind() string                      { return KindRows }
func (r *Rows) Clone() Maneuver                   { return deep.MustCopy(r) }
func (r *Rows) ValidateParams() []ValidationError { return r.validate(KindRows) }
func (r *Rows) EncodePayload() any                { return r.payload(KindRows) }
func (r *Rows) Points() []core.OffsetPoint        { return pattern.Rows(r.rowsParams()) }
func (r *Rows) StartLocation() core.Location      { return r.at(r.Points(), 0) }

func (r *Rows) EndLocation() core.Location {
	points := r.Points()
	return r.at(points, len(points)-1)
}

func (r *Rows) DecodePayload(raw *document.Payload) (func(), error) {
	s, err := decodeSurvey(KindRows, raw)
	if err != nil {
		return nil, err
	}
	return func() { r.survey = s }, nil
}

// CheckPath returns an error wrapping pattern.ErrTooManyPoints when the path of a survey
// variant would exceed pattern.MaxPoints. Other maneuvers always pass.
func CheckPath(m Maneuver) error {
	if s, ok := m.(interface{ checkSize(kind string) error }); ok {
		return s.checkSize(m.Kind())
	}
	return nil
}

func clampUint8(v float64) uint8 {
	return uint8(math.Max(0, math.Min(math.MaxUint8, math.Round(v))))
}

func (r *Rows) ToWire() (wire.Message, error) {
	custom, err := r.wireCustom(KindRows)
	if err != nil {
		return nil, err
	}
	var flags uint8
	if r.squareCurve {
		flags |= wire.FlagSquareCurve
	}
	if r.firstCurveRight {
		flags |= wire.FlagCurveRight
	}
	msg := wire.Rows{
		Timeout:     wire.EncodeTimeout(r.MaxTime),
		Bearing:     deg2rad(r.bearing),
		CrossAngle:  deg2rad(r.crossAngle),
		Width:       r.width,
		Length:      r.length,
		HStep:       r.hstep,
		Coff:        clampUint8(r.curveOffset),
		Alternation: clampUint8(float64(r.alternation)),
		Flags:       flags,
		Custom:      custom,
	}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(r.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(r.speed)
	return msg, nil
}

// FromWire reads a Rows message. The sidescan shadow settings are not carried and are kept.
func (r *Rows) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.Rows)
	if !ok {
		return wrongMessage(r, msg)
	}
	loc, err := locationFromWire(KindRows, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	next := *r
	next.Base = r.Base.fromWire(w.Timeout, w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindRows, w.Speed, w.SpeedUnits)
	next.bearing = rad2deg(w.Bearing)
	next.crossAngle = rad2deg(w.CrossAngle)
	next.width = w.Width
	next.length = w.Length
	next.hstep = w.HStep
	next.curveOffset = float64(w.Coff)
	next.alternation = int(w.Alternation)
	next.squareCurve = w.Flags&wire.FlagSquareCurve != 0
	next.firstCurveRight = w.Flags&wire.FlagCurveRight != 0
	*r = next
	return nil
}

// RowsPattern is a lawnmower survey sent to the vehicle as a path.
type RowsPattern struct {
	Base
	survey
}

// NewRowsPattern returns a RowsPattern with default parameters.
func NewRowsPattern(ids IDSource) *RowsPattern {
	return &RowsPattern{Base: newBase(ids, KindRowsPattern), survey: defaultSurvey()}
}

func (r *RowsPattern) Kind() string                      { return KindRowsPattern }
func (r *RowsPattern) Clone() Maneuver                   { return deep.MustCopy(r) }
func (r *RowsPattern) ValidateParams() []ValidationError { return r.validate(KindRowsPattern) }
func (r *RowsPattern) EncodePayload() any                { return r.payload(KindRowsPattern) }
func (r *RowsPattern) Points() []core.OffsetPoint        { return pattern.Rows(r.rowsParams()) }
func (r *RowsPattern) StartLocation() core.Location      { return r.at(r.Points(), 0) }

func (r *RowsPattern) EndLocation() core.Location {
	points := r.Points()
	return r.at(points, len(points)-1)
}

func (r *RowsPattern) DecodePayload(raw *document.Payload) (func(), error) {
	s, err := decodeSurvey(KindRowsPattern, raw)
	if err != nil {
		return nil, err
	}
	return func() { r.survey = s }, nil
}

func (r *RowsPattern) ToWire() (wire.Message, error) {
	return r.patternWire(&r.Base, KindRowsPattern, r.Points)
}

func (r *RowsPattern) FromWire(msg wire.Message) error {
	b, s, err := patternFromWire(r, &r.survey, msg)
	if err != nil {
		return err
	}
	r.Base, r.survey = b, s
	return nil
}

// RIPattern covers an area three times with rows rotated 60 degrees apart.
type RIPattern struct {
	Base
	survey
}

// NewRIPattern returns an RIPattern with default parameters.
func NewRIPattern(ids IDSource) *RIPattern {
	return &RIPattern{Base: newBase(ids, KindRIPattern), survey: defaultSurvey()}
}

func (r *RIPattern) Kind() string                      { return KindRIPattern }
func (r *RIPattern) Clone() Maneuver                   { return deep.MustCopy(r) }
func (r *RIPattern) ValidateParams() []ValidationError { return r.validate(KindRIPattern) }
func (r *RIPattern) EncodePayload() any                { return r.payload(KindRIPattern) }
func (r *RIPattern) StartLocation() core.Location      { return r.at(r.Points(), 0) }

func (r *RIPattern) Points() []core.OffsetPoint {
	return pattern.RI(r.width, r.hstep, float64(r.alternation)/100, r.curveOffset, r.squareCurve, deg2rad(r.bearing))
}

func (r *RIPattern) EndLocation() core.Location {
	points := r.Points()
	return r.at(points, len(points)-1)
}

func (r *RIPattern) DecodePayload(raw *document.Payload) (func(), error) {
	s, err := decodeSurvey(KindRIPattern, raw)
	if err != nil {
		return nil, err
	}
	return func() { r.survey = s }, nil
}

func (r *RIPattern) ToWire() (wire.Message, error) {
	return r.patternWire(&r.Base, KindRIPattern, r.Points)
}

func (r *RIPattern) FromWire(msg wire.Message) error {
	b, s, err := patternFromWire(r, &r.survey, msg)
	if err != nil {
		return err
	}
	r.Base, r.survey = b, s
	return nil
}

// CrossHatchPattern covers an area twice with perpendicular rows.
type CrossHatchPattern struct {
	Base
	survey
}

// NewCrossHatchPattern returns a CrossHatchPattern with default parameters.
func NewCrossHatchPattern(ids IDSource) *CrossHatchPattern {
	return &CrossHatchPattern{Base: newBase(ids, KindCrossHatchPattern), survey: defaultSurvey()}
}

func (c *CrossHatchPattern) Kind() string                      { return KindCrossHatchPattern }
func (c *CrossHatchPattern) Clone() Maneuver                   { return deep.MustCopy(c) }
func (c *CrossHatchPattern) ValidateParams() []ValidationError { return c.validate(KindCrossHatchPattern) }
func (c *CrossHatchPattern) EncodePayload() any                { return c.payload(KindCrossHatchPattern) }
func (c *CrossHatchPattern) StartLocation() core.Location      { return c.at(c.Points(), 0) }

func (c *CrossHatchPattern) Points() []core.OffsetPoint {
	return pattern.CrossHatch(c.width, c.hstep, c.curveOffset, c.squareCurve, deg2rad(c.bearing))
}

func (c *CrossHatchPattern) EndLocation() core.Location {
	points := c.Points()
	return c.at(points, len(points)-1)
}

func (c *CrossHatchPattern) DecodePayload(raw *document.Payload) (func(), error) {
	s, err := decodeSurvey(KindCrossHatchPattern, raw)
	if err != nil {
		return nil, err
	}
	return func() { c.survey = s }, nil
}

func (c *CrossHatchPattern) ToWire() (wire.Message, error) {
	return c.patternWire(&c.Base, KindCrossHatchPattern, c.Points)
}

func (c *CrossHatchPattern) FromWire(msg wire.Message) error {
	b, s, err := patternFromWire(c, &c.survey, msg)
	if err != nil {
		return err
	}
	c.Base, c.survey = b, s
	return nil
}

// ExpandingSquarePattern searches outwards from a point in a square spiral.
type ExpandingSquarePattern struct {
	Base
	survey
}

// NewExpandingSquarePattern returns an ExpandingSquarePattern with default parameters.
func NewExpandingSquarePattern(ids IDSource) *ExpandingSquarePattern {
	return &ExpandingSquarePattern{Base: newBase(ids, KindExpandingSquarePattern), survey: defaultSurvey()}
}

func (e *ExpandingSquarePattern) Kind() string                      { return KindExpandingSquarePattern }
func (e *ExpandingSquarePattern) Clone() Maneuver                   { return deep.MustCopy(e) }
func (e *ExpandingSquarePattern) ValidateParams() []ValidationError { return e.validate(KindExpandingSquarePattern) }
func (e *ExpandingSquarePattern) EncodePayload() any                { return e.payload(KindExpandingSquarePattern) }
func (e *ExpandingSquarePattern) StartLocation() core.Location      { return e.at(e.Points(), 0) }

func (e *ExpandingSquarePattern) Points() []core.OffsetPoint {
	return pattern.ExpandingSquare(e.width, e.hstep, deg2rad(e.bearing), !e.firstCurveRight)
}

func (e *ExpandingSquarePattern) EndLocation() core.Location {
	points := e.Points()
	return e.at(points, len(points)-1)
}

func (e *ExpandingSquarePattern) DecodePayload(raw *document.Payload) (func(), error) {
	s, err := decodeSurvey(KindExpandingSquarePattern, raw)
	if err != nil {
		return nil, err
	}
	return func() { e.survey = s }, nil
}

func (e *ExpandingSquarePattern) ToWire() (wire.Message, error) {
	return e.patternWire(&e.Base, KindExpandingSquarePattern, e.Points)
}

func (e *ExpandingSquarePattern) FromWire(msg wire.Message) error {
	b, s, err := patternFromWire(e, &e.survey, msg)
	if err != nil {
		return err
	}
	e.Base, e.survey = b, s
	return nil
}
