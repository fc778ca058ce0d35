package maneuver

import (
	"encoding/xml"
	"fmt"
	"math"
	"slices"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/geo"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// CoverArea lets the vehicle plan its own coverage of a polygon, entering at the location.
type CoverArea struct {
	Base
	waypoint

	polygon []core.Location
}

// NewCoverArea returns a CoverArea with an empty polygon.
func NewCoverArea(ids IDSource) *CoverArea {
	return &CoverArea{Base: newBase(ids, KindCoverArea), waypoint: defaultWaypoint()}
}

func (c *CoverArea) Kind() string    { return KindCoverArea }
func (c *CoverArea) Clone() Maneuver { return deep.MustCopy(c) }

// Polygon returns a copy of the area vertices, in order.
func (c *CoverArea) Polygon() []core.Location { return slices.Clone(c.polygon) }

// SetPolygon replaces the area vertices. The ring is closed implicitly.
func (c *CoverArea) SetPolygon(vertices []core.Location) { c.polygon = slices.Clone(vertices) }

func (c *CoverArea) ValidateParams() []ValidationError {
	errs := c.validate()
	if _, err := geo.VerticesPolygon(c.polygon); err != nil {
		errs = append(errs, ValidationError{Field: "polygon", Message: err.Error()})
	}
	return errs
}

type vertexElement struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

type coverAreaPayload struct {
	XMLName    xml.Name
	Kind       string                 `xml:"kind,attr,omitempty"`
	FinalPoint *document.LocatedPoint `xml:"finalPoint"`
	Speed      *document.Speed        `xml:"speed"`
	Velocity   *document.Speed        `xml:"velocity"`
	Polygon    []vertexElement        `xml:"polygon>vertex"`
}

func (c *CoverArea) EncodePayload() any {
	p := &coverAreaPayload{
		XMLName:    xmlName(KindCoverArea),
		Kind:       "automatic",
		FinalPoint: document.NewLocatedPoint(c.loc, document.Float(c.radiusTolerance)),
		Speed:      c.element(),
	}
	for _, v := range c.polygon {
		a := v.Absolute()
		p.Polygon = append(p.Polygon, vertexElement{Lat: a.Latitude, Lon: a.Longitude})
	}
	return p
}

func (c *CoverArea) DecodePayload(raw *document.Payload) (func(), error) {
	p := &coverAreaPayload{}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}
	def := defaultWaypoint()
	loc, err := locatedPoint(KindCoverArea, "finalPoint", p.FinalPoint)
	if err != nil {
		return nil, err
	}
	prop, err := decodePropulsion(KindCoverArea, p.Speed, p.Velocity, def.propulsion)
	if err != nil {
		return nil, err
	}
	polygon := make([]core.Location, 0, len(p.Polygon))
	for i, v := range p.Polygon {
		if math.Abs(v.Lat) > 90 || math.Abs(v.Lon) > 180 {
			return nil, fmt.Errorf("%w: %s: vertex %d out of range", ErrParse, KindCoverArea, i)
		}
		polygon = append(polygon, core.NewLocation(v.Lat, v.Lon))
	}
	w := waypoint{
		position:        position{loc: loc},
		propulsion:      prop,
		radiusTolerance: p.FinalPoint.RadiusToleranceOr(def.radiusTolerance),
	}

	return func() {
		c.waypoint = w
		c.polygon = polygon
	}, nil
}

func (c *CoverArea) ToWire() (wire.Message, error) {
	custom, err := c.wireCustom(KindCoverArea)
	if err != nil {
		return nil, err
	}
	msg := wire.CoverArea{Custom: custom}
	msg.Lat, msg.Lon, msg.Z, msg.ZUnits = locationToWire(c.loc)
	msg.Speed, msg.SpeedUnits = wire.EncodeSpeed(c.speed)
	for _, v := range c.polygon {
		a := v.Absolute()
		msg.Polygon = append(msg.Polygon, wire.PolygonVertex{Lat: deg2rad(a.Latitude), Lon: deg2rad(a.Longitude)})
	}
	return msg, nil
}

// FromWire keeps MaxTime and the radius tolerance, which the message does not carry.
func (c *CoverArea) FromWire(msg wire.Message) error {
	w, ok := msg.(wire.CoverArea)
	if !ok {
		return wrongMessage(c, msg)
	}
	loc, err := locationFromWire(KindCoverArea, w.Lat, w.Lon, w.Z, w.ZUnits)
	if err != nil {
		return err
	}
	polygon := make([]core.Location, 0, len(w.Polygon))
	for i, v := range w.Polygon {
		if math.Abs(v.Lat) > math.Pi/2 || math.Abs(v.Lon) > math.Pi*2 {
			return fmt.Errorf("%w: %s: vertex %d out of range", ErrParse, KindCoverArea, i)
		}
		polygon = append(polygon, core.NewLocation(rad2deg(v.Lat), rad2deg(v.Lon)))
	}
	next := *c
	next.Base = c.Base.withCustom(w.Custom)
	next.loc = loc
	next.speed = speedFromWire(KindCoverArea, w.Speed, w.SpeedUnits)
	next.polygon = polygon
	*c = next
	return nil
}
