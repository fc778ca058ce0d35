package document

import (
	"fmt"
	"math"

	"github.com/seaplan/mplan/internal/geo"
	"github.com/seaplan/mplan/pkg/core"
)

// CustomSettings is the custom-settings element.
type CustomSettings struct {
	Settings []Setting `xml:"setting"`
}

// Setting is a single custom-settings entry.
type Setting struct {
	Name     string `xml:"name,attr"`
	TypeHint string `xml:"type-hint,attr"`
	Value    string `xml:",chardata"`
}

// NewCustomSettings returns nil for empty settings so the element is omitted.
func NewCustomSettings(c core.CustomSettings) *CustomSettings {
	if len(c) == 0 {
		return nil
	}
	out := &CustomSettings{Settings: make([]Setting, len(c))}
	for i, s := range c {
		out.Settings[i] = Setting{Name: s.Name, TypeHint: string(s.Hint), Value: s.Value}
	}
	return out
}

// Core converts the element, normalizing type hints. Nil yields nil.
func (c *CustomSettings) Core() core.CustomSettings {
	if c == nil || len(c.Settings) == 0 {
		return nil
	}
	var out core.CustomSettings
	for _, s := range c.Settings {
		out.Set(s.Name, s.Value, core.ParseTypeHint(s.TypeHint))
	}
	return out
}

// Actions is the actions element.
type Actions struct {
	Start ActionList `xml:"start-actions"`
	End   ActionList `xml:"end-actions"`
}

// ActionList is an ordered action list.
type ActionList struct {
	Actions []Action `xml:"action"`
}

// Action is a single trigger.
type Action struct {
	Name   string  `xml:"name,attr"`
	Params []Param `xml:"param"`
}

// Param is an action parameter.
type Param struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// NewActions returns nil when both lists are empty.
func NewActions(start, end []core.Action) *Actions {
	if len(start) == 0 && len(end) == 0 {
		return nil
	}
	return &Actions{Start: newActionList(start), End: newActionList(end)}
}

func newActionList(actions []core.Action) ActionList {
	out := ActionList{}
	for _, a := range actions {
		xa := Action{Name: a.Name}
		for _, p := range a.Params {
			xa.Params = append(xa.Params, Param(p))
		}
		out.Actions = append(out.Actions, xa)
	}
	return out
}

// Core returns the start and end action lists.
func (a *Actions) Core() (start, end []core.Action) {
	if a == nil {
		return nil, nil
	}
	return a.Start.core(), a.End.core()
}

func (l ActionList) core() []core.Action {
	if len(l.Actions) == 0 {
		return nil
	}
	out := make([]core.Action, len(l.Actions))
	for i, a := range l.Actions {
		ca := core.Action{Name: a.Name}
		for _, p := range a.Params {
			ca.Params = append(ca.Params, core.Param(p))
		}
		out[i] = ca
	}
	return out
}

// Point is the point element describing a location.
type Point struct {
	ID         string     `xml:"id,omitempty"`
	Name       string     `xml:"name,omitempty"`
	Coordinate Coordinate `xml:"coordinate"`
	ZUnits     string     `xml:"z-units,omitempty"`
}

// Coordinate holds the position and offsets of a point.
type Coordinate struct {
	Latitude  string   `xml:"latitude"`
	Longitude string   `xml:"longitude"`
	Depth     *float64 `xml:"depth,omitempty"`
	Height    *float64 `xml:"height,omitempty"`

	OffsetDistance *float64 `xml:"offset-distance,omitempty"`
	Azimuth        *float64 `xml:"azimuth,omitempty"`
	Zenith         *float64 `xml:"zenith,omitempty"`

	OffsetNorth *float64 `xml:"offset-north,omitempty"`
	OffsetSouth *float64 `xml:"offset-south,omitempty"`
	OffsetEast  *float64 `xml:"offset-east,omitempty"`
	OffsetWest  *float64 `xml:"offset-west,omitempty"`
	OffsetUp    *float64 `xml:"offset-up,omitempty"`
	OffsetDown  *float64 `xml:"offset-down,omitempty"`
}

func ptr(v float64) *float64 { return &v }

// NewPoint converts a location to its element form.
func NewPoint(l core.Location) *Point {
	p := &Point{
		ID:     l.ID,
		Name:   l.Name,
		ZUnits: l.ZUnits.String(),
		Coordinate: Coordinate{
			Latitude:  geo.FormatCoordinate(l.Latitude),
			Longitude: geo.FormatCoordinate(l.Longitude),
		},
	}
	c := &p.Coordinate
	if l.ZUnits == core.ZDepth {
		c.Depth = ptr(l.Z)
	} else {
		c.Height = ptr(l.Z)
	}
	if l.OffsetDistance != 0 {
		c.OffsetDistance = ptr(l.OffsetDistance)
		c.Azimuth = ptr(l.Azimuth)
		c.Zenith = ptr(l.Zenith)
	}
	if l.OffsetNorth != 0 || l.OffsetEast != 0 || l.OffsetDown != 0 {
		if l.OffsetNorth >= 0 {
			c.OffsetNorth = ptr(l.OffsetNorth)
		} else {
			c.OffsetSouth = ptr(-l.OffsetNorth)
		}
		if l.OffsetEast >= 0 {
			c.OffsetEast = ptr(l.OffsetEast)
		} else {
			c.OffsetWest = ptr(-l.OffsetEast)
		}
		if l.OffsetDown >= 0 {
			c.OffsetDown = ptr(l.OffsetDown)
		} else {
			c.OffsetUp = ptr(-l.OffsetDown)
		}
	}
	return p
}

// Location converts the element back. Latitude and longitude are required.
// Without a z-units element the reference is taken from whichever of depth or height is present.
func (p *Point) Location() (core.Location, error) {
	if p == nil {
		return core.Location{}, fmt.Errorf("%w: missing point", ErrMalformed)
	}
	lat, err := geo.ParseCoordinate(p.Coordinate.Latitude)
	if err != nil {
		return core.Location{}, fmt.Errorf("%w: latitude: %v", ErrMalformed, err)
	}
	lon, err := geo.ParseCoordinate(p.Coordinate.Longitude)
	if err != nil {
		return core.Location{}, fmt.Errorf("%w: longitude: %v", ErrMalformed, err)
	}

	l := core.NewLocation(lat, lon)
	l.ID, l.Name = p.ID, p.Name

	c := p.Coordinate
	switch {
	case c.Depth != nil:
		l.Z, l.ZUnits = *c.Depth, core.ZDepth
	case c.Height != nil:
		l.Z, l.ZUnits = *c.Height, core.ZHeight
	}
	if p.ZUnits != "" {
		// unknown references fall back to NONE
		l.ZUnits, _ = core.ParseZUnits(p.ZUnits)
	}

	if c.OffsetDistance != nil {
		l.OffsetDistance = *c.OffsetDistance
		if c.Azimuth != nil {
			l.Azimuth = *c.Azimuth
		}
		if c.Zenith != nil {
			l.Zenith = *c.Zenith
		}
	}
	l.OffsetNorth = signed(c.OffsetNorth, c.OffsetSouth)
	l.OffsetEast = signed(c.OffsetEast, c.OffsetWest)
	l.OffsetDown = signed(c.OffsetDown, c.OffsetUp)
	return l, nil
}

func signed(pos, neg *float64) float64 {
	switch {
	case pos != nil:
		return *pos
	case neg != nil:
		return -*neg
	default:
		return 0
	}
}

// Speed is a speed element. The unit attribute carries the document unit token.
type Speed struct {
	Tolerance *float64 `xml:"tolerance,attr,omitempty"`
	Type      string   `xml:"type,attr,omitempty"`
	Unit      string   `xml:"unit,attr,omitempty"`
	Value     float64  `xml:",chardata"`
}

// NewSpeed converts a speed with an optional tolerance.
func NewSpeed(s core.Speed, tolerance *float64) *Speed {
	return &Speed{Tolerance: tolerance, Type: "float", Unit: s.Units.String(), Value: s.Value}
}

// Core converts the element. A missing unit yields def; an unknown unit yields RPM together
// with an error wrapping core.ErrUnknownUnits. A nil element yields the fallback speed.
func (s *Speed) Core(fallback core.Speed, def core.SpeedUnits) (core.Speed, error) {
	if s == nil {
		return fallback, nil
	}
	if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return fallback, fmt.Errorf("%w: speed %v", ErrMalformed, s.Value)
	}
	if s.Unit == "" {
		return core.NewSpeed(s.Value, def), nil
	}
	units, err := core.ParseSpeedUnits(s.Unit)
	return core.NewSpeed(s.Value, units), err
}

// PickSpeed returns the current speed element or the legacy velocity one.
func PickSpeed(speed, velocity *Speed) *Speed {
	if speed != nil {
		return speed
	}
	return velocity
}

// ToleranceOr returns the tolerance attribute or def.
func (s *Speed) ToleranceOr(def float64) float64 {
	if s == nil || s.Tolerance == nil {
		return def
	}
	return *s.Tolerance
}

// LocatedPoint is the finalPoint/basePoint/initialPoint element.
type LocatedPoint struct {
	Type            string   `xml:"type,attr,omitempty"`
	Point           *Point   `xml:"point"`
	RadiusTolerance *float64 `xml:"radiusTolerance,omitempty"`
}

// NewLocatedPoint wraps a location with an optional radius tolerance.
func NewLocatedPoint(l core.Location, radiusTolerance *float64) *LocatedPoint {
	return &LocatedPoint{Type: "pointType", Point: NewPoint(l), RadiusTolerance: radiusTolerance}
}

// Location returns the wrapped location.
func (lp *LocatedPoint) Location() (core.Location, error) {
	if lp == nil {
		return core.Location{}, fmt.Errorf("%w: missing point", ErrMalformed)
	}
	return lp.Point.Location()
}

// RadiusToleranceOr returns the radius tolerance or def.
func (lp *LocatedPoint) RadiusToleranceOr(def float64) float64 {
	if lp == nil || lp.RadiusTolerance == nil {
		return def
	}
	return *lp.RadiusTolerance
}

// NEDOffset is a trajectory/path point offset element.
type NEDOffset struct {
	North float64  `xml:"northOffset,attr"`
	East  float64  `xml:"eastOffset,attr"`
	Depth float64  `xml:"depthOffset,attr"`
	Time  *float64 `xml:"timeOffset,attr,omitempty"`
}

// Float returns a pointer to v, for optional elements.
func Float(v float64) *float64 { return ptr(v) }

// Bool returns a pointer to v, for optional elements.
func Bool(v bool) *bool { return &v }
