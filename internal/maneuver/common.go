package maneuver

import (
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/pkg/core"
)

// position is embedded by variants with a single target location.
type position struct {
	loc core.Location
}

// Location returns the target location.
func (p *position) Location() core.Location { return p.loc }

// SetLocation stores the target location.
func (p *position) SetLocation(l core.Location) { p.loc = l }

// propulsion is embedded by variants with a commanded speed.
type propulsion struct {
	speed          core.Speed
	speedTolerance float64
}

// Speed returns the commanded speed.
func (p *propulsion) Speed() core.Speed { return p.speed }

// SetSpeed sets the commanded speed.
func (p *propulsion) SetSpeed(s core.Speed) { p.speed = s }

// SpeedTolerance returns the accepted deviation from the commanded speed.
func (p *propulsion) SpeedTolerance() float64 { return p.speedTolerance }

// SetSpeedTolerance sets the accepted speed deviation.
func (p *propulsion) SetSpeedTolerance(v float64) { p.speedTolerance = v }

func defaultPropulsion() propulsion {
	return propulsion{speed: core.NewSpeed(1000, core.RPM), speedTolerance: 100}
}

func (p propulsion) element() *document.Speed {
	return document.NewSpeed(p.speed, document.Float(p.speedTolerance))
}

// decodePropulsion reads the speed element, or its legacy velocity name. Without either the
// defaults in def are kept. Documents that predate units are read as m/s.
func decodePropulsion(kind string, speed, velocity *document.Speed, def propulsion) (propulsion, error) {
	el := document.PickSpeed(speed, velocity)
	s, err := el.Core(def.speed, core.MetersPS)
	if err := unitsOK(kind, err); err != nil {
		return def, err
	}
	return propulsion{speed: s, speedTolerance: el.ToleranceOr(def.speedTolerance)}, nil
}

func locatedPoint(kind, element string, lp *document.LocatedPoint) (core.Location, error) {
	if lp == nil || lp.Point == nil {
		return core.Location{}, required(kind, element)
	}
	l, err := lp.Location()
	if err != nil {
		return core.Location{}, err
	}
	return l, nil
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// falseOnly returns an attribute value for flags written only when cleared.
func falseOnly(v bool) *bool {
	if v {
		return nil
	}
	return document.Bool(false)
}

// zUnitsFromDocument parses a vertical reference element. Unknown tokens are logged and read as NONE.
func zUnitsFromDocument(kind, s string) (core.ZUnits, error) {
	z, err := core.ParseZUnits(s)
	return z, unitsOK(kind, err)
}
