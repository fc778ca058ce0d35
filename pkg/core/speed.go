// pkg/core/speed.go
package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Conversion factors from meters per second.
// RPM and percentage are empirical: 1000 RPM and 100% both map to about 1.3 m/s.
const (
	RPMPerMPS     = 1000.0 / 1.3
	PercentPerMPS = 100.0 / 1.3
	KnotsPerMPS   = 1.943844
	KPHPerMPS     = 3.6
	MPHPerMPS     = 2.236936
)

// ErrUnknownUnits is returned when a speed or vertical unit token is not recognized.
// The accompanying value is always a usable default.
var ErrUnknownUnits = errors.New("unknown units")

// SpeedUnits identifies the unit of a Speed value.
type SpeedUnits int

const (
	MetersPS SpeedUnits = iota
	Knots
	KPH
	MPH
	RPM
	Percentage
)

// String returns the document token for the unit.
func (u SpeedUnits) String() string {
	switch u {
	case MetersPS:
		return "m/s"
	case Knots:
		return "kn"
	case KPH:
		return "km/h"
	case MPH:
		return "mph"
	case RPM:
		return "RPM"
	case Percentage:
		return "%"
	default:
		return "RPM"
	}
}

// ParseSpeedUnits parses a document unit token. Matching is case-insensitive and
// accepts the wire names too. Unknown tokens return RPM together with ErrUnknownUnits.
func ParseSpeedUnits(s string) (SpeedUnits, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m/s", "mps", "meters_ps":
		return MetersPS, nil
	case "kn", "knot", "knots":
		return Knots, nil
	case "km/h", "kph":
		return KPH, nil
	case "mph":
		return MPH, nil
	case "rpm":
		return RPM, nil
	case "%", "percent", "percentage":
		return Percentage, nil
	default:
		return RPM, fmt.Errorf("%w: speed %q", ErrUnknownUnits, s)
	}
}

// Speed is a value with its unit.
type Speed struct {
	Value float64
	Units SpeedUnits
}

// NewSpeed returns a speed with the given value and units.
func NewSpeed(value float64, units SpeedUnits) Speed {
	return Speed{Value: value, Units: units}
}

// MPS returns the speed in meters per second.
func (s Speed) MPS() float64 {
	return ToMPS(s.Value, s.Units)
}

// To converts the speed to the given units, pivoting through m/s.
func (s Speed) To(units SpeedUnits) Speed {
	if s.Units == units {
		return s
	}
	return Speed{Value: FromMPS(s.MPS(), units), Units: units}
}

// String formats the speed as "<value> <unit>".
func (s Speed) String() string {
	return strconv.FormatFloat(s.Value, 'f', -1, 64) + " " + s.Units.String()
}

// ToMPS converts value expressed in units to meters per second.
func ToMPS(value float64, units SpeedUnits) float64 {
	switch units {
	case Knots:
		return value / KnotsPerMPS
	case KPH:
		return value / KPHPerMPS
	case MPH:
		return value / MPHPerMPS
	case RPM:
		return value / RPMPerMPS
	case Percentage:
		return value / PercentPerMPS
	default:
		return value
	}
}

// FromMPS converts a value in meters per second to units.
func FromMPS(mps float64, units SpeedUnits) float64 {
	switch units {
	case Knots:
		return mps * KnotsPerMPS
	case KPH:
		return mps * KPHPerMPS
	case MPH:
		return mps * MPHPerMPS
	case RPM:
		return mps * RPMPerMPS
	case Percentage:
		return mps * PercentPerMPS
	default:
		return mps
	}
}
