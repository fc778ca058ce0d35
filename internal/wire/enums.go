package wire

import (
	"fmt"
	"math"

	"github.com/seaplan/mplan/pkg/core"
)

// SpeedUnits is the wire vocabulary for speed units.
type SpeedUnits string

const (
	SpeedMetersPS   SpeedUnits = "METERS_PS"
	SpeedRPM        SpeedUnits = "RPM"
	SpeedPercentage SpeedUnits = "PERCENTAGE"
)

// ZUnits is the wire vocabulary for vertical references.
type ZUnits string

const (
	ZNone     ZUnits = "NONE"
	ZDepth    ZUnits = "DEPTH"
	ZAltitude ZUnits = "ALTITUDE"
	ZHeight   ZUnits = "HEIGHT"
)

// Loiter type tokens.
const (
	LoiterDefault   = "DEFAULT"
	LoiterCircular  = "CIRCULAR"
	LoiterRacetrack = "RACETRACK"
	LoiterEight     = "EIGHT"
	LoiterHover     = "HOVER"
)

// Loiter and compass calibration direction tokens.
const (
	DirectionVehicleDependent = "VDEP"
	DirectionClockwise        = "CLOCKW"
	DirectionCounterClockwise = "CCLOCKW"
	DirectionIntoWind         = "IWINDCURR"
)

// Magnetometer direction tokens.
const (
	MagClockwiseFirst        = "CLOCKW_FIRST"
	MagCounterClockwiseFirst = "CCLOCKW_FIRST"
	MagClockwise             = "CLOCKW"
	MagCounterClockwise      = "CCLOCKW"
)

// ScheduledGoto delayed behavior tokens.
const (
	DelayedResume = "DELAYED_RESUME"
	DelayedSkip   = "DELAYED_SKIP"
	DelayedFail   = "DELAYED_FAIL"
)

// EncodeSpeed maps a speed onto the wire units. Units without a wire token are converted to m/s.
func EncodeSpeed(s core.Speed) (float64, SpeedUnits) {
	switch s.Units {
	case core.RPM:
		return s.Value, SpeedRPM
	case core.Percentage:
		return s.Value, SpeedPercentage
	case core.MetersPS:
		return s.Value, SpeedMetersPS
	default:
		return s.MPS(), SpeedMetersPS
	}
}

// DecodeSpeed maps wire speed fields back to a speed. Unknown tokens are read as RPM and
// reported with core.ErrUnknownUnits; the returned speed is always usable.
func DecodeSpeed(value float64, units SpeedUnits) (core.Speed, error) {
	switch units {
	case SpeedMetersPS:
		return core.NewSpeed(value, core.MetersPS), nil
	case SpeedRPM:
		return core.NewSpeed(value, core.RPM), nil
	case SpeedPercentage:
		return core.NewSpeed(value, core.Percentage), nil
	default:
		return core.NewSpeed(value, core.RPM), fmt.Errorf("%w: speed_units %q", core.ErrUnknownUnits, units)
	}
}

// EncodeZUnits returns the wire token for z.
func EncodeZUnits(z core.ZUnits) ZUnits {
	return ZUnits(z.String())
}

// DecodeZUnits parses a wire vertical reference. Unknown tokens yield NONE and core.ErrUnknownUnits.
func DecodeZUnits(z ZUnits) (core.ZUnits, error) {
	return core.ParseZUnits(string(z))
}

// EncodeTimeout clamps a maneuver max time to the 16 bit wire field.
func EncodeTimeout(seconds int) uint16 {
	switch {
	case seconds < 0:
		return 0
	case seconds > math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(seconds)
	}
}

// EncodeDuration clamps a duration in seconds to the 16 bit wire field.
func EncodeDuration(seconds int) uint16 {
	return EncodeTimeout(seconds)
}
