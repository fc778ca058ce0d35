package maneuver

import (
	"encoding/xml"

	"github.com/brunoga/deep"
	"github.com/seaplan/mplan/internal/document"
	"github.com/seaplan/mplan/internal/wire"
	"github.com/seaplan/mplan/pkg/core"
)

// StationKeeping holds position within a radius for a duration. With KeepSafe the vehicle
// periodically pops up while keeping station.
type StationKeeping struct {
	Base
	position
	propulsion

	duration      int
	radius        float64
	keepSafe      bool
	popupPeriod   int
	popupDuration int
}

// NewStationKeeping returns a StationKeeping with default parameters.
func NewStationKeeping(ids IDSource) *StationKeeping {
	s := &StationKeeping{Base: newBase(ids, KindStationKeeping)}
	s.setDefaults()
	return s
}

func (s *StationKeeping) setDefaults() {
	s.loc = core.NewLocation(0, 0)
	s.propulsion = defaultPropulsion()
	s.duration = 60
	s.radius = 10
	s.popupPeriod = 120
	s.popupDuration = 60
}

func (s *StationKeeping) Kind() string    { return KindStationKeeping }
func (s *StationKeeping) Clone() Maneuver { return deep.MustCopy(s) }

// Location reports the station radius in the Radius field.
func (s *StationKeeping) Location() core.Location {
	loc := s.loc
	loc.Radius = s.radius
	return loc
}

// SetLocation stores loc. A positive Radius also sets the station radius.
func (s *StationKeeping) SetLocation(loc core.Location) {
	if loc.Radius > 0 {
		s.radius = loc.Radius
	}
	loc.Radius = 0
	s.loc = loc
}

func (s *StationKeeping) Duration() int                { return s.duration }
func (s *StationKeeping) SetDuration(seconds int)      { s.duration = seconds }
func (s *StationKeeping) Radius() float64              { return s.radius }
func (s *StationKeeping) SetRadius(r float64)          { s.radius = r }
func (s *StationKeeping) KeepSafe() bool               { return s.keepSafe }
func (s *StationKeeping) SetKeepSafe(v bool)           { s.keepSafe = v }
func (s *StationKeeping) PopupPeriod() int             { return s.popupPeriod }
func (s *StationKeeping) SetPopupPeriod(seconds int)   { s.popupPeriod = seconds }
func (s *StationKeeping) PopupDuration() int           { return s.popupDuration }
func (s *StationKeeping) SetPopupDuration(seconds int) { s.popupDuration = seconds }

func (s *StationKeeping) ValidateParams() []ValidationError {
	var errs []ValidationError
	errs = append(errs, nonNegative("duration", float64(s.duration))...)
	errs = append(errs, positive("radius", s.radius)...)
	if s.keepSafe {
		errs = append(errs, nonNegative("popupPeriod", float64(s.popupPeriod))...)
		errs = append(errs, nonNegative("popupDuration", float64(s.popupDuration))...)
	}
	return append(errs, validateSpeed(s.speed)...)
}

type stationKeepingTrajectory struct {
	Radius float64 `xml:"radius"`
}

type stationKeepingPayload struct {
	XMLName       xml.Name
	Kind          string                   `xml:"kind,attr,omitempty"`
	BasePoint     *document.LocatedPoint   `xml:"basePoint"`
	Duration      int                      `xml:"duration"`
	PopupDuration int                      `xml:"popupDuration"`
	PopupPeriod   int                      `xml:"popupPeriod"`
	KeepSafe      bool                     `xml:"keepSafe"`
	Trajectory    stationKeepingTrajectory `xml:"trajectory"`
	Speed         *document.Speed          `xml:"speed"`
	Velocity      *document.Speed          `xml:"velocity"`
}

func (s *StationKeeping) EncodePayload() any {
	return &stationKeepingPayload{
		XMLName:       xmlName(KindStationKeeping),
		Kind:          "automatic",
		BasePoint:     document.NewLocatedPoint(s.loc, document.Float(0)),
		Duration:      s.duration,
		PopupDuration: s.popupDuration,
		PopupPeriod:   s.popupPeriod,
		KeepSafe:      s.keepSafe,
		Trajectory:    stationKeepingTrajectory{Radius: s.radius},
		Speed:         s.element(),
	}
}

func (s *StationKeeping) DecodePayload(raw *document.Payload) (func(), error) {
	var next StationKeeping
	next.setDefaults()
	p := &stationKeepingPayload{
		Duration:      next.duration,
		PopupDuration: next.popupDuration,
		PopupPeriod:   next.popupPeriod,
		Trajectory:    stationKeepingTrajectory{Radius: next.radius},
	}
	if err := decodePayload(raw, p); err != nil {
		return nil, err
	}
	loc, err := locatedPoint(KindStationKeeping, "basePoint", p.BasePoint)
	if err != nil {
		return nil, err
	}
	prop, err := decodePropulsion(KindStationKeeping, p.Speed, p.Velocity, next.propulsion)
	if err != nil {
		return nil, err
	}
	next.loc = loc
	next.propulsion = prop
	next.duration = p.Duration
	next.popupDuration = p.PopupDuration
	next.popupPeriod = p.PopupPeriod
	next.keepSafe = p.KeepSafe
	next.radius = p.Trajectory.Radius

	return func() {
		base := s.Base
		*s = next
		s.Base = base
	}, nil
}

// ToWire returns a StationKeepingExtended message when KeepSafe is set.
func (s *StationKeeping) ToWire() (wire.Message, error) {
	custom, err := s.wireCustom(KindStationKeeping)
	if err != nil {
		return nil, err
	}
	lat, lon, z, zu := locationToWire(s.loc)
	speed, units := wire.EncodeSpeed(s.speed)
	if !s.keepSafe {
		return wire.StationKeeping{
			Lat: lat, Lon: lon, Z: z, ZUnits: zu,
			Radius:     s.radius,
			Duration:   wire.EncodeDuration(s.duration),
			Speed:      speed,
			SpeedUnits: units,
			Custom:     custom,
		}, nil
	}
	return wire.StationKeepingExtended{
		Lat: lat, Lon: lon, Z: z, ZUnits: zu,
		Radius:        s.radius,
		Duration:      wire.EncodeDuration(s.duration),
		Speed:         speed,
		SpeedUnits:    units,
		PopupPeriod:   wire.EncodeDuration(s.popupPeriod),
		PopupDuration: wire.EncodeDuration(s.popupDuration),
		Flags:         wire.FlagKeepSafe,
		Custom:        custom,
	}, nil
}

// FromWire accepts both StationKeeping and StationKeepingExtended. Neither carries a timeout,
// so MaxTime is kept.
func (s *StationKeeping) FromWire(msg wire.Message) error {
	next := *s
	var (
		lat, lon, z float64
		zu          wire.ZUnits
		speed       float64
		units       wire.SpeedUnits
		custom      string
	)
	switch w := msg.(type) {
	case wire.StationKeeping:
		lat, lon, z, zu = w.Lat, w.Lon, w.Z, w.ZUnits
		speed, units, custom = w.Speed, w.SpeedUnits, w.Custom
		next.radius = w.Radius
		next.duration = int(w.Duration)
		next.keepSafe = false
	case wire.StationKeepingExtended:
		lat, lon, z, zu = w.Lat, w.Lon, w.Z, w.ZUnits
		speed, units, custom = w.Speed, w.SpeedUnits, w.Custom
		next.radius = w.Radius
		next.duration = int(w.Duration)
		next.keepSafe = w.Flags&wire.FlagKeepSafe != 0
		next.popupPeriod = int(w.PopupPeriod)
		next.popupDuration = int(w.PopupDuration)
	default:
		return wrongMessage(s, msg)
	}
	loc, err := locationFromWire(KindStationKeeping, lat, lon, z, zu)
	if err != nil {
		return err
	}
	next.Base = s.Base.withCustom(custom)
	next.loc = loc
	next.speed = speedFromWire(KindStationKeeping, speed, units)
	*s = next
	return nil
}
