// pkg/core/location.go
package core

import "math"

// Location is a maneuver position: a base latitude/longitude plus accumulated offsets.
// Offsets are summed on Translate, so chains of translations can be applied in any order
// and are resolved with a single geodetic displacement in Absolute.
type Location struct {
	ID   string
	Name string

	// Base position in decimal degrees.
	Latitude  float64
	Longitude float64

	// Cartesian offsets in meters. OffsetDown is positive downward.
	OffsetNorth float64
	OffsetEast  float64
	OffsetDown  float64

	// Polar offset. Azimuth and Zenith are in degrees; a zenith of 90 keeps the offset horizontal.
	OffsetDistance float64
	Azimuth        float64
	Zenith         float64

	Z      float64
	ZUnits ZUnits

	// Radius is a loiter/acceptance radius in meters, 0 when not applicable.
	Radius float64
}

// NewLocation returns a location at the given coordinates in degrees.
func NewLocation(latDeg, lonDeg float64) Location {
	return Location{Latitude: latDeg, Longitude: lonDeg, Zenith: 90}
}

// WithZ returns a copy of l with the given vertical value and reference.
func (l Location) WithZ(z float64, units ZUnits) Location {
	l.Z = z
	l.ZUnits = units
	return l
}

// Translate returns a copy of l displaced by the given offsets in meters.
func (l Location) Translate(north, east, down float64) Location {
	l.OffsetNorth += north
	l.OffsetEast += east
	l.OffsetDown += down
	return l
}

// Offsets returns the total north/east/down offset, polar part included.
func (l Location) Offsets() (north, east, down float64) {
	north, east, down = l.OffsetNorth, l.OffsetEast, l.OffsetDown
	if l.OffsetDistance != 0 {
		az := l.Azimuth * math.Pi / 180
		zen := l.Zenith * math.Pi / 180
		north += l.OffsetDistance * math.Cos(az) * math.Sin(zen)
		east += l.OffsetDistance * math.Sin(az) * math.Sin(zen)
		down += l.OffsetDistance * math.Cos(zen)
	}
	return north, east, down
}

// HasOffsets reports whether any offset is set.
func (l Location) HasOffsets() bool {
	return l.OffsetNorth != 0 || l.OffsetEast != 0 || l.OffsetDown != 0 || l.OffsetDistance != 0
}

// Absolute resolves all offsets and returns the equivalent location with none.
// The down offset is applied to Z according to its vertical reference.
func (l Location) Absolute() Location {
	if !l.HasOffsets() {
		return l
	}
	n, e, d := l.Offsets()
	lat, lon, _ := Displace(l.Latitude, l.Longitude, 0, n, e, 0)

	out := l
	out.Latitude, out.Longitude = lat, lon
	out.OffsetNorth, out.OffsetEast, out.OffsetDown = 0, 0, 0
	out.OffsetDistance, out.Azimuth, out.Zenith = 0, 0, 90
	switch l.ZUnits {
	case ZDepth:
		out.Z += d
	case ZAltitude, ZHeight:
		out.Z -= d
	}
	return out
}

// LatRad returns the absolute latitude in radians.
func (l Location) LatRad() float64 {
	return l.Absolute().Latitude * math.Pi / 180
}

// LonRad returns the absolute longitude in radians.
func (l Location) LonRad() float64 {
	return l.Absolute().Longitude * math.Pi / 180
}

// OffsetFrom returns the north/east/down offset of l relative to ref, horizontal only.
func (l Location) OffsetFrom(ref Location) (north, east, down float64) {
	a := ref.Absolute()
	b := l.Absolute()
	north, east, _ = Displacement(a.Latitude, a.Longitude, 0, b.Latitude, b.Longitude, 0)
	down = -(b.ZUnits.SignedHeight(b.Z) - a.ZUnits.SignedHeight(a.Z))
	return north, east, down
}

// HorizontalDistance returns the distance in meters to other, ignoring the vertical.
func (l Location) HorizontalDistance(other Location) float64 {
	n, e, _ := other.OffsetFrom(l)
	return math.Hypot(n, e)
}

// LocationFromRadians builds an absolute location from wire coordinates.
func LocationFromRadians(latRad, lonRad, z float64, units ZUnits) Location {
	return Location{
		Latitude:  latRad * 180 / math.Pi,
		Longitude: lonRad * 180 / math.Pi,
		Zenith:    90,
		Z:         z,
		ZUnits:    units,
	}
}
