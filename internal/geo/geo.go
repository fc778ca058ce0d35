package geo

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/seaplan/mplan/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// GEO POINTS
// Plan geometry is exported as EPSG:4326 (lon, lat, signed height) for renderers, or projected
// to EPSG:3857 for tile based maps.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// dms matches degree/minute/second strings such as 41N12'3.5'' or 8W30'0''.
var dms = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*([NSEWnsew])\s*(?:(\d+(?:\.\d+)?)\s*'\s*)?(?:(\d+(?:\.\d+)?)\s*(?:''|")?\s*)?$`)

// ParseCoordinate parses a latitude or longitude given either in decimal degrees or in the
// degree/hemisphere/minute/second form. It returns decimal degrees.
func ParseCoordinate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidCoordinates
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}

	m := dms.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCoordinates, s)
	}
	deg, _ := strconv.ParseFloat(m[1], 64)
	var minutes, seconds float64
	if m[3] != "" {
		minutes, _ = strconv.ParseFloat(m[3], 64)
	}
	if m[4] != "" {
		seconds, _ = strconv.ParseFloat(m[4], 64)
	}
	v := deg + minutes/60 + seconds/3600
	switch strings.ToUpper(m[2]) {
	case "S", "W":
		v = -v
	}
	return v, nil
}

// FormatCoordinate writes decimal degrees with full precision.
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LocationPoint returns the absolute position of l as an XYZ point in EPSG:4326 order
// (longitude, latitude, signed height).
func LocationPoint(l core.Location) (geom.Point, error) {
	abs := l.Absolute()
	p, err := geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: abs.Longitude, Y: abs.Latitude},
			Z:    abs.ZUnits.SignedHeight(abs.Z),
			Type: geom.DimXYZ,
		},
	)
	if err != nil {
		return geom.Point{}, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}
	return p, nil
}

// PathLineString resolves offset points relative to start and returns the path as a line string
// in EPSG:4326. Paths with fewer than two distinct points are kept as a zero length line.
func PathLineString(start core.Location, points []core.OffsetPoint) (geom.LineString, error) {
	abs := start.Absolute()
	flat := make([]float64, 0, (len(points)+1)*2)
	for _, p := range points {
		lat, lon, _ := core.Displace(abs.Latitude, abs.Longitude, 0, p.North, p.East, 0)
		flat = append(flat, lon, lat)
	}
	switch len(flat) {
	case 0:
		flat = append(flat, abs.Longitude, abs.Latitude, abs.Longitude, abs.Latitude)
	case 2:
		flat = append(flat, flat[0], flat[1])
	}
	return lineString(flat)
}

// lineString builds a line string from finite coordinates, allowing degenerate lines.
func lineString(flat []float64) (geom.LineString, error) {
	for i, v := range flat {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return geom.LineString{}, fmt.Errorf("%w: vertex %d is not finite", ErrInvalidCoordinates, i/2)
		}
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXY), geom.DisableAllValidations)
}

// ToWebMercator projects a longitude/latitude pair to EPSG:3857 meters.
func ToWebMercator(longitude, latitude float64) (x, y float64, err error) {
	if !(math.Abs(latitude) <= 90 && math.Abs(longitude) <= 180) {
		return 0, 0, ErrInvalidCoordinates
	}
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ = f(longitude, latitude, 0)
	return x, y, nil
}

// ProjectLineString projects every vertex of a 4326 line string to 3857.
func ProjectLineString(ls geom.LineString) (geom.LineString, error) {
	seq := ls.Coordinates()
	flat := make([]float64, 0, seq.Length()*2)
	for i := 0; i < seq.Length(); i++ {
		xy := seq.GetXY(i)
		x, y, err := ToWebMercator(xy.X, xy.Y)
		if err != nil {
			return geom.LineString{}, fmt.Errorf("vertex %d: %w", i, err)
		}
		flat = append(flat, x, y)
	}
	return lineString(flat)
}
