package core

import "math"

// WGS84 ellipsoid parameters.
const (
	wgs84A  = 6378137.0
	wgs84E2 = 0.00669437999013
)

func nRad(latRad float64) float64 {
	s := math.Sin(latRad)
	return wgs84A / math.Sqrt(1-wgs84E2*s*s)
}

// ToECEF converts geodetic coordinates (radians, height above ellipsoid in meters) to
// Earth-centered Earth-fixed coordinates.
func ToECEF(latRad, lonRad, hae float64) (x, y, z float64) {
	sinLat, cosLat := math.Sin(latRad), math.Cos(latRad)
	sinLon, cosLon := math.Sin(lonRad), math.Cos(lonRad)
	rn := nRad(latRad)

	x = (rn + hae) * cosLat * cosLon
	y = (rn + hae) * cosLat * sinLon
	z = ((1-wgs84E2)*rn + hae) * sinLat
	return x, y, z
}

// ToGeodetic converts ECEF coordinates back to latitude/longitude in radians and height
// above ellipsoid. The latitude is refined iteratively until the height converges to 0.1 mm.
func ToGeodetic(x, y, z float64) (latRad, lonRad, hae float64) {
	p := math.Hypot(x, y)
	lonRad = math.Atan2(y, x)
	latRad = math.Atan2(z/p, 0.01)
	n := nRad(latRad)
	hae = p/math.Cos(latRad) - n

	oldHae := -1e-9
	num := z / p
	for i := 0; i < 100 && math.Abs(hae-oldHae) > 1e-4; i++ {
		oldHae = hae
		den := 1 - wgs84E2*n/(n+hae)
		latRad = math.Atan2(num, den)
		n = nRad(latRad)
		hae = p/math.Cos(latRad) - n
	}
	return latRad, lonRad, hae
}

// Displace applies a north/east/down displacement in meters to a geodetic position
// given in degrees and depth (positive down). It returns the new position in degrees and depth.
func Displace(latDeg, lonDeg, depth, n, e, d float64) (float64, float64, float64) {
	lat := latDeg * math.Pi / 180
	lon := lonDeg * math.Pi / 180
	x, y, z := ToECEF(lat, lon, -depth)

	sLat, cLat := math.Sin(lat), math.Cos(lat)
	sLon, cLon := math.Sin(lon), math.Cos(lon)

	x += -sLat*cLon*n - sLon*e - cLat*cLon*d
	y += -sLat*sLon*n + cLon*e - cLat*sLon*d
	z += cLat*n - sLat*d

	rLat, rLon, hae := ToGeodetic(x, y, z)
	return rLat * 180 / math.Pi, rLon * 180 / math.Pi, -hae
}

// Displacement returns the north/east/down offset in meters from the first position to the second.
// Positions are in degrees and depth (positive down).
func Displacement(lat1, lon1, depth1, lat2, lon2, depth2 float64) (n, e, d float64) {
	rLat1 := lat1 * math.Pi / 180
	rLon1 := lon1 * math.Pi / 180
	x1, y1, z1 := ToECEF(rLat1, rLon1, -depth1)
	x2, y2, z2 := ToECEF(lat2*math.Pi/180, lon2*math.Pi/180, -depth2)

	ox, oy, oz := x2-x1, y2-y1, z2-z1
	sLat, cLat := math.Sin(rLat1), math.Cos(rLat1)
	sLon, cLon := math.Sin(rLon1), math.Cos(rLon1)

	t := cLon*ox + sLon*oy
	n = -sLat*t + cLat*oz
	e = -sLon*ox + cLon*oy
	d = -cLat*t - sLat*oz
	return n, e, d
}
