// Package pattern generates coverage and survey waypoint sequences as offsets in meters
// from a reference point. X is north and Y is east. All functions are pure.
package pattern

import (
	"math"

	"github.com/seaplan/mplan/pkg/core"
)

// minStep replaces a zero row step so loops always terminate.
const minStep = 0.1

// RowsParams describes a lawnmower pattern.
type RowsParams struct {
	Width       float64 // across-track extent, meters
	Length      float64 // along-track leg length, meters
	Step        float64 // distance between legs, meters
	Alternation float64 // 1 keeps every leg spacing equal; in [0, 2]
	CurveOffset float64 // overshoot beyond each leg end, meters
	SquareCurve bool
	Bearing     float64 // radians
	CrossAngle  float64 // radians
	InvertY     bool    // first curve to the left
}

// Rotate rotates (x, y) by angle radians. Positive angles turn counter-clockwise in the (x, y)
// plane, which for north/east coordinates is a clockwise turn on a map.
func Rotate(angle, x, y float64) (float64, float64) {
	sin, cos := math.Sincos(angle)
	return x*cos - y*sin, x*sin + y*cos
}

// Rows returns the lawnmower waypoints. A zero width or length yields a single point.
// At most MaxPoints points are returned.
func Rows(p RowsParams) []core.OffsetPoint {
	width := math.Abs(p.Width)
	length := math.Abs(p.Length)
	step := effectiveStep(p.Step)
	alt := p.Alternation
	curv := p.CurveOffset

	points := []core.OffsetPoint{{North: -curv, Time: core.NoTime}}
	if width == 0 || length == 0 {
		return transform(points, p.Bearing, p.CrossAngle, p.InvertY)
	}

	direction := true
	for y := 0.0; y-stepDelta(!direction, step, alt) <= width && len(points)+2 <= MaxPoints; y += step {
		x2 := -curv
		if direction {
			x2 = length + curv
		}
		direction = !direction

		points = append(points, core.OffsetPoint{North: x2, East: y - stepDelta(direction, step, alt), Time: core.NoTime})

		legStep := step
		if !direction {
			legStep = step * alt
		}
		if y+legStep <= width {
			x := x2
			if !p.SquareCurve {
				if direction {
					x += curv
				} else {
					x -= curv
				}
			}
			points = append(points, core.OffsetPoint{North: x, East: y + legStep, Time: core.NoTime})
		}
	}

	return transform(points, p.Bearing, p.CrossAngle, p.InvertY)
}

func stepDelta(apply bool, step, alt float64) float64 {
	if apply {
		return step * (1 - alt)
	}
	return 0
}

// transform skews legs by the cross angle, mirrors for invertY and rotates by bearing.
func transform(points []core.OffsetPoint, bearing, cross float64, invertY bool) []core.OffsetPoint {
	sign := -1.0
	if invertY {
		sign = 1
	}
	for i := range points {
		x, dy := Rotate(-cross, points[i].North, 0)
		y := points[i].East + dy
		if invertY {
			y = -y
		}
		points[i].North, points[i].East = Rotate(bearing+sign*-cross, x, y)
	}
	return points
}

// translate shifts every point by (dx, dy) in place.
func translate(points []core.OffsetPoint, dx, dy float64) []core.OffsetPoint {
	for i := range points {
		points[i].North += dx
		points[i].East += dy
	}
	return points
}

// PathLength returns the horizontal polyline length of points.
func PathLength(points []core.OffsetPoint) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += math.Hypot(points[i].North-points[i-1].North, points[i].East-points[i-1].East)
	}
	return total
}
