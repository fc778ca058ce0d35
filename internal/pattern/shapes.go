package pattern

import (
	"math"

	"github.com/seaplan/mplan/pkg/core"
)

func deg(d float64) float64 { return d * math.Pi / 180 }

// RI returns the tri-lobed pattern: three square row patterns of side width rotated by 0, -60
// and -120 degrees about a shared corner base point, concatenated.
// Every lobe uses the complementary alternation 2 - alternation.
func RI(width, step, alternation, curveOffset float64, squareCurve bool, bearing float64) []core.OffsetPoint {
	if width == 0 {
		return Rows(RowsParams{Bearing: bearing})
	}
	baseX, baseY := -width/2, -width/2

	var out []core.OffsetPoint
	for _, turn := range []float64{0, -60, -120} {
		rot := bearing + deg(turn)
		bx, by := Rotate(rot, baseX, baseY)
		lobe := Rows(RowsParams{
			Width:       width,
			Length:      width,
			Step:        step,
			Alternation: 2 - alternation,
			CurveOffset: curveOffset,
			SquareCurve: squareCurve,
			Bearing:     rot,
		})
		out = append(out, translate(lobe, bx, by)...)
	}
	return out
}

// CrossHatch returns two square row patterns at right angles to each other, each starting from
// a corner of the same box, concatenated.
func CrossHatch(width, step, curveOffset float64, squareCurve bool, bearing float64) []core.OffsetPoint {
	if width == 0 {
		return Rows(RowsParams{Bearing: bearing})
	}
	b1x, b1y := Rotate(bearing, -width/2, -width/2)
	b2x, b2y := Rotate(bearing, -width/2, width/2)

	first := Rows(RowsParams{
		Width: width, Length: width, Step: step, Alternation: 1,
		CurveOffset: curveOffset, SquareCurve: squareCurve, Bearing: bearing,
	})
	second := Rows(RowsParams{
		Width: width, Length: width, Step: step, Alternation: 1,
		CurveOffset: curveOffset, SquareCurve: squareCurve, Bearing: bearing + deg(-90),
	})

	out := translate(first, b1x, b1y)
	return append(out, translate(second, b2x, b2y)...)
}

// FigureEight returns the magnetometer calibration path over a width x width box: two loops
// of opposite handedness that share the origin corner.
func FigureEight(width, bearing float64, firstClockwise bool) []core.OffsetPoint {
	w := math.Abs(width)
	ul := core.OffsetPoint{North: 0, East: 0}
	ur := core.OffsetPoint{North: 0, East: w}
	dr := core.OffsetPoint{North: -w, East: w}
	dl := core.OffsetPoint{North: -w, East: 0}

	if w == 0 {
		return []core.OffsetPoint{{Time: core.NoTime}}
	}

	seq := []core.OffsetPoint{ul, ur, dr, dl, ul, dl, dr, ur, ul}
	if !firstClockwise {
		seq = []core.OffsetPoint{ul, dl, dr, ur, ul, ur, dr, dl, ul}
	}
	for i := range seq {
		seq[i].North, seq[i].East = Rotate(bearing, seq[i].North, seq[i].East)
		seq[i].Time = core.NoTime
	}
	return seq
}

// ExpandingSquare returns an outward square spiral with legs growing by step, stopping once both
// coordinates leave the width box. The last point is clipped to the box.
func ExpandingSquare(width, step, bearing float64, invertY bool) []core.OffsetPoint {
	width = math.Abs(width)
	step = effectiveStep(step)
	if width == 0 {
		return []core.OffsetPoint{{Time: core.NoTime}}
	}

	const (
		left = iota
		up
		right
		down
	)

	var points []core.OffsetPoint
	x, y := 0.0, 0.0
	dir := left
	stepX, stepY := 1.0, 1.0
	half := width / 2
	for {
		points = append(points, core.OffsetPoint{North: x, East: y, Time: core.NoTime})
		switch dir {
		case left:
			x += step * stepX
			stepX++
		case up:
			y += step * stepY
			stepY++
		case right:
			x -= step * stepX
			stepX++
		case down:
			y -= step * stepY
			stepY++
		}
		dir = (dir + 1) % 4
		if math.Abs(x) > half && math.Abs(y) > half || len(points) >= MaxPoints {
			break
		}
	}

	last := &points[len(points)-1]
	last.North = clip(last.North, half)
	last.East = clip(last.East, half)

	for i := range points {
		if invertY {
			points[i].East = -points[i].East
		}
		points[i].North, points[i].East = Rotate(bearing, points[i].North, points[i].East)
	}
	return points
}

func clip(v, limit float64) float64 {
	return math.Copysign(math.Min(math.Abs(v), limit), v)
}
